package authz_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pcoutinho/legal-management/internal/authz"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Suite")
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func permFor(resource, action string, conds authz.Conditions) authz.Permission {
	return authz.Permission{
		ID:         "perm-" + resource + "-" + action,
		Name:       resource + ":" + action,
		Resource:   resource,
		Action:     action,
		Conditions: conds,
	}
}

var _ = Describe("Evaluate", func() {
	var rctx authz.Context

	BeforeEach(func() {
		rctx = authz.Context{Now: at(12, 0), IPAddress: "10.0.0.5"}
	})

	It("accepts an empty conditions bag", func() {
		Expect(authz.Evaluate(nil, rctx)).To(BeTrue())
		Expect(authz.Evaluate(authz.Conditions{}, rctx)).To(BeTrue())
	})

	It("rejects unknown condition kinds", func() {
		conds := authz.Conditions{"weekday_only": true}
		Expect(authz.Evaluate(conds, rctx)).To(BeFalse())
	})

	It("rejects when any one condition fails", func() {
		conds := authz.Conditions{
			authz.ConditionIPRange:     []string{"10.0.0.5"},
			authz.ConditionTimeBetween: []string{"00:00", "01:00"},
		}
		Expect(authz.Evaluate(conds, rctx)).To(BeFalse())
	})

	Describe("time_between", func() {
		conds := authz.Conditions{authz.ConditionTimeBetween: []string{"09:00", "17:00"}}

		It("allows inside the window", func() {
			Expect(authz.Evaluate(conds, authz.Context{Now: at(12, 30)})).To(BeTrue())
		})

		It("includes both bounds", func() {
			Expect(authz.Evaluate(conds, authz.Context{Now: at(9, 0)})).To(BeTrue())
			Expect(authz.Evaluate(conds, authz.Context{Now: at(17, 0)})).To(BeTrue())
		})

		It("denies outside the window", func() {
			Expect(authz.Evaluate(conds, authz.Context{Now: at(8, 59)})).To(BeFalse())
			Expect(authz.Evaluate(conds, authz.Context{Now: at(17, 1)})).To(BeFalse())
		})

		It("denies on malformed windows", func() {
			Expect(authz.Evaluate(authz.Conditions{
				authz.ConditionTimeBetween: []string{"nine", "17:00"},
			}, rctx)).To(BeFalse())
			Expect(authz.Evaluate(authz.Conditions{
				authz.ConditionTimeBetween: []string{"09:00"},
			}, rctx)).To(BeFalse())
			Expect(authz.Evaluate(authz.Conditions{
				authz.ConditionTimeBetween: "09:00-17:00",
			}, rctx)).To(BeFalse())
		})

		It("accepts the []any shape JSON decoding produces", func() {
			decoded := authz.Conditions{authz.ConditionTimeBetween: []any{"09:00", "17:00"}}
			Expect(authz.Evaluate(decoded, authz.Context{Now: at(10, 0)})).To(BeTrue())
		})
	})

	Describe("ip_range", func() {
		It("matches literal addresses", func() {
			conds := authz.Conditions{authz.ConditionIPRange: []string{"192.168.1.10"}}
			Expect(authz.Evaluate(conds, authz.Context{IPAddress: "192.168.1.10"})).To(BeTrue())
			Expect(authz.Evaluate(conds, authz.Context{IPAddress: "192.168.1.11"})).To(BeFalse())
		})

		It("matches CIDR prefixes", func() {
			conds := authz.Conditions{authz.ConditionIPRange: []string{"10.0.0.0/8"}}
			Expect(authz.Evaluate(conds, authz.Context{IPAddress: "10.20.30.40"})).To(BeTrue())
			Expect(authz.Evaluate(conds, authz.Context{IPAddress: "11.0.0.1"})).To(BeFalse())
		})

		It("denies with no origin address", func() {
			conds := authz.Conditions{authz.ConditionIPRange: []string{"10.0.0.0/8"}}
			Expect(authz.Evaluate(conds, authz.Context{})).To(BeFalse())
		})

		It("denies unparseable origin addresses unless listed literally", func() {
			conds := authz.Conditions{authz.ConditionIPRange: []string{"not-an-ip"}}
			Expect(authz.Evaluate(conds, authz.Context{IPAddress: "not-an-ip"})).To(BeTrue())

			cidrOnly := authz.Conditions{authz.ConditionIPRange: []string{"10.0.0.0/8"}}
			Expect(authz.Evaluate(cidrOnly, authz.Context{IPAddress: "not-an-ip"})).To(BeFalse())
		})
	})
})

var _ = Describe("Engine", func() {
	var (
		engine *authz.Engine
		rctx   authz.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		engine = authz.NewEngine(logger)
		rctx = authz.Context{Now: at(12, 0), IPAddress: "10.0.0.5"}
	})

	It("denies a nil actor", func() {
		Expect(engine.Authorize(nil, "users", "read", rctx)).To(BeFalse())
	})

	It("denies an actor with no grants", func() {
		actor := &authz.Actor{ID: "u1", IsActive: true}
		Expect(engine.Authorize(actor, "users", "read", rctx)).To(BeFalse())
	})

	It("allows through a direct permission", func() {
		actor := &authz.Actor{
			ID:                "u1",
			DirectPermissions: []authz.Permission{permFor("companies", "update", nil)},
		}
		Expect(engine.Authorize(actor, "companies", "update", rctx)).To(BeTrue())
		Expect(engine.Authorize(actor, "companies", "delete", rctx)).To(BeFalse())
	})

	It("allows through a role permission", func() {
		actor := &authz.Actor{
			ID: "u1",
			Roles: []authz.Role{{
				ID:          "r1",
				Name:        "editor",
				Permissions: []authz.Permission{permFor("legal_cases", "update", nil)},
			}},
		}
		Expect(engine.Authorize(actor, "legal_cases", "update", rctx)).To(BeTrue())
	})

	It("allows through a group role permission", func() {
		actor := &authz.Actor{
			ID: "u1",
			Groups: []authz.Group{{
				ID:   "g1",
				Name: "litigation",
				Roles: []authz.Role{{
					ID:          "r1",
					Name:        "viewer",
					Permissions: []authz.Permission{permFor("legal_cases", "read", nil)},
				}},
			}},
		}
		Expect(engine.Authorize(actor, "legal_cases", "read", rctx)).To(BeTrue())
	})

	It("treats grants as a pure OR across paths", func() {
		// the direct grant fails its condition; the role grant carries none
		actor := &authz.Actor{
			ID: "u1",
			DirectPermissions: []authz.Permission{
				permFor("users", "read", authz.Conditions{
					authz.ConditionTimeBetween: []string{"00:00", "01:00"},
				}),
			},
			Roles: []authz.Role{{
				ID:          "r1",
				Name:        "staff",
				Permissions: []authz.Permission{permFor("users", "read", nil)},
			}},
		}
		Expect(engine.Authorize(actor, "users", "read", rctx)).To(BeTrue())
	})

	It("does not let extra grants subtract access", func() {
		actor := &authz.Actor{
			ID:                "u1",
			DirectPermissions: []authz.Permission{permFor("users", "read", nil)},
		}
		Expect(engine.Authorize(actor, "users", "read", rctx)).To(BeTrue())

		actor.Roles = append(actor.Roles, authz.Role{
			ID:   "r1",
			Name: "restricted",
			Permissions: []authz.Permission{
				permFor("users", "read", authz.Conditions{"unknown_kind": true}),
			},
		})
		Expect(engine.Authorize(actor, "users", "read", rctx)).To(BeTrue())
	})

	It("ignores the superuser flag", func() {
		actor := &authz.Actor{ID: "root", IsSuperuser: true}
		Expect(engine.Authorize(actor, "users", "delete", rctx)).To(BeFalse())
	})

	It("applies conditions per grant", func() {
		actor := &authz.Actor{
			ID: "u1",
			DirectPermissions: []authz.Permission{
				permFor("audit_logs", "read", authz.Conditions{
					authz.ConditionIPRange: []string{"10.0.0.0/8"},
				}),
			},
		}
		Expect(engine.Authorize(actor, "audit_logs", "read", rctx)).To(BeTrue())

		offNet := authz.Context{Now: rctx.Now, IPAddress: "172.16.0.1"}
		Expect(engine.Authorize(actor, "audit_logs", "read", offNet)).To(BeFalse())
	})
})
