package company_test

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/company"
)

func TestCompany(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Suite")
}

type mockCompanyRepository struct {
	companies   map[string]*company.Company
	members     map[string][]string
	createCalls int
	updateCalls int
}

func newMockCompanyRepository() *mockCompanyRepository {
	return &mockCompanyRepository{
		companies: make(map[string]*company.Company),
		members:   make(map[string][]string),
	}
}

func (m *mockCompanyRepository) Create(_ context.Context, c *company.Company) error {
	m.createCalls++
	for _, existing := range m.companies {
		if existing.CNPJ == c.CNPJ {
			return gorm.ErrDuplicatedKey
		}
	}
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyRepository) GetByID(_ context.Context, id string) (*company.Company, error) {
	c, ok := m.companies[id]
	if !ok || c.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (m *mockCompanyRepository) List(_ context.Context, limit, offset int) ([]*company.Company, error) {
	var out []*company.Company
	for _, c := range m.companies {
		if !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCompanyRepository) Update(_ context.Context, c *company.Company) error {
	m.updateCalls++
	m.companies[c.ID] = c
	return nil
}

func (m *mockCompanyRepository) SoftDelete(_ context.Context, id, deletedByID string) error {
	c, ok := m.companies[id]
	if !ok || c.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	c.IsDeleted = true
	c.DeletedByID = &deletedByID
	return nil
}

func (m *mockCompanyRepository) AddMember(_ context.Context, companyID, userID string) error {
	if slices.Contains(m.members[companyID], userID) {
		return gorm.ErrDuplicatedKey
	}
	m.members[companyID] = append(m.members[companyID], userID)
	return nil
}

func (m *mockCompanyRepository) RemoveMember(_ context.Context, companyID, userID string) error {
	m.members[companyID] = slices.DeleteFunc(m.members[companyID], func(id string) bool {
		return id == userID
	})
	return nil
}

func (m *mockCompanyRepository) MemberIDs(_ context.Context, companyID string) ([]string, error) {
	return m.members[companyID], nil
}

// fakeAuthorizer grants exactly the resource:action pairs it was built with.
type fakeAuthorizer struct {
	grants map[string]bool
}

func (f fakeAuthorizer) Authorize(_ *authz.Actor, resource, action string, _ authz.Context) bool {
	return f.grants[resource+":"+action]
}

type recordingRecorder struct {
	entries []audit.Entry
}

func (r *recordingRecorder) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

var _ = Describe("Service", func() {
	var (
		repo     *mockCompanyRepository
		recorder *recordingRecorder
		svc      *company.Service
		actor    *authz.Actor
		ctx      context.Context
	)

	newService := func(grants ...string) *company.Service {
		granted := make(map[string]bool, len(grants))
		for _, g := range grants {
			granted[g] = true
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		return company.NewService(repo, fakeAuthorizer{grants: granted}, recorder, logger)
	}

	BeforeEach(func() {
		repo = newMockCompanyRepository()
		recorder = &recordingRecorder{}
		actor = &authz.Actor{ID: "actor-1", Username: "gandalf", IsActive: true}
		ctx = internal.ContextWithActor(context.Background(), actor)
	})

	Describe("Create", func() {
		BeforeEach(func() {
			svc = newService("companies:create")
		})

		It("creates the company and audits the mutation", func() {
			created, err := svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.IsActive).To(BeTrue())
			Expect(created.OwnerID).To(Equal("actor-1"))
			Expect(created.CreatedByID).To(Equal("actor-1"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("create"))
			Expect(recorder.entries[0].ResourceType).To(Equal("companies"))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("cnpj", "12345678000190"))
		})

		It("maps a unique violation to a duplicate CNPJ conflict", func() {
			_, err := svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Create(ctx, company.CreateCompanyDTO{Name: "Other", CNPJ: "12345678000190"})
			Expect(err).To(MatchError(internal.ErrDuplicateCNPJ))
		})

		It("rejects an invalid CNPJ before touching the store", func() {
			_, err := svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "123"})
			Expect(err).To(HaveOccurred())
			Expect(repo.createCalls).To(BeZero())
		})

		It("denies an actor without the grant and records nothing", func() {
			svc = newService("companies:read")
			_, err := svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
			Expect(repo.createCalls).To(BeZero())
			Expect(recorder.entries).To(BeEmpty())
		})

		It("denies a request with no actor attached", func() {
			_, err := svc.Create(context.Background(), company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})
	})

	Describe("Update", func() {
		var existing *company.Company

		BeforeEach(func() {
			svc = newService("companies:create", "companies:update")
			var err error
			existing, err = svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).NotTo(HaveOccurred())
			recorder.entries = nil
		})

		It("applies only the fields present in the payload", func() {
			name := "Acme Legal"
			updated, err := svc.Update(ctx, existing.ID, company.UpdateCompanyDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Acme Legal"))
			Expect(updated.IsActive).To(BeTrue())

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("name", "Acme Legal"))
			Expect(recorder.entries[0].Details).NotTo(HaveKey("is_active"))
		})

		It("treats an empty payload as a no-op that still succeeds and audits", func() {
			updated, err := svc.Update(ctx, existing.ID, company.UpdateCompanyDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Acme"))
			Expect(repo.updateCalls).To(BeZero())

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(BeEmpty())
		})

		It("reports a missing company", func() {
			_, err := svc.Update(ctx, "missing", company.UpdateCompanyDTO{})
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})
	})

	Describe("Delete", func() {
		var existing *company.Company

		BeforeEach(func() {
			svc = newService("companies:create", "companies:delete", "companies:read")
			var err error
			existing, err = svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).NotTo(HaveOccurred())
			recorder.entries = nil
		})

		It("soft-deletes and hides the row from subsequent reads", func() {
			Expect(svc.Delete(ctx, existing.ID)).To(Succeed())
			Expect(repo.companies[existing.ID].IsDeleted).To(BeTrue())
			Expect(*repo.companies[existing.ID].DeletedByID).To(Equal("actor-1"))

			_, err := svc.Get(ctx, existing.ID)
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("delete"))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("name", "Acme"))
		})

		It("denies without the delete grant", func() {
			svc = newService("companies:read")
			Expect(svc.Delete(ctx, existing.ID)).To(MatchError(internal.ErrPermissionDenied))
			Expect(repo.companies[existing.ID].IsDeleted).To(BeFalse())
			Expect(recorder.entries).To(BeEmpty())
		})
	})

	Describe("members", func() {
		var existing *company.Company

		BeforeEach(func() {
			svc = newService("companies:create", "companies:update", "companies:read")
			var err error
			existing, err = svc.Create(ctx, company.CreateCompanyDTO{Name: "Acme", CNPJ: "12345678000190"})
			Expect(err).NotTo(HaveOccurred())
			recorder.entries = nil
		})

		It("adds a member and exposes it on the detail view", func() {
			Expect(svc.AddMember(ctx, existing.ID, company.MemberDTO{UserID: "user-7"})).To(Succeed())

			detail, err := svc.Get(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.MemberIDs).To(ConsistOf("user-7"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("member_added", "user-7"))
		})

		It("treats re-adding an existing member as idempotent", func() {
			Expect(svc.AddMember(ctx, existing.ID, company.MemberDTO{UserID: "user-7"})).To(Succeed())
			recorder.entries = nil

			Expect(svc.AddMember(ctx, existing.ID, company.MemberDTO{UserID: "user-7"})).To(Succeed())
			Expect(recorder.entries).To(BeEmpty())
		})

		It("removes a member", func() {
			Expect(svc.AddMember(ctx, existing.ID, company.MemberDTO{UserID: "user-7"})).To(Succeed())
			Expect(svc.RemoveMember(ctx, existing.ID, "user-7")).To(Succeed())

			detail, err := svc.Get(ctx, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.MemberIDs).To(BeEmpty())
		})

		It("reports a missing company before mutating membership", func() {
			err := svc.AddMember(ctx, "missing", company.MemberDTO{UserID: "user-7"})
			Expect(err).To(MatchError(internal.ErrCompanyNotFound))
		})
	})
})
