package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

type mockUserRepository struct {
	users map[string]*user.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*user.User)}
}

func (m *mockUserRepository) Create(_ context.Context, u *user.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *mockUserRepository) List(_ context.Context, limit, offset int) ([]*user.User, error) {
	var out []*user.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) Update(_ context.Context, u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

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

type fakeHasher struct{}

func (fakeHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) InvalidateActor(userID string) {
	f.invalidated = append(f.invalidated, userID)
}

var _ = Describe("Service", func() {
	var (
		repo        *mockUserRepository
		recorder    *recordingRecorder
		invalidator *fakeInvalidator
		svc         *user.Service
		actor       *authz.Actor
		ctx         context.Context
	)

	newService := func(grants ...string) *user.Service {
		granted := make(map[string]bool, len(grants))
		for _, g := range grants {
			granted[g] = true
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		return user.NewService(repo, fakeAuthorizer{grants: granted}, recorder, fakeHasher{}, invalidator, logger)
	}

	BeforeEach(func() {
		repo = newMockUserRepository()
		recorder = &recordingRecorder{}
		invalidator = &fakeInvalidator{}
		actor = &authz.Actor{ID: "actor-1", Username: "gandalf", IsActive: true}
		ctx = internal.ContextWithActor(context.Background(), actor)
	})

	Describe("Signup", func() {
		BeforeEach(func() {
			svc = newService()
		})

		It("registers an active, unprivileged account without any grant", func() {
			u, err := svc.Signup(context.Background(), user.SignupDTO{
				Username: "frodo",
				Email:    "frodo@shire.me",
				Password: "Sting1234",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsActive).To(BeTrue())
			Expect(u.IsSuperuser).To(BeFalse())
			Expect(u.PasswordHash).To(Equal("hashed:Sting1234"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("signup"))
			Expect(*recorder.entries[0].ActorID).To(Equal(u.ID))
		})

		It("rejects a weak password", func() {
			_, err := svc.Signup(context.Background(), user.SignupDTO{
				Username: "frodo",
				Email:    "frodo@shire.me",
				Password: "short",
			})
			Expect(err).To(HaveOccurred())
			Expect(repo.users).To(BeEmpty())
		})

		It("maps a unique violation to a duplicate user conflict", func() {
			dto := user.SignupDTO{Username: "frodo", Email: "frodo@shire.me", Password: "Sting1234"}
			_, err := svc.Signup(context.Background(), dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Signup(context.Background(), dto)
			Expect(err).To(MatchError(internal.ErrDuplicateUser))
		})
	})

	Describe("Create", func() {
		It("denies without the create grant", func() {
			svc = newService("users:read")
			_, err := svc.Create(ctx, user.CreateUserDTO{
				Username: "frodo",
				Email:    "frodo@shire.me",
				Password: "Sting1234",
			})
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("honors the is_active and is_superuser fields", func() {
			svc = newService("users:create")
			inactive := false
			u, err := svc.Create(ctx, user.CreateUserDTO{
				Username:    "saruman",
				Email:       "saruman@isengard.me",
				Password:    "Palantir1",
				IsActive:    &inactive,
				IsSuperuser: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsActive).To(BeFalse())
			Expect(u.IsSuperuser).To(BeTrue())

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("is_superuser", true))
		})
	})

	Describe("Me", func() {
		BeforeEach(func() {
			svc = newService()
			repo.users["actor-1"] = &user.User{ID: "actor-1", Username: "gandalf", Email: "gandalf@istari.me"}
		})

		It("returns the caller's own record without any grant", func() {
			u, err := svc.Me(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Username).To(Equal("gandalf"))
		})

		It("includes the session's role and group names", func() {
			actor.Roles = []authz.Role{{ID: "r1", Name: "editor"}}
			actor.Groups = []authz.Group{{ID: "g1", Name: "litigation"}}

			u, err := svc.Me(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Roles).To(ConsistOf("editor"))
			Expect(u.Groups).To(ConsistOf("litigation"))
		})

		It("denies a request with no actor attached", func() {
			_, err := svc.Me(context.Background())
			Expect(err).To(MatchError(internal.ErrPermissionDenied))
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			svc = newService("users:update")
			repo.users["user-7"] = &user.User{
				ID:           "user-7",
				Username:     "frodo",
				Email:        "frodo@shire.me",
				PasswordHash: "hashed:Sting1234",
				IsActive:     true,
			}
		})

		It("re-hashes a changed password and drops the cached actor", func() {
			password := "NewSting99"
			u, err := svc.Update(ctx, "user-7", user.UpdateUserDTO{Password: &password})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.PasswordHash).To(Equal("hashed:NewSting99"))
			Expect(invalidator.invalidated).To(ConsistOf("user-7"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(HaveKeyWithValue("password", "changed"))
		})

		It("treats an empty payload as a no-op that still audits", func() {
			_, err := svc.Update(ctx, "user-7", user.UpdateUserDTO{})
			Expect(err).NotTo(HaveOccurred())
			Expect(invalidator.invalidated).To(BeEmpty())

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Details).To(BeEmpty())
		})

		It("reports a missing user", func() {
			_, err := svc.Update(ctx, "missing", user.UpdateUserDTO{})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			svc = newService("users:delete")
			repo.users["user-7"] = &user.User{ID: "user-7", Username: "frodo", Email: "frodo@shire.me"}
		})

		It("removes the user and drops the cached actor", func() {
			Expect(svc.Delete(ctx, "user-7")).To(Succeed())
			Expect(repo.users).NotTo(HaveKey("user-7"))
			Expect(invalidator.invalidated).To(ConsistOf("user-7"))

			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("delete"))
		})
	})
})
