package auth_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/auth"
	"github.com/pcoutinho/legal-management/internal/authz"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockAuthRepository struct {
	credentials map[string]*auth.Credentials
	actors      map[string]*authz.Actor
	tokens      map[string]*auth.RefreshToken
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		credentials: make(map[string]*auth.Credentials),
		actors:      make(map[string]*authz.Actor),
		tokens:      make(map[string]*auth.RefreshToken),
	}
}

func (m *mockAuthRepository) GetCredentialsByUsername(_ context.Context, username string) (*auth.Credentials, error) {
	creds, ok := m.credentials[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return creds, nil
}

func (m *mockAuthRepository) GetActorByID(_ context.Context, userID string) (*authz.Actor, error) {
	actor, ok := m.actors[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return actor, nil
}

func (m *mockAuthRepository) StoreRefreshToken(_ context.Context, token *auth.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockAuthRepository) GetRefreshToken(_ context.Context, token string) (*auth.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return stored, nil
}

func (m *mockAuthRepository) RevokeRefreshToken(_ context.Context, token string) error {
	stored, ok := m.tokens[token]
	if !ok {
		return auth.ErrInvalidToken
	}
	stored.Revoked = true
	return nil
}

// mockTokenGenerator hands out deterministic tokens and remembers the
// claims of every refresh token it issued.
type mockTokenGenerator struct {
	counter       int
	refreshClaims map[string]*auth.Claims
}

func newMockTokenGenerator() *mockTokenGenerator {
	return &mockTokenGenerator{refreshClaims: make(map[string]*auth.Claims)}
}

func (m *mockTokenGenerator) GenerateAccessToken(userID, username string) (string, error) {
	return "access-" + userID, nil
}

func (m *mockTokenGenerator) GenerateRefreshToken(userID string) (string, time.Time, error) {
	m.counter++
	token := fmt.Sprintf("refresh-%s-%d", userID, m.counter)
	m.refreshClaims[token] = &auth.Claims{UserID: userID}
	return token, time.Now().Add(time.Hour), nil
}

func (m *mockTokenGenerator) ValidateAccessToken(string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidToken
}

func (m *mockTokenGenerator) ValidateRefreshToken(token string) (*auth.Claims, error) {
	claims, ok := m.refreshClaims[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

type recordingRecorder struct {
	entries []audit.Entry
}

func (r *recordingRecorder) Record(_ context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

var _ = Describe("Service", func() {
	var (
		repo     *mockAuthRepository
		tokenGen *mockTokenGenerator
		recorder *recordingRecorder
		svc      *auth.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		repo = newMockAuthRepository()
		tokenGen = newMockTokenGenerator()
		recorder = &recordingRecorder{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = auth.NewService(repo, tokenGen, recorder, bcrypt.MinCost, logger)
		ctx = context.Background()

		hash, err := bcrypt.GenerateFromPassword([]byte("Sting1234"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		repo.credentials["frodo"] = &auth.Credentials{
			UserID:       "user-1",
			PasswordHash: string(hash),
			IsActive:     true,
		}
		repo.actors["user-1"] = &authz.Actor{ID: "user-1", Username: "frodo", IsActive: true}
	})

	Describe("Authenticate", func() {
		It("issues a token pair for valid credentials", func() {
			tokens, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "Sting1234"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).To(Equal("access-user-1"))
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
			Expect(tokens.TokenType).To(Equal("bearer"))

			stored, err := repo.GetRefreshToken(ctx, tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.UserID).To(Equal("user-1"))
			Expect(stored.Revoked).To(BeFalse())
		})

		It("records the login in the audit trail", func() {
			_, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "Sting1234"})
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal("login"))
			Expect(recorder.entries[0].ResourceType).To(Equal("auth"))
			Expect(*recorder.entries[0].ActorID).To(Equal("user-1"))
		})

		It("rejects a wrong password", func() {
			_, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("rejects an unknown username", func() {
			_, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "nobody", Password: "Sting1234"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects an inactive account even with a correct password", func() {
			repo.credentials["frodo"].IsActive = false
			_, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "Sting1234"})
			Expect(err).To(MatchError(auth.ErrUserInactive))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("rejects an empty password before touching the store", func() {
			_, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo"})
			var verr auth.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
		})
	})

	Describe("RefreshTokens", func() {
		var issued auth.AuthTokens

		BeforeEach(func() {
			var err error
			issued, err = svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "Sting1234"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rotates the token pair and revokes the presented token", func() {
			rotated, err := svc.RefreshTokens(ctx, issued.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(rotated.RefreshToken).NotTo(Equal(issued.RefreshToken))

			old, err := repo.GetRefreshToken(ctx, issued.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(old.Revoked).To(BeTrue())

			fresh, err := repo.GetRefreshToken(ctx, rotated.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.Revoked).To(BeFalse())
		})

		It("rejects a revoked token", func() {
			Expect(repo.RevokeRefreshToken(ctx, issued.RefreshToken)).To(Succeed())
			_, err := svc.RefreshTokens(ctx, issued.RefreshToken)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects a token whose stored record has expired", func() {
			repo.tokens[issued.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
			_, err := svc.RefreshTokens(ctx, issued.RefreshToken)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects a token stored against another user", func() {
			repo.tokens[issued.RefreshToken].UserID = "user-2"
			_, err := svc.RefreshTokens(ctx, issued.RefreshToken)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("rejects a token it never issued", func() {
			_, err := svc.RefreshTokens(ctx, "forged")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("Logout", func() {
		It("revokes the presented refresh token", func() {
			issued, err := svc.Authenticate(ctx, auth.LoginDTO{Username: "frodo", Password: "Sting1234"})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Logout(ctx, issued.RefreshToken)).To(Succeed())

			stored, err := repo.GetRefreshToken(ctx, issued.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Revoked).To(BeTrue())
		})

		It("rejects a token it cannot validate", func() {
			Expect(svc.Logout(ctx, "forged")).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("ResolveActor", func() {
		It("returns the actor with its grant graph", func() {
			actor, err := svc.ResolveActor(ctx, "user-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(actor.Username).To(Equal("frodo"))
		})

		It("refuses inactive actors", func() {
			repo.actors["user-1"].IsActive = false
			svc.InvalidateActor("user-1")
			_, err := svc.ResolveActor(ctx, "user-1")
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("fails when the actor does not exist", func() {
			_, err := svc.ResolveActor(ctx, "ghost")
			Expect(err).To(MatchError(auth.ErrUserNotFound))
		})
	})
})

var _ = Describe("JWTTokenGenerator", func() {
	var gen *auth.JWTTokenGenerator

	BeforeEach(func() {
		gen = auth.NewJWTTokenGenerator("access-secret-for-tests-0123456789ab", "refresh-secret-for-tests-0123456789", time.Minute, time.Hour)
	})

	It("round-trips access token claims", func() {
		token, err := gen.GenerateAccessToken("user-1", "frodo")
		Expect(err).NotTo(HaveOccurred())

		claims, err := gen.ValidateAccessToken(token)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.UserID).To(Equal("user-1"))
		Expect(claims.Username).To(Equal("frodo"))
	})

	It("keeps the two token families apart", func() {
		token, err := gen.GenerateAccessToken("user-1", "frodo")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateRefreshToken(token)
		Expect(err).To(MatchError(auth.ErrInvalidToken))
	})

	It("reports expiry distinctly", func() {
		short := auth.NewJWTTokenGenerator("access-secret-for-tests-0123456789ab", "refresh-secret-for-tests-0123456789", -time.Minute, time.Hour)
		token, err := short.GenerateAccessToken("user-1", "frodo")
		Expect(err).NotTo(HaveOccurred())

		_, err = gen.ValidateAccessToken(token)
		Expect(err).To(MatchError(auth.ErrTokenExpired))
	})
})
