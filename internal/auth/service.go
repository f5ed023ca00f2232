package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/authz"
)

const actorCacheTTL = 30 * time.Second

// Service is the session/identity verifier: it turns credentials into
// actors with their grant graph loaded, and owns the refresh token
// lifecycle.
type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	recorder       audit.Recorder
	cache          *actorCache
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, recorder audit.Recorder, bcryptCost int, logger *slog.Logger) *Service {
	cache, err := newActorCache(actorCacheTTL)
	if err != nil {
		// cache is an optimization; resolve falls back to the store
		logger.Warn("actor cache disabled", "error", err)
		cache = nil
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		recorder:       recorder,
		cache:          cache,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and issues an access/refresh token
// pair. The refresh token is persisted so it can be individually revoked.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.repo.GetCredentialsByUsername(ctx, dto.Username)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	tokens, err := s.issueTokens(ctx, creds.UserID, dto.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:      &creds.UserID,
		Action:       "login",
		ResourceType: "auth",
		Details:      map[string]any{"success": true},
		IPAddress:    internal.ClientIPFromContext(ctx),
	})

	return tokens, nil
}

// RefreshTokens validates the refresh credential against both its signature
// and the store, then rotates it: the presented token is revoked and a new
// pair is issued.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil || stored == nil || stored.Revoked || stored.UserID != claims.UserID {
		return AuthTokens{}, ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return AuthTokens{}, ErrTokenExpired
	}

	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		s.logger.Error("failed to revoke rotated refresh token", "error", err, "user_id", claims.UserID)
		return AuthTokens{}, err
	}

	tokens, err := s.issueTokens(ctx, claims.UserID, claims.Username)
	if err != nil {
		return AuthTokens{}, err
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:      &claims.UserID,
		Action:       "refresh_token",
		ResourceType: "auth",
		Details:      map[string]any{"success": true},
		IPAddress:    internal.ClientIPFromContext(ctx),
	})

	return tokens, nil
}

// Logout revokes the presented refresh token. The access token simply ages
// out.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		return err
	}
	return s.repo.RevokeRefreshToken(ctx, refreshToken)
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

// ResolveActor loads the actor with its grant graph eagerly populated so a
// single fetch serves every permission check in the request.
func (s *Service) ResolveActor(ctx context.Context, userID string) (*authz.Actor, error) {
	if actor, ok := s.cache.get(userID); ok {
		return actor, nil
	}

	actor, err := s.repo.GetActorByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, ErrUserInactive
	}

	s.cache.set(userID, actor)
	return actor, nil
}

// InvalidateActor drops a cached actor after a grant mutation so the next
// resolution sees the new grant graph.
func (s *Service) InvalidateActor(userID string) {
	s.cache.invalidate(userID)
}

// HashPassword creates a bcrypt hash with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issueTokens(ctx context.Context, userID, username string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, username)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, expiresAt, err := s.tokenGenerator.GenerateRefreshToken(userID)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.repo.StoreRefreshToken(ctx, &RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}); err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
