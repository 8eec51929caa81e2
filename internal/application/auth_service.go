package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/pkg/apperr"
	"github.com/authgate/authgate/pkg/helpers"
	"github.com/authgate/authgate/pkg/mailer"
)

// login and registration report the same generic message for a missing user
// and a wrong password so callers cannot probe which emails are registered.
const msgInvalidCredentials = "invalid email or password"

// AuthService is the only component that mints or revokes refresh-token
// identifiers. RBAC checks live in RBACService; guards call them at request
// time, not inside the auth flow.
type AuthService struct {
	Users  UserDirectory
	Tokens repository.RefreshTokenRepository
	JWT    *helpers.JWTManager
	Pub    EventPublisher
	Logger *logrus.Logger
}

// UserDirectory is the slice of the user service the orchestrator needs.
type UserDirectory interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error)
	GetByEmailWithRoles(ctx context.Context, email string) (*entity.UserWithRoles, error)
	ValidatePassword(u *entity.User, password string) bool
}

// EventPublisher publishes security-event email jobs. Nil-safe: a nil
// publisher disables notifications.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

func NewAuthService(users UserDirectory, tokens repository.RefreshTokenRepository, jwt *helpers.JWTManager, pub EventPublisher, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, JWT: jwt, Pub: pub, Logger: logger}
}

// TokenPair is an access/refresh token pair plus the access expiry the
// client should use for scheduling renewal.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
}

// AuthResult is the register/login response: sanitized user plus tokens.
type AuthResult struct {
	User entity.Projection `json:"user"`
	TokenPair
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Register creates the user (Conflict when the email is taken) and signs
// the first token pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	u, err := s.Users.CreateUser(ctx, CreateUserInput{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Phone:    in.Phone,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.generateTokens(ctx, u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, u.Email, mailer.EventWelcome, map[string]any{"name": u.Name})

	return &AuthResult{User: u.Project(), TokenPair: *pair}, nil
}

// Login authenticates by email/password. Absent user, wrong password and
// inactive account all fail Unauthorized; the first two share one message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmailWithRoles(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if !s.Users.ValidatePassword(&u.User, password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if u.Status != entity.StatusActive {
		return nil, apperr.Unauthorized("account is locked")
	}

	pair, err := s.generateTokens(ctx, u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, u.Email, mailer.EventLogin, map[string]any{"name": u.Name})

	return &AuthResult{User: u.Project(), TokenPair: *pair}, nil
}

// Refresh rotates a refresh token. The presented token is single-use: it is
// revoked with a conditional update before a new pair is issued, and a token
// that is unknown, already revoked, or loses the conditional update fails
// Unauthorized. Replay and compromise are indistinguishable to the caller.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	stored, err := s.Tokens.GetWithUser(ctx, claims.TokenID())
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if stored.Revoked {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	if stored.User.Status != entity.StatusActive {
		return nil, apperr.Unauthorized("account is locked")
	}

	// Conditional revoke: zero rows means a concurrent refresh already
	// consumed this token, so this call fails closed.
	n, err := s.Tokens.Revoke(ctx, claims.TokenID())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	return s.generateTokens(ctx, stored.User.ID, stored.User.Email)
}

// Logout revokes the presented token. It is best-effort and idempotent:
// unparseable or unknown tokens are swallowed so ending a session can never
// surface an authentication failure.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return
	}
	if _, err := s.Tokens.Revoke(ctx, claims.TokenID()); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Debug("logout revoke failed")
	}
}

// RevokeAllTokens implements "log out everywhere" for a user. email may be
// empty, in which case no notification is sent.
func (s *AuthService) RevokeAllTokens(ctx context.Context, userID, email string) error {
	if err := s.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	s.publishEvent(ctx, email, mailer.EventTokensRevoked, map[string]any{"user_id": userID})
	return nil
}

// generateTokens signs an access/refresh pair. The refresh jti row is
// persisted before the signed string is returned, so a refresh token is
// never valid without its server-side record.
func (s *AuthService) generateTokens(ctx context.Context, userID, email string) (*TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, apperr.Internal("generate access token", err)
	}

	tokenID := uuid.NewString()
	refresh, _, err := s.JWT.GenerateRefreshToken(userID, email, tokenID)
	if err != nil {
		return nil, apperr.Internal("generate refresh token", err)
	}
	if err := s.Tokens.Create(ctx, tokenID, userID); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(aexp).Round(time.Second).Seconds()),
	}, nil
}

// publishEvent enqueues a security-event email job; failures are logged,
// never propagated.
func (s *AuthService) publishEvent(ctx context.Context, to, event string, data map[string]any) {
	if s.Pub == nil || to == "" {
		return
	}
	job := mailer.EmailJob{To: to, Event: event, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", event).Warn("publish security event failed")
	}
}
