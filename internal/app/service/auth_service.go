package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ocpe/internal/common"
	"ocpe/internal/common/security"
	"ocpe/internal/domain/model"
	"ocpe/internal/domain/repository"

	"github.com/google/uuid"
)

// MsgDuplicateAccount is reported on the username or email field when signup
// hits a unique constraint.
const MsgDuplicateAccount = "An account with that username or email already exists."

// SessionStore is the server-side half of a login session.
type SessionStore interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Get(ctx context.Context, sid string) (string, error)
	Delete(ctx context.Context, sid string) error
}

type AuthService struct {
	userRepo    repository.UserRepository
	sessions    SessionStore
	sessionTTL  time.Duration
	rememberTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sessions SessionStore, sessionTTL, rememberTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessions:    sessions,
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
	}
}

type SignupRequest struct {
	Username        string `form:"username" validate:"required,min=2,max=20"`
	Email           string `form:"email" validate:"required,email,max=120"`
	Password        string `form:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	Type            string `form:"type" validate:"required,oneof=contestant judge"`
}

type LoginRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Remember bool   `form:"remember"`
}

// LoginResult carries what the handler needs to set the session cookie.
type LoginResult struct {
	User       *model.User
	Token      string
	SessionID  string
	TTL        time.Duration
	Persistent bool
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	// max counts characters; bcrypt's limit is in bytes.
	if len(req.Password) > security.MaxPasswordBytes {
		return nil, common.NewValidationError("password", fmt.Sprintf("Field cannot be longer than %d bytes.", security.MaxPasswordBytes))
	}

	role, err := model.ParseRole(req.Type)
	if err != nil {
		return nil, common.NewValidationError("type", "Not a valid choice.")
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewValidationError(s.conflictField(ctx, user.Username), MsgDuplicateAccount)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("INFO: new %s account %q", role, user.Username)
	user.HashedPassword = ""
	return user, nil
}

// conflictField names the signup field that hit a unique constraint. The email
// field is the fallback when the username is still free.
func (s *AuthService) conflictField(ctx context.Context, username string) string {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return "username"
	}
	return "email"
}

// Login verifies the credentials and opens a session. Unknown emails and wrong
// passwords both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	ttl := s.sessionTTL
	if req.Remember {
		ttl = s.rememberTTL
	}

	sid, err := s.sessions.Create(ctx, user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := security.GenerateToken(security.SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role.String(),
		SessionID: sid,
	}, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	user.HashedPassword = ""
	return &LoginResult{User: user, Token: token, SessionID: sid, TTL: ttl, Persistent: req.Remember}, nil
}

// Logout revokes the session. An empty sid is a no-op.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// Identify turns verified token claims into an Identity. A revoked or expired
// session, or one owned by another user, resolves to the anonymous identity.
func (s *AuthService) Identify(ctx context.Context, sc security.SessionClaims) (model.Identity, error) {
	owner, err := s.sessions.Get(ctx, sc.SessionID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to look up session: %w", err)
	}
	if owner == "" || owner != sc.UserID {
		return model.Identity{}, nil
	}
	role, err := model.ParseRole(sc.Role)
	if err != nil {
		return model.Identity{}, nil
	}
	return model.Identity{UserID: sc.UserID, Username: sc.Username, Role: role}, nil
}

func (s *AuthService) GetAccount(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}
