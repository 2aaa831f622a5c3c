package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sentinel-red/sentinel-backend/internal/auth/domain"
	"github.com/sentinel-red/sentinel-backend/internal/latency"
	"github.com/sentinel-red/sentinel-backend/internal/logging"
	"github.com/sentinel-red/sentinel-backend/internal/session"
)

// SessionStore persists the client session. *session.Store satisfies it.
type SessionStore interface {
	SaveTokens(ctx context.Context, t session.Tokens) error
	LoadTokens(ctx context.Context) (session.Tokens, error)
	ClearTokens(ctx context.Context) error
	SaveAuthSnapshot(ctx context.Context, snap session.AuthSnapshot) error
	LoadAuthSnapshot(ctx context.Context) (session.AuthSnapshot, error)
}

// DefaultUser is the account every login resolves to.
var DefaultUser = domain.User{
	ID:    "user-1",
	Name:  "Security Admin",
	Email: "admin@sentinel.ai",
	Role:  "admin",
}

// AuthService issues opaque mock tokens. Credentials are validated for
// shape only.
type AuthService struct {
	store   SessionStore
	latency *latency.Simulator

	mu       sync.RWMutex
	sessions map[string]domain.User

	now      func() time.Time
	newToken func(kind string) string
}

// NewAuthService builds the service. store and lat may be nil.
func NewAuthService(store SessionStore, lat *latency.Simulator) *AuthService {
	return &AuthService{
		store:    store,
		latency:  lat,
		sessions: make(map[string]domain.User),
		now:      time.Now,
		newToken: func(kind string) string { return "mock-" + kind + "-" + uuid.New().String() },
	}
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if err := s.latency.Wait(ctx, latency.OpLogin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, domain.ErrEmailRequired
	}
	if req.Password == "" {
		return nil, domain.ErrPasswordRequired
	}

	user := DefaultUser
	user.CreatedAt = s.now()
	return s.issue(ctx, "auth.login", user)
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	if err := s.latency.Wait(ctx, latency.OpRegister); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if len(req.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, domain.ErrEmailRequired
	}

	user := DefaultUser
	user.ID = "user-" + uuid.New().String()[:9]
	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)
	user.CreatedAt = s.now()
	return s.issue(ctx, "auth.register", user)
}

// ForgotPassword accepts the request; no mail is sent.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if err := s.latency.Wait(ctx, latency.OpForgotPassword); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" {
		return domain.ErrEmailRequired
	}
	logging.NewLogger(ctx).Infof("auth.forgot_password", "email=%s", email)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.latency.Wait(ctx, latency.OpResetPassword); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return domain.ErrTokenRequired
	}
	if len(password) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	logging.NewLogger(ctx).Info("auth.reset_password", "password reset accepted")
	return nil
}

// Me resolves token, or the persisted auth token when token is empty. A
// token issued before a restart is restored from the persisted auth
// snapshot as long as it is still the stored one.
func (s *AuthService) Me(ctx context.Context, token string) (*domain.User, error) {
	if err := s.latency.Wait(ctx, latency.OpCurrentUser); err != nil {
		return nil, err
	}

	var stored session.Tokens
	if s.store != nil {
		var err error
		if stored, err = s.store.LoadTokens(ctx); err != nil {
			return nil, err
		}
		if token == "" {
			token = stored.AuthToken
		}
	}
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	s.mu.RLock()
	user, ok := s.sessions[token]
	s.mu.RUnlock()
	if ok {
		return &user, nil
	}

	if s.store == nil || token != stored.AuthToken {
		return nil, domain.ErrSessionNotFound
	}
	restored, err := s.restore(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[token] = *restored
	s.mu.Unlock()
	logging.NewLogger(ctx).Infof("auth.me", "restored session user_id=%s", restored.ID)
	return restored, nil
}

func (s *AuthService) restore(ctx context.Context) (*domain.User, error) {
	snap, err := s.store.LoadAuthSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.IsAuthenticated || len(snap.User) == 0 || string(snap.User) == "null" {
		return nil, domain.ErrSessionNotFound
	}
	var user domain.User
	if err := json.Unmarshal(snap.User, &user); err != nil {
		return nil, fmt.Errorf("decoding persisted user: %w", err)
	}
	if user.ID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &user, nil
}

// Logout drops the session and clears persisted credentials. It succeeds
// for unknown tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.latency.Wait(ctx, latency.OpLogout); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.ClearTokens(ctx); err != nil {
		return err
	}
	return s.store.SaveAuthSnapshot(ctx, session.AuthSnapshot{IsAuthenticated: false})
}

func (s *AuthService) issue(ctx context.Context, op string, user domain.User) (*domain.AuthResponse, error) {
	resp := &domain.AuthResponse{
		User:         user,
		Token:        s.newToken("jwt"),
		RefreshToken: s.newToken("refresh"),
	}

	s.mu.Lock()
	s.sessions[resp.Token] = user
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveTokens(ctx, session.Tokens{AuthToken: resp.Token, RefreshToken: resp.RefreshToken}); err != nil {
			return nil, err
		}
		userJSON, err := json.Marshal(user)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveAuthSnapshot(ctx, session.AuthSnapshot{User: userJSON, IsAuthenticated: true}); err != nil {
			return nil, err
		}
	}

	logging.NewLogger(ctx).Infof(op, "user_id=%s", user.ID)
	return resp, nil
}
