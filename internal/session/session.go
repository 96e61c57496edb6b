// Package session holds the signed-in user and their token, persisted to
// device storage so a later run can resume.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chancenmarket/chancen/internal/auth"
	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/storage"
)

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session is the client's auth state. Components receive it explicitly;
// there is no package-level instance.
type Session struct {
	api   *client.Client
	store *storage.Storage
	now   func() time.Time

	mu      sync.RWMutex
	user    *model.User
	token   string
	loading bool
}

// New returns a session bound to api and store. It starts out loading until
// Load has run.
func New(api *client.Client, store *storage.Storage) *Session {
	return &Session{api: api, store: store, now: time.Now, loading: true}
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Loading reports whether Load has not completed yet.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoggedIn reports whether a user is signed in.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Load restores the session from storage. A missing token or user leaves the
// session signed out, as does a token whose exp claim has passed.
func (s *Session) Load(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		s.clear()
		return fmt.Errorf("loading token: %w", err)
	}
	var user model.User
	hasUser, err := s.store.GetJSON(ctx, UserKey, &user)
	if err != nil {
		s.clear()
		return fmt.Errorf("loading user: %w", err)
	}
	if !ok || token == "" || !hasUser {
		s.clear()
		return nil
	}

	if auth.TokenExpired(token, s.now()) {
		slog.Warn("stored session expired, signing out", "user", user.Email)
		s.clear()
		if err := s.store.Remove(ctx, TokenKey, UserKey); err != nil {
			return fmt.Errorf("discarding expired session: %w", err)
		}
		return nil
	}

	s.set(&user, token)
	return nil
}

// Login signs in with email and password and persists the result.
func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.persist(ctx, resp)
}

// Register creates an account, signs in and persists the result.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.persist(ctx, resp)
}

// Logout removes the persisted session and clears memory and the client token.
func (s *Session) Logout(ctx context.Context) error {
	s.clear()
	if err := s.store.Remove(ctx, TokenKey, UserKey); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// UpdateProfile saves profile changes and stores the returned user.
func (s *Session) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	user, err := s.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetJSON(ctx, UserKey, user); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return s.User(), nil
}

func (s *Session) persist(ctx context.Context, resp *model.AuthResponse) error {
	if err := s.store.Set(ctx, TokenKey, resp.Token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := s.store.SetJSON(ctx, UserKey, resp.User); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	user := resp.User
	s.set(&user, resp.Token)
	slog.Info("signed in", "user", user.Email)
	return nil
}

func (s *Session) set(user *model.User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
	s.api.SetToken(token)
}

func (s *Session) clear() {
	s.set(nil, "")
}
