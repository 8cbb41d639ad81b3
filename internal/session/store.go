// Package session owns the persisted client auth state: the logged-in user,
// the bearer token and the UI theme. The store is the only writer of the
// session; the HTTP adapter and command guards read through its accessors.
// State survives restarts in ~/.straycare/session.json.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"straycare/internal/types"
)

// AuthClient is the slice of the auth service the store depends on.
type AuthClient interface {
	Login(ctx context.Context, creds types.Credentials) (*types.AuthResult, error)
	Register(ctx context.Context, input types.RegisterInput) (*types.AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*types.User, error)
	Refresh(ctx context.Context, refreshToken string) (*types.AuthResult, error)
}

// ErrNoAuthClient is returned when an auth operation runs before wiring.
var ErrNoAuthClient = errors.New("session: auth client not configured")

// persisted is the on-disk layout. isLoading is deliberately absent.
type persisted struct {
	User            *types.User `json:"user"`
	Token           string      `json:"token"`
	RefreshToken    string      `json:"refreshToken,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	Theme           string      `json:"theme,omitempty"`
}

// Store holds the session and persists every change.
type Store struct {
	mu      sync.RWMutex
	path    string
	auth    AuthClient
	log     *zap.Logger
	user    *types.User
	token   string
	refresh string
	theme   string
	loading bool
}

// NewStore creates a store backed by the given file. A nil logger becomes
// a no-op. Call Load to restore persisted state.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, log: log, theme: "dark"}
}

// SetAuthClient wires the auth service in after construction. The client
// cannot be a constructor argument: the HTTP adapter needs the store as its
// token source before any service exists.
func (s *Store) SetAuthClient(a AuthClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = a
}

// Load restores persisted state from disk. A missing file is a fresh start.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read session: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn("discarding corrupt session file", zap.Error(err))
		return nil
	}
	// isAuthenticated is recomputed, never trusted from disk.
	if p.User != nil && p.Token != "" {
		s.user = p.User
		s.token = p.Token
		s.refresh = p.RefreshToken
	}
	if p.Theme != "" {
		s.theme = p.Theme
	}
	return nil
}

// persistLocked writes the current state. Callers hold s.mu.
func (s *Store) persistLocked() {
	p := persisted{
		User:            s.user,
		Token:           s.token,
		RefreshToken:    s.refresh,
		IsAuthenticated: s.user != nil && s.token != "",
		Theme:           s.theme,
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		s.log.Error("encode session", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Error("create session dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}

// Token returns the current bearer token ("" when logged out).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user, or nil.
func (s *Store) User() *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated holds exactly when both user and token are present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// IsLoading reports whether an auth operation is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SetLoading flips the busy flag. Never persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// ClearAuth drops user and token unconditionally and persists the cleared
// state. Called by the HTTP adapter on 401.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.refresh = ""
	s.loading = false
	s.persistLocked()
}

// Theme returns the persisted UI theme.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme updates and persists the UI theme.
func (s *Store) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	s.persistLocked()
}

func (s *Store) setSession(user *types.User, token, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
	s.refresh = refresh
	s.loading = false
	s.persistLocked()
}

// Login authenticates and stores the session. On failure the state is left
// untouched and the error is returned for the caller to surface.
func (s *Store) Login(ctx context.Context, creds types.Credentials) error {
	auth := s.authClient()
	if auth == nil {
		return ErrNoAuthClient
	}
	s.SetLoading(true)
	res, err := auth.Login(ctx, creds)
	if err != nil {
		s.SetLoading(false)
		return err
	}
	s.setSession(res.User, res.Token, res.RefreshToken)
	return nil
}

// Register creates an account and stores the resulting session.
func (s *Store) Register(ctx context.Context, input types.RegisterInput) error {
	auth := s.authClient()
	if auth == nil {
		return ErrNoAuthClient
	}
	s.SetLoading(true)
	res, err := auth.Register(ctx, input)
	if err != nil {
		s.SetLoading(false)
		return err
	}
	s.setSession(res.User, res.Token, res.RefreshToken)
	return nil
}

// Logout tells the backend best-effort and always clears local state.
func (s *Store) Logout(ctx context.Context) {
	if auth := s.authClient(); auth != nil {
		if err := auth.Logout(ctx); err != nil {
			s.log.Warn("logout request failed", zap.Error(err))
		}
	}
	s.ClearAuth()
}

// Initialize re-validates a restored session by fetching the current user,
// racing the call against the given timeout. A definitive rejection first
// tries one token refresh, then clears the session; a timeout keeps it and
// defers to the next authenticated request. Every exit path leaves the
// loading flag false.
func (s *Store) Initialize(ctx context.Context, timeout time.Duration) {
	s.SetLoading(true)
	defer s.SetLoading(false)

	if !s.IsAuthenticated() {
		return
	}
	auth := s.authClient()
	if auth == nil {
		return
	}
	s.mu.RLock()
	refresh := s.refresh
	s.mu.RUnlock()

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		user *types.User
		err  error
	}
	ch := make(chan result, 1) // buffered so the loser's result is discarded
	go func() {
		u, err := auth.CurrentUser(vctx)
		ch <- result{u, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			// The call's own context error can beat the Done branch
			// in the select; both cases are the same timeout.
			if errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, context.Canceled) {
				s.log.Warn("session validation timed out", zap.Error(r.err))
				return
			}
			if refresh != "" {
				if res, rerr := auth.Refresh(vctx, refresh); rerr == nil {
					s.log.Info("session token refreshed")
					s.setSession(res.User, res.Token, res.RefreshToken)
					return
				}
			}
			s.log.Warn("session token invalid, clearing", zap.Error(r.err))
			s.ClearAuth()
			return
		}
		s.mu.Lock()
		s.user = r.user
		s.persistLocked()
		s.mu.Unlock()
	case <-vctx.Done():
		s.log.Warn("session validation timed out", zap.Error(vctx.Err()))
	}
}

func (s *Store) authClient() AuthClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}
