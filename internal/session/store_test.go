package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"straycare/internal/types"
)

type fakeAuth struct {
	loginRes    *types.AuthResult
	loginErr    error
	currentUser *types.User
	currentErr  error
	currentWait time.Duration
	logoutErr   error
	logoutCalls int
	refreshRes  *types.AuthResult
	refreshErr  error
	refreshWith string
}

func (f *fakeAuth) Login(ctx context.Context, creds types.Credentials) (*types.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Register(ctx context.Context, input types.RegisterInput) (*types.AuthResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser(ctx context.Context) (*types.User, error) {
	if f.currentWait > 0 {
		select {
		case <-time.After(f.currentWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.currentUser, f.currentErr
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*types.AuthResult, error) {
	f.refreshWith = refreshToken
	return f.refreshRes, f.refreshErr
}

func newTestStore(t *testing.T, auth AuthClient) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "session.json"), nil)
	if auth != nil {
		s.SetAuthClient(auth)
	}
	return s
}

func user() *types.User {
	return &types.User{ID: "u1", Name: "Asha", Email: "a@b.com", Role: types.RolePublicUser}
}

func TestLoginStoresSessionAndPersists(t *testing.T) {
	auth := &fakeAuth{loginRes: &types.AuthResult{Token: "jwt-1", User: user()}}
	s := newTestStore(t, auth)

	err := s.Login(context.Background(), types.Credentials{Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "jwt-1", s.Token())
	assert.False(t, s.IsLoading())

	// A fresh store over the same file restores the session.
	s2 := NewStore(s.path, nil)
	require.NoError(t, s2.Load())
	assert.True(t, s2.IsAuthenticated())
	assert.Equal(t, "jwt-1", s2.Token())
	assert.Equal(t, "u1", s2.User().ID)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	auth := &fakeAuth{loginErr: errors.New("bad credentials")}
	s := newTestStore(t, auth)

	err := s.Login(context.Background(), types.Credentials{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.False(t, s.IsLoading())
}

func TestSessionInvariant(t *testing.T) {
	s := newTestStore(t, nil)
	// No user, no token.
	assert.Equal(t, s.User() != nil && s.Token() != "", s.IsAuthenticated())

	s.setSession(user(), "tok", "")
	assert.Equal(t, s.User() != nil && s.Token() != "", s.IsAuthenticated())
	assert.True(t, s.IsAuthenticated())

	s.ClearAuth()
	assert.Equal(t, s.User() != nil && s.Token() != "", s.IsAuthenticated())
	assert.False(t, s.IsAuthenticated())
}

func TestLoadRecomputesIsAuthenticated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	// A file claiming authentication without a token must not authenticate.
	raw, _ := json.Marshal(map[string]any{
		"user":            user(),
		"token":           "",
		"isAuthenticated": true,
	})
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	s := NewStore(path, nil)
	require.NoError(t, s.Load())
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
}

func TestLoadToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewStore(path, nil)
	require.NoError(t, s.Load())
	assert.False(t, s.IsAuthenticated())
}

func TestLogoutClearsEvenWhenBackendFails(t *testing.T) {
	auth := &fakeAuth{
		loginRes:  &types.AuthResult{Token: "jwt-2", User: user()},
		logoutErr: errors.New("backend down"),
	}
	s := newTestStore(t, auth)
	require.NoError(t, s.Login(context.Background(), types.Credentials{}))

	s.Logout(context.Background())
	assert.Equal(t, 1, auth.logoutCalls)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestInitializeValidUserRefreshes(t *testing.T) {
	auth := &fakeAuth{currentUser: &types.User{ID: "u1", Name: "Asha Renamed", Role: types.RoleVolunteer}}
	s := newTestStore(t, auth)
	s.setSession(user(), "jwt-3", "")

	s.Initialize(context.Background(), time.Second)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "Asha Renamed", s.User().Name)
	assert.False(t, s.IsLoading())
}

func TestInitializeInvalidTokenClears(t *testing.T) {
	auth := &fakeAuth{currentErr: errors.New("401")}
	s := newTestStore(t, auth)
	s.setSession(user(), "expired", "")

	s.Initialize(context.Background(), time.Second)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
}

func TestInitializeExpiredTokenRefreshes(t *testing.T) {
	auth := &fakeAuth{
		currentErr: errors.New("401"),
		refreshRes: &types.AuthResult{User: user(), Token: "jwt-new", RefreshToken: "rt-new"},
	}
	s := newTestStore(t, auth)
	s.setSession(user(), "expired", "rt-old")

	s.Initialize(context.Background(), time.Second)
	assert.True(t, s.IsAuthenticated(), "refresh rescues the session")
	assert.Equal(t, "jwt-new", s.Token())
	assert.Equal(t, "rt-old", auth.refreshWith)
	assert.False(t, s.IsLoading())
}

func TestInitializeRefreshFailureClears(t *testing.T) {
	auth := &fakeAuth{currentErr: errors.New("401"), refreshErr: errors.New("401")}
	s := newTestStore(t, auth)
	s.setSession(user(), "expired", "rt-old")

	s.Initialize(context.Background(), time.Second)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
}

func TestInitializeDeadlineErrorKeepsSession(t *testing.T) {
	// The in-flight call can report the deadline itself before the select
	// sees the context; that is still a timeout, not a rejection.
	auth := &fakeAuth{currentErr: context.DeadlineExceeded}
	s := newTestStore(t, auth)
	s.setSession(user(), "slow", "")

	s.Initialize(context.Background(), time.Second)
	assert.True(t, s.IsAuthenticated(), "a timeout never clears the session")
	assert.False(t, s.IsLoading())
}

func TestInitializeTimeoutKeepsSessionAndStopsLoading(t *testing.T) {
	auth := &fakeAuth{currentUser: user(), currentWait: 500 * time.Millisecond}
	s := newTestStore(t, auth)
	s.setSession(user(), "slow", "")

	start := time.Now()
	s.Initialize(context.Background(), 20*time.Millisecond)
	assert.Less(t, time.Since(start), 400*time.Millisecond, "initialize must respect the timeout")
	assert.True(t, s.IsAuthenticated(), "timeout keeps the restored session")
	assert.False(t, s.IsLoading(), "loading must be false on every exit path")
}

func TestInitializeUnauthenticatedIsNoop(t *testing.T) {
	s := newTestStore(t, &fakeAuth{currentErr: errors.New("should not be called")})
	s.Initialize(context.Background(), time.Second)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.IsLoading())
}

func TestThemePersists(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetTheme("light")

	s2 := NewStore(s.path, nil)
	require.NoError(t, s2.Load())
	assert.Equal(t, "light", s2.Theme())
}

func TestIsLoadingNeverPersisted(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetLoading(true)
	s.setSession(user(), "tok", "")

	data, err := os.ReadFile(s.path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "isLoading")
}
