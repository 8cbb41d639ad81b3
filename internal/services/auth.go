package services

import (
	"context"
	"net/url"

	"straycare/internal/api"
	"straycare/internal/types"
)

// Auth wraps the /auth endpoints.
type Auth struct {
	c *api.Client
}

// NewAuth builds the auth service.
func NewAuth(c *api.Client) *Auth { return &Auth{c: c} }

// Login exchanges credentials for a token and user.
func (a *Auth) Login(ctx context.Context, creds types.Credentials) (*types.AuthResult, error) {
	var res types.AuthResult
	if err := a.c.Post(ctx, "/auth/login", creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Register creates an account and returns the initial session.
func (a *Auth) Register(ctx context.Context, input types.RegisterInput) (*types.AuthResult, error) {
	var res types.AuthResult
	if err := a.c.Post(ctx, "/auth/register", input, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Logout invalidates the token server-side. Callers treat failure as
// best-effort; local state is cleared regardless.
func (a *Auth) Logout(ctx context.Context) error {
	return a.c.Post(ctx, "/auth/logout", nil, nil)
}

// CurrentUser fetches the user belonging to the current token.
func (a *Auth) CurrentUser(ctx context.Context) (*types.User, error) {
	var u types.User
	if err := a.c.Get(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*types.AuthResult, error) {
	body := map[string]string{"refreshToken": refreshToken}
	var res types.AuthResult
	if err := a.c.Post(ctx, "/auth/refresh", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// PromoteInput selects a user by email or username and the target role.
type PromoteInput struct {
	Email    string     `json:"email,omitempty"`
	Username string     `json:"username,omitempty"`
	Role     types.Role `json:"role"`
}

// Promote changes a user's role (admin only) and returns the backend's
// confirmation message.
func (a *Auth) Promote(ctx context.Context, input PromoteInput) (string, error) {
	env, err := a.c.PutEnvelope(ctx, "/auth/promote", input)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// UserInfo looks up a user by email or username (admin only).
func (a *Auth) UserInfo(ctx context.Context, email, username string) (*types.User, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	if username != "" {
		q.Set("username", username)
	}
	var u types.User
	if err := a.c.Get(ctx, "/auth/user", q, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
