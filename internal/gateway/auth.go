// internal/gateway/auth.go
package gateway

import (
	"context"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	data, err := c.call(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	s, err := decodeAs[Session](data)
	if err != nil {
		return nil, err
	}
	c.setSession(&s)
	return &s, nil
}

// Login starts a password session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

// Signup creates an account and starts its session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/auth/signup", credentials{Email: email, Password: password, Name: name})
}

// Refresh exchanges the refresh token for a new session.
func (c *Client) Refresh(ctx context.Context) (*Session, error) {
	s := c.Session()
	if s == nil {
		return nil, ErrNoSession
	}
	return c.authenticate(ctx, "/auth/refresh", map[string]string{"refresh_token": s.RefreshToken})
}

// Logout revokes the access token. The local session is cleared even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.authorized(); err != nil {
		return err
	}
	_, err := c.call(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.setSession(nil)
	return err
}

// CurrentUser asks the server who the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*SessionUser, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	data, err := c.call(ctx, http.MethodGet, "/auth/session", nil, nil)
	if err != nil {
		return nil, err
	}
	u, err := decodeAs[SessionUser](data)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
