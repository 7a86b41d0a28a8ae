// internal/gateway/functions.go
package gateway

import (
	"context"
	"net/http"
)

// EmailRequest is the body of the send-email function. Keys stay in the
// client convention on the wire.
type EmailRequest struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	SongTitle string `json:"songTitle"`
	NewStatus string `json:"newStatus"`
}

// Status passed to send-email when a new song awaits review.
const PendingAdminNotification = "pending_admin_notification"

func (c *Client) invoke(ctx context.Context, method, name string, body any) (any, error) {
	return c.call(ctx, method, "/functions/"+name, nil, body)
}

// AgreementTemplate returns the stored template and whether one exists.
func (c *Client) AgreementTemplate(ctx context.Context) (string, bool, error) {
	data, err := c.invoke(ctx, http.MethodGet, "get-agreement-template", nil)
	if err != nil {
		return "", false, err
	}
	m, _ := data.(map[string]any)
	tpl, ok := m["template"].(string)
	if !ok || tpl == "" {
		return "", false, nil
	}
	return tpl, true, nil
}

// UserProfile returns the caller's profile, or nil when none is saved yet.
func (c *Client) UserProfile(ctx context.Context) (*User, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	data, err := c.invoke(ctx, http.MethodGet, "get-user-profile", nil)
	if err != nil {
		return nil, err
	}
	m, err := asObject(data)
	if err != nil {
		return nil, err
	}
	if m["user"] == nil {
		return nil, nil
	}
	u, err := MapUser(m["user"])
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AllUsers returns every account merged with its profile. Admin only.
func (c *Client) AllUsers(ctx context.Context) ([]User, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	data, err := c.invoke(ctx, http.MethodGet, "get-all-users", nil)
	if err != nil {
		return nil, err
	}
	return mapField(data, "users", func(raw any) ([]User, error) { return mapList(raw, MapUser) })
}

// CreateUser provisions a confirmed account. Admin only.
func (c *Client) CreateUser(ctx context.Context, name, email, password string) (*SessionUser, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	data, err := c.invoke(ctx, http.MethodPost, "create-user-by-admin", map[string]string{
		"name": name, "email": email, "password": password,
	})
	if err != nil {
		return nil, err
	}
	u, err := mapField(data, "user", decodeAs[SessionUser])
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) SendEmail(ctx context.Context, req EmailRequest) error {
	if err := c.authorized(); err != nil {
		return err
	}
	_, err := c.invoke(ctx, http.MethodPost, "send-email", req)
	return err
}
