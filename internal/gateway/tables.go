// internal/gateway/tables.go
package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

type EarningInput struct {
	SongID      string               `json:"songId"`
	Amount      float64              `json:"amount"`
	Platform    models.Platform      `json:"platform"`
	Source      models.RevenueSource `json:"source"`
	EarningDate string               `json:"earningDate,omitempty"`
}

type SyncDealInput struct {
	SongID     string  `json:"songId"`
	DealType   string  `json:"dealType"`
	Licensee   string  `json:"licensee"`
	Fee        float64 `json:"fee"`
	Terms      string  `json:"terms"`
	ExpiryDate string  `json:"expiryDate"`
}

func (c *Client) list(ctx context.Context, path string, query url.Values) (any, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	return c.call(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) write(ctx context.Context, method, path string, body any) (any, error) {
	if err := c.authorized(); err != nil {
		return nil, err
	}
	return c.call(ctx, method, path, nil, body)
}

func (c *Client) Songs(ctx context.Context) ([]Song, error) {
	data, err := c.list(ctx, "/songs", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapSong)
}

func (c *Client) InsertSong(ctx context.Context, s Song) (Song, error) {
	body, err := songRow(s)
	if err != nil {
		return Song{}, err
	}
	data, err := c.write(ctx, http.MethodPost, "/songs", body)
	if err != nil {
		return Song{}, err
	}
	return MapSong(data)
}

func (c *Client) UpdateSongStatus(ctx context.Context, id string, status models.AgreementStatus) (Song, error) {
	data, err := c.write(ctx, http.MethodPatch, "/songs/"+url.PathEscape(id)+"/status", map[string]any{"status": status})
	if err != nil {
		return Song{}, err
	}
	return MapSong(data)
}

func (c *Client) UpdateSongSyncStatus(ctx context.Context, id string, status models.SyncStatus) (Song, error) {
	data, err := c.write(ctx, http.MethodPatch, "/songs/"+url.PathEscape(id)+"/sync-status", map[string]any{"sync_status": status})
	if err != nil {
		return Song{}, err
	}
	return MapSong(data)
}

func (c *Client) ManagedWriters(ctx context.Context) ([]ManagedWriter, error) {
	data, err := c.list(ctx, "/managed-writers", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapManagedWriter)
}

func (c *Client) InsertManagedWriter(ctx context.Context, in ManagedWriterInput) (ManagedWriter, error) {
	body, err := row(in)
	if err != nil {
		return ManagedWriter{}, err
	}
	data, err := c.write(ctx, http.MethodPost, "/managed-writers", body)
	if err != nil {
		return ManagedWriter{}, err
	}
	return MapManagedWriter(data)
}

// Earnings lists the rows visible to the caller, newest first.
func (c *Client) Earnings(ctx context.Context) ([]Earning, error) {
	data, err := c.list(ctx, "/earnings", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapEarning)
}

func (c *Client) InsertEarning(ctx context.Context, in EarningInput) (Earning, error) {
	body, err := row(in)
	if err != nil {
		return Earning{}, err
	}
	data, err := c.write(ctx, http.MethodPost, "/earnings", body)
	if err != nil {
		return Earning{}, err
	}
	return MapEarning(data)
}

func (c *Client) Payouts(ctx context.Context) ([]PayoutRequest, error) {
	data, err := c.list(ctx, "/payouts", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapPayout)
}

func (c *Client) Balance(ctx context.Context) (Balance, error) {
	data, err := c.list(ctx, "/payouts/balance", nil)
	if err != nil {
		return Balance{}, err
	}
	return decodeAs[Balance](data)
}

func (c *Client) InsertPayout(ctx context.Context, amount float64) (PayoutRequest, error) {
	data, err := c.write(ctx, http.MethodPost, "/payouts", map[string]any{"amount": amount})
	if err != nil {
		return PayoutRequest{}, err
	}
	return MapPayout(data)
}

func (c *Client) UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus) (PayoutRequest, error) {
	data, err := c.write(ctx, http.MethodPatch, "/payouts/"+url.PathEscape(id)+"/status", map[string]any{"status": status})
	if err != nil {
		return PayoutRequest{}, err
	}
	return MapPayout(data)
}

func (c *Client) SyncDeals(ctx context.Context) ([]SyncDeal, error) {
	data, err := c.list(ctx, "/sync-deals", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapSyncDeal)
}

func (c *Client) InsertSyncDeal(ctx context.Context, in SyncDealInput) (SyncDeal, error) {
	body, err := row(in)
	if err != nil {
		return SyncDeal{}, err
	}
	data, err := c.write(ctx, http.MethodPost, "/sync-deals", body)
	if err != nil {
		return SyncDeal{}, err
	}
	return MapSyncDeal(data)
}

func (c *Client) UpdateSyncDealStatus(ctx context.Context, id string, status models.DealStatus) (SyncDeal, error) {
	data, err := c.write(ctx, http.MethodPatch, "/sync-deals/"+url.PathEscape(id)+"/status", map[string]any{"status": status})
	if err != nil {
		return SyncDeal{}, err
	}
	return MapSyncDeal(data)
}

// UpsertProfile saves the caller's profile and returns the stored row.
func (c *Client) UpsertProfile(ctx context.Context, u User) (User, error) {
	data, err := c.write(ctx, http.MethodPut, "/users/profile", profileRow(u))
	if err != nil {
		return User{}, err
	}
	return MapUser(data)
}

// UpdateUserAccess sets another user's role and status. Admin only.
func (c *Client) UpdateUserAccess(ctx context.Context, id string, role models.Role, status models.UserStatus) (User, error) {
	data, err := c.write(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(id), map[string]any{"role": role, "status": status})
	if err != nil {
		return User{}, err
	}
	return MapUser(data)
}

func (c *Client) UpdateAgreementTemplate(ctx context.Context, text string) error {
	_, err := c.write(ctx, http.MethodPut, "/settings/agreement-template", map[string]string{"value": text})
	return err
}

func (c *Client) Roles(ctx context.Context) ([]RoleDefinition, error) {
	data, err := c.list(ctx, "/roles", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, decodeAs[RoleDefinition])
}

func (c *Client) ChatSessions(ctx context.Context) ([]ChatSession, error) {
	data, err := c.list(ctx, "/chat/sessions", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapChatSession)
}

func (c *Client) ChatMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	data, err := c.list(ctx, "/chat/sessions/"+url.PathEscape(sessionID)+"/messages", nil)
	if err != nil {
		return nil, err
	}
	return mapList(data, MapChatMessage)
}

// SendChatMessage posts to a session. An empty sessionID posts to the
// caller's own session, creating it on first use.
func (c *Client) SendChatMessage(ctx context.Context, sessionID, text string) (ChatMessage, error) {
	body := map[string]any{"text": text}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	data, err := c.write(ctx, http.MethodPost, "/chat/messages", body)
	if err != nil {
		return ChatMessage{}, err
	}
	return MapChatMessage(data)
}

func (c *Client) MarkChatSessionRead(ctx context.Context, id string) (ChatSession, error) {
	data, err := c.write(ctx, http.MethodPatch, "/chat/sessions/"+url.PathEscape(id)+"/read", nil)
	if err != nil {
		return ChatSession{}, err
	}
	return MapChatSession(data)
}
