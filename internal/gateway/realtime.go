// internal/gateway/realtime.go
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sapmusicgroup/sap-backend/internal/casing"
)

// Subscribe opens the realtime feed. Events are delivered on the returned
// channel until ctx is cancelled or the connection drops; the channel is
// closed either way.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	tok := c.token()
	if tok == "" {
		return nil, ErrNoSession
	}

	u, err := url.Parse(c.baseURL + "/realtime")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(http.StatusText(resp.StatusCode))}
		}
		return nil, fmt.Errorf("gateway: dial realtime: %w", err)
	}

	events := make(chan Event, 32)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		case <-done:
		}
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer close(done)
		for {
			var ev Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			if rec, ok := casing.ToCamel(map[string]any(ev.Record)).(map[string]any); ok {
				ev.Record = rec
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
