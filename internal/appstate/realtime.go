// internal/appstate/realtime.go
package appstate

import (
	"context"
	"errors"

	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

// ErrFeedClosed is returned by Run when the server ends the feed.
var ErrFeedClosed = errors.New("appstate: realtime feed closed")

const (
	tableEarnings     = "earnings"
	tableChatMessages = "chat_messages"
	tableChatSessions = "chat_sessions"
)

// Run subscribes to the realtime feed and merges events until ctx is done
// or the feed closes. It does not reconnect.
func (s *Store) Run(ctx context.Context) error {
	events, err := s.backend.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrFeedClosed
			}
			s.Apply(ev)
		}
	}
}

// Apply merges one realtime event. Unknown tables and malformed records are
// logged and dropped.
func (s *Store) Apply(ev gateway.Event) {
	logger := s.log.WithField("table", ev.Table).WithField("type", ev.Type)
	switch {
	case ev.Table == tableEarnings && ev.Type == gateway.EventInsert:
		e, err := gateway.MapEarning(ev.Record)
		if err != nil {
			logger.WithError(err).Warn("Dropping malformed realtime record")
			return
		}
		s.mergeEarning(e)
	case ev.Table == tableChatMessages && ev.Type == gateway.EventInsert:
		m, err := gateway.MapChatMessage(ev.Record)
		if err != nil {
			logger.WithError(err).Warn("Dropping malformed realtime record")
			return
		}
		s.mergeMessage(m)
	case ev.Table == tableChatSessions:
		cs, err := gateway.MapChatSession(ev.Record)
		if err != nil {
			logger.WithError(err).Warn("Dropping malformed realtime record")
			return
		}
		s.mergeSession(ev.Type, cs)
	default:
		logger.Debug("Ignoring realtime event")
	}
}

func (s *Store) mergeEarning(e gateway.Earning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earnings, _ = insertSorted(s.earnings, e, earningID, earningNewer)
}

func (s *Store) mergeMessage(m gateway.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatMessages, _ = insertSorted(s.chatMessages, m, messageID, messageOlder)
}

// mergeSession inserts new sessions and replaces known ones on update.
func (s *Store) mergeSession(typ string, cs gateway.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if typ == gateway.EventUpdate && replace(s.chatSessions, cs, sessionID) {
		sortBy(s.chatSessions, sessionNewer)
		return
	}
	s.chatSessions, _ = insertSorted(s.chatSessions, cs, sessionID, sessionNewer)
}
