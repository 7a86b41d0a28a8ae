// internal/appstate/load.go
package appstate

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

const placeholderName = "New User"

// Load fetches everything the session can see. Each fetch that fails is
// logged and leaves its collection empty; only a missing session is an
// error.
func (s *Store) Load(ctx context.Context) error {
	sess := s.backend.Session()
	if sess == nil {
		return ErrNoSession
	}

	template, editable := s.loadTemplate(ctx)
	current := s.loadProfile(ctx, sess)
	admin := current != nil && current.IsAdmin()

	var (
		writers  []gateway.ManagedWriter
		songs    []gateway.Song
		sessions []gateway.ChatSession
		messages []gateway.ChatMessage
		deals    []gateway.SyncDeal
		payouts  []gateway.PayoutRequest
		earned   []gateway.Earning
		users    []gateway.User
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if writers, err = s.backend.ManagedWriters(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching managed writers")
			writers = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if songs, err = s.backend.Songs(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching songs")
			songs = nil
		}
		// Users only see earnings of their own songs; skip the query when
		// there are none.
		if !admin && len(songs) == 0 {
			return nil
		}
		if earned, err = s.backend.Earnings(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching earnings")
			earned = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sessions, err = s.backend.ChatSessions(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching chat sessions")
			sessions = nil
			return nil
		}
		messages = s.loadMessages(ctx, sessions)
		return nil
	})
	g.Go(func() error {
		var err error
		if deals, err = s.backend.SyncDeals(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching sync deals")
			deals = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if payouts, err = s.backend.Payouts(ctx); err != nil {
			s.log.WithError(err).Error("Error fetching payout requests")
			payouts = nil
		}
		return nil
	})
	if admin {
		g.Go(func() error {
			var err error
			if users, err = s.backend.AllUsers(ctx); err != nil {
				s.log.WithError(err).Error("Error fetching all users")
				users = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = template
	s.templateEditable = editable
	s.currentUser = current
	s.managedWriters = writers
	s.songs = s.withAgreement(songs)
	s.earnings = earned
	s.chatSessions = sessions
	s.chatMessages = messages
	s.syncDeals = deals
	s.payouts = payouts
	s.users = users
	return nil
}

func (s *Store) loadTemplate(ctx context.Context) (string, bool) {
	tpl, ok, err := s.backend.AgreementTemplate(ctx)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("Could not fetch agreement template, using default")
		return agreement.DefaultTemplate, false
	case ok:
		return tpl, true
	default:
		return agreement.DefaultTemplate, true
	}
}

// loadProfile returns the caller's profile, a placeholder when none is
// saved yet, or nil when the fetch failed.
func (s *Store) loadProfile(ctx context.Context, sess *gateway.Session) *gateway.User {
	u, err := s.backend.UserProfile(ctx)
	if err != nil {
		s.log.WithError(err).Error("Error fetching user profile")
		return nil
	}
	if u != nil {
		return u
	}
	name := sess.User.Name
	if name == "" {
		name = placeholderName
	}
	return &gateway.User{
		ID:         sess.User.ID,
		Email:      sess.User.Email,
		Name:       name,
		Role:       models.RoleUser,
		Status:     models.UserStatusActive,
		HasProfile: false,
	}
}

func (s *Store) loadMessages(ctx context.Context, sessions []gateway.ChatSession) []gateway.ChatMessage {
	var (
		mu  sync.Mutex
		out []gateway.ChatMessage
		g   errgroup.Group
	)
	g.SetLimit(4)
	for _, cs := range sessions {
		g.Go(func() error {
			msgs, err := s.backend.ChatMessages(ctx, cs.ID)
			if err != nil {
				s.log.WithError(err).WithField("session_id", cs.ID).Error("Error fetching chat messages")
				return nil
			}
			mu.Lock()
			out = append(out, msgs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sortBy(out, messageOlder)
	return out
}
