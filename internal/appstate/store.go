// internal/appstate/store.go
//
// Package appstate owns the client's copy of every remote collection. All
// changes go through Store methods: each issues one gateway call and merges
// the result, and realtime pushes are merged by id.
package appstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/earnings"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

var (
	ErrNoSession = errors.New("appstate: no session")
	ErrNoUser    = errors.New("appstate: no current user")
	ErrForbidden = errors.New("appstate: admin only")
	ErrNotFound  = errors.New("appstate: not found")
)

// Backend is the remote side of the store. *gateway.Client implements it.
type Backend interface {
	Session() *gateway.Session

	AgreementTemplate(ctx context.Context) (string, bool, error)
	UserProfile(ctx context.Context) (*gateway.User, error)
	AllUsers(ctx context.Context) ([]gateway.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*gateway.SessionUser, error)
	SendEmail(ctx context.Context, req gateway.EmailRequest) error

	ManagedWriters(ctx context.Context) ([]gateway.ManagedWriter, error)
	InsertManagedWriter(ctx context.Context, in gateway.ManagedWriterInput) (gateway.ManagedWriter, error)

	Songs(ctx context.Context) ([]gateway.Song, error)
	InsertSong(ctx context.Context, s gateway.Song) (gateway.Song, error)
	UpdateSongStatus(ctx context.Context, id string, status models.AgreementStatus) (gateway.Song, error)
	UpdateSongSyncStatus(ctx context.Context, id string, status models.SyncStatus) (gateway.Song, error)

	Earnings(ctx context.Context) ([]gateway.Earning, error)
	InsertEarning(ctx context.Context, in gateway.EarningInput) (gateway.Earning, error)

	Payouts(ctx context.Context) ([]gateway.PayoutRequest, error)
	InsertPayout(ctx context.Context, amount float64) (gateway.PayoutRequest, error)
	UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus) (gateway.PayoutRequest, error)

	SyncDeals(ctx context.Context) ([]gateway.SyncDeal, error)
	InsertSyncDeal(ctx context.Context, in gateway.SyncDealInput) (gateway.SyncDeal, error)
	UpdateSyncDealStatus(ctx context.Context, id string, status models.DealStatus) (gateway.SyncDeal, error)

	UpsertProfile(ctx context.Context, u gateway.User) (gateway.User, error)
	UpdateUserAccess(ctx context.Context, id string, role models.Role, status models.UserStatus) (gateway.User, error)
	UpdateAgreementTemplate(ctx context.Context, text string) error

	ChatSessions(ctx context.Context) ([]gateway.ChatSession, error)
	ChatMessages(ctx context.Context, sessionID string) ([]gateway.ChatMessage, error)
	SendChatMessage(ctx context.Context, sessionID, text string) (gateway.ChatMessage, error)
	MarkChatSessionRead(ctx context.Context, id string) (gateway.ChatSession, error)

	Subscribe(ctx context.Context) (<-chan gateway.Event, error)

	Summarize(ctx context.Context, text string) (string, error)
	Ask(ctx context.Context, message string, lat, lng *float64) (gateway.AssistantReply, error)
}

type Option func(*Store)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAdminContact sets who is told about new registrations.
func WithAdminContact(email, name string) Option {
	return func(s *Store) {
		s.adminEmail = email
		s.adminName = name
	}
}

func WithMinimumPayout(amount float64) Option {
	return func(s *Store) { s.minimumPayout = amount }
}

type Store struct {
	backend       Backend
	log           logrus.FieldLogger
	now           func() time.Time
	adminEmail    string
	adminName     string
	minimumPayout float64

	mu               sync.RWMutex
	template         string
	templateEditable bool
	currentUser      *gateway.User
	users            []gateway.User
	songs            []gateway.Song
	managedWriters   []gateway.ManagedWriter
	earnings         []gateway.Earning
	payouts          []gateway.PayoutRequest
	syncDeals        []gateway.SyncDeal
	chatSessions     []gateway.ChatSession
	chatMessages     []gateway.ChatMessage

	// side effects such as notification emails
	tasks sync.WaitGroup
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:          backend,
		log:              logrus.StandardLogger(),
		now:              time.Now,
		adminEmail:       "admin@sapmusicgroup.com",
		adminName:        "Admin",
		minimumPayout:    earnings.DefaultMinimumPayout,
		template:         agreement.DefaultTemplate,
		templateEditable: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until every background side effect has finished.
func (s *Store) Wait() {
	s.tasks.Wait()
}

func (s *Store) Template() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// TemplateEditable is false when the template could not be loaded and the
// default is shown instead.
func (s *Store) TemplateEditable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.templateEditable
}

func (s *Store) CurrentUser() *gateway.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

func (s *Store) isAdmin() bool {
	return s.currentUser != nil && s.currentUser.IsAdmin()
}

func (s *Store) Users() []gateway.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.users)
}

func (s *Store) Songs() []gateway.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.songs)
}

func (s *Store) Song(id string) (gateway.Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexByID(s.songs, id, songID); i >= 0 {
		return s.songs[i], true
	}
	return gateway.Song{}, false
}

func (s *Store) ManagedWriters() []gateway.ManagedWriter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.managedWriters)
}

func (s *Store) Earnings() []gateway.Earning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.earnings)
}

func (s *Store) Payouts() []gateway.PayoutRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.payouts)
}

func (s *Store) SyncDeals() []gateway.SyncDeal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.syncDeals)
}

func (s *Store) ChatSessions() []gateway.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.chatSessions)
}

// ChatMessages returns the messages of one session, or all when sessionID
// is empty, oldest first so a thread reads in conversation order.
func (s *Store) ChatMessages(sessionID string) []gateway.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []gateway.ChatMessage
	for _, m := range s.chatMessages {
		if sessionID == "" || m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

// Reset drops all state, as after logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = agreement.DefaultTemplate
	s.templateEditable = true
	s.currentUser = nil
	s.users = nil
	s.songs = nil
	s.managedWriters = nil
	s.earnings = nil
	s.payouts = nil
	s.syncDeals = nil
	s.chatSessions = nil
	s.chatMessages = nil
}

func (s *Store) today() string {
	return models.Today(s.now().UTC())
}

// withAgreement sets the derived agreement text of every song from the
// current template. Caller holds the lock.
func (s *Store) withAgreement(songs []gateway.Song) []gateway.Song {
	for i := range songs {
		songs[i].AgreementText = agreement.Render(s.template, songs[i].RegistrationDate)
	}
	return songs
}

func clone[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
