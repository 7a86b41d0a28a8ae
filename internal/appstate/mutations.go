// internal/appstate/mutations.go
package appstate

import (
	"context"
	"fmt"

	"github.com/sapmusicgroup/sap-backend/internal/agreement"
	"github.com/sapmusicgroup/sap-backend/internal/earnings"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

func (s *Store) requireUser() (gateway.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return gateway.User{}, ErrNoUser
	}
	return *s.currentUser, nil
}

func (s *Store) requireAdmin() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isAdmin() {
		return ErrForbidden
	}
	return nil
}

// RegisterSong saves a new song, adds it to the front of the list and tells
// the admin it awaits review.
func (s *Store) RegisterSong(ctx context.Context, song gateway.Song) (gateway.Song, error) {
	user, err := s.requireUser()
	if err != nil {
		return gateway.Song{}, err
	}
	if song.UserID == "" {
		song.UserID = user.ID
	}
	saved, err := s.backend.InsertSong(ctx, song)
	if err != nil {
		s.log.WithError(err).WithField("title", song.Title).Error("Error registering song")
		return gateway.Song{}, err
	}

	s.mu.Lock()
	saved = s.withAgreement([]gateway.Song{saved})[0]
	s.songs, _ = prependUnique(s.songs, saved, songID)
	s.mu.Unlock()

	s.notify(gateway.EmailRequest{
		UserEmail: s.adminEmail,
		UserName:  s.adminName,
		SongTitle: saved.Title,
		NewStatus: gateway.PendingAdminNotification,
	})
	return saved, nil
}

// AddManagedWriter saves a writer to the caller's library.
func (s *Store) AddManagedWriter(ctx context.Context, in gateway.ManagedWriterInput) (*gateway.ManagedWriter, error) {
	if _, err := s.requireUser(); err != nil {
		return nil, err
	}
	mw, err := s.backend.InsertManagedWriter(ctx, in)
	if err != nil {
		s.log.WithError(err).WithField("name", in.Name).Error("Error adding managed writer")
		return nil, err
	}
	s.mu.Lock()
	if indexByID(s.managedWriters, mw.ID, writerID) < 0 {
		s.managedWriters = append(s.managedWriters, mw)
	}
	s.mu.Unlock()
	return &mw, nil
}

// statusNotified lists the agreement statuses the owner is emailed about.
var statusNotified = map[models.AgreementStatus]bool{
	models.AgreementStatusActive:   true,
	models.AgreementStatusRejected: true,
	models.AgreementStatusExpired:  true,
}

// UpdateSongStatus sets a song's agreement status and emails the owner for
// approvals, rejections and expiry. The email is sent in the background and
// its failure does not affect the update.
func (s *Store) UpdateSongStatus(ctx context.Context, id string, status models.AgreementStatus) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	return s.setSongStatus(ctx, id, status, true)
}

// ResubmitSong puts a rejected or expired song back in review and tells
// the admin it is waiting.
func (s *Store) ResubmitSong(ctx context.Context, id string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}
	if err := s.setSongStatus(ctx, id, models.AgreementStatusPending, false); err != nil {
		return err
	}

	song, ok := s.Song(id)
	if !ok {
		s.log.WithField("song_id", id).Debug("Resubmitted song not loaded, skipping admin email")
		return nil
	}
	s.notify(gateway.EmailRequest{
		UserEmail: s.adminEmail,
		UserName:  s.adminName,
		SongTitle: song.Title,
		NewStatus: gateway.PendingAdminNotification,
	})
	return nil
}

func (s *Store) setSongStatus(ctx context.Context, id string, status models.AgreementStatus, notifyOwner bool) error {
	if !status.Valid() {
		return fmt.Errorf("appstate: invalid status %q", status)
	}
	if _, err := s.backend.UpdateSongStatus(ctx, id, status); err != nil {
		s.log.WithError(err).WithField("song_id", id).Error("Error updating song status")
		return err
	}

	s.mu.Lock()
	var (
		song  gateway.Song
		owner gateway.User
		found bool
		known bool
	)
	if i := indexByID(s.songs, id, songID); i >= 0 {
		song, found = s.songs[i], true
		s.songs[i].Status = status
		if j := indexByID(s.users, song.UserID, userID); j >= 0 {
			owner, known = s.users[j], true
		}
	}
	s.mu.Unlock()

	if !notifyOwner || !statusNotified[status] {
		return nil
	}
	if !found || !known {
		s.log.WithField("song_id", id).Debug("Song owner not in roster, skipping status email")
		return nil
	}
	s.notify(gateway.EmailRequest{
		UserEmail: owner.Email,
		UserName:  owner.Name,
		SongTitle: song.Title,
		NewStatus: string(status),
	})
	return nil
}

func (s *Store) UpdateSongSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("appstate: invalid sync status %q", status)
	}
	if _, err := s.backend.UpdateSongSyncStatus(ctx, id, status); err != nil {
		s.log.WithError(err).WithField("song_id", id).Error("Error updating sync status")
		return err
	}
	s.mu.Lock()
	if i := indexByID(s.songs, id, songID); i >= 0 {
		s.songs[i].SyncStatus = status
	}
	s.mu.Unlock()
	return nil
}

// AddEarning records royalty income. The realtime feed echoes the row as
// well; whichever arrives second is ignored.
func (s *Store) AddEarning(ctx context.Context, in gateway.EarningInput) (gateway.Earning, error) {
	if err := s.requireAdmin(); err != nil {
		return gateway.Earning{}, err
	}
	if in.EarningDate == "" {
		in.EarningDate = s.today()
	}
	e, err := s.backend.InsertEarning(ctx, in)
	if err != nil {
		s.log.WithError(err).WithField("song_id", in.SongID).Error("Error adding earning record")
		return gateway.Earning{}, err
	}
	s.mergeEarning(e)
	return e, nil
}

// UpdateUser saves a profile. The saved user replaces the current user when
// it is the caller and is replaced or appended in the roster.
func (s *Store) UpdateUser(ctx context.Context, u gateway.User) (gateway.User, error) {
	if _, err := s.requireUser(); err != nil {
		return gateway.User{}, err
	}
	saved, err := s.backend.UpsertProfile(ctx, u)
	if err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Error("Error upserting user profile")
		return gateway.User{}, err
	}
	saved.HasProfile = true

	s.mu.Lock()
	if s.currentUser != nil && s.currentUser.ID == saved.ID {
		cu := saved
		s.currentUser = &cu
	}
	if !replace(s.users, saved, userID) {
		s.users = append(s.users, saved)
	}
	s.mu.Unlock()
	return saved, nil
}

// UpdateUserAccess changes another user's role or status.
func (s *Store) UpdateUserAccess(ctx context.Context, id string, role models.Role, status models.UserStatus) (gateway.User, error) {
	if err := s.requireAdmin(); err != nil {
		return gateway.User{}, err
	}
	saved, err := s.backend.UpdateUserAccess(ctx, id, role, status)
	if err != nil {
		return gateway.User{}, err
	}
	s.mu.Lock()
	if !replace(s.users, saved, userID) {
		s.users = append(s.users, saved)
	}
	s.mu.Unlock()
	return saved, nil
}

// CreateUser provisions an account and lists it in the roster until its
// profile is saved.
func (s *Store) CreateUser(ctx context.Context, name, email, password string) (gateway.User, error) {
	if err := s.requireAdmin(); err != nil {
		return gateway.User{}, err
	}
	acct, err := s.backend.CreateUser(ctx, name, email, password)
	if err != nil {
		return gateway.User{}, err
	}
	u := gateway.User{
		ID:     acct.ID,
		Name:   acct.Name,
		Email:  acct.Email,
		Role:   models.RoleUser,
		Status: models.UserStatusActive,
	}
	s.mu.Lock()
	if indexByID(s.users, u.ID, userID) < 0 {
		s.users = append(s.users, u)
	}
	s.mu.Unlock()
	return u, nil
}

// CreateDeal offers a sync deal. It starts offered and dated today.
func (s *Store) CreateDeal(ctx context.Context, in gateway.SyncDealInput) (gateway.SyncDeal, error) {
	if err := s.requireAdmin(); err != nil {
		return gateway.SyncDeal{}, err
	}
	d, err := s.backend.InsertSyncDeal(ctx, in)
	if err != nil {
		return gateway.SyncDeal{}, err
	}
	s.mu.Lock()
	s.syncDeals, _ = prependUnique(s.syncDeals, d, dealID)
	s.mu.Unlock()
	return d, nil
}

func (s *Store) UpdateDealStatus(ctx context.Context, id string, status models.DealStatus) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("appstate: invalid deal status %q", status)
	}
	d, err := s.backend.UpdateSyncDealStatus(ctx, id, status)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if !replace(s.syncDeals, d, dealID) {
		if i := indexByID(s.syncDeals, id, dealID); i >= 0 {
			s.syncDeals[i].Status = status
		}
	}
	s.mu.Unlock()
	return nil
}

// UpdateAgreementTemplate stores new template text and re-renders the
// agreement of every song.
func (s *Store) UpdateAgreementTemplate(ctx context.Context, text string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	if err := s.backend.UpdateAgreementTemplate(ctx, text); err != nil {
		s.log.WithError(err).Error("Error saving agreement template")
		return err
	}
	s.mu.Lock()
	s.template = text
	s.templateEditable = true
	s.songs = s.withAgreement(s.songs)
	s.mu.Unlock()
	return nil
}

// SendChatMessage posts text to a session; an empty sessionID posts to the
// caller's own session.
func (s *Store) SendChatMessage(ctx context.Context, sessionID, text string) (gateway.ChatMessage, error) {
	if _, err := s.requireUser(); err != nil {
		return gateway.ChatMessage{}, err
	}
	m, err := s.backend.SendChatMessage(ctx, sessionID, text)
	if err != nil {
		return gateway.ChatMessage{}, err
	}
	s.mergeMessage(m)
	return m, nil
}

// MarkSessionRead flags a support session as read by the admin. Sessions
// already read are left alone.
func (s *Store) MarkSessionRead(ctx context.Context, id string) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	s.mu.RLock()
	i := indexByID(s.chatSessions, id, sessionID)
	already := i >= 0 && s.chatSessions[i].IsReadByAdmin
	s.mu.RUnlock()
	if i < 0 {
		return ErrNotFound
	}
	if already {
		return nil
	}
	cs, err := s.backend.MarkChatSessionRead(ctx, id)
	if err != nil {
		return err
	}
	s.mergeSession(gateway.EventUpdate, cs)
	return nil
}

// RequestPayout validates amount against the caller's available balance
// and files the request.
func (s *Store) RequestPayout(ctx context.Context, amount float64) (gateway.PayoutRequest, error) {
	user, err := s.requireUser()
	if err != nil {
		return gateway.PayoutRequest{}, err
	}
	if err := earnings.ValidatePayout(amount, s.minimumPayout, s.Balance().Available); err != nil {
		return gateway.PayoutRequest{}, err
	}
	p, err := s.backend.InsertPayout(ctx, amount)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("Error requesting payout")
		return gateway.PayoutRequest{}, err
	}
	s.mu.Lock()
	s.payouts, _ = prependUnique(s.payouts, p, payoutID)
	s.mu.Unlock()
	return p, nil
}

func (s *Store) UpdatePayoutStatus(ctx context.Context, id string, status models.PayoutStatus) error {
	if err := s.requireAdmin(); err != nil {
		return err
	}
	p, err := s.backend.UpdatePayoutStatus(ctx, id, status)
	if err != nil {
		return err
	}
	s.mu.Lock()
	replace(s.payouts, p, payoutID)
	s.mu.Unlock()
	return nil
}

// Summarize explains agreement text in plain language. An empty text
// summarizes the current template.
func (s *Store) Summarize(ctx context.Context, text string) (string, error) {
	if text == "" {
		text = agreement.Render(s.Template(), s.today())
	}
	return s.backend.Summarize(ctx, text)
}

// AskAssistant sends one message to the generative assistant.
func (s *Store) AskAssistant(ctx context.Context, message string, lat, lng *float64) (gateway.AssistantReply, error) {
	return s.backend.Ask(ctx, message, lat, lng)
}
