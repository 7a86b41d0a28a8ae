// internal/services/payout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/payout"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/earnings"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// PayoutProcessor moves money for an approved request and returns the
// processor's reference.
type PayoutProcessor interface {
	Pay(ctx context.Context, req *models.PayoutRequest) (string, error)
}

type PayoutService struct {
	db        *gorm.DB
	processor PayoutProcessor
	minimum   float64
	now       func() time.Time
}

type CreatePayoutRequest struct {
	Amount float64 `json:"amount"`
}

type UpdatePayoutStatusRequest struct {
	Status models.PayoutStatus `json:"status" validate:"required"`
}

// Balance is a payee's funds as the server computes them.
type Balance struct {
	LifetimeEarnings float64 `json:"lifetime_earnings"`
	TotalRequested   float64 `json:"total_requested"`
	TotalPaidOut     float64 `json:"total_paid_out"`
	Available        float64 `json:"available"`
	MinimumPayout    float64 `json:"minimum_payout"`
}

// payoutTransitions lists the allowed next status for each status.
var payoutTransitions = map[models.PayoutStatus]models.PayoutStatus{
	models.PayoutStatusPending:  models.PayoutStatusApproved,
	models.PayoutStatusApproved: models.PayoutStatusPaid,
}

func NewPayoutService(db *gorm.DB, cfg *config.Config) *PayoutService {
	var processor PayoutProcessor = ManualProcessor{}
	if cfg.Payment.StripeSecretKey != "" {
		processor = NewStripeProcessor(cfg.Payment.StripeSecretKey, cfg.Payment.Currency)
	}
	return NewPayoutServiceWithProcessor(db, processor, cfg.Payment.MinimumPayout)
}

func NewPayoutServiceWithProcessor(db *gorm.DB, processor PayoutProcessor, minimum float64) *PayoutService {
	return &PayoutService{db: db, processor: processor, minimum: minimum, now: time.Now}
}

func (s *PayoutService) Minimum() float64 {
	return s.minimum
}

func (s *PayoutService) List(actor Actor) ([]models.PayoutRequest, error) {
	var out []models.PayoutRequest
	if err := scope(s.db, actor, "user_id").Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return out, nil
}

func (s *PayoutService) Balance(actor Actor) (*Balance, error) {
	return s.balance(s.db, actor)
}

// balance computes the actor's funds from the actor's own songs, the
// earnings on them and every payout request the actor has made.
func (s *PayoutService) balance(tx *gorm.DB, actor Actor) (*Balance, error) {
	var songs []models.Song
	if err := tx.Select("id", "writers_data").Where("creator_id = ?", actor.ID).Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(songs))
	for _, song := range songs {
		ids = append(ids, song.ID)
	}

	var rows []models.Earning
	if len(ids) > 0 {
		if err := tx.Select("id", "song_id", "amount", "earning_date").Where("song_id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	var requests []models.PayoutRequest
	if err := tx.Select("user_id", "amount", "status").Where("user_id = ?", actor.ID).Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	payee := earnings.Payee{ID: actor.ID.String(), Name: s.payeeName(tx, actor)}
	payouts := toPayouts(requests)
	b := &Balance{
		LifetimeEarnings: earnings.LifetimeShare(payee, toEarningsSongs(songs), toEarnings(rows)),
		TotalRequested:   earnings.TotalRequested(payouts, payee.ID),
		TotalPaidOut:     earnings.TotalPaidOut(payouts, payee.ID),
		MinimumPayout:    s.minimum,
	}
	b.Available = b.LifetimeEarnings - b.TotalRequested
	return b, nil
}

// payeeName prefers the profile name, which is what writer entries carry.
func (s *PayoutService) payeeName(tx *gorm.DB, actor Actor) string {
	var profile models.User
	if err := tx.Select("name").First(&profile, "id = ?", actor.ID).Error; err == nil && profile.Name != "" {
		return profile.Name
	}
	return actor.Name
}

// Request files a withdrawal. The balance check and the insert run in one
// transaction holding the account row.
func (s *PayoutService) Request(actor Actor, req *CreatePayoutRequest) (*models.PayoutRequest, error) {
	var created *models.PayoutRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var acct models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&acct, "id = ?", actor.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		b, err := s.balance(tx, actor)
		if err != nil {
			return err
		}
		if err := earnings.ValidatePayout(req.Amount, s.minimum, b.Available); err != nil {
			return err
		}

		created = &models.PayoutRequest{
			UserID:      actor.ID,
			Amount:      math.Round(req.Amount*100) / 100,
			RequestDate: models.Today(s.now().UTC()),
			Status:      models.PayoutStatusPending,
		}
		if err := tx.Create(created).Error; err != nil {
			return fmt.Errorf("failed to create payout request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStatus advances a request one step. The move is claimed with a
// conditional update so only one caller wins it; moving to paid then runs
// the processor and hands the claim back to approved when it fails.
func (s *PayoutService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status models.PayoutStatus) (*models.PayoutRequest, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var req models.PayoutRequest
	if err := s.db.First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if next, ok := payoutTransitions[req.Status]; !ok || next != status {
		return nil, &TransitionError{From: string(req.Status), To: string(status)}
	}

	from := req.Status
	if err := s.claim(id, from, status); err != nil {
		return nil, err
	}
	req.Status = status
	if status != models.PayoutStatusPaid {
		return &req, nil
	}

	ref, err := s.processor.Pay(ctx, &req)
	if err != nil {
		logrus.WithError(err).WithField("payout_id", req.ID).Error("Payout processing failed")
		if rerr := s.db.Model(&models.PayoutRequest{}).
			Where("id = ? AND status = ?", id, status).
			Update("status", from).Error; rerr != nil {
			logrus.WithError(rerr).WithField("payout_id", req.ID).Error("Failed to release payout claim")
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	now := s.now()
	req.Reference = ref
	req.PaidAt = &now
	if err := s.db.Model(&models.PayoutRequest{}).Where("id = ?", id).
		Updates(map[string]interface{}{"reference": ref, "paid_at": &now}).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"payout_id": req.ID, "reference": ref}).Error("Paid payout reference not stored")
		return nil, fmt.Errorf("failed to update payout: %w", err)
	}
	return &req, nil
}

// claim moves a request from one status to the next only if nobody moved
// it first.
func (s *PayoutService) claim(id uuid.UUID, from, to models.PayoutStatus) error {
	res := s.db.Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update payout: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var current models.PayoutRequest
	if err := s.db.Select("status").First(&current, "id = ?", id).Error; err != nil {
		return &TransitionError{From: string(from), To: string(to)}
	}
	return &TransitionError{From: string(current.Status), To: string(to)}
}

// TransitionError reports a status move that is not allowed.
type TransitionError struct {
	From, To string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type StripeProcessor struct {
	currency string
}

func NewStripeProcessor(secretKey, currency string) *StripeProcessor {
	stripe.Key = secretKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeProcessor{currency: currency}
}

func (p *StripeProcessor) Pay(ctx context.Context, req *models.PayoutRequest) (string, error) {
	params := &stripe.PayoutParams{
		Amount:      stripe.Int64(int64(math.Round(req.Amount * 100))),
		Currency:    stripe.String(p.currency),
		Description: stripe.String("Royalty payout " + req.ID.String()),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.ID.String())
	params.AddMetadata("payout_request_id", req.ID.String())
	params.AddMetadata("user_id", req.UserID.String())

	po, err := payout.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payout: %w", err)
	}
	return po.ID, nil
}

// ManualProcessor is used when payouts are settled outside the system.
type ManualProcessor struct{}

func (ManualProcessor) Pay(_ context.Context, _ *models.PayoutRequest) (string, error) {
	return utils.GenerateReference("manual")
}

func toEarningsSongs(songs []models.Song) []earnings.Song {
	out := make([]earnings.Song, 0, len(songs))
	for _, s := range songs {
		es := earnings.Song{ID: s.ID.String()}
		for _, w := range s.WritersData {
			es.Writers = append(es.Writers, earnings.Writer{WriterID: w.WriterID, Name: w.Name, Split: w.Split})
		}
		out = append(out, es)
	}
	return out
}

func toEarnings(rows []models.Earning) []earnings.Earning {
	out := make([]earnings.Earning, 0, len(rows))
	for _, e := range rows {
		out = append(out, earnings.Earning{ID: e.ID.String(), SongID: e.SongID.String(), Amount: e.Amount, EarningDate: e.EarningDate})
	}
	return out
}

func toPayouts(rows []models.PayoutRequest) []earnings.Payout {
	out := make([]earnings.Payout, 0, len(rows))
	for _, p := range rows {
		out = append(out, earnings.Payout{UserID: p.UserID.String(), Amount: p.Amount, Status: string(p.Status)})
	}
	return out
}
