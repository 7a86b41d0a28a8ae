// internal/earnings/earnings.go
//
// Package earnings computes royalty totals, writer shares and payout
// balances. The API server and the client store both use it, so the payout
// rules are the same on both sides.
package earnings

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultMinimumPayout is the smallest withdrawal, in USD.
const DefaultMinimumPayout = 50.0

var (
	ErrInvalidAmount    = errors.New("Please enter a valid amount.")
	ErrExceedsAvailable = errors.New("Requested amount cannot exceed your available balance.")
	// ErrBelowMinimum matches any *BelowMinimumError with errors.Is.
	ErrBelowMinimum = errors.New("below minimum payout")
)

// BelowMinimumError reports a request under the configured minimum.
type BelowMinimumError struct {
	Minimum float64
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("The minimum payout amount is $%.2f.", e.Minimum)
}

func (e *BelowMinimumError) Is(target error) bool {
	return target == ErrBelowMinimum
}

type Writer struct {
	WriterID string
	Name     string
	Split    float64
}

type Song struct {
	ID      string
	Writers []Writer
}

type Earning struct {
	ID          string
	SongID      string
	Amount      float64
	EarningDate string
}

type Payout struct {
	UserID string
	Amount float64
	Status string
}

// Payee identifies the user whose share is computed. A writer entry matches
// when its WriterID equals the payee id or its name equals the payee name.
type Payee struct {
	ID   string
	Name string
}

type SongBreakdown struct {
	SongID        string
	TotalEarnings float64
	UserShare     float64
}

// SongTotal sums the earnings recorded against songID.
func SongTotal(earnings []Earning, songID string) float64 {
	var total float64
	for _, e := range earnings {
		if e.SongID == songID {
			total += e.Amount
		}
	}
	return total
}

func TotalsBySong(earnings []Earning) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range earnings {
		totals[e.SongID] += e.Amount
	}
	return totals
}

// WriterShare returns the payee's fraction (0..1) of a song, taken from the
// first matching writer entry.
func WriterShare(song Song, payee Payee) (float64, bool) {
	for _, w := range song.Writers {
		if (w.WriterID != "" && w.WriterID == payee.ID) || (w.Name != "" && w.Name == payee.Name) {
			return w.Split / 100, true
		}
	}
	return 0, false
}

// Breakdown lists every song the payee writes on with its total and the
// payee's share of it.
func Breakdown(payee Payee, songs []Song, earnings []Earning) []SongBreakdown {
	totals := TotalsBySong(earnings)
	var out []SongBreakdown
	for _, song := range songs {
		share, ok := WriterShare(song, payee)
		if !ok {
			continue
		}
		total := totals[song.ID]
		out = append(out, SongBreakdown{SongID: song.ID, TotalEarnings: total, UserShare: total * share})
	}
	return out
}

// LifetimeShare sums, across songs, the song total times the payee's split.
func LifetimeShare(payee Payee, songs []Song, earnings []Earning) float64 {
	var total float64
	for _, b := range Breakdown(payee, songs, earnings) {
		total += b.UserShare
	}
	return total
}

// TotalRequested sums the payee's payout requests in every status, so a
// pending request already reserves its amount.
func TotalRequested(payouts []Payout, userID string) float64 {
	var total float64
	for _, p := range payouts {
		if p.UserID == userID {
			total += p.Amount
		}
	}
	return total
}

// TotalPaidOut sums approved and paid requests.
func TotalPaidOut(payouts []Payout, userID string) float64 {
	var total float64
	for _, p := range payouts {
		if p.UserID == userID && (p.Status == "approved" || p.Status == "paid") {
			total += p.Amount
		}
	}
	return total
}

func AvailableBalance(payee Payee, songs []Song, earnings []Earning, payouts []Payout) float64 {
	return LifetimeShare(payee, songs, earnings) - TotalRequested(payouts, payee.ID)
}

// RecentTransactions returns up to n earnings on the given songs, newest
// earning date first.
func RecentTransactions(songs []Song, earnings []Earning, n int) []Earning {
	ids := make(map[string]struct{}, len(songs))
	for _, s := range songs {
		ids[s.ID] = struct{}{}
	}
	var out []Earning
	for _, e := range earnings {
		if _, ok := ids[e.SongID]; ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarningDate > out[j].EarningDate })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ValidatePayout checks a requested amount against the minimum and the
// available balance. Amounts are compared in whole cents.
func ValidatePayout(amount, minimum, available float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || cents(amount) <= 0 {
		return ErrInvalidAmount
	}
	if cents(amount) < cents(minimum) {
		return &BelowMinimumError{Minimum: minimum}
	}
	if cents(amount) > cents(available) {
		return ErrExceedsAvailable
	}
	return nil
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
