// internal/appstate/views.go
package appstate

import (
	"github.com/sapmusicgroup/sap-backend/internal/earnings"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

// Summary is what the earnings page shows for the current user.
type Summary struct {
	Lifetime  float64
	Breakdown []earnings.SongBreakdown
	Recent    []gateway.Earning
	Balance   gateway.Balance
}

const recentTransactions = 10

func toEarningsSongs(songs []gateway.Song) []earnings.Song {
	out := make([]earnings.Song, 0, len(songs))
	for _, s := range songs {
		es := earnings.Song{ID: s.ID}
		for _, w := range s.Writers {
			es.Writers = append(es.Writers, earnings.Writer{WriterID: w.WriterID, Name: w.Name, Split: w.Split})
		}
		out = append(out, es)
	}
	return out
}

func toEarnings(in []gateway.Earning) []earnings.Earning {
	out := make([]earnings.Earning, 0, len(in))
	for _, e := range in {
		out = append(out, earnings.Earning{ID: e.ID, SongID: e.SongID, Amount: e.Amount, EarningDate: e.EarningDate})
	}
	return out
}

func toPayouts(in []gateway.PayoutRequest) []earnings.Payout {
	out := make([]earnings.Payout, 0, len(in))
	for _, p := range in {
		out = append(out, earnings.Payout{UserID: p.UserID, Amount: p.Amount, Status: string(p.Status)})
	}
	return out
}

// Balance computes the current user's balance from local state.
func (s *Store) Balance() gateway.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance()
}

func (s *Store) balance() gateway.Balance {
	b := gateway.Balance{MinimumPayout: s.minimumPayout}
	if s.currentUser == nil {
		return b
	}
	payee := earnings.Payee{ID: s.currentUser.ID, Name: s.currentUser.Name}
	payouts := toPayouts(s.payouts)
	b.LifetimeEarnings = earnings.LifetimeShare(payee, toEarningsSongs(s.songs), toEarnings(s.earnings))
	b.TotalRequested = earnings.TotalRequested(payouts, payee.ID)
	b.TotalPaidOut = earnings.TotalPaidOut(payouts, payee.ID)
	b.Available = b.LifetimeEarnings - b.TotalRequested
	return b
}

// EarningsSummary returns the breakdown, the latest transactions and the
// balance of the current user.
func (s *Store) EarningsSummary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.balance()
	out := Summary{Lifetime: b.LifetimeEarnings, Balance: b}
	if s.currentUser == nil {
		return out
	}
	songs := toEarningsSongs(s.songs)
	payee := earnings.Payee{ID: s.currentUser.ID, Name: s.currentUser.Name}
	out.Breakdown = earnings.Breakdown(payee, songs, toEarnings(s.earnings))

	byID := make(map[string]gateway.Earning, len(s.earnings))
	for _, e := range s.earnings {
		byID[e.ID] = e
	}
	for _, e := range earnings.RecentTransactions(songs, toEarnings(s.earnings), recentTransactions) {
		out.Recent = append(out.Recent, byID[e.ID])
	}
	return out
}
