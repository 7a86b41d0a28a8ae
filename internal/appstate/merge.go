// internal/appstate/merge.go
package appstate

import (
	"sort"

	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

func songID(v gateway.Song) string               { return v.ID }
func writerID(v gateway.ManagedWriter) string    { return v.ID }
func earningID(v gateway.Earning) string         { return v.ID }
func payoutID(v gateway.PayoutRequest) string    { return v.ID }
func dealID(v gateway.SyncDeal) string           { return v.ID }
func sessionID(v gateway.ChatSession) string     { return v.ID }
func messageID(v gateway.ChatMessage) string     { return v.ID }
func userID(v gateway.User) string               { return v.ID }
func earningNewer(a, b gateway.Earning) bool     { return a.CreatedAt.After(b.CreatedAt) }
func sessionNewer(a, b gateway.ChatSession) bool { return a.Timestamp.After(b.Timestamp) }
func messageOlder(a, b gateway.ChatMessage) bool { return a.Timestamp.Before(b.Timestamp) }

func indexByID[T any](items []T, id string, key func(T) string) int {
	for i, v := range items {
		if key(v) == id {
			return i
		}
	}
	return -1
}

// prependUnique adds v at the front unless an item with its id is present.
func prependUnique[T any](items []T, v T, key func(T) string) ([]T, bool) {
	if indexByID(items, key(v), key) >= 0 {
		return items, false
	}
	return append([]T{v}, items...), true
}

// insertSorted adds v unless its id is present and keeps items ordered
// by before. Collections use a newer-first comparator; chat threads read
// oldest first.
func insertSorted[T any](items []T, v T, key func(T) string, before func(a, b T) bool) ([]T, bool) {
	out, added := prependUnique(items, v, key)
	if !added {
		return items, false
	}
	sortBy(out, before)
	return out, true
}

// replace swaps in v for the item with the same id and reports whether
// one was found.
func replace[T any](items []T, v T, key func(T) string) bool {
	i := indexByID(items, key(v), key)
	if i < 0 {
		return false
	}
	items[i] = v
	return true
}

func sortBy[T any](items []T, before func(a, b T) bool) {
	sort.SliceStable(items, func(i, j int) bool { return before(items[i], items[j]) })
}
