// internal/gateway/mapping.go
package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/sapmusicgroup/sap-backend/internal/casing"
	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// Column names that differ between the songs table and the client model.
var songFromRow = map[string]string{
	"creatorId":   "userId",
	"mainArtist":  "artist",
	"writersData": "writers",
}

func rename(m map[string]any, names map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if to, ok := names[k]; ok {
			k = to
		}
		out[k] = v
	}
	return out
}

func invert(names map[string]string) map[string]string {
	out := make(map[string]string, len(names))
	for k, v := range names {
		out[v] = k
	}
	return out
}

func asObject(raw any) (map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("gateway: expected object, got %T", raw)
	}
	return m, nil
}

func decodeAs[T any](v any) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("gateway: map %T: %w", out, err)
	}
	return out, nil
}

func mapList[T any](raw any, mapOne func(any) (T, error)) ([]T, error) {
	if raw == nil {
		return []T{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("gateway: expected list, got %T", raw)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := mapOne(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func mapField[T any](raw any, key string, mapOne func(any) (T, error)) (T, error) {
	var zero T
	m, err := asObject(raw)
	if err != nil {
		return zero, err
	}
	return mapOne(m[key])
}

// MapSong maps a camelCased songs row. Any agreement text in the row is
// dropped; it is derived from the template by the caller.
func MapSong(raw any) (Song, error) {
	m, err := asObject(raw)
	if err != nil {
		return Song{}, err
	}
	m = rename(m, songFromRow)
	delete(m, "agreementText")
	return decodeAs[Song](m)
}

// MapUser rebuilds a profile row into a User. The flat payout columns become
// the PayPal or bank variant. Rows are profiles unless they say otherwise.
func MapUser(raw any) (User, error) {
	m, err := asObject(raw)
	if err != nil {
		return User{}, err
	}
	u, err := decodeAs[User](m)
	if err != nil {
		return User{}, err
	}
	u.HasProfile = true
	if v, ok := m["hasProfile"].(bool); ok {
		u.HasProfile = v
	}

	str := func(k string) string {
		s, _ := m[k].(string)
		return s
	}
	switch models.PayoutType(str("payoutType")) {
	case models.PayoutTypePayPal:
		if email := str("paypalEmail"); email != "" {
			u.PayoutMethod = PayPalDetails{Email: email}
		}
	case models.PayoutTypeBank:
		u.PayoutMethod = BankDetails{
			AccountHolderName: str("accountHolderName"),
			BankName:          str("bankName"),
			SwiftBic:          str("swiftBic"),
			AccountNumberIban: str("accountNumberIban"),
			Country:           str("country"),
		}
	}
	return u, nil
}

func MapManagedWriter(raw any) (ManagedWriter, error) { return decodeAs[ManagedWriter](raw) }
func MapEarning(raw any) (Earning, error)             { return decodeAs[Earning](raw) }
func MapPayout(raw any) (PayoutRequest, error)        { return decodeAs[PayoutRequest](raw) }
func MapSyncDeal(raw any) (SyncDeal, error)           { return decodeAs[SyncDeal](raw) }
func MapChatSession(raw any) (ChatSession, error)     { return decodeAs[ChatSession](raw) }
func MapChatMessage(raw any) (ChatMessage, error)     { return decodeAs[ChatMessage](raw) }

// songRow encodes a song for insert in the storage convention. The id and
// agreement text are assigned elsewhere.
func songRow(s Song) (map[string]any, error) {
	m, err := decodeAs[map[string]any](s)
	if err != nil {
		return nil, err
	}
	delete(m, "id")
	delete(m, "agreementText")
	delete(m, "createdAt")
	m = rename(m, invert(songFromRow))
	return casing.ToSnake(m).(map[string]any), nil
}

// profileRow encodes a user for upsert. Setting one payout variant nulls
// every column of the other.
func profileRow(u User) map[string]any {
	m := map[string]any{
		"id":     u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"role":   u.Role,
		"status": u.Status,
	}
	switch pm := u.PayoutMethod.(type) {
	case PayPalDetails:
		m["payoutType"] = pm.Method()
		m["paypalEmail"] = pm.Email
		for _, k := range []string{"accountHolderName", "bankName", "swiftBic", "accountNumberIban", "country"} {
			m[k] = nil
		}
	case BankDetails:
		m["payoutType"] = pm.Method()
		m["paypalEmail"] = nil
		m["accountHolderName"] = pm.AccountHolderName
		m["bankName"] = pm.BankName
		m["swiftBic"] = pm.SwiftBic
		m["accountNumberIban"] = pm.AccountNumberIban
		m["country"] = pm.Country
	}
	return casing.ToSnake(m).(map[string]any)
}

// row snake-cases a client-side request body.
func row(v any) (map[string]any, error) {
	m, err := decodeAs[map[string]any](v)
	if err != nil {
		return nil, err
	}
	return casing.ToSnake(m).(map[string]any), nil
}
