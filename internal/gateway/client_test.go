// internal/gateway/client_test.go
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recorded
}

func (r *recorder) add(rec recorded) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, rec)
}

func (r *recorder) at(i int) recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reqs[i]
}

// fakeServer answers each path with a fixed envelope and records requests.
func fakeServer(t *testing.T, routes map[string]string) (*httptest.Server, *recorder) {
	t.Helper()
	seen := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		seen.add(rec)

		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"no route"}}`))
			return
		}
		status := http.StatusOK
		if strings.HasPrefix(resp, "!") {
			status = http.StatusBadRequest
			resp = resp[1:]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func loggedIn(srv *httptest.Server) *Client {
	return New(srv.URL, WithSession(&Session{AccessToken: "tok", User: SessionUser{ID: "u1"}}))
}

func TestLoginStoresSession(t *testing.T) {
	srv, seen := fakeServer(t, map[string]string{
		"POST /v1/auth/login": `{"success":true,"data":{"access_token":"abc","refresh_token":"ref","expires_at":"2030-01-01T00:00:00Z","user":{"id":"u1","email":"a@b.c","name":"Ann"}}}`,
		"GET /v1/songs":       `{"success":true,"data":[]}`,
	})
	c := New(srv.URL)

	s, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", s.AccessToken)
	assert.Equal(t, "ref", s.RefreshToken)
	assert.Equal(t, "Ann", s.User.Name)
	assert.Equal(t, "abc", c.Session().AccessToken)

	_, err = c.Songs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", seen.at(1).auth)
}

func TestCallsWithoutSession(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Songs(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSongsAreMappedToClientModel(t *testing.T) {
	srv, _ := fakeServer(t, map[string]string{
		"GET /v1/songs": `{"success":true,"data":[{
			"id":"s1","creator_id":"u1","title":"Song","main_artist":"Artist",
			"artwork_url":"https://x.io/a.png","registration_date":"2024-05-01",
			"writers_data":[{"id":"w1","writer_id":"mw1","name":"Ann","role":["Composer"],"split":100,"agreed":true,"collect_on_behalf":true,"dob":"1990-01-01","society":"ASCAP","ipi":"123456789"}],
			"signature_data":"data:image/png;base64,xx","status":"pending","sync_status":"none",
			"duration":null,"isrc":"USABC1234567","agreement_text":"stale"}]}`,
	})

	songs, err := loggedIn(srv).Songs(context.Background())
	require.NoError(t, err)
	require.Len(t, songs, 1)
	s := songs[0]
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "Artist", s.Artist)
	assert.Equal(t, "https://x.io/a.png", s.ArtworkURL)
	assert.Equal(t, models.AgreementStatusPending, s.Status)
	assert.Equal(t, models.SyncStatusNone, s.SyncStatus)
	assert.Empty(t, s.AgreementText)
	assert.Empty(t, s.Duration)
	require.Len(t, s.Writers, 1)
	assert.Equal(t, "mw1", s.Writers[0].WriterID)
	assert.True(t, s.Writers[0].CollectOnBehalf)
	assert.Equal(t, []string{"Composer"}, s.Writers[0].Role)
}

func TestInsertSongSendsStorageKeys(t *testing.T) {
	srv, seen := fakeServer(t, map[string]string{
		"POST /v1/songs": `{"success":true,"data":{"id":"s9","creator_id":"u1","title":"T","main_artist":"A","writers_data":[]}}`,
	})

	in := Song{
		UserID: "u1", Title: "T", Artist: "A", RegistrationDate: "2024-05-01",
		Writers:       []Writer{{ID: "w1", WriterID: "mw1", Name: "Ann", Split: 100, CollectOnBehalf: true}},
		AgreementText: "not sent",
		Status:        models.AgreementStatusPending,
		SyncStatus:    models.SyncStatusPending,
	}
	out, err := loggedIn(srv).InsertSong(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "s9", out.ID)

	body := seen.at(0).body
	assert.Equal(t, "u1", body["creator_id"])
	assert.Equal(t, "A", body["main_artist"])
	assert.Equal(t, "pending", body["sync_status"])
	assert.NotContains(t, body, "agreement_text")
	assert.NotContains(t, body, "id")
	w := body["writers_data"].([]any)[0].(map[string]any)
	assert.Equal(t, "mw1", w["writer_id"])
	assert.Equal(t, true, w["collect_on_behalf"])
}

func TestUserProfile(t *testing.T) {
	t.Run("no profile yet", func(t *testing.T) {
		srv, _ := fakeServer(t, map[string]string{
			"GET /v1/functions/get-user-profile": `{"success":true,"data":{"user":null}}`,
		})
		u, err := loggedIn(srv).UserProfile(context.Background())
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("bank details", func(t *testing.T) {
		srv, _ := fakeServer(t, map[string]string{
			"GET /v1/functions/get-user-profile": `{"success":true,"data":{"user":{
				"id":"u1","name":"Ann","email":"a@b.c","role":"admin","status":"active",
				"payout_type":"bank","account_holder_name":"Ann","bank_name":"B","swift_bic":"SW","account_number_iban":"IB","country":"DE"}}}`,
		})
		u, err := loggedIn(srv).UserProfile(context.Background())
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.True(t, u.IsAdmin())
		assert.True(t, u.HasProfile)
		assert.Equal(t, BankDetails{AccountHolderName: "Ann", BankName: "B", SwiftBic: "SW", AccountNumberIban: "IB", Country: "DE"}, u.PayoutMethod)
	})
}

func TestMapUserPayPalNeedsEmail(t *testing.T) {
	u, err := MapUser(map[string]any{"id": "u1", "payoutType": "paypal"})
	require.NoError(t, err)
	assert.Nil(t, u.PayoutMethod)

	u, err = MapUser(map[string]any{"id": "u1", "payoutType": "paypal", "paypalEmail": "p@x.y"})
	require.NoError(t, err)
	assert.Equal(t, PayPalDetails{Email: "p@x.y"}, u.PayoutMethod)
}

func TestAllUsersKeepsHasProfileFlag(t *testing.T) {
	srv, _ := fakeServer(t, map[string]string{
		"GET /v1/functions/get-all-users": `{"success":true,"data":{"users":[
			{"id":"u1","name":"Ann","role":"user","status":"active"},
			{"id":"u2","name":"","email":"new@x.y","role":"user","status":"active","has_profile":false}]}}`,
	})
	users, err := loggedIn(srv).AllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].HasProfile)
	assert.False(t, users[1].HasProfile)
}

func TestUpsertProfileNullsOtherVariant(t *testing.T) {
	srv, seen := fakeServer(t, map[string]string{
		"PUT /v1/users/profile": `{"success":true,"data":{"id":"u1","name":"Ann","payout_type":"paypal","paypal_email":"p@x.y"}}`,
	})
	u := User{ID: "u1", Name: "Ann", Role: models.RoleUser, Status: models.UserStatusActive, PayoutMethod: PayPalDetails{Email: "p@x.y"}}

	out, err := loggedIn(srv).UpsertProfile(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, PayPalDetails{Email: "p@x.y"}, out.PayoutMethod)

	body := seen.at(0).body
	assert.Equal(t, "paypal", body["payout_type"])
	assert.Equal(t, "p@x.y", body["paypal_email"])
	for _, k := range []string{"account_holder_name", "bank_name", "swift_bic", "account_number_iban", "country"} {
		v, ok := body[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
}

func TestDatabaseErrorIsTyped(t *testing.T) {
	srv, _ := fakeServer(t, map[string]string{
		"POST /v1/songs": `!{"success":false,"error":{"code":"DB_ERROR","message":"new row violates check constraint \"songs_duration_format_chk\"","details":{"details":"Failing row","hint":"","code":"23514"}}}`,
	})
	_, err := loggedIn(srv).InsertSong(context.Background(), Song{Title: "T"})

	var dbErr *DBError
	require.True(t, errors.As(err, &dbErr))
	assert.Contains(t, dbErr.Message, "songs_duration_format_chk")
	assert.Equal(t, "Failing row", dbErr.Details)
	assert.Equal(t, "23514", dbErr.Code)
}

func TestAPIError(t *testing.T) {
	srv, _ := fakeServer(t, map[string]string{})
	_, err := loggedIn(srv).Earnings(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestAgreementTemplate(t *testing.T) {
	srv, _ := fakeServer(t, map[string]string{
		"GET /v1/functions/get-agreement-template": `{"success":true,"data":{"template":null}}`,
	})
	tpl, ok, err := New(srv.URL).AgreementTemplate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tpl)
}

func TestSendEmailBodyKeepsClientKeys(t *testing.T) {
	srv, seen := fakeServer(t, map[string]string{
		"POST /v1/functions/send-email": `{"success":true,"data":{"message":"sent"}}`,
	})
	err := loggedIn(srv).SendEmail(context.Background(), EmailRequest{
		UserEmail: "a@b.c", UserName: "Ann", SongTitle: "T", NewStatus: "active",
	})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", seen.at(0).body["userEmail"])
	assert.Equal(t, "active", seen.at(0).body["newStatus"])
}

func TestSubscribeDeliversCamelCasedRecords(t *testing.T) {
	upgrader := websocket.Upgrader{}
	tokens := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens <- r.URL.Query().Get("token")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{
			"type": "INSERT", "table": "earnings",
			"record": map[string]any{"id": "e1", "song_id": "s1", "amount": 12.5, "earning_date": "2024-01-01"},
		})
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := loggedIn(srv).Subscribe(ctx)
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, "tok", <-tokens)
	assert.Equal(t, EventInsert, ev.Type)
	assert.Equal(t, "earnings", ev.Table)
	assert.Equal(t, "s1", ev.Record["songId"])

	e, err := MapEarning(ev.Record)
	require.NoError(t, err)
	assert.Equal(t, 12.5, e.Amount)
	assert.Equal(t, "2024-01-01", e.EarningDate)

	cancel()
	for range events {
	}
}

func TestUserMarshalIncludesPayoutMethod(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", PayoutMethod: PayPalDetails{Email: "p@x.y"}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"payoutMethod":{"email":"p@x.y","method":"paypal"}`)
}
