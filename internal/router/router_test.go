// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/database"
	"github.com/sapmusicgroup/sap-backend/internal/i18n"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type RouterTestSuite struct {
	suite.Suite
	db  *gorm.DB
	app *App
	seq int
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("en"))
}

func (suite *RouterTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.T().Cleanup(func() { sqlDB.Close() })
	suite.Require().NoError(database.RunMigrations(db))

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "router-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Storage: config.StorageConfig{
			Provider:      "local",
			LocalPath:     suite.T().TempDir(),
			PublicBaseURL: "http://localhost:8080/uploads",
		},
		Payment:  config.PaymentConfig{MinimumPayout: 50},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:3000"},
	}

	app, err := Initialize(db, cfg, nil)
	suite.Require().NoError(err)
	suite.db = db
	suite.app = app
}

func (suite *RouterTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	// Spread requests over addresses so the per-IP limiters stay out of the way.
	suite.seq++
	req.RemoteAddr = fmt.Sprintf("192.0.2.%d:40000", suite.seq%250+1)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.app.Engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (suite *RouterTestSuite) decode(env envelope, v interface{}) {
	suite.Require().NoError(json.Unmarshal(env.Data, v))
}

// signup registers an account and returns its id and access token.
func (suite *RouterTestSuite) signup(name, email string) (uuid.UUID, string) {
	w, env := suite.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret1",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var auth services.AuthResponse
	suite.decode(env, &auth)
	return auth.User.ID, auth.AccessToken
}

func (suite *RouterTestSuite) promote(id uuid.UUID, name string) {
	suite.Require().NoError(suite.db.Create(&models.User{
		ID:     id,
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", id.String()[:8]),
		Role:   models.RoleAdmin,
		Status: models.UserStatusActive,
	}).Error)
}

func (suite *RouterTestSuite) TestHealth() {
	w, _ := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"status":"healthy"`)
	suite.Contains(w.Body.String(), `"ai":false`)
}

func (suite *RouterTestSuite) TestSignupLoginRefreshLogout() {
	_, _ = suite.signup("Mia Lane", "Mia@Example.com")

	w, env := suite.do(http.MethodPost, "/v1/auth/signup", "", map[string]string{
		"email": "mia@example.com", "password": "secret1",
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.False(env.Success)

	w, env = suite.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "mia@example.com", "password": "wrong-one",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, env = suite.do(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "mia@example.com", "password": "secret1",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	var auth services.AuthResponse
	suite.decode(env, &auth)
	suite.Equal("Bearer", auth.TokenType)
	suite.Contains(string(env.Data), `"access_token"`)

	w, env = suite.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": auth.RefreshToken})
	suite.Require().Equal(http.StatusOK, w.Code)
	var refreshed services.AuthResponse
	suite.decode(env, &refreshed)

	// Refresh tokens are single use.
	w, _ = suite.do(http.MethodPost, "/v1/auth/refresh", "", map[string]string{"refresh_token": auth.RefreshToken})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodPost, "/v1/auth/logout", refreshed.AccessToken, nil)
	suite.Equal(http.StatusOK, w.Code)
	w, _ = suite.do(http.MethodGet, "/v1/auth/session", refreshed.AccessToken, nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestAuthAndAdminGuards() {
	w, env := suite.do(http.MethodGet, "/v1/songs", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("UNAUTHORIZED", env.Error.Code)
	suite.Equal("Authentication required", env.Error.Message)

	_, token := suite.signup("Mia Lane", "mia@example.com")
	w, env = suite.do(http.MethodGet, "/v1/functions/get-all-users", token, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.False(env.Success)

	w, _ = suite.do(http.MethodPost, "/v1/earnings", token, map[string]interface{}{})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RouterTestSuite) TestFunctions() {
	id, token := suite.signup("Mia Lane", "mia@example.com")

	w, env := suite.do(http.MethodGet, "/v1/functions/get-agreement-template", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"template":null}`, string(env.Data))

	w, env = suite.do(http.MethodGet, "/v1/functions/get-user-profile", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"user":null}`, string(env.Data))

	w, env = suite.do(http.MethodPost, "/v1/functions/send-email", token, map[string]string{"userEmail": "mia@example.com"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Missing required fields in request body", env.Error.Message)

	w, env = suite.do(http.MethodPost, "/v1/functions/send-email", token, map[string]string{
		"userEmail": "mia@example.com",
		"userName":  "Mia",
		"songTitle": "Midnight Tide",
		"newStatus": "active",
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(string(env.Data), `"message"`)

	admin, adminToken := suite.signup("Admin", "admin@example.com")
	suite.promote(admin, "Admin")

	w, env = suite.do(http.MethodPost, "/v1/functions/create-user-by-admin", adminToken, map[string]string{"email": "x@example.com"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPost, "/v1/functions/create-user-by-admin", adminToken, map[string]string{
		"name": "Sam Reed", "email": "sam@example.com", "password": "secret1",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	w, env = suite.do(http.MethodGet, "/v1/functions/get-all-users", adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var roster struct {
		Users []services.RosterEntry `json:"users"`
	}
	suite.decode(env, &roster)
	suite.Len(roster.Users, 3)
	for _, u := range roster.Users {
		if u.ID == id {
			suite.False(u.HasProfile)
			suite.Equal("Mia Lane", u.Name)
		}
	}

	w, _ = suite.do(http.MethodPut, "/v1/settings/agreement-template", adminToken, map[string]string{"value": "Dated [Date]"})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, env = suite.do(http.MethodGet, "/v1/functions/get-agreement-template", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"template":"Dated [Date]"}`, string(env.Data))
}

func (suite *RouterTestSuite) TestPayoutFlow() {
	userID, token := suite.signup("Mia Lane", "mia@example.com")
	adminID, adminToken := suite.signup("Admin", "admin@example.com")
	suite.promote(adminID, "Admin")

	song := models.Song{
		CreatorID:        userID,
		Title:            "Midnight Tide",
		MainArtist:       "The Sap",
		RegistrationDate: "2024-03-01",
		WritersData:      []models.Writer{{Name: "Mia Lane", Role: []string{"Composer"}, Split: 100}},
		Status:           models.AgreementStatusActive,
	}
	suite.Require().NoError(suite.db.Create(&song).Error)

	w, _ := suite.do(http.MethodPost, "/v1/earnings", adminToken, map[string]interface{}{
		"song_id":  song.ID,
		"amount":   80,
		"platform": "spotify",
		"source":   "performance",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, env := suite.do(http.MethodGet, "/v1/payouts/balance", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var balance services.Balance
	suite.decode(env, &balance)
	suite.InDelta(80, balance.Available, 0.001)

	w, _ = suite.do(http.MethodPost, "/v1/payouts", token, map[string]float64{"amount": 40})
	suite.Equal(http.StatusUnprocessableEntity, w.Code, "below the minimum")

	w, env = suite.do(http.MethodPost, "/v1/payouts", token, map[string]float64{"amount": 60})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var payout models.PayoutRequest
	suite.decode(env, &payout)
	suite.Equal(models.PayoutStatusPending, payout.Status)

	w, _ = suite.do(http.MethodPost, "/v1/payouts", token, map[string]float64{"amount": 50})
	suite.Equal(http.StatusUnprocessableEntity, w.Code, "exceeds what is left")

	path := "/v1/payouts/" + payout.ID.String() + "/status"
	w, _ = suite.do(http.MethodPatch, path, token, map[string]string{"status": "approved"})
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodPatch, path, adminToken, map[string]string{"status": "paid"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code, "must be approved first")

	w, _ = suite.do(http.MethodPatch, path, adminToken, map[string]string{"status": "approved"})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, env = suite.do(http.MethodPatch, path, adminToken, map[string]string{"status": "paid"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(env, &payout)
	suite.Equal(models.PayoutStatusPaid, payout.Status)
	suite.NotNil(payout.PaidAt)

	w, env = suite.do(http.MethodGet, "/v1/payouts", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var mine []models.PayoutRequest
	suite.decode(env, &mine)
	suite.Len(mine, 1)
}

func (suite *RouterTestSuite) TestEmptyListsAreArrays() {
	_, token := suite.signup("Mia Lane", "mia@example.com")
	for _, path := range []string{"/v1/songs", "/v1/earnings", "/v1/payouts", "/v1/sync-deals", "/v1/managed-writers", "/v1/chat/sessions"} {
		w, env := suite.do(http.MethodGet, path, token, nil)
		suite.Require().Equal(http.StatusOK, w.Code, path)
		suite.Equal("[]", string(env.Data), path)
	}
}

func (suite *RouterTestSuite) TestNotFoundAndBadID() {
	_, token := suite.signup("Mia Lane", "mia@example.com")

	w, _ := suite.do(http.MethodGet, "/v1/songs/not-a-uuid", token, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, env := suite.do(http.MethodGet, "/v1/songs/"+uuid.NewString(), token, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.False(env.Success)
}

func (suite *RouterTestSuite) TestAIDisabled() {
	_, token := suite.signup("Mia Lane", "mia@example.com")

	w, env := suite.do(http.MethodPost, "/v1/ai/summarize-agreement", token, map[string]string{"text": "agreement"})
	suite.Require().Equal(http.StatusOK, w.Code)
	var out struct {
		Summary string `json:"summary"`
	}
	suite.decode(env, &out)
	suite.Equal(services.AIDisabledMessage, out.Summary)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
