// internal/gateway/types.go
package gateway

import (
	"encoding/json"
	"time"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// Session is an authenticated session as returned by the auth endpoints.
type Session struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         SessionUser `json:"user"`
}

// SessionUser is the identity behind a session. Name comes from sign-up
// metadata and may be empty.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// PayoutMethod is either PayPalDetails or BankDetails.
type PayoutMethod interface {
	Method() models.PayoutType
}

type PayPalDetails struct {
	Email string `json:"email"`
}

func (PayPalDetails) Method() models.PayoutType { return models.PayoutTypePayPal }

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName"`
	BankName          string `json:"bankName"`
	SwiftBic          string `json:"swiftBic"`
	AccountNumberIban string `json:"accountNumberIban"`
	Country           string `json:"country"`
}

func (BankDetails) Method() models.PayoutType { return models.PayoutTypeBank }

type User struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Role         models.Role       `json:"role"`
	Status       models.UserStatus `json:"status"`
	PayoutMethod PayoutMethod      `json:"-"`
	HasProfile   bool              `json:"hasProfile"`
}

func (u User) IsAdmin() bool { return u.Role == models.RoleAdmin }

// MarshalJSON renders PayoutMethod with its "method" discriminator.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	out := struct {
		plain
		PayoutMethod map[string]any `json:"payoutMethod,omitempty"`
	}{plain: plain(u)}
	switch m := u.PayoutMethod.(type) {
	case PayPalDetails:
		out.PayoutMethod = map[string]any{"method": m.Method(), "email": m.Email}
	case BankDetails:
		out.PayoutMethod = map[string]any{
			"method":            m.Method(),
			"accountHolderName": m.AccountHolderName,
			"bankName":          m.BankName,
			"swiftBic":          m.SwiftBic,
			"accountNumberIban": m.AccountNumberIban,
			"country":           m.Country,
		}
	}
	return json.Marshal(out)
}

// Writer is one split entry of a song.
type Writer struct {
	ID              string   `json:"id"`
	WriterID        string   `json:"writerId,omitempty"`
	Name            string   `json:"name"`
	Role            []string `json:"role"`
	Split           float64  `json:"split"`
	Agreed          bool     `json:"agreed"`
	CollectOnBehalf bool     `json:"collectOnBehalf"`
	DOB             string   `json:"dob"`
	Society         string   `json:"society"`
	IPI             string   `json:"ipi"`
}

type Song struct {
	ID               string                 `json:"id"`
	UserID           string                 `json:"userId"`
	Title            string                 `json:"title"`
	Artist           string                 `json:"artist"`
	ArtworkURL       string                 `json:"artworkUrl"`
	RegistrationDate string                 `json:"registrationDate"`
	Writers          []Writer               `json:"writers"`
	SignatureData    string                 `json:"signatureData"`
	SignatureType    models.SignatureType   `json:"signatureType,omitempty"`
	Status           models.AgreementStatus `json:"status"`
	SyncStatus       models.SyncStatus      `json:"syncStatus"`
	AgreementText    string                 `json:"agreementText"`
	Duration         string                 `json:"duration,omitempty"`
	ISRC             string                 `json:"isrc,omitempty"`
	UPC              string                 `json:"upc,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
}

type ManagedWriter struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Society string `json:"society"`
	IPI     string `json:"ipi"`
}

// ManagedWriterInput is a writer to save to the caller's library.
type ManagedWriterInput struct {
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Society string `json:"society"`
	IPI     string `json:"ipi"`
}

type Earning struct {
	ID          string               `json:"id"`
	SongID      string               `json:"songId"`
	Amount      float64              `json:"amount"`
	Platform    models.Platform      `json:"platform"`
	Source      models.RevenueSource `json:"source"`
	EarningDate string               `json:"earningDate"`
	CreatedAt   time.Time            `json:"createdAt"`
}

type PayoutRequest struct {
	ID          string              `json:"id"`
	UserID      string              `json:"userId"`
	Amount      float64             `json:"amount"`
	RequestDate string              `json:"requestDate"`
	Status      models.PayoutStatus `json:"status"`
	Reference   string              `json:"reference,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// Balance is the server's view of a payee's funds.
type Balance struct {
	LifetimeEarnings float64 `json:"lifetimeEarnings"`
	TotalRequested   float64 `json:"totalRequested"`
	TotalPaidOut     float64 `json:"totalPaidOut"`
	Available        float64 `json:"available"`
	MinimumPayout    float64 `json:"minimumPayout"`
}

type SyncDeal struct {
	ID         string            `json:"id"`
	SongID     string            `json:"songId"`
	DealType   string            `json:"dealType"`
	Licensee   string            `json:"licensee"`
	Fee        float64           `json:"fee"`
	Terms      string            `json:"terms"`
	Status     models.DealStatus `json:"status"`
	OfferDate  string            `json:"offerDate"`
	ExpiryDate string            `json:"expiryDate"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type ChatSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	LastMessage   string    `json:"lastMessage"`
	Timestamp     time.Time `json:"timestamp"`
	IsReadByAdmin bool      `json:"isReadByAdmin"`
}

type ChatMessage struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	SenderID        string    `json:"senderId"`
	SenderName      string    `json:"senderName"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	GroundingChunks []any     `json:"groundingChunks,omitempty"`
}

type Permissions struct {
	CanViewAgreements bool `json:"canViewAgreements"`
	CanRegisterSongs  bool `json:"canRegisterSongs"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanApproveSongs   bool `json:"canApproveSongs"`
	CanManageEarnings bool `json:"canManageEarnings"`
	CanManagePayouts  bool `json:"canManagePayouts"`
}

type RoleDefinition struct {
	ID          models.Role `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Permissions Permissions `json:"permissions"`
}

// Upload describes a stored object.
type Upload struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// AssistantReply is the generative assistant's answer with any map
// grounding it cited.
type AssistantReply struct {
	Text            string `json:"text"`
	GroundingChunks []any  `json:"groundingChunks,omitempty"`
}

// Realtime event types.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// Event is one change pushed by the realtime feed. Record is already in the
// client key convention.
type Event struct {
	Type   string         `json:"type"`
	Table  string         `json:"table"`
	Record map[string]any `json:"record"`
}
