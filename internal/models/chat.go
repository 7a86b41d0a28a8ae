// internal/models/chat.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Sender ids that are not user ids.
const (
	SenderAdmin     = "admin"
	SenderAssistant = "gemini-assistant"
)

type ChatSession struct {
	BaseModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	UserName      string    `json:"user_name" gorm:"size:255"`
	LastMessage   string    `json:"last_message" gorm:"type:text"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
	IsReadByAdmin bool      `json:"is_read_by_admin" gorm:"not null;default:false"`
}

type ChatMessage struct {
	BaseModel
	SessionID       uuid.UUID      `json:"session_id" gorm:"type:uuid;not null;index"`
	SenderID        string         `json:"sender_id" gorm:"size:64;not null"`
	SenderName      string         `json:"sender_name" gorm:"size:255"`
	Text            string         `json:"text" gorm:"type:text;not null"`
	Timestamp       time.Time      `json:"timestamp" gorm:"index"`
	GroundingChunks datatypes.JSON `json:"grounding_chunks,omitempty"`
}
