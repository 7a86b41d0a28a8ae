// internal/services/chat_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
)

const (
	supportSenderName   = "Sap Music Support"
	assistantSenderName = "Gemini Assistant"
	autoReplyTimeout    = 60 * time.Second
)

type ChatService struct {
	db        *gorm.DB
	publisher realtime.Publisher
	assistant *AIService
	autoReply bool
	now       func() time.Time

	replies sync.WaitGroup
}

type SendMessageRequest struct {
	SessionID *uuid.UUID `json:"session_id"`
	Text      string     `json:"text" validate:"required,max=4000"`
}

// NewChatService wires the live-support inbox. When autoReply is set and
// the assistant is enabled, user messages get a generated answer.
func NewChatService(db *gorm.DB, publisher realtime.Publisher, assistant *AIService, autoReply bool) *ChatService {
	return &ChatService{
		db:        db,
		publisher: publisher,
		assistant: assistant,
		autoReply: autoReply,
		now:       time.Now,
	}
}

// Wait blocks until pending auto-replies have been posted.
func (s *ChatService) Wait() {
	s.replies.Wait()
}

func (s *ChatService) Sessions(actor Actor) ([]models.ChatSession, error) {
	var out []models.ChatSession
	if err := scope(s.db, actor, "user_id").Order("timestamp DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return out, nil
}

func (s *ChatService) session(actor Actor, id uuid.UUID) (*models.ChatSession, error) {
	var cs models.ChatSession
	if err := s.db.First(&cs, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !actor.Owns(cs.UserID) {
		return nil, ErrSessionNotFound
	}
	return &cs, nil
}

func (s *ChatService) Messages(actor Actor, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.session(actor, sessionID); err != nil {
		return nil, err
	}
	var out []models.ChatMessage
	if err := s.db.Where("session_id = ?", sessionID).Order("timestamp ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return out, nil
}

// Send posts a message. A user always writes to their own session, which
// is created on first use; an admin must name the session.
func (s *ChatService) Send(ctx context.Context, actor Actor, req *SendMessageRequest) (*models.ChatMessage, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrMissingFields
	}

	var (
		cs      *models.ChatSession
		created bool
		err     error
	)
	switch {
	case actor.IsAdmin():
		if req.SessionID == nil {
			return nil, ErrSessionNotFound
		}
		cs, err = s.session(actor, *req.SessionID)
	case req.SessionID != nil:
		cs, err = s.session(actor, *req.SessionID)
		if err == nil && cs.UserID != actor.ID {
			err = ErrSessionNotFound
		}
	default:
		cs, created, err = s.ownSession(actor)
	}
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{SessionID: cs.ID, Text: text, Timestamp: s.now()}
	if actor.IsAdmin() {
		msg.SenderID = models.SenderAdmin
		msg.SenderName = supportSenderName
	} else {
		msg.SenderID = actor.ID.String()
		msg.SenderName = cs.UserName
	}

	if err := s.post(ctx, cs, msg, !actor.IsAdmin(), created); err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && s.autoReply && s.assistant != nil && s.assistant.Enabled() {
		s.replies.Add(1)
		go s.reply(cs.ID, text)
	}
	return msg, nil
}

// ownSession finds or creates the caller's session.
func (s *ChatService) ownSession(actor Actor) (*models.ChatSession, bool, error) {
	var cs models.ChatSession
	err := s.db.First(&cs, "user_id = ?", actor.ID).Error
	if err == nil {
		return &cs, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("database error: %w", err)
	}

	name := actor.Name
	var profile models.User
	if err := s.db.Select("name").First(&profile, "id = ?", actor.ID).Error; err == nil && profile.Name != "" {
		name = profile.Name
	}
	if name == "" {
		name = actor.Email
	}
	cs = models.ChatSession{UserID: actor.ID, UserName: name, Timestamp: s.now()}
	if err := s.db.Create(&cs).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create chat session: %w", err)
	}
	return &cs, true, nil
}

// post stores msg, moves the session's preview to it and pushes both.
// unread marks the session for the admin inbox.
func (s *ChatService) post(ctx context.Context, cs *models.ChatSession, msg *models.ChatMessage, unread, created bool) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		cs.LastMessage = msg.Text
		cs.Timestamp = msg.Timestamp
		cs.IsReadByAdmin = !unread
		return tx.Model(cs).Updates(map[string]interface{}{
			"last_message":     cs.LastMessage,
			"timestamp":        cs.Timestamp,
			"is_read_by_admin": cs.IsReadByAdmin,
		}).Error
	})
	if err != nil {
		return err
	}

	sessionEvent := realtime.EventUpdate
	if created {
		sessionEvent = realtime.EventInsert
	}
	s.publish(ctx, cs.UserID, realtime.Event{Type: sessionEvent, Table: realtime.TableChatSessions, Record: cs})
	s.publish(ctx, cs.UserID, realtime.Event{Type: realtime.EventInsert, Table: realtime.TableChatMessages, Record: msg})
	return nil
}

func (s *ChatService) reply(sessionID uuid.UUID, prompt string) {
	defer s.replies.Done()

	ctx, cancel := context.WithTimeout(context.Background(), autoReplyTimeout)
	defer cancel()

	answer := s.assistant.Chat(ctx, &AssistantChatRequest{Message: prompt})

	var cs models.ChatSession
	if err := s.db.First(&cs, "id = ?", sessionID).Error; err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Auto-reply session lookup failed")
		return
	}
	msg := &models.ChatMessage{
		SessionID:  sessionID,
		SenderID:   models.SenderAssistant,
		SenderName: assistantSenderName,
		Text:       answer.Text,
		Timestamp:  s.now(),
	}
	if len(answer.GroundingChunks) > 0 {
		if b, err := json.Marshal(answer.GroundingChunks); err == nil {
			msg.GroundingChunks = datatypes.JSON(b)
		}
	}
	// The assistant answering does not count as the admin reading it.
	if err := s.post(ctx, &cs, msg, !cs.IsReadByAdmin, false); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to post auto-reply")
	}
}

// MarkRead flags a session as read in the admin inbox.
func (s *ChatService) MarkRead(ctx context.Context, actor Actor, id uuid.UUID) (*models.ChatSession, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	cs, err := s.session(actor, id)
	if err != nil {
		return nil, err
	}
	if cs.IsReadByAdmin {
		return cs, nil
	}
	if err := s.db.Model(cs).Update("is_read_by_admin", true).Error; err != nil {
		return nil, fmt.Errorf("failed to mark session read: %w", err)
	}
	cs.IsReadByAdmin = true
	s.publish(ctx, cs.UserID, realtime.Event{Type: realtime.EventUpdate, Table: realtime.TableChatSessions, Record: cs})
	return cs, nil
}

func (s *ChatService) publish(ctx context.Context, owner uuid.UUID, ev realtime.Event) {
	if err := s.publisher.Publish(ctx, owner, ev); err != nil {
		logrus.WithError(err).WithField("table", ev.Table).Warn("Failed to publish chat event")
	}
}
