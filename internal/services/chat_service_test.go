// internal/services/chat_service_test.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapmusicgroup/sap-backend/internal/ai"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/realtime"
)

type fakeGenerator struct {
	text   string
	err    error
	chunks []json.RawMessage
	prompt string
	loc    *ai.LatLng
}

func (g *fakeGenerator) GenerateText(_ context.Context, _, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

func (g *fakeGenerator) GenerateWithMaps(_ context.Context, _, prompt string, loc *ai.LatLng) (*ai.Reply, error) {
	g.prompt = prompt
	g.loc = loc
	if g.err != nil {
		return nil, g.err
	}
	return &ai.Reply{Text: g.text, GroundingChunks: g.chunks}, nil
}

func TestChatUserSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewChatService(db, pub, NewAIServiceWithGenerator(nil, ""), true)
	svc.now = tick()
	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	user := seedUser(t, db, "Lee", models.RoleUser)
	ctx := context.Background()

	first, err := svc.Send(ctx, user, &SendMessageRequest{Text: "Hello?"})
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), first.SenderID)
	assert.Equal(t, "Lee", first.SenderName)

	_, err = svc.Send(ctx, user, &SendMessageRequest{Text: "Anyone there?"})
	require.NoError(t, err)

	sessions, err := svc.Sessions(user)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	cs := sessions[0]
	assert.Equal(t, "Anyone there?", cs.LastMessage)
	assert.False(t, cs.IsReadByAdmin)

	events := pub.all()
	require.Len(t, events, 4)
	assert.Equal(t, realtime.EventInsert, events[0].event.Type)
	assert.Equal(t, realtime.TableChatSessions, events[0].event.Table)
	assert.Equal(t, realtime.TableChatMessages, events[1].event.Table)
	assert.Equal(t, realtime.EventUpdate, events[2].event.Type)
	for _, ev := range events {
		assert.Equal(t, user.ID, ev.owner)
	}

	_, err = svc.Send(ctx, admin, &SendMessageRequest{Text: "no session"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	reply, err := svc.Send(ctx, admin, &SendMessageRequest{SessionID: &cs.ID, Text: "Hi Lee"})
	require.NoError(t, err)
	assert.Equal(t, models.SenderAdmin, reply.SenderID)
	assert.Equal(t, supportSenderName, reply.SenderName)

	sessions, err = svc.Sessions(admin)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsReadByAdmin)

	msgs, err := svc.Messages(user, cs.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Hello?", msgs[0].Text)
	assert.Equal(t, "Hi Lee", msgs[2].Text)

	_, err = svc.Send(ctx, user, &SendMessageRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestChatSessionsAreScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, &recordingPublisher{}, nil, false)
	alice := seedUser(t, db, "Alice", models.RoleUser)
	bob := seedUser(t, db, "Bob", models.RoleUser)
	ctx := context.Background()

	msg, err := svc.Send(ctx, alice, &SendMessageRequest{Text: "mine"})
	require.NoError(t, err)

	_, err = svc.Messages(bob, msg.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Send(ctx, bob, &SendMessageRequest{SessionID: &msg.SessionID, Text: "intrude"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.MarkRead(ctx, alice, msg.SessionID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChatMarkRead(t *testing.T) {
	db := newTestDB(t)
	pub := &recordingPublisher{}
	svc := NewChatService(db, pub, nil, false)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	user := seedUser(t, db, "Lee", models.RoleUser)
	ctx := context.Background()

	msg, err := svc.Send(ctx, user, &SendMessageRequest{Text: "ping"})
	require.NoError(t, err)
	before := len(pub.all())

	cs, err := svc.MarkRead(ctx, admin, msg.SessionID)
	require.NoError(t, err)
	assert.True(t, cs.IsReadByAdmin)
	assert.Len(t, pub.all(), before+1)

	// Already read: nothing to push.
	_, err = svc.MarkRead(ctx, admin, msg.SessionID)
	require.NoError(t, err)
	assert.Len(t, pub.all(), before+1)
}

func TestChatAutoReply(t *testing.T) {
	db := newTestDB(t)
	gen := &fakeGenerator{text: "Try the studio on 5th.", chunks: []json.RawMessage{json.RawMessage(`{"maps":{"title":"Studio"}}`)}}
	svc := NewChatService(db, &recordingPublisher{}, NewAIServiceWithGenerator(gen, "test-model"), true)
	svc.now = tick()
	user := seedUser(t, db, "Lee", models.RoleUser)

	msg, err := svc.Send(context.Background(), user, &SendMessageRequest{Text: "Where can I record?"})
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "Where can I record?", gen.prompt)
	msgs, err := svc.Messages(user, msg.SessionID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderAssistant, msgs[1].SenderID)
	assert.Equal(t, assistantSenderName, msgs[1].SenderName)
	assert.Equal(t, "Try the studio on 5th.", msgs[1].Text)
	assert.JSONEq(t, `[{"maps":{"title":"Studio"}}]`, string(msgs[1].GroundingChunks))

	sessions, err := svc.Sessions(user)
	require.NoError(t, err)
	assert.False(t, sessions[0].IsReadByAdmin)
}

func TestAIServiceFallbacks(t *testing.T) {
	ctx := context.Background()

	disabled := NewAIServiceWithGenerator(nil, "")
	assert.False(t, disabled.Enabled())
	assert.Equal(t, AIDisabledMessage, disabled.Summarize(ctx, "terms"))
	assert.Equal(t, AIDisabledMessage, disabled.Chat(ctx, &AssistantChatRequest{Message: "hi"}).Text)

	failing := NewAIServiceWithGenerator(&fakeGenerator{err: errors.New("quota")}, "")
	assert.Equal(t, SummarizeFailedMessage, failing.Summarize(ctx, "terms"))
	assert.Equal(t, ChatFailedMessage, failing.Chat(ctx, &AssistantChatRequest{Message: "hi"}).Text)

	gen := &fakeGenerator{text: "- You keep 50%"}
	svc := NewAIServiceWithGenerator(gen, "")
	assert.Equal(t, "- You keep 50%", svc.Summarize(ctx, "AGREEMENT"))
	assert.Equal(t, summarizePromptTemplate+"AGREEMENT", gen.prompt)

	lat, lng := 25.03, 121.56
	svc.Chat(ctx, &AssistantChatRequest{Message: "studios", Latitude: &lat, Longitude: &lng})
	require.NotNil(t, gen.loc)
	assert.Equal(t, 25.03, gen.loc.Latitude)

	svc.Chat(ctx, &AssistantChatRequest{Message: "studios", Latitude: &lat})
	assert.Nil(t, gen.loc)
}
