// internal/services/ai_service.go
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/ai"
	"github.com/sapmusicgroup/sap-backend/internal/config"
)

// Fixed replies shown instead of an error.
const (
	AIDisabledMessage       = "AI functionality is disabled. Please configure your API key."
	SummarizeFailedMessage  = "Could not summarize the agreement at this time. Please try again later."
	ChatFailedMessage       = "Could not get a response at this time. Please try again later."
	summarizePromptTemplate = "Summarize the following legal publishing agreement in simple, easy-to-understand terms for a musician. Focus on their rights, responsibilities, and royalty splits. Keep it concise, using bullet points. Here is the agreement:\n\n---\n\n"
)

// Generator is the subset of the Gemini client the service uses.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	GenerateWithMaps(ctx context.Context, model, prompt string, loc *ai.LatLng) (*ai.Reply, error)
}

type AIService struct {
	gen   Generator
	model string
}

type SummarizeRequest struct {
	Text string `json:"text" validate:"required"`
}

type AssistantChatRequest struct {
	Message   string   `json:"message" validate:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type AssistantReply struct {
	Text            string            `json:"text"`
	GroundingChunks []json.RawMessage `json:"grounding_chunks,omitempty"`
}

// NewAIService returns a disabled service when no key is configured.
func NewAIService(cfg *config.Config) *AIService {
	if !cfg.AIEnabled() {
		logrus.Warn("Gemini API key not found. AI features will be disabled.")
		return NewAIServiceWithGenerator(nil, cfg.AI.GeminiModel)
	}
	client, err := ai.NewGeminiClient(cfg.AI.GeminiAPIKey,
		ai.WithBaseURL(cfg.AI.GeminiBaseURL),
		ai.WithTimeout(time.Duration(cfg.AI.TimeoutSecs)*time.Second),
	)
	if err != nil {
		logrus.WithError(err).Warn("Gemini client unavailable, AI features disabled")
		return NewAIServiceWithGenerator(nil, cfg.AI.GeminiModel)
	}
	return NewAIServiceWithGenerator(client, cfg.AI.GeminiModel)
}

func NewAIServiceWithGenerator(gen Generator, model string) *AIService {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &AIService{gen: gen, model: model}
}

func (s *AIService) Enabled() bool {
	return s.gen != nil
}

// Summarize explains an agreement in plain terms.
func (s *AIService) Summarize(ctx context.Context, agreementText string) string {
	if s.gen == nil {
		return AIDisabledMessage
	}
	text, err := s.gen.GenerateText(ctx, s.model, summarizePromptTemplate+agreementText)
	if err != nil {
		logrus.WithError(err).Error("Error calling Gemini API")
		return SummarizeFailedMessage
	}
	return text
}

// Chat answers one message with Google Maps grounding.
func (s *AIService) Chat(ctx context.Context, req *AssistantChatRequest) *AssistantReply {
	if s.gen == nil {
		return &AssistantReply{Text: AIDisabledMessage}
	}
	var loc *ai.LatLng
	if req.Latitude != nil && req.Longitude != nil {
		loc = &ai.LatLng{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	reply, err := s.gen.GenerateWithMaps(ctx, s.model, req.Message, loc)
	if err != nil {
		logrus.WithError(err).Error("Error calling Gemini API")
		return &AssistantReply{Text: ChatFailedMessage}
	}
	return &AssistantReply{Text: reply.Text, GroundingChunks: reply.GroundingChunks}
}
