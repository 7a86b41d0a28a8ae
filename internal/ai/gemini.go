// internal/ai/gemini.go
//
// Package ai is a small REST client for the Gemini generateContent API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Google AI Studio (Gemini) API.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*GeminiClient)

func WithBaseURL(u string) Option {
	return func(c *GeminiClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *GeminiClient) { c.httpClient.Timeout = d }
}

func NewGeminiClient(apiKey string, opts ...Option) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	c := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LatLng steers map grounding towards a location.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reply is generated text with any grounding chunks the model cited.
type Reply struct {
	Text            string            `json:"text"`
	GroundingChunks []json.RawMessage `json:"grounding_chunks,omitempty"`
}

// GenerateText returns the response to a single prompt.
func (c *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	reply, err := c.generate(ctx, model, generateRequest{Contents: userPrompt(prompt)})
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// GenerateWithMaps enables Google Maps grounding. loc may be nil.
func (c *GeminiClient) GenerateWithMaps(ctx context.Context, model, prompt string, loc *LatLng) (*Reply, error) {
	req := generateRequest{
		Contents: userPrompt(prompt),
		Tools:    []tool{{GoogleMaps: &struct{}{}}},
	}
	if loc != nil {
		req.ToolConfig = &toolConfig{RetrievalConfig: retrievalConfig{LatLng: *loc}}
	}
	return c.generate(ctx, model, req)
}

func (c *GeminiClient) generate(ctx context.Context, model string, reqBody generateRequest) (*Reply, error) {
	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, normalizeModel(model), c.apiKey)
	if err := c.doJSON(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}
	cand := resp.Candidates[0]
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}
	reply := &Reply{Text: text.String()}
	if cand.GroundingMetadata != nil {
		reply.GroundingChunks = cand.GroundingMetadata.GroundingChunks
	}
	return reply, nil
}

func userPrompt(prompt string) []content {
	return []content{{Role: "user", Parts: []part{{Text: prompt}}}}
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	model = strings.TrimPrefix(model, "models/")
	return model
}

func (c *GeminiClient) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return fmt.Errorf("gemini api error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("gemini api error: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type retrievalConfig struct {
	LatLng LatLng `json:"latLng"`
}

type toolConfig struct {
	RetrievalConfig retrievalConfig `json:"retrievalConfig"`
}

type generateRequest struct {
	Contents   []content   `json:"contents"`
	Tools      []tool      `json:"tools,omitempty"`
	ToolConfig *toolConfig `json:"toolConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []json.RawMessage `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
