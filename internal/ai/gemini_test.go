// internal/ai/gemini_test.go
package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewGeminiClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient("  ")
	assert.Error(t, err)
}

func TestGenerateText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "tools")

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"- point one"},{"text":"\n- point two"}]}}]}`))
	})

	text, err := c.GenerateText(context.Background(), "models/gemini-2.5-flash", "summarize")
	require.NoError(t, err)
	assert.Equal(t, "- point one\n- point two", text)
}

func TestGenerateWithMapsSendsLocationAndReturnsChunks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Tools      []map[string]any `json:"tools"`
			ToolConfig struct {
				RetrievalConfig struct {
					LatLng LatLng `json:"latLng"`
				} `json:"retrievalConfig"`
			} `json:"toolConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Tools, 1)
		assert.Contains(t, body.Tools[0], "googleMaps")
		assert.Equal(t, 40.7, body.ToolConfig.RetrievalConfig.LatLng.Latitude)
		assert.Equal(t, -74.0, body.ToolConfig.RetrievalConfig.LatLng.Longitude)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Try the studio on 5th."}]},
			"groundingMetadata":{"groundingChunks":[{"maps":{"title":"Studio"}}]}}]}`))
	})

	reply, err := c.GenerateWithMaps(context.Background(), "gemini-2.5-flash", "studios near me", &LatLng{Latitude: 40.7, Longitude: -74.0})
	require.NoError(t, err)
	assert.Equal(t, "Try the studio on 5th.", reply.Text)
	require.Len(t, reply.GroundingChunks, 1)
	assert.JSONEq(t, `{"maps":{"title":"Studio"}}`, string(reply.GroundingChunks[0]))
}

func TestGenerateWithMapsOmitsToolConfigWithoutLocation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "toolConfig")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	reply, err := c.GenerateWithMaps(context.Background(), "gemini-2.5-flash", "hi", nil)
	require.NoError(t, err)
	assert.Empty(t, reply.GroundingChunks)
}

func TestAPIErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	})

	_, err := c.GenerateText(context.Background(), "gemini-2.5-flash", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := c.GenerateText(context.Background(), "gemini-2.5-flash", "x")
	assert.Error(t, err)
}
