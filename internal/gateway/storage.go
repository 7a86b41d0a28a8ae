// internal/gateway/storage.go
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload categories accepted by the storage endpoint.
const (
	CategoryArtwork    = "artwork"
	CategorySignatures = "signatures"
	CategoryAgreements = "agreements"
)

// UploadFile stores r under category and returns where it was put.
func (c *Client) UploadFile(ctx context.Context, category, filename string, r io.Reader) (Upload, error) {
	if err := c.authorized(); err != nil {
		return Upload{}, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("category", category); err != nil {
		return Upload{}, err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Upload{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return Upload{}, fmt.Errorf("gateway: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Upload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/storage/upload", &buf)
	if err != nil {
		return Upload{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	data, err := c.do(req)
	if err != nil {
		return Upload{}, err
	}
	return decodeAs[Upload](data)
}

// Summarize asks the assistant for a plain-language summary of an
// agreement. When AI is not configured the server answers with a fixed
// message rather than an error.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if err := c.authorized(); err != nil {
		return "", err
	}
	data, err := c.call(ctx, http.MethodPost, "/ai/summarize-agreement", nil, map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	m, _ := data.(map[string]any)
	s, _ := m["summary"].(string)
	return s, nil
}

// Ask sends one chatbot message. Coordinates are optional and steer map
// grounding.
func (c *Client) Ask(ctx context.Context, message string, lat, lng *float64) (AssistantReply, error) {
	if err := c.authorized(); err != nil {
		return AssistantReply{}, err
	}
	body := map[string]any{"message": message}
	if lat != nil && lng != nil {
		body["latitude"] = *lat
		body["longitude"] = *lng
	}
	data, err := c.call(ctx, http.MethodPost, "/ai/chat", nil, body)
	if err != nil {
		return AssistantReply{}, err
	}
	return decodeAs[AssistantReply](data)
}
