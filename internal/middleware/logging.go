// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

// AuditRecorder stores one audit entry.
type AuditRecorder interface {
	Record(entry *models.AuditLog)
}

// Body fields never written to the audit log.
var redactedFields = map[string]bool{
	"password":       true,
	"refresh_token":  true,
	"signature_data": true,
}

// maxAuditBody caps how much of a request body is parsed for the log.
const maxAuditBody = 64 * 1024

// AuditLogMiddleware logs every request and records mutating ones.
func AuditLogMiddleware(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		mutating := c.Request.Method != http.MethodGet && c.Request.Method != http.MethodOptions &&
			c.Request.Method != http.MethodHead && path != "/health"

		var requestBody []byte
		if mutating && c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			if len(requestBody) > maxAuditBody {
				// Too big to log; hand the full body on untouched.
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
				requestBody = nil
			} else {
				c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
			}
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		userID, _ := c.Get("user_id")
		logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"duration":   duration.Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"user_id":    userID,
		}).Info("Request processed")

		if !mutating {
			return
		}

		auditLog := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(path),
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			NewValues:    redact(requestBody),
		}
		if c.FullPath() == "" {
			auditLog.Action = c.Request.Method + " " + path
		}
		if uid, ok := userID.(string); ok {
			if parsed, err := uuid.Parse(uid); err == nil {
				auditLog.UserID = &parsed
			}
		}
		if resourceID := extractResourceID(path); resourceID != "" {
			if parsed, err := uuid.Parse(resourceID); err == nil {
				auditLog.ResourceID = &parsed
			}
		}

		go recorder.Record(auditLog)
	}
}

func redact(body []byte) models.JSONB {
	if len(body) == 0 {
		return nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	for k := range data {
		if redactedFields[k] {
			data[k] = "[REDACTED]"
		}
	}
	return models.JSONB(data)
}

func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		if parts[1] == "functions" && len(parts) >= 3 {
			return parts[2]
		}
		return parts[1]
	}
	if len(parts) >= 1 && parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

func extractResourceID(path string) string {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if _, err := uuid.Parse(part); err == nil {
			return part
		}
	}
	return ""
}
