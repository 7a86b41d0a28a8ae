// internal/appstate/notify.go
package appstate

import (
	"context"
	"time"

	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

const notifyTimeout = 30 * time.Second

// notify sends an email in the background. Failures are logged only; the
// mutation that caused it has already been applied.
func (s *Store) notify(req gateway.EmailRequest) {
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.backend.SendEmail(ctx, req); err != nil {
			s.log.WithError(err).WithField("to", req.UserEmail).Error("Failed to send notification email")
		}
	}()
}
