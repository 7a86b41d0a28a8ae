// internal/services/notification_service.go
package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sapmusicgroup/sap-backend/internal/config"
)

type EmailTemplate struct {
	Subject string
	Body    func(name, songTitle string) string
}

// EmailRequest is the send-email body. Keys keep the client convention.
type EmailRequest struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	SongTitle string `json:"songTitle"`
	NewStatus string `json:"newStatus"`
}

// EmailResult identifies an accepted message.
type EmailResult struct {
	ID string `json:"id"`
}

// Mailer delivers one plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

type NotificationService struct {
	mailer Mailer
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	if cfg.Email.SMTPHost == "" {
		return NewNotificationServiceWithMailer(LogMailer{})
	}
	return NewNotificationServiceWithMailer(&SMTPMailer{cfg: cfg.Email})
}

func NewNotificationServiceWithMailer(m Mailer) *NotificationService {
	return &NotificationService{mailer: m}
}

var emailTemplates = map[string]EmailTemplate{
	"active": {
		Subject: "Your Song Registration has been Approved!",
		Body: func(name, songTitle string) string {
			return fmt.Sprintf("Hi %s,\n\nGreat news! Your song \"%s\" has been reviewed and approved. It is now active in our system.\n\nYou can view your agreement in your dashboard.\n\nBest regards,\nThe Sap Music Group Team", name, songTitle)
		},
	},
	"rejected": {
		Subject: "Update on Your Song Registration",
		Body: func(name, songTitle string) string {
			return fmt.Sprintf("Hi %s,\n\nWe have reviewed your registration for \"%s\". Unfortunately, we are unable to approve it at this time. Please check your dashboard for more details or contact support if you have any questions.\n\nBest regards,\nThe Sap Music Group Team", name, songTitle)
		},
	},
	"expired": {
		Subject: "Your Song Agreement has Expired",
		Body: func(name, songTitle string) string {
			return fmt.Sprintf("Hi %s,\n\nThis is a notification that your publishing agreement for the song \"%s\" has expired. Please log in to your dashboard to review the details and take any necessary action.\n\nBest regards,\nThe Sap Music Group Team", name, songTitle)
		},
	},
	"pending_admin_notification": {
		Subject: "A Song is Awaiting Your Approval",
		Body: func(adminName, songTitle string) string {
			return fmt.Sprintf("Hi %s,\n\nThe song %s has been submitted for approval and is awaiting your review in the dashboard.\n\nBest regards,\nThe Sap Music Group System", adminName, songTitle)
		},
	},
}

var defaultEmailTemplate = EmailTemplate{
	Subject: "Update on your song registration",
	Body: func(name, songTitle string) string {
		return fmt.Sprintf("Hi %s,\n\nThere has been an update regarding your song \"%s\". Please log in to your dashboard for more details.\n\nBest regards,\nThe Sap Music Group Team", name, songTitle)
	},
}

// TemplateFor returns the template for a status, or the default one.
func TemplateFor(status string) EmailTemplate {
	if t, ok := emailTemplates[status]; ok {
		return t
	}
	return defaultEmailTemplate
}

// SendStatusEmail renders the template for req.NewStatus and delivers it.
// All four fields are required.
func (s *NotificationService) SendStatusEmail(req *EmailRequest) (*EmailResult, error) {
	if req.UserEmail == "" || req.UserName == "" || req.SongTitle == "" || req.NewStatus == "" {
		return nil, ErrMissingFields
	}

	tpl := TemplateFor(req.NewStatus)
	if err := s.mailer.Send(req.UserEmail, tpl.Subject, tpl.Body(req.UserName, req.SongTitle)); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"to":     req.UserEmail,
			"status": req.NewStatus,
		}).Error("Failed to send status email")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &EmailResult{ID: uuid.NewString()}, nil
}

type SMTPMailer struct {
	cfg config.EmailConfig
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	from := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, strings.ReplaceAll(body, "\n", "\r\n")))

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	return smtp.SendMail(addr, auth, m.cfg.FromEmail, []string{to}, msg)
}

// LogMailer is used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, _ string) error {
	logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email would be sent")
	return nil
}
