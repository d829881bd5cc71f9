// internal/workers/communication/send-readiness-summary/service.go
package sendreadinesssummary

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/validation"
	"rental-readiness-workers/internal/models"

	"github.com/google/uuid"
)

// Mailer is satisfied by aws.SESClient.
type Mailer interface {
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) (string, error)
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

type Service struct {
	config *Config
	mailer Mailer
	sms    SMSSender
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		mailer: deps.Mailer,
		sms:    deps.SMS,
		logger: deps.Logger,
	}
}

// Send delivers the summary on every enabled channel the contact has an
// address for. Nothing to send is not an error; the status says so.
func (s *Service) Send(ctx context.Context, contact *models.UserProfile, summary Summary) (*Output, error) {
	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		FinalScore:     summary.Score,
		RiskLevel:      summary.RiskLevel,
	}

	if to := strings.TrimSpace(contact.Email); s.config.EmailEnabled && s.mailer != nil && to != "" {
		if !validation.ValidateEmail(to) {
			s.logger.Warn("skipping email, address is invalid", map[string]interface{}{
				"userId": contact.UserID,
			})
		} else {
			subject, text, body := renderEmail(summary)
			id, err := s.mailer.SendEmail(ctx, to, subject, text, body)
			if err != nil {
				return nil, errors.NewNotificationSendFailedError(ChannelEmail, err)
			}
			out.EmailMessageID = id
			out.Status = StatusSent
		}
	}

	if phone := strings.TrimSpace(contact.Phone); s.config.SMSEnabled && s.sms != nil && phone != "" {
		if !validation.ValidatePhone(phone) {
			s.logger.Warn("skipping sms, phone number is invalid", map[string]interface{}{
				"userId": contact.UserID,
			})
		} else {
			id, err := s.sms.SendSMS(ctx, phone, renderSMS(summary))
			if err != nil {
				return nil, errors.NewNotificationSendFailedError(ChannelSMS, err)
			}
			out.SMSMessageID = id
			out.Status = StatusSent
		}
	}

	out.SentAt = time.Now().UTC()
	s.logger.Info("readiness summary processed", map[string]interface{}{
		"notificationId": out.NotificationID,
		"status":         out.Status,
		"email":          out.EmailMessageID != "",
		"sms":            out.SMSMessageID != "",
	})
	return out, nil
}

func greeting(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return "Hi " + name
	}
	return "Hi there"
}

func renderEmail(s Summary) (subject, text, body string) {
	subject = "Your rental readiness summary"

	var lines []string
	lines = append(lines, greeting(s.FirstName)+",")
	lines = append(lines, "")
	if s.HasScore {
		lines = append(lines, fmt.Sprintf("Your current rental readiness score is %d/100 (%s risk).", s.Score, s.RiskLevel))
		if s.OpenActions > 0 {
			lines = append(lines, fmt.Sprintf("You have %d open action(s) in your plan that can lift your score.", s.OpenActions))
		} else {
			lines = append(lines, "You have completed every action in your plan.")
		}
	} else {
		lines = append(lines, "You have not completed a rental readiness assessment yet.")
		lines = append(lines, "It takes a few minutes and shows how landlords are likely to see your application.")
	}
	text = strings.Join(lines, "\n")

	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	return subject, text, b.String()
}

func renderSMS(s Summary) string {
	if !s.HasScore {
		return greeting(s.FirstName) + ", complete your rental readiness assessment to see your score."
	}
	return fmt.Sprintf("%s, your rental readiness score is %d/100 (%s risk).", greeting(s.FirstName), s.Score, s.RiskLevel)
}
