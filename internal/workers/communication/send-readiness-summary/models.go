// internal/workers/communication/send-readiness-summary/models.go
package sendreadinesssummary

import (
	"time"

	"rental-readiness-workers/internal/common/logger"
)

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"

	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

type Input struct {
	UserID       string `json:"userId"`
	AssessmentID string `json:"assessmentId,omitempty"`
}

type Output struct {
	NotificationID string    `json:"notificationId"`
	Status         string    `json:"status"`
	AssessmentID   string    `json:"assessmentId,omitempty"`
	FinalScore     int       `json:"finalScore"`
	RiskLevel      string    `json:"riskLevel,omitempty"`
	EmailMessageID string    `json:"emailMessageId,omitempty"`
	SMSMessageID   string    `json:"smsMessageId,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}

// Summary is what the notification says about the user's readiness.
type Summary struct {
	FirstName   string
	Score       int
	RiskLevel   string
	OpenActions int
	HasScore    bool
}

type ServiceDependencies struct {
	Mailer Mailer
	SMS    SMSSender
	Logger logger.Logger
}
