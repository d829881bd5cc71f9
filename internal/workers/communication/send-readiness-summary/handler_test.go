// internal/workers/communication/send-readiness-summary/handler_test.go
package sendreadinesssummary

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/models"
	"rental-readiness-workers/internal/readiness"
	"rental-readiness-workers/internal/repository"
	"rental-readiness-workers/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Senders
// ==========================

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, to, subject, textBody, htmlBody string) (string, error) {
	args := m.Called(ctx, to, subject, textBody, htmlBody)
	return args.String(0), args.Error(1)
}

type MockSMS struct {
	mock.Mock
}

func (m *MockSMS) SendSMS(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	mailer  *MockMailer
	sms     *MockSMS
	tasks   *memory.Tasks
	handler *Handler
}

func newFixture(t *testing.T, cfg *Config, users []*models.UserProfile, rows ...*models.Assessment) *fixture {
	log := logger.NewTestLogger(t)
	f := &fixture{mailer: &MockMailer{}, sms: &MockSMS{}, tasks: memory.NewTasks()}
	service := NewService(ServiceDependencies{Mailer: f.mailer, SMS: f.sms, Logger: log}, cfg)
	rents := repository.StaticRents{Table: readiness.NewRentTable(nil, readiness.DefaultMedianRent)}
	f.handler = NewHandler(cfg, memory.NewAssessments(rows...), memory.NewArtifacts(), f.tasks,
		memory.NewProfiles(users...), rents, service, log)
	return f
}

func allChannels() *Config {
	return &Config{
		Timeout:          5 * time.Second,
		ImprovementScope: repository.ScopeAssessment,
		EmailEnabled:     true,
		SMSEnabled:       true,
	}
}

func renter(premium bool) *models.UserProfile {
	return &models.UserProfile{
		UserID:    "user-1",
		Email:     "mia@example.com",
		Phone:     "+61 412 345 678",
		FirstName: "Mia",
		IsPremium: premium,
	}
}

func assessed(id, owner string, score int) *models.Assessment {
	return &models.Assessment{ID: id, UserID: &owner, ReadinessScore: &score, RiskLevel: readiness.RiskFromScore(score), CreatedAt: time.Now()}
}

func contains(part string) interface{} {
	return mock.MatchedBy(func(s string) bool { return strings.Contains(s, part) })
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_SendsEmailAndSMS(t *testing.T) {
	f := newFixture(t, allChannels(), []*models.UserProfile{renter(true)}, assessed("a-1", "user-1", 60))
	_, err := f.tasks.Complete(context.Background(), "user-1", "a-1", readiness.TaskUploadPayslip, 5)
	require.NoError(t, err)

	f.mailer.On("SendEmail", mock.Anything, "mia@example.com", "Your rental readiness summary",
		contains("65/100 (Medium risk)"), contains("<p>Hi Mia,</p>")).Return("ses-42", nil).Once()
	f.sms.On("SendSMS", mock.Anything, "+61 412 345 678",
		"Hi Mia, your rental readiness score is 65/100 (Medium risk).").Return("sns-7", nil).Once()

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, "a-1", out.AssessmentID)
	assert.Equal(t, 65, out.FinalScore)
	assert.Equal(t, models.RiskMedium, out.RiskLevel)
	assert.Equal(t, "ses-42", out.EmailMessageID)
	assert.Equal(t, "sns-7", out.SMSMessageID)
	assert.False(t, out.SentAt.IsZero())
	_, err = uuid.Parse(out.NotificationID)
	assert.NoError(t, err)

	f.mailer.AssertExpectations(t)
	f.sms.AssertExpectations(t)
}

func TestHandler_Execute_NonPremiumGetsBaseScore(t *testing.T) {
	cfg := allChannels()
	cfg.SMSEnabled = false
	f := newFixture(t, cfg, []*models.UserProfile{renter(false)}, assessed("a-1", "user-1", 60))
	_, err := f.tasks.Complete(context.Background(), "user-1", "a-1", readiness.TaskUploadPayslip, 5)
	require.NoError(t, err)

	f.mailer.On("SendEmail", mock.Anything, "mia@example.com", mock.Anything,
		contains("60/100 (Medium risk)"), mock.Anything).Return("ses-1", nil).Once()

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1", AssessmentID: "a-1"})
	require.NoError(t, err)
	assert.Equal(t, 60, out.FinalScore)
	assert.Empty(t, out.SMSMessageID)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_ChannelsDisabled(t *testing.T) {
	cfg := allChannels()
	cfg.EmailEnabled = false
	cfg.SMSEnabled = false
	f := newFixture(t, cfg, []*models.UserProfile{renter(true)}, assessed("a-1", "user-1", 80))

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	assert.Equal(t, 80, out.FinalScore)
	assert.NotEmpty(t, out.NotificationID)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_SkipsMissingAndInvalidAddresses(t *testing.T) {
	user := renter(true)
	user.Email = "not-an-address"
	user.Phone = ""
	f := newFixture(t, allChannels(), []*models.UserProfile{user}, assessed("a-1", "user-1", 55))

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, out.Status)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_NoAssessmentYet(t *testing.T) {
	f := newFixture(t, allChannels(), []*models.UserProfile{renter(true)})

	f.mailer.On("SendEmail", mock.Anything, "mia@example.com", mock.Anything,
		contains("not completed a rental readiness assessment"), mock.Anything).Return("ses-1", nil).Once()
	f.sms.On("SendSMS", mock.Anything, mock.Anything, contains("complete your rental readiness assessment")).Return("sns-1", nil).Once()

	out, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, out.AssessmentID)
	assert.Equal(t, 0, out.FinalScore)
	assert.Equal(t, StatusSent, out.Status)
	f.mailer.AssertExpectations(t)
	f.sms.AssertExpectations(t)
}

// ==========================
// Validation & Error Tests
// ==========================

func TestHandler_Execute_EmailFailure(t *testing.T) {
	f := newFixture(t, allChannels(), []*models.UserProfile{renter(true)}, assessed("a-1", "user-1", 60))
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", stderrors.New("MessageRejected: email address is not verified")).Once()

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
	assert.True(t, errors.Normalize(err).Retryable)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	cfg := allChannels()
	cfg.EmailEnabled = false
	f := newFixture(t, cfg, []*models.UserProfile{renter(true)}, assessed("a-1", "user-1", 60))
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("throttled")).Once()

	_, err := f.handler.Execute(context.Background(), &Input{UserID: "user-1"})
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
	assert.Contains(t, errors.Normalize(err).Details, "channel: sms")
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		wantCode errors.ErrorCode
	}{
		{"missing user", Input{}, errors.ErrCodeInvalidInput},
		{"unknown user", Input{UserID: "user-9"}, errors.ErrCodeInvalidInput},
		{"someone else's assessment", Input{UserID: "user-1", AssessmentID: "a-2"}, errors.ErrCodeAssessmentForbidden},
		{"unknown assessment", Input{UserID: "user-1", AssessmentID: "a-9"}, errors.ErrCodeAssessmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, allChannels(), []*models.UserProfile{renter(true)}, assessed("a-2", "user-2", 50))
			_, err := f.handler.Execute(context.Background(), &tt.input)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
