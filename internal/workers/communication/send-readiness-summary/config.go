// internal/workers/communication/send-readiness-summary/config.go
package sendreadinesssummary

import (
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/repository"
)

type Config struct {
	Timeout          time.Duration
	ImprovementScope string
	EmailEnabled     bool
	SMSEnabled       bool
}

func LoadConfig(wcfg config.WorkerConfig, plan config.ActionPlanConfig, notify config.NotificationConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	scope := plan.ImprovementScope
	if scope != repository.ScopeUser {
		scope = repository.ScopeAssessment
	}
	return &Config{
		Timeout:          timeout,
		ImprovementScope: scope,
		EmailEnabled:     notify.Email.Enabled,
		SMSEnabled:       notify.SMS.Enabled,
	}
}
