// internal/workers/action-plan/complete-action-task/config.go
package completeactiontask

import (
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/repository"
)

type Config struct {
	Timeout          time.Duration
	ImprovementScope string
}

func LoadConfig(wcfg config.WorkerConfig, plan config.ActionPlanConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	scope := plan.ImprovementScope
	if scope != repository.ScopeUser {
		scope = repository.ScopeAssessment
	}
	return &Config{Timeout: timeout, ImprovementScope: scope}
}
