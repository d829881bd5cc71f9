// internal/workers/analysis/detailed-readiness-analysis/config.go
package detailedreadinessanalysis

import (
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/repository"
)

type Config struct {
	Timeout time.Duration
	// ImprovementScope decides whether completed task points count per
	// assessment or across every assessment of the user.
	ImprovementScope string
}

func LoadConfig(wcfg config.WorkerConfig, plan config.ActionPlanConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	scope := plan.ImprovementScope
	if scope != repository.ScopeUser {
		scope = repository.ScopeAssessment
	}
	return &Config{Timeout: timeout, ImprovementScope: scope}
}
