// internal/workers/ai-assist/assistant-reply/config.go
package assistantreply

import (
	"time"

	"rental-readiness-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	HistoryLimit int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout:      timeout,
		HistoryLimit: 8,
	}
}
