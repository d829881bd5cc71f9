// internal/workers/ai-assist/generate-cover-letter/config.go
package generatecoverletter

import (
	"time"

	"rental-readiness-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Config{Timeout: timeout}
}
