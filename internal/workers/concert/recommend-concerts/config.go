// internal/workers/concert/recommend-concerts/config.go
package recommendconcerts

import (
	"time"

	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/validation"
)

type Config struct {
	Timeout time.Duration
	Schema  *validation.Schema
}

func LoadConfig(cfg config.WorkerConfig, schema *validation.Schema) *Config {
	return &Config{
		Timeout: config.GetDuration(cfg.Timeout),
		Schema:  schema,
	}
}
