// internal/workers/catalog/check-for-songs/config.go
package checkforsongs

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
