// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Well-known variables that do not follow the nested key naming.
	_ = v.BindEnv("database.redis.url", "REDIS_URL")
	_ = v.BindEnv("embedding.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("camunda.broker_address", "ZEEBE_ADDRESS")
	_ = v.BindEnv("database.sql.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.sql.dsn", "DATABASE_DSN")
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders inside string values. A
// placeholder for an unset variable becomes "" so the defaults apply.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Redis.URL == "" {
		cfg.Database.Redis.URL = os.Getenv("REDIS_URL")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Database.SQL.User == "" {
		cfg.Database.SQL.User = os.Getenv("DB_USER")
	}
	if cfg.Database.SQL.Password == "" {
		cfg.Database.SQL.Password = os.Getenv("DB_PASSWORD")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "music-store-agent"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	sql := &cfg.Database.SQL
	if sql.Driver == "" {
		sql.Driver = DriverSQLite
	}
	if sql.MaxConnections == 0 {
		sql.MaxConnections = 25
	}
	if sql.MaxIdle == 0 {
		sql.MaxIdle = 5
	}
	if sql.SSLMode == "" {
		sql.SSLMode = "disable"
	}
	if sql.Port == 0 {
		sql.Port = 5432
	}
	if sql.Driver == DriverSQLite && sql.ScriptURL == "" && sql.ScriptPath == "" {
		sql.ScriptURL = DefaultChinookScriptURL
	}
	if sql.ScriptTimeout == 0 {
		sql.ScriptTimeout = 60000
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Database.Redis.URL == "" {
		cfg.Database.Redis.URL = DefaultRedisURL
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}

	if cfg.Search.Backend == "" {
		cfg.Search.Backend = SearchBackendRedis
	}
	if cfg.Search.IndexName == "" {
		cfg.Search.IndexName = "concerts"
	}
	if cfg.Search.KeyPrefix == "" {
		cfg.Search.KeyPrefix = "concert:"
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-large"
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30000
	}
	if cfg.Search.VectorDims == 0 {
		cfg.Search.VectorDims = EmbeddingDimensions(cfg.Embedding.Model)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// DefaultChinookScriptURL is the public SQLite build script of the Chinook sample database.
const DefaultChinookScriptURL = "https://raw.githubusercontent.com/lerocha/chinook-database/master/ChinookDatabase/DataSources/Chinook_Sqlite.sql"

// EmbeddingDimensions returns the vector size produced by a known OpenAI embedding model.
func EmbeddingDimensions(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Database.SQL.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Database.SQL.DSN == "" {
			if cfg.Database.SQL.Host == "" {
				return fmt.Errorf("database.sql.host is required for postgres")
			}
			if cfg.Database.SQL.Database == "" {
				return fmt.Errorf("database.sql.database is required for postgres")
			}
		}
	default:
		return fmt.Errorf("unsupported database.sql.driver %q", cfg.Database.SQL.Driver)
	}

	switch cfg.Search.Backend {
	case SearchBackendRedis:
	case SearchBackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
	default:
		return fmt.Errorf("unsupported search.backend %q", cfg.Search.Backend)
	}

	if cfg.Search.VectorDims <= 0 {
		return fmt.Errorf("search.vector_dims must be positive")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
