// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig               `mapstructure:"app"`
	Camunda   CamundaConfig           `mapstructure:"camunda"`
	Database  DatabaseConfig          `mapstructure:"database"`
	Search    SearchConfig            `mapstructure:"search"`
	Embedding EmbeddingConfig         `mapstructure:"embedding"`
	Prompts   PromptsConfig           `mapstructure:"prompts"`
	Registry  RegistryConfig          `mapstructure:"registry"`
	Workers   map[string]WorkerConfig `mapstructure:"workers"`
	Logging   LoggingConfig           `mapstructure:"logging"`
	Server    ServerConfig            `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	SQL           SQLConfig           `mapstructure:"sql"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

// SQLConfig selects the relational store holding the Chinook catalog.
// Driver "sqlite" opens an in-memory database and loads the schema script;
// driver "postgres" connects to an already populated database.
type SQLConfig struct {
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	ScriptURL      string `mapstructure:"script_url"`
	ScriptPath     string `mapstructure:"script_path"`
	ScriptTimeout  int    `mapstructure:"script_timeout"` // milliseconds
}

// GetDSN returns the connection string for the configured driver.
func (s SQLConfig) GetDSN() string {
	if s.DSN != "" {
		return s.DSN
	}
	if s.Driver == DriverSQLite {
		return ":memory:"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.Host, s.Port, s.User, s.Password, s.Database, s.SSLMode,
	)
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// RedisConfig points at the key-value store used for prompts, memory and,
// with the redis search backend, the concert index.
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	PoolSize int    `mapstructure:"pool_size"`
}

const DefaultRedisURL = "redis://localhost:6379"

const (
	SearchBackendRedis         = "redis"
	SearchBackendElasticsearch = "elasticsearch"
)

type SearchConfig struct {
	Backend    string `mapstructure:"backend"`
	IndexName  string `mapstructure:"index_name"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	VectorDims int    `mapstructure:"vector_dims"`
	SeedPath   string `mapstructure:"seed_path"`
	ForceSeed  bool   `mapstructure:"force_seed"`
}

type EmbeddingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type PromptsConfig struct {
	SeedPath  string `mapstructure:"seed_path"`
	ForceSeed bool   `mapstructure:"force_seed"`
}

// RegistryConfig optionally overrides the embedded tool registry.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
