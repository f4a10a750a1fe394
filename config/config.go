package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by PREFILL_BACKEND
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"fern-api"`
	Port                          int      `env:"PORT" env-default:"3000"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	ReadHeaderTimeoutSeconds      int      `env:"HTTP_SERVER_READ_HEADER_TIMEOUT_SECONDS" env-default:"10"`
	ShutdownTimeoutSeconds        int      `env:"HTTP_SERVER_SHUTDOWN_TIMEOUT_SECONDS" env-default:"15"`
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,PUT,DELETE"`
	StartupMaxAttempts            int      `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Prefill backend: memory, redis or postgres
	PrefillBackend string `env:"PREFILL_BACKEND" env-default:"memory"`
	// Return successful providers when one of them fails
	PrefillPartialResults bool `env:"PREFILL_PARTIAL_RESULTS" env-default:"false"`

	// Redis
	RedisHost      string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort      int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword  string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB        int    `env:"REDIS_DB" env-default:"0"`
	RedisNamespace string `env:"REDIS_NAMESPACE" env-default:"fern"`
	// Expiration of persisted mapping sets, 0 keeps them forever
	RedisTTL time.Duration `env:"REDIS_TTL" env-default:"0s"`

	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:""`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:""`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"fern"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SSL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Kafka mapping change events
	KafkaEnabled        bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers        []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaMappingsTopic  string   `env:"KAFKA_MAPPINGS_TOPIC" env-default:"prefill-mappings"`
	KafkaBatchSize      int      `env:"KAFKA_BATCH_SIZE" env-default:"1"`
	KafkaBatchTimeoutMs int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"10"`
	KafkaRequiredAcks   int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression    string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
	KafkaWriteTimeoutMs int      `env:"KAFKA_WRITE_TIMEOUT_MS" env-default:"10000"`

	// Blueprint API; when the base URL is empty the sample graph is served
	GraphAPIBaseURL     string `env:"GRAPH_API_BASE_URL" env-default:""`
	GraphTenantID       string `env:"GRAPH_TENANT_ID" env-default:"tenant1"`
	GraphBlueprintID    string `env:"GRAPH_BLUEPRINT_ID" env-default:"bp_01jk766tckfwx84xjcxazggzyc"`
	GraphTimeoutSeconds int    `env:"GRAPH_TIMEOUT_SECONDS" env-default:"10"`

	// Tracing exporter: otlp, console or empty to disable
	TracingExporter     string `env:"TRACING_EXPORTER" env-default:""`
	TracingOTLPEndpoint string `env:"TRACING_OTLP_ENDPOINT" env-default:"localhost:4317"`
	TracingOTLPProtocol string `env:"TRACING_OTLP_PROTOCOL" env-default:"grpc"`
	TracingOTLPInsecure bool   `env:"TRACING_OTLP_INSECURE" env-default:"true"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(viper.New())
}

// LoadFrom populates a Config from v. Every field is bound to the variable
// named by its env tag and defaults to its env-default tag.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	fields := reflect.TypeOf(Config{})
	for i := 0; i < fields.NumField(); i++ {
		field := fields.Field(i)
		if key, ok := field.Tag.Lookup("env"); ok {
			v.SetDefault(key, field.Tag.Get("env-default"))
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg,
		func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "env"
		},
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToListHook,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// stringToListHook splits comma separated values, dropping blank entries.
func stringToListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}

	values := []string{}
	for _, part := range strings.Split(data.(string), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.PrefillBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown PREFILL_BACKEND '%s'", c.PrefillBackend)
	}

	switch c.TracingExporter {
	case "", "otlp", "console":
	default:
		return fmt.Errorf("unknown TRACING_EXPORTER '%s'", c.TracingExporter)
	}

	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	return nil
}
