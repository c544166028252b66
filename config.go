package elexon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL    = "https://data.elexon.co.uk/bmrs/api/v1"
	DefaultSpecSource = "prod-insol-insights-api.json"
)

type AppConfig struct {
	Mode       string
	ApiPort    string
	LogLevel   string
	SpecSource string
	BMRS       struct {
		BaseURL     string
		Timeout     time.Duration
		MaxAttempts int
		RateLimit   float64 // requests per second, 0 disables
	}
	JWTConfig struct {
		Secret string
	}
	NatsConfig struct {
		URL           string
		SubjectPrefix string
	}
	RealtimePort string
	SinkConfig   struct {
		DB struct {
			Type      string
			Host      string
			Port      int
			User      string
			Password  string
			Name      string
			Schema    string
			SSLMode   string
			BatchSize int
		}
		S3 struct {
			Endpoint  string
			Region    string
			AccessKey string
			SecretKey string
			Bucket    string
			Prefix    string
			UseSSL    bool
		}
		Kafka struct {
			Brokers []string
			Topic   string
		}
	}
}

var config AppConfig

// InitConfig loads the configuration and the logger into the package globals.
// A missing env file is not an error; every setting has a default.
func InitConfig(envfile string) error {
	cfg, err := LoadConfig(envfile)
	if err != nil {
		return err
	}
	config = cfg
	Logger = initLogger(cfg.LogLevel)
	return nil
}

func GetConfig() AppConfig {
	return config
}

// LoadConfig reads envfile (when present) and then the process environment.
func LoadConfig(envfile string) (AppConfig, error) {
	if envfile != "" {
		if err := godotenv.Load(envfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("error loading %s file: %w", envfile, err)
		}
	}

	var cfg AppConfig
	var err error

	cfg.Mode = GetEnv("RUN_MODE", "prod")
	cfg.ApiPort = GetEnv("API_PORT", ":8080")
	cfg.LogLevel = GetEnv("LOG_LEVEL", "info")
	cfg.SpecSource = GetEnv("SPEC_SOURCE", DefaultSpecSource)
	cfg.RealtimePort = GetEnv("REALTIME_PORT", ":8081")

	cfg.BMRS.BaseURL = strings.TrimRight(GetEnv("BMRS_BASE_URL", DefaultBaseURL), "/")
	timeout, err := getIntEnv("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		return AppConfig{}, err
	}
	cfg.BMRS.Timeout = time.Duration(timeout) * time.Second
	if cfg.BMRS.MaxAttempts, err = getIntEnv("HTTP_MAX_ATTEMPTS", 5); err != nil {
		return AppConfig{}, err
	}
	if cfg.BMRS.RateLimit, err = getFloatEnv("HTTP_RATE_LIMIT", 0); err != nil {
		return AppConfig{}, err
	}

	cfg.JWTConfig.Secret = GetEnv("JWT_SECRET", "")
	cfg.NatsConfig.URL = GetEnv("NATS_URL", "nats://localhost:4222")
	cfg.NatsConfig.SubjectPrefix = GetEnv("NATS_SUBJECT_PREFIX", "elexon")

	db := &cfg.SinkConfig.DB
	db.Type = GetEnv("SINK_DB_TYPE", "postgres")
	db.Host = GetEnv("SINK_DB_HOST", "localhost")
	if db.Port, err = getIntEnv("SINK_DB_PORT", 5432); err != nil {
		return AppConfig{}, err
	}
	db.User = GetEnv("SINK_DB_USER", "")
	db.Password = GetEnv("SINK_DB_PASSWORD", "")
	db.Name = GetEnv("SINK_DB_NAME", "")
	db.Schema = GetEnv("SINK_DB_SCHEMA", "")
	db.SSLMode = GetEnv("SINK_DB_SSL_MODE", "disable")
	if db.BatchSize, err = getIntEnv("SINK_DB_BATCH_SIZE", 500); err != nil {
		return AppConfig{}, err
	}

	s3 := &cfg.SinkConfig.S3
	s3.Endpoint = GetEnv("SINK_S3_ENDPOINT", "")
	s3.Region = GetEnv("SINK_S3_REGION", "us-east-1")
	s3.AccessKey = GetEnv("SINK_S3_ACCESS_KEY", "")
	s3.SecretKey = GetEnv("SINK_S3_SECRET_KEY", "")
	s3.Bucket = GetEnv("SINK_S3_BUCKET", "")
	s3.Prefix = GetEnv("SINK_S3_PREFIX", "elexon")
	s3.UseSSL = GetEnv("SINK_S3_USE_SSL", "true") == "true"

	if brokers := GetEnv("SINK_KAFKA_BROKERS", ""); brokers != "" {
		cfg.SinkConfig.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.SinkConfig.Kafka.Topic = GetEnv("SINK_KAFKA_TOPIC", "elexon-datasets")

	return cfg, nil
}

func GetEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return value, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return value, nil
}

func initLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    false,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("  %s  ", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
}

// SetLogLevel swaps the global logger for one at the given level.
func SetLogLevel(level string) {
	Logger = initLogger(level)
}
