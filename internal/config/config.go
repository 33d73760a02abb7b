package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSRegion      string
	SNSAlarmTopic  string // empty disables alarm push

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	CoreIoT  CoreIoT
	Training Training

	IngestRatePerSec float64
	IngestBurst      int
	AllowedOrigins   []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Readings      string
	Alarms        string
	Notifications string
}

// CoreIoT configures the remote telemetry platform.
type CoreIoT struct {
	BaseURL   string
	EntityID  string
	Timeout   time.Duration
	RPCMethod string
}

// Training configures forecast retraining.
type Training struct {
	Interval time.Duration
	Window   int
	Workers  int
	Timeout  time.Duration
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3000"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Readings:      getEnv("DYNAMO_TABLE_READINGS", "readings"),
			Alarms:        getEnv("DYNAMO_TABLE_ALARMS", "alarms"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},
		S3BucketName:  getEnv("S3_BUCKET_NAME", "iot-forecast-models"),
		SNSRegion:     getEnv("SNS_REGION", "us-east-1"),
		SNSAlarmTopic: getEnv("SNS_ALARM_TOPIC_ARN", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),

		CoreIoT: CoreIoT{
			BaseURL:   strings.TrimRight(getEnv("COREIOT_BASE_URL", "https://app.coreiot.io"), "/"),
			EntityID:  getEnv("COREIOT_ENTITY_ID", "7af4ea90-e89f-11ef-87b5-21bccf7d29d5"),
			Timeout:   getEnvDuration("COREIOT_TIMEOUT", 10*time.Second),
			RPCMethod: getEnv("COREIOT_RPC_METHOD", "setFanState"),
		},
		Training: Training{
			Interval: getEnvDuration("TRAIN_INTERVAL", 60*time.Second),
			Window:   getEnvInt("TRAIN_WINDOW", 20),
			Workers:  getEnvInt("TRAIN_WORKERS", 4),
			Timeout:  getEnvDuration("TRAIN_TIMEOUT", 30*time.Second),
		},

		IngestRatePerSec: getEnvFloat("INGEST_RATE_PER_SEC", 1),
		IngestBurst:      getEnvInt("INGEST_BURST", 5),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
