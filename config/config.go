package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	MySQL             MySQLConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	PagSeguro         PagSeguroConfig
	Billing           BillingConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type PagSeguroConfig struct {
	BaseURL         string
	Email           string
	Token           string
	NotificationURL string
	HTTPTimeout     time.Duration
}

type BillingConfig struct {
	TransferPendingTTL  time.Duration
	VoucherPendingTTL   time.Duration
	ReconcileStaleAfter time.Duration
	JobBatchSize        int32
}

type JobsConfig struct {
	ReconcileInterval           time.Duration
	ExpirePendingInterval       time.Duration
	ExpireSubscriptionsInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "billing-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		PagSeguro: PagSeguroConfig{
			BaseURL:         getEnv("PAGSEGURO_BASE_URL", "https://ws.pagseguro.uol.com.br"),
			Email:           getEnv("PAGSEGURO_EMAIL", ""),
			Token:           getEnv("PAGSEGURO_TOKEN", ""),
			NotificationURL: getEnv("BILLING_NOTIFICATION_URL", ""),
			HTTPTimeout:     getSecondsEnv("PAGSEGURO_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		Billing: BillingConfig{
			TransferPendingTTL:  getHoursEnv("BILLING_TRANSFER_PENDING_TTL_HOURS", 24*time.Hour),
			VoucherPendingTTL:   getHoursEnv("BILLING_VOUCHER_PENDING_TTL_HOURS", 72*time.Hour),
			ReconcileStaleAfter: getMinutesEnv("BILLING_RECONCILE_STALE_AFTER_MINUTES", 15*time.Minute),
			JobBatchSize:        int32(getIntEnv("BILLING_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			ReconcileInterval:           getMinutesEnv("BILLING_RECONCILE_INTERVAL_MINUTES", 2*time.Minute),
			ExpirePendingInterval:       getMinutesEnv("BILLING_EXPIRE_PENDING_INTERVAL_MINUTES", 5*time.Minute),
			ExpireSubscriptionsInterval: getMinutesEnv("BILLING_EXPIRE_SUBSCRIPTIONS_INTERVAL_MINUTES", 10*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getHoursEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if hours, err := strconv.Atoi(value); err == nil {
			return time.Duration(hours) * time.Hour
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
