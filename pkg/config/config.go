package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COURIERDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Dispatch     DispatchConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COURIERDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"COURIERDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COURIERDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COURIERDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COURIERDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COURIERDESK_DB_DSN"`
	Driver string `envconfig:"COURIERDESK_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COURIERDESK_DB_HOST"`
	Port     int    `envconfig:"COURIERDESK_DB_PORT" default:"5432"`
	User     string `envconfig:"COURIERDESK_DB_USER"`
	Password string `envconfig:"COURIERDESK_DB_PASSWORD"`
	Name     string `envconfig:"COURIERDESK_DB_NAME"`
	SSLMode  string `envconfig:"COURIERDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COURIERDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COURIERDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COURIERDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COURIERDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COURIERDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COURIERDESK_REDIS_ADDR"`
	Password     string        `envconfig:"COURIERDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"COURIERDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COURIERDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COURIERDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COURIERDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COURIERDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COURIERDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COURIERDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COURIERDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"COURIERDESK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig throttles authenticated write traffic.
type RateLimitConfig struct {
	WriteWindow    time.Duration `envconfig:"COURIERDESK_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteIPLimit   int           `envconfig:"COURIERDESK_RATE_LIMIT_WRITE_IP" default:"300"`
	WriteUserLimit int           `envconfig:"COURIERDESK_RATE_LIMIT_WRITE_USER" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COURIERDESK_AUTO_MIGRATE" default:"false"`
}

// DispatchConfig bounds the fire-and-forget invoice/notification side effects.
type DispatchConfig struct {
	Timeout     time.Duration `envconfig:"COURIERDESK_DISPATCH_TIMEOUT" default:"12s"`
	SMTPAddr    string        `envconfig:"COURIERDESK_DISPATCH_SMTP_ADDR"`
	EmailFrom   string        `envconfig:"COURIERDESK_DISPATCH_EMAIL_FROM" default:"billing@courierdesk.example"`
	EmailTo     string        `envconfig:"COURIERDESK_DISPATCH_EMAIL_TO"`
	WhatsAppURL string        `envconfig:"COURIERDESK_DISPATCH_WHATSAPP_URL"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"COURIERDESK_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"COURIERDESK_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	InvoiceTopic             string `envconfig:"COURIERDESK_PUBSUB_INVOICE_TOPIC" default:"cd-invoice-events"`
	InvoiceSubscription      string `envconfig:"COURIERDESK_PUBSUB_INVOICE_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"COURIERDESK_PUBSUB_NOTIFICATION_TOPIC" default:"cd-notification-events"`
	NotificationSubscription string `envconfig:"COURIERDESK_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COURIERDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COURIERDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COURIERDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"COURIERDESK_DB_HOST": db.Host,
		"COURIERDESK_DB_USER": db.User,
		"COURIERDESK_DB_NAME": db.Name,
	}
	for _, key := range []string{"COURIERDESK_DB_HOST", "COURIERDESK_DB_USER", "COURIERDESK_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either COURIERDESK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
