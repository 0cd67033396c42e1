package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	Storage       StorageConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Session       SessionConfig
	Owner         OwnerConfig
	Password      PasswordConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	Shipping      ShippingConfig
	UPI           UPIConfig
	Sendgrid      SendgridConfig
	FeatureFlags  FeatureFlagsConfig
	CacheSync     CacheSyncConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.IsRemote() || cfg.DB.DSN != "" || cfg.DB.LegacyHost != "" {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WIREBAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"WIREBAZAAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WIREBAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WIREBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WIREBAZAAR_SERVICE_KIND" default:"api"`
}

// StorageConfig selects the single authoritative store for the deployment.
type StorageConfig struct {
	Backend string `envconfig:"WIREBAZAAR_STORAGE_BACKEND" default:"local"`
}

func (s StorageConfig) IsRemote() bool {
	return strings.EqualFold(strings.TrimSpace(s.Backend), StorageBackendRemote)
}

func (s StorageConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case StorageBackendLocal, StorageBackendRemote:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvStorageBackend, StorageBackendLocal, StorageBackendRemote, s.Backend)
	}
}

type DBConfig struct {
	DSN    string `envconfig:"WIREBAZAAR_DB_DSN"`
	Driver string `envconfig:"WIREBAZAAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WIREBAZAAR_DB_HOST"`
	LegacyPort     int    `envconfig:"WIREBAZAAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WIREBAZAAR_DB_USER"`
	LegacyPassword string `envconfig:"WIREBAZAAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"WIREBAZAAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"WIREBAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WIREBAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WIREBAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WIREBAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WIREBAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: without a URL or address the process keeps its
// key-value blobs in memory and change events stay in-process.
type RedisConfig struct {
	URL          string        `envconfig:"WIREBAZAAR_REDIS_URL"`
	Address      string        `envconfig:"WIREBAZAAR_REDIS_ADDR"`
	Password     string        `envconfig:"WIREBAZAAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"WIREBAZAAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WIREBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WIREBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WIREBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WIREBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WIREBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
	EventChannel string        `envconfig:"WIREBAZAAR_REDIS_EVENT_CHANNEL" default:"wb:events"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"WIREBAZAAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WIREBAZAAR_JWT_ISSUER" default:"wirebazaar"`
	ExpirationMinutes int    `envconfig:"WIREBAZAAR_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	TTL time.Duration `envconfig:"WIREBAZAAR_SESSION_TTL" default:"168h"`
}

// OwnerConfig replaces the hardcoded back-office credential with a configured one.
type OwnerConfig struct {
	Email        string `envconfig:"WIREBAZAAR_OWNER_EMAIL" default:"owner@cablehq.com"`
	PasswordHash string `envconfig:"WIREBAZAAR_OWNER_PASSWORD_HASH"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WIREBAZAAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WIREBAZAAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WIREBAZAAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WIREBAZAAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WIREBAZAAR_ARGON_KEY_LEN" default:"32"`
}

type OTPConfig struct {
	TTL         time.Duration `envconfig:"WIREBAZAAR_OTP_TTL" default:"5m"`
	MaxAttempts int           `envconfig:"WIREBAZAAR_OTP_MAX_ATTEMPTS" default:"4"`
	// LogCodes writes generated codes to the log; only honored in dev.
	LogCodes bool `envconfig:"WIREBAZAAR_OTP_LOG_CODES" default:"false"`
}

type AuthRateLimitConfig struct {
	OTPWindow       time.Duration `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPContactLimit int           `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_OTP_CONTACT_LIMIT" default:"3"`
	OTPIPLimit      int           `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
	LoginWindow     time.Duration `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"WIREBAZAAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// ShippingConfig holds the delivery pricing rules.
type ShippingConfig struct {
	FreeThreshold  string `envconfig:"WIREBAZAAR_SHIPPING_FREE_THRESHOLD" default:"5000"`
	LocalPrefix    string `envconfig:"WIREBAZAAR_SHIPPING_LOCAL_PREFIX" default:"4"`
	LocalCost      string `envconfig:"WIREBAZAAR_SHIPPING_LOCAL_COST" default:"50"`
	DefaultCost    string `envconfig:"WIREBAZAAR_SHIPPING_DEFAULT_COST" default:"100"`
	LocalETADays   int    `envconfig:"WIREBAZAAR_SHIPPING_LOCAL_ETA_DAYS" default:"3"`
	DefaultETADays int    `envconfig:"WIREBAZAAR_SHIPPING_DEFAULT_ETA_DAYS" default:"5"`
}

func (s ShippingConfig) validate() error {
	for name, raw := range map[string]string{
		EnvShippingFreeThreshold: s.FreeThreshold,
		EnvShippingLocalCost:     s.LocalCost,
		EnvShippingDefaultCost:   s.DefaultCost,
	} {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s must be a decimal: %w", name, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

type UPIConfig struct {
	VPA       string `envconfig:"WIREBAZAAR_UPI_VPA" default:"merchant@upi"`
	PayeeName string `envconfig:"WIREBAZAAR_UPI_PAYEE_NAME" default:"Wires & Cables Mart"`
	Currency  string `envconfig:"WIREBAZAAR_UPI_CURRENCY" default:"INR"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"WIREBAZAAR_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"WIREBAZAAR_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"WIREBAZAAR_SENDGRID_FROM_NAME" default:"WireBazaar"`
}

func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.DefaultFrom) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite             bool `envconfig:"WIREBAZAAR_USE_SQLITE" default:"false"`
	AutoMigrate           bool `envconfig:"WIREBAZAAR_AUTO_MIGRATE" default:"false"`
	OrderConfirmationMail bool `envconfig:"WIREBAZAAR_FEATURE_ORDER_CONFIRMATION_MAIL" default:"false"`
}

type CacheSyncConfig struct {
	Interval time.Duration `envconfig:"WIREBAZAAR_CACHE_SYNC_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"WIREBAZAAR_CACHE_SYNC_LOCK_TTL" default:"4m"`
	PageSize int           `envconfig:"WIREBAZAAR_CACHE_SYNC_PAGE_SIZE" default:"100"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WIREBAZAAR_CORS_ALLOWED_ORIGINS" default:"*"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:wirebazaar.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
