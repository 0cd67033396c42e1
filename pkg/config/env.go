package config

const EnvPrefix = "WIREBAZAAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageBackendLocal  = "local"
	StorageBackendRemote = "remote"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv                = "WIREBAZAAR_APP_ENV"
	EnvPort                  = "WIREBAZAAR_APP_PORT"
	EnvStorageBackend        = "WIREBAZAAR_STORAGE_BACKEND"
	EnvDBDSN                 = "WIREBAZAAR_DB_DSN"
	EnvDBHost                = "WIREBAZAAR_DB_HOST"
	EnvDBUser                = "WIREBAZAAR_DB_USER"
	EnvDBName                = "WIREBAZAAR_DB_NAME"
	EnvRedisURL              = "WIREBAZAAR_REDIS_URL"
	EnvJWTSecret             = "WIREBAZAAR_JWT_SECRET"
	EnvJWTIssuer             = "WIREBAZAAR_JWT_ISSUER"
	EnvJWTExpMins            = "WIREBAZAAR_JWT_EXPIRATION_MINUTES"
	EnvOwnerEmail            = "WIREBAZAAR_OWNER_EMAIL"
	EnvOwnerPasswordHash     = "WIREBAZAAR_OWNER_PASSWORD_HASH"
	EnvOTPTTL                = "WIREBAZAAR_OTP_TTL"
	EnvShippingFreeThreshold = "WIREBAZAAR_SHIPPING_FREE_THRESHOLD"
	EnvShippingLocalCost     = "WIREBAZAAR_SHIPPING_LOCAL_COST"
	EnvShippingDefaultCost   = "WIREBAZAAR_SHIPPING_DEFAULT_COST"
	EnvUseSQLite             = "WIREBAZAAR_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
