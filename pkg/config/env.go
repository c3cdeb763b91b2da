package config

const EnvPrefix = "SHOPFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartLockLocal = "local"
	CartLockRedis = "redis"
)

const (
	EnvAppEnv                 = "SHOPFRONT_APP_ENV"
	EnvPort                   = "SHOPFRONT_APP_PORT"
	EnvDBDSN                  = "SHOPFRONT_DB_DSN"
	EnvDBHost                 = "SHOPFRONT_DB_HOST"
	EnvDBUser                 = "SHOPFRONT_DB_USER"
	EnvDBName                 = "SHOPFRONT_DB_NAME"
	EnvDBPassword             = "SHOPFRONT_DB_PASSWORD"
	EnvRedisURL               = "SHOPFRONT_REDIS_URL"
	EnvJWTSecret              = "SHOPFRONT_JWT_SECRET"
	EnvJWTIssuer              = "SHOPFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPFRONT_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "SHOPFRONT_USE_SQLITE"
	EnvCartLockBackend        = "SHOPFRONT_CART_LOCK_BACKEND"
	EnvCartMaxLineQuantity    = "SHOPFRONT_CART_MAX_LINE_QUANTITY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
