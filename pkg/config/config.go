package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cart          CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env            string `envconfig:"SHOPFRONT_APP_ENV" required:"true"`
	Port           string `envconfig:"SHOPFRONT_APP_PORT" required:"true"`
	LogLevel       string `envconfig:"SHOPFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack   bool   `envconfig:"SHOPFRONT_LOG_WARN_STACK" default:"false"`
	FrontendOrigin string `envconfig:"SHOPFRONT_FRONTEND_URL" default:"http://localhost:5174"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPFRONT_DB_DSN"`
	Driver string `envconfig:"SHOPFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPFRONT_DB_USER"`
	LegacyPassword string `envconfig:"SHOPFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPFRONT_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SHOPFRONT_SQLITE_PATH" default:"shopfront.db"`

	MaxOpenConns    int           `envconfig:"SHOPFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPFRONT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPFRONT_JWT_ISSUER" default:"shopfront"`
	ExpirationMinutes      int    `envconfig:"SHOPFRONT_JWT_EXPIRATION_MINUTES" default:"10080"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPFRONT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
	CookieSecure           bool   `envconfig:"SHOPFRONT_JWT_COOKIE_SECURE" default:"true"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPFRONT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPFRONT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPFRONT_AUTO_MIGRATE" default:"false"`
}

// CartConfig tunes how cart mutations are serialized per user.
type CartConfig struct {
	LockBackend     string        `envconfig:"SHOPFRONT_CART_LOCK_BACKEND" default:"local"`
	LockTTL         time.Duration `envconfig:"SHOPFRONT_CART_LOCK_TTL" default:"10s"`
	LockWait        time.Duration `envconfig:"SHOPFRONT_CART_LOCK_WAIT" default:"3s"`
	MaxLineQuantity int           `envconfig:"SHOPFRONT_CART_MAX_LINE_QUANTITY" default:"0"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LockBackend)) {
	case CartLockLocal, CartLockRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvCartLockBackend, CartLockLocal, CartLockRedis)
	}
	if c.LockTTL <= 0 || c.LockWait <= 0 {
		return fmt.Errorf("cart lock ttl and wait must be positive")
	}
	if c.MaxLineQuantity < 0 {
		return fmt.Errorf("%s cannot be negative", EnvCartMaxLineQuantity)
	}
	return nil
}

// UsesRedisLock reports whether cart mutations coordinate through Redis.
func (c CartConfig) UsesRedisLock() bool {
	return strings.EqualFold(strings.TrimSpace(c.LockBackend), CartLockRedis)
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
