package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable this service reads.
	EnvPrefix = "vastra"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VASTRA_DB_DSN"
	EnvDBHost = "VASTRA_DB_HOST"
	EnvDBUser = "VASTRA_DB_USER"
	EnvDBName = "VASTRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	Address      AddressConfig
	Razorpay     RazorpayConfig
	ImageKit     ImageKitConfig
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
	Env          string `envconfig:"VASTRA_APP_ENV" required:"true"`
	Port         string `envconfig:"VASTRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VASTRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VASTRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VASTRA_DB_DSN"`
	Driver string `envconfig:"VASTRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VASTRA_DB_HOST"`
	LegacyPort     int    `envconfig:"VASTRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VASTRA_DB_USER"`
	LegacyPassword string `envconfig:"VASTRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VASTRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VASTRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VASTRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VASTRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VASTRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VASTRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VASTRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VASTRA_REDIS_ADDR"`
	Password     string        `envconfig:"VASTRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VASTRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VASTRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VASTRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VASTRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VASTRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VASTRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VASTRA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VASTRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VASTRA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VASTRA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VASTRA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VASTRA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VASTRA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VASTRA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VASTRA_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VASTRA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VASTRA_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig holds the pricing rules applied at quote and order time.
// PromoPercents maps promo codes to their percentage discount, as
// comma-separated code:percent pairs in the environment.
type CheckoutConfig struct {
	FreeShippingThreshold int64            `envconfig:"VASTRA_FREE_SHIPPING_THRESHOLD" default:"999"`
	FlatShippingFee       int64            `envconfig:"VASTRA_FLAT_SHIPPING_FEE" default:"99"`
	PromoPercents         map[string]int64 `envconfig:"VASTRA_PROMO_PERCENTS" default:"WELCOME10:10,FESTIVE20:20"`
}

// AddressConfig controls address-book policy decisions.
type AddressConfig struct {
	// PromoteDefaultOnDelete promotes the most recently created remaining
	// address to default when the current default is deleted. Off by default:
	// the user picks the next default themselves.
	PromoteDefaultOnDelete bool `envconfig:"VASTRA_ADDRESS_PROMOTE_DEFAULT_ON_DELETE" default:"false"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"VASTRA_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"VASTRA_RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"VASTRA_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
}

// Configured reports whether gateway credentials were provided.
func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type ImageKitConfig struct {
	PrivateKey  string `envconfig:"VASTRA_IMAGEKIT_PRIVATE_KEY"`
	PublicKey   string `envconfig:"VASTRA_IMAGEKIT_PUBLIC_KEY"`
	URLEndpoint string `envconfig:"VASTRA_IMAGEKIT_URL_ENDPOINT"`
	BaseURL     string `envconfig:"VASTRA_IMAGEKIT_BASE_URL" default:"https://upload.imagekit.io"`
}

// Configured reports whether media storage credentials were provided.
func (i ImageKitConfig) Configured() bool {
	return strings.TrimSpace(i.PrivateKey) != "" && strings.TrimSpace(i.PublicKey) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
