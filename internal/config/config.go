package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Storage drivers selectable with DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// MailConfig is the SMTP relay used for order notifications.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// CloudinaryConfig holds the credentials for signed uploads and image
// deletion.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env  string // APP_ENV
	Port string // APP_PORT

	DBDriver    string // DB_DRIVER: mongo, mysql or memory
	DatabaseURL string // DATABASE_URL: mongodb:// URI or MySQL DSN
	DBName      string // DB_NAME: mongo database name

	JWTSecret        string        // JWT_SECRET, signs access tokens
	JWTRefreshSecret string        // JWT_REFRESH_SECRET, signs refresh tokens
	AccessTTL        time.Duration // ACCESS_TOKEN_TTL
	RefreshTTL       time.Duration // REFRESH_TOKEN_TTL
	BcryptCost       int           // BCRYPT_COST
	AuthHeader       string        // AUTH_HEADER

	Cloudinary    CloudinaryConfig
	Mail          MailConfig
	OrderNotifyTo string // ORDER_NOTIFY_TO
	RabbitMQURL   string // RABBITMQ_URL; empty sends mail in-process

	OrderTotalPolicy       string          // ORDER_TOTAL_POLICY: log, reject or off
	OrderTotalTolerance    decimal.Decimal // ORDER_TOTAL_TOLERANCE
	OrderStrictTransitions bool            // ORDER_STRICT_TRANSITIONS

	CORSOrigins   []string // CORS_ORIGINS, comma separated
	SnowflakeNode int64    // SNOWFLAKE_NODE

	Redis     RedisConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// Load reads the process environment. Missing or malformed required
// variables abort the program with a fatal log message.
func Load() Config {
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse builds a Config from lookup and reports every missing or
// malformed variable at once.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	e := env(lookup)
	p := &parser{env: e}

	cfg := Config{
		Env:      e.str("APP_ENV", "dev"),
		Port:     e.str("APP_PORT", "8080"),
		DBDriver: strings.ToLower(e.str("DB_DRIVER", DriverMongo)),
		DBName:   e.str("DB_NAME", "distributor_orders"),

		JWTSecret:        p.must("JWT_SECRET"),
		JWTRefreshSecret: p.must("JWT_REFRESH_SECRET"),
		AccessTTL:        p.duration("ACCESS_TOKEN_TTL", 7*24*time.Hour),
		RefreshTTL:       p.duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		BcryptCost:       p.intIn("BCRYPT_COST", 10, 4, 31),
		AuthHeader:       e.str("AUTH_HEADER", "Authorization"),

		Cloudinary: CloudinaryConfig{
			CloudName: p.must("CLOUDINARY_CLOUD_NAME"),
			APIKey:    p.must("CLOUDINARY_API_KEY"),
			APISecret: p.must("CLOUDINARY_API_SECRET"),
		},
		Mail: MailConfig{
			Host:     p.must("EMAIL_HOST"),
			Port:     p.mustInt("EMAIL_PORT"),
			User:     p.must("EMAIL_USER"),
			Password: p.must("EMAIL_PASS"),
			From:     p.must("EMAIL_FROM"),
		},
		OrderNotifyTo: p.must("ORDER_NOTIFY_TO"),
		RabbitMQURL:   e.str("RABBITMQ_URL", ""),

		OrderTotalPolicy:       strings.ToLower(e.str("ORDER_TOTAL_POLICY", "log")),
		OrderTotalTolerance:    p.decimal("ORDER_TOTAL_TOLERANCE", decimal.RequireFromString("0.01")),
		OrderStrictTransitions: e.flag("ORDER_STRICT_TRANSITIONS", false),

		CORSOrigins:   e.list("CORS_ORIGINS"),
		SnowflakeNode: int64(p.intIn("SNOWFLAKE_NODE", 1, 0, 1023)),

		Redis:     loadRedisConfig(e),
		Cache:     loadCacheConfig(e),
		RateLimit: loadRateLimitConfig(e),
	}

	switch cfg.DBDriver {
	case DriverMongo, DriverMySQL:
		cfg.DatabaseURL = p.must("DATABASE_URL")
	case DriverMemory:
		cfg.DatabaseURL = e.str("DATABASE_URL", "")
	default:
		p.fail("DB_DRIVER must be mongo, mysql or memory, got %q", cfg.DBDriver)
	}
	switch cfg.OrderTotalPolicy {
	case "log", "reject", "off":
	default:
		p.fail("ORDER_TOTAL_POLICY must be log, reject or off, got %q", cfg.OrderTotalPolicy)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		p.fail("token TTLs must be positive")
	}
	return cfg, errors.Join(p.errs...)
}

// parser collects errors instead of stopping at the first one.
type parser struct {
	env  env
	errs []error
}

func (p *parser) fail(format string, args ...any) {
	p.errs = append(p.errs, fmt.Errorf(format, args...))
}

// must retrieves the value of a required environment variable.
func (p *parser) must(key string) string {
	v := p.env.str(key, "")
	if v == "" {
		p.fail("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value into an integer.
func (p *parser) mustInt(key string) int {
	s := p.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fail("invalid int for %s: %q", key, s)
	}
	return n
}

func (p *parser) intIn(key string, def, lo, hi int) int {
	s := p.env.str(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		p.fail("%s must be an integer in [%d, %d], got %q", key, lo, hi, s)
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	s := p.env.str(key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		p.fail("invalid duration for %s: %q", key, s)
		return def
	}
	return d
}

func (p *parser) decimal(key string, def decimal.Decimal) decimal.Decimal {
	s := p.env.str(key, "")
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		p.fail("invalid non-negative decimal for %s: %q", key, s)
		return def
	}
	return d
}
