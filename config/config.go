package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Queue     QueueConfig     `yaml:"queue"`
	Booking   BookingConfig   `yaml:"booking"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
}

type AppConfig struct {
	Env         string   `yaml:"env"`
	Port        string   `yaml:"port"`
	GinMode     string   `yaml:"gin_mode"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	Seed            bool          `yaml:"seed"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps"`
	Burst   int     `yaml:"burst"`
}

type QueueConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue"`
}

type BookingConfig struct {
	TimeZone         string `yaml:"timezone"`
	MaxAdvanceMonths int    `yaml:"max_advance_months"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	JWTTTL        time.Duration `yaml:"jwt_ttl"`
	AdminUsername string        `yaml:"admin_username"`
	// bcrypt hash; AdminPassword is only a development fallback.
	AdminPasswordHash string `yaml:"admin_password_hash"`
	AdminPassword     string `yaml:"admin_password"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Env:         "development",
			Port:        "8080",
			GinMode:     "debug",
			StaticDir:   "public",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "gourmet_house",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			IdleTimeout:     30 * time.Second,
			ConnectTimeout:  2 * time.Second,
			Seed:            true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   20,
		},
		Queue: QueueConfig{
			Exchange: "gourmet.events",
			Queue:    "gourmet.notifications",
		},
		Booking: BookingConfig{
			TimeZone:         "UTC",
			MaxAdvanceMonths: 3,
		},
		Auth: AuthConfig{
			JWTTTL:        12 * time.Hour,
			AdminUsername: "admin",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads .env, then CONFIG_FILE (yaml) if set, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("APP_ENV", &c.App.Env)
	str("PORT", &c.App.Port)
	str("GIN_MODE", &c.App.GinMode)
	str("STATIC_DIR", &c.App.StaticDir)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.App.CORSOrigins = splitList(v)
	}

	str("DB_DRIVER", &c.Database.Driver)
	str("DATABASE_URL", &c.Database.URL)
	str("DB_HOST", &c.Database.Host)
	integer("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	integer("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	integer("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	duration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	duration("DB_IDLE_TIMEOUT", &c.Database.IdleTimeout)
	duration("DB_CONNECT_TIMEOUT", &c.Database.ConnectTimeout)
	boolean("DB_SEED", &c.Database.Seed)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	boolean("CACHE_ENABLED", &c.Cache.Enabled)
	duration("CACHE_TTL", &c.Cache.TTL)

	boolean("RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	float("RATE_LIMIT_RPS", &c.RateLimit.RPS)
	integer("RATE_LIMIT_BURST", &c.RateLimit.Burst)

	str("RABBITMQ_URL", &c.Queue.URL)
	str("BOOKING_EXCHANGE", &c.Queue.Exchange)
	str("BOOKING_QUEUE", &c.Queue.Queue)

	str("RESTAURANT_TZ", &c.Booking.TimeZone)
	integer("BOOKING_MAX_ADVANCE_MONTHS", &c.Booking.MaxAdvanceMonths)

	str("JWT_SECRET", &c.Auth.JWTSecret)
	duration("JWT_TTL", &c.Auth.JWTTTL)
	str("ADMIN_USERNAME", &c.Auth.AdminUsername)
	str("ADMIN_PASSWORD_HASH", &c.Auth.AdminPasswordHash)
	str("ADMIN_PASSWORD", &c.Auth.AdminPassword)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Booking.MaxAdvanceMonths < 0 {
		return errors.New("BOOKING_MAX_ADVANCE_MONTHS must not be negative")
	}
	if _, err := time.LoadLocation(c.Booking.TimeZone); err != nil {
		return fmt.Errorf("RESTAURANT_TZ: %w", err)
	}
	if c.IsProduction() {
		if c.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in production")
		}
		if c.Auth.AdminPasswordHash == "" {
			return errors.New("ADMIN_PASSWORD_HASH is required in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Location returns the restaurant time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN builds a driver specific connection string unless DATABASE_URL is set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%s",
			d.User, d.Password, d.Host, d.Port, d.Name, d.ConnectTimeout)
	case "sqlite":
		if d.Name == "" {
			return "gourmet_house.db"
		}
		return d.Name
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, int(d.ConnectTimeout.Seconds()))
	}
}

// MaskedUser hides all but the first character of the database user.
func (d DatabaseConfig) MaskedUser() string {
	if d.User == "" {
		return ""
	}
	return d.User[:1] + "***"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
