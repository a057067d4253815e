package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	ServiceName string `validate:"required"`

	HTTPHost          string        `validate:"required"`
	HTTPPort          string        `validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `validate:"gt=0"`
	ShutdownTimeout   time.Duration `validate:"gt=0"`
	CORSOrigins       []string      `validate:"min=1,dive,required"`

	StorageDriver string `validate:"oneof=memory redis"`
	BookingsKey   string `validate:"required"`
	RedisAddr     string `validate:"required_if=StorageDriver redis"`
	RedisUser     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	PaymentDelay       time.Duration `validate:"gte=0"`
	CheckoutSessionTTL time.Duration `validate:"gt=0"`
	CheckoutSweepSpec  string        `validate:"required"`
	SeedDemoBookings   bool

	LogLevel  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `validate:"oneof=text json"`
}

// reader collects the first parse failure per variable.
type reader struct {
	errs []error
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	return def
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return d
}

func (r *reader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return n
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))

		return def
	}

	return b
}

func (r *reader) list(key, def string) []string {
	var out []string

	for _, part := range strings.Split(r.str(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

// Load reads the given dotenv files, then the process environment. Variables
// already set in the environment win over the files. Missing files are skipped.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %v: %w", f, err)
		}
	}

	return FromEnv()
}

func FromEnv() (*Config, error) {
	r := &reader{}

	conf := &Config{
		ServiceName:        r.str("SERVICE_NAME", "luxestay"),
		HTTPHost:           r.str("HTTP_HOST", "localhost"),
		HTTPPort:           r.str("HTTP_PORT", "8092"),
		ReadHeaderTimeout:  r.duration("HTTP_READ_HEADER_TIMEOUT", 20*time.Second), //nolint:gomnd
		ShutdownTimeout:    r.duration("SHUTDOWN_TIMEOUT", 4*time.Second),          //nolint:gomnd
		CORSOrigins:        r.list("CORS_ALLOWED_ORIGINS", "*"),
		StorageDriver:      strings.ToLower(r.str("STORAGE_DRIVER", DriverMemory)),
		BookingsKey:        r.str("BOOKINGS_KEY", "luxestay_bookings"),
		RedisAddr:          r.str("REDIS_ADDR", ""),
		RedisUser:          r.str("REDIS_USER", ""),
		RedisPassword:      r.str("REDIS_PASSWORD", ""),
		RedisDB:            r.integer("REDIS_DB", 0),
		PaymentDelay:       r.duration("PAYMENT_DELAY", 2*time.Second),        //nolint:gomnd
		CheckoutSessionTTL: r.duration("CHECKOUT_SESSION_TTL", 30*time.Minute), //nolint:gomnd
		CheckoutSweepSpec:  r.str("CHECKOUT_SWEEP_SPEC", "@every 1m"),
		SeedDemoBookings:   r.boolean("SEED_DEMO_BOOKINGS", false),
		LogLevel:           strings.ToLower(r.str("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(r.str("LOG_FORMAT", "text")),
	}

	if len(r.errs) > 0 {
		return nil, fmt.Errorf("parse config: %w", errors.Join(r.errs...))
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return conf, nil
}

// Addr is the listen address of the http server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTPHost, c.HTTPPort)
}
