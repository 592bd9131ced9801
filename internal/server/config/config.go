// Package config handles configuration for the users service: defaults,
// an optional JSON file, environment variables and command-line flags,
// applied in that order.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the users service.
//
// Fields:
//   - HTTPAddr: bind address of the HTTP API.
//   - DatabaseDSN: full PostgreSQL URL; when set it wins over the DB* fields.
//   - DBHost / DBPort / DBName / DBUser / DBPassword / DBSSLMode: connection parts.
//   - DBRetryBase / DBRetryCap / DBRetryMax: startup initialization backoff
//     (first delay, delay cap, attempt limit; 0 means unlimited).
//   - NATSURL / NATSSubjectPrefix: user change events; empty URL disables them.
//   - RateLimitRPS / RateLimitBurst: API rate limit; 0 rps disables it.
//   - LogLevel: debug, info, warn or error.
//   - OTelExporter: where traces and metrics go ("stdout"); empty or "none" disables them.
//   - ShutdownTimeout: how long in-flight requests may drain on shutdown.
type Config struct {
	HTTPAddr          string
	DatabaseDSN       string
	DBHost            string
	DBPort            int
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBRetryBase       time.Duration
	DBRetryCap        time.Duration
	DBRetryMax        uint64
	NATSURL           string
	NATSSubjectPrefix string
	RateLimitRPS      float64
	RateLimitBurst    int
	LogLevel          string
	OTelExporter      string
	ShutdownTimeout   time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.DBHost = "localhost"
	c.DBPort = 5432
	c.DBSSLMode = "disable"
	c.DBRetryBase = 5 * time.Second
	c.DBRetryCap = time.Minute
	c.NATSSubjectPrefix = "users"
	c.LogLevel = "info"
	c.ShutdownTimeout = 5 * time.Second
}

// DotEnvFile is read, if present, as a fallback for the process environment.
const DotEnvFile = ".env"

// LoadConfig builds a Config from defaults, then overlays the JSON file named
// by -c/-config, the process environment (backed by .env) and finally
// command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	lookup, err := dotEnvLookup(DotEnvFile, os.LookupEnv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DotEnvFile, err)
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	return cfg, nil
}

// String renders the config with the password masked.
func (c *Config) String() string {
	dsn := "(built)"
	if c.DatabaseDSN != "" {
		dsn = "(set)"
	}
	return fmt.Sprintf("Config{HTTP: %s, DB: %s:%d/%s user=%s password=*** dsn=%s, NATS: %q, RPS: %g}",
		c.HTTPAddr, c.DBHost, c.DBPort, c.DBName, c.DBUser, dsn, c.NATSURL, c.RateLimitRPS)
}
