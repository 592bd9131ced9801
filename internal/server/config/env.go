package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// dotEnvLookup returns a LookupFunc that asks next first and falls back to
// the KEY=value pairs of the file at path. A missing file is not an error.
// The process environment is left untouched.
func dotEnvLookup(path string, next LookupFunc) (LookupFunc, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return next, nil
		}
		return nil, err
	}

	return func(key string) (string, bool) {
		if v, ok := next(key); ok {
			return v, true
		}
		v, ok := vals[key]
		return v, ok
	}, nil
}

// parseEnv overlays values from environment variables. PORT and the DB_*
// names are the ones the service has always been deployed with.
func parseEnv(config *Config, lookup LookupFunc) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		config.HTTPAddr = ":" + v
	}

	for key, dst := range map[string]*string{
		"DATABASE_DSN":        &config.DatabaseDSN,
		"DB_SERVER":           &config.DBHost,
		"DB_NAME":             &config.DBName,
		"DB_USER":             &config.DBUser,
		"DB_PASSWORD":         &config.DBPassword,
		"DB_SSLMODE":          &config.DBSSLMode,
		"NATS_URL":            &config.NATSURL,
		"NATS_SUBJECT_PREFIX": &config.NATSSubjectPrefix,
		"LOG_LEVEL":           &config.LogLevel,
		"OTEL_EXPORTER":       &config.OTelExporter,
	} {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var err error
	if v, ok := lookup("DB_PORT"); ok && v != "" {
		if config.DBPort, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid integer for DB_PORT: %w", err)
		}
	}
	if v, ok := lookup("DB_RETRY_BASE"); ok && v != "" {
		if config.DBRetryBase, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid duration for DB_RETRY_BASE: %w", err)
		}
	}
	if v, ok := lookup("DB_RETRY_CAP"); ok && v != "" {
		if config.DBRetryCap, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid duration for DB_RETRY_CAP: %w", err)
		}
	}
	if v, ok := lookup("DB_RETRY_MAX"); ok && v != "" {
		if config.DBRetryMax, err = strconv.ParseUint(v, 10, 64); err != nil {
			return fmt.Errorf("invalid integer for DB_RETRY_MAX: %w", err)
		}
	}
	if v, ok := lookup("RATE_LIMIT_RPS"); ok && v != "" {
		if config.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid number for RATE_LIMIT_RPS: %w", err)
		}
	}
	if v, ok := lookup("RATE_LIMIT_BURST"); ok && v != "" {
		if config.RateLimitBurst, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid integer for RATE_LIMIT_BURST: %w", err)
		}
	}

	return nil
}
