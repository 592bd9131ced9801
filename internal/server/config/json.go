package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/usersvc/internal/flagx"
	"github.com/dmitrijs2005/usersvc/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Duration
// fields accept "5s" style strings or integer nanoseconds. Zero values
// leave the current setting untouched.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	DBHost            string         `json:"db_host"`
	DBPort            int            `json:"db_port"`
	DBName            string         `json:"db_name"`
	DBUser            string         `json:"db_user"`
	DBPassword        string         `json:"db_password"`
	DBSSLMode         string         `json:"db_sslmode"`
	DBRetryBase       timex.Duration `json:"db_retry_base"`
	DBRetryCap        timex.Duration `json:"db_retry_cap"`
	DBRetryMax        uint64         `json:"db_retry_max"`
	NATSURL           string         `json:"nats_url"`
	NATSSubjectPrefix string         `json:"nats_subject_prefix"`
	RateLimitRPS      float64        `json:"rate_limit_rps"`
	RateLimitBurst    int            `json:"rate_limit_burst"`
	LogLevel          string         `json:"log_level"`
	OTelExporter      string         `json:"otel_exporter"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config in args.
// Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.DBHost, c.DBHost)
	setString(&config.DBName, c.DBName)
	setString(&config.DBUser, c.DBUser)
	setString(&config.DBPassword, c.DBPassword)
	setString(&config.DBSSLMode, c.DBSSLMode)
	setString(&config.NATSURL, c.NATSURL)
	setString(&config.NATSSubjectPrefix, c.NATSSubjectPrefix)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.OTelExporter, c.OTelExporter)

	if c.DBPort != 0 {
		config.DBPort = c.DBPort
	}
	if c.DBRetryBase.Duration != 0 {
		config.DBRetryBase = c.DBRetryBase.Duration
	}
	if c.DBRetryCap.Duration != 0 {
		config.DBRetryCap = c.DBRetryCap.Duration
	}
	if c.DBRetryMax != 0 {
		config.DBRetryMax = c.DBRetryMax
	}
	if c.RateLimitRPS != 0 {
		config.RateLimitRPS = c.RateLimitRPS
	}
	if c.RateLimitBurst != 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
