package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
	"github.com/dmitrijs2005/gophtasks/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Durations accept either strings such as "1h" or integer nanoseconds.
// Keys that are absent leave the current value untouched, which is why the
// numeric fields are pointers: an explicit 0 is meaningful for token_validity.
type JsonConfig struct {
	HTTPAddr           string          `json:"http_addr"`
	DatabaseDSN        string          `json:"database_dsn"`
	SecretKey          string          `json:"secret_key"`
	TokenValidity      *timex.Duration `json:"token_validity"`
	BcryptCost         *int            `json:"bcrypt_cost"`
	RedisAddr          *string         `json:"redis_addr"`
	RedisPassword      *string         `json:"redis_password"`
	RedisDB            *int            `json:"redis_db"`
	RateLimitPerMinute *int            `json:"rate_limit_per_minute"`
	CORSAllowedOrigins []string        `json:"cors_allowed_origins"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	ShutdownTimeout    *timex.Duration `json:"shutdown_timeout"`
	LogLevel           string          `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. Without the flag nothing is loaded. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidity != nil {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.RedisAddr != nil {
		config.RedisAddr = *c.RedisAddr
	}
	if c.RedisPassword != nil {
		config.RedisPassword = *c.RedisPassword
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.RateLimitPerMinute != nil {
		config.RateLimitPerMinute = *c.RateLimitPerMinute
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
