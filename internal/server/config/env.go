package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
)

const envPrefix = "TASKS_"

// parseEnv overlays TASKS_* environment variables. Variables from dotenvPath
// are loaded first without overriding the real environment; a missing file
// is fine. Malformed numbers panic, like malformed flags.
func parseEnv(config *Config, dotenvPath string) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v, ok := lookup("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := lookup("TOKEN_VALIDITY"); ok {
		config.TokenValidity = time.Duration(mustAtoi("TOKEN_VALIDITY", v)) * time.Minute
	}
	if v, ok := lookup("BCRYPT_COST"); ok {
		config.BcryptCost = mustAtoi("BCRYPT_COST", v)
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		config.RedisAddr = v
	}
	if v, ok := lookup("REDIS_PASSWORD"); ok {
		config.RedisPassword = v
	}
	if v, ok := lookup("REDIS_DB"); ok {
		config.RedisDB = mustAtoi("REDIS_DB", v)
	}
	if v, ok := lookup("RATE_LIMIT"); ok {
		config.RateLimitPerMinute = mustAtoi("RATE_LIMIT", v)
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok {
		var origins flagx.StringList
		_ = origins.Set(v)
		config.CORSAllowedOrigins = origins
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(envPrefix + name)
}

func mustAtoi(name, v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	return n
}
