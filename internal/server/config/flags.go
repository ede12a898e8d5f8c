package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      token validity, minutes (0 = never expires)
//	-r string   Redis address for the rate limiter (empty disables it)
//	-l int      login/register attempts per minute per client IP
//	-o list     comma-separated CORS allowed origins
//	-v string   log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, so the -c flag handled by the JSON layer does not collide.
func parseFlags(config *Config) {
	parseFlagArgs(config, os.Args[1:])
}

func parseFlagArgs(config *Config, argv []string) {
	args := flagx.FilterArgs(argv, []string{"-a", "-d", "-s", "-t", "-r", "-l", "-o", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	tokenValidity := fs.Int("t", int(config.TokenValidity.Minutes()), "token validity (in minutes, 0 = no expiry)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.IntVar(&config.RateLimitPerMinute, "l", config.RateLimitPerMinute, "auth attempts per minute")
	origins := flagx.StringList(config.CORSAllowedOrigins)
	fs.Var(&origins, "o", "CORS allowed origins")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Minute
	config.CORSAllowedOrigins = origins
}
