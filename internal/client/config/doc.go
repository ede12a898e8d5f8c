// Package config loads runtime configuration for the gophtasks CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the task API
//	-d string   path of the local SQLite database
//	-t int      request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8080/api",
//	  "database_path": "tasks.db",
//	  "request_timeout": "10s",
//	  "log_level": "error"
//	}
package config
