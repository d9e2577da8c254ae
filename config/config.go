// Package config resolves a board connection's parameters from flags
// or environment variables, per SPEC_FULL.md's ambient configuration
// layer.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/mpytool/there/link"
)

// Environment variable names recognized by the CLI, per spec.md §6.
const (
	EnvPort     = "THERE_PORT"
	EnvBaud     = "THERE_BAUD"
	EnvUser     = "THERE_USER"
	EnvPassword = "THERE_PASSWORD"
)

const defaultBaud = 115200

// FromEnv takes a link.Config already populated by cobra/pflag flags
// and fills in, from THERE_* environment variables, only the fields
// the caller left at their zero value — so a flag explicitly given on
// the command line always wins over the environment, and the
// environment only supplies what flags didn't.
func FromEnv(cfg link.Config) link.Config {
	if cfg.Port == "" {
		if v := os.Getenv(EnvPort); v != "" {
			cfg.Port = v
		}
	}
	if cfg.Baud == 0 {
		if v := os.Getenv(EnvBaud); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				cfg.Baud = n
			}
		}
	}
	if cfg.User == "" {
		if v := os.Getenv(EnvUser); v != "" {
			cfg.User = v
		}
	}
	if cfg.Password == "" {
		if v := os.Getenv(EnvPassword); v != "" {
			cfg.Password = v
		}
	}
	if cfg.Baud == 0 {
		cfg.Baud = defaultBaud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return cfg
}
