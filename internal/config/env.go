package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings read from the process environment.
type Env struct {
	DBPath     string `env:"ADAPTYPE_DB"`
	ConfigPath string `env:"ADAPTYPE_CONFIG"`
	LogLevel   string `env:"ADAPTYPE_LOG_LEVEL"`
}

// LoadEnv parses the process environment.
func LoadEnv() (Env, error) {
	e, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// LoadEnvFrom parses the given variables instead of the process environment.
func LoadEnvFrom(vars map[string]string) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, env.Options{Environment: vars}); err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return e, nil
}

// ResolveConfigPath returns the TOML path: ADAPTYPE_CONFIG, then the XDG default.
func (e Env) ResolveConfigPath() string {
	if e.ConfigPath != "" {
		return e.ConfigPath
	}
	return DefaultConfigPath()
}

// ResolveDBPath picks the database path. Precedence: flag, ADAPTYPE_DB, the
// config file, then the XDG default.
func ResolveDBPath(flag string, e Env, file FileConfig) string {
	if flag != "" {
		return flag
	}
	if e.DBPath != "" {
		return e.DBPath
	}
	if file.Store.Path != nil && *file.Store.Path != "" {
		return *file.Store.Path
	}
	return DefaultDBPath()
}

// ResolveLogLevel picks the log level name. Precedence: ADAPTYPE_LOG_LEVEL,
// the config file, then fallback.
func ResolveLogLevel(e Env, file FileConfig, fallback string) string {
	if e.LogLevel != "" {
		return e.LogLevel
	}
	if file.Log.Level != nil && *file.Log.Level != "" {
		return *file.Log.Level
	}
	return fallback
}
