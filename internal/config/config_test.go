package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Length != nil || cfg.Store.Path != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeFile(t, `
[practice]
length = 120
adaptive = true
seed = 42

[store]
path = "/tmp/adaptype.db"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Length == nil || *cfg.Practice.Length != 120 {
		t.Fatalf("length not decoded: %+v", cfg.Practice)
	}
	if cfg.Practice.Adaptive == nil || !*cfg.Practice.Adaptive {
		t.Fatalf("adaptive not decoded: %+v", cfg.Practice)
	}
	if cfg.Practice.Seed == nil || *cfg.Practice.Seed != 42 {
		t.Fatalf("seed not decoded: %+v", cfg.Practice)
	}
	if cfg.Store.Path == nil || *cfg.Store.Path != "/tmp/adaptype.db" {
		t.Fatalf("store path not decoded: %+v", cfg.Store)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("log level not decoded: %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "[practice]\nwords = 10\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "practice.words") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeFile(t, "[practice\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadEnvFrom(t *testing.T) {
	e, err := LoadEnvFrom(map[string]string{
		"ADAPTYPE_DB":        "/data/a.db",
		"ADAPTYPE_CONFIG":    "/etc/adaptype.toml",
		"ADAPTYPE_LOG_LEVEL": "info",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.DBPath != "/data/a.db" || e.ConfigPath != "/etc/adaptype.toml" || e.LogLevel != "info" {
		t.Fatalf("unexpected env: %+v", e)
	}
	if got := e.ResolveConfigPath(); got != "/etc/adaptype.toml" {
		t.Fatalf("ResolveConfigPath = %q", got)
	}
}

func TestResolveDBPathPrecedence(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	filePath := "/file.db"
	file := FileConfig{Store: StoreConfig{Path: &filePath}}

	if got := ResolveDBPath("/flag.db", Env{DBPath: "/env.db"}, file); got != "/flag.db" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveDBPath("", Env{DBPath: "/env.db"}, file); got != "/env.db" {
		t.Fatalf("env should win, got %q", got)
	}
	if got := ResolveDBPath("", Env{}, file); got != "/file.db" {
		t.Fatalf("file should win, got %q", got)
	}
	want := filepath.Join("/xdg", "adaptype", "adaptype.db")
	if got := ResolveDBPath("", Env{}, FileConfig{}); got != want {
		t.Fatalf("expected default %q, got %q", want, got)
	}
}

func TestResolveLogLevel(t *testing.T) {
	level := "error"
	file := FileConfig{Log: LogConfig{Level: &level}}
	if got := ResolveLogLevel(Env{LogLevel: "debug"}, file, "warn"); got != "debug" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveLogLevel(Env{}, file, "warn"); got != "error" {
		t.Fatalf("got %q", got)
	}
	if got := ResolveLogLevel(Env{}, FileConfig{}, "warn"); got != "warn" {
		t.Fatalf("got %q", got)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	want := filepath.Join("/cfg", "adaptype", "config.toml")
	if got := DefaultConfigPath(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
