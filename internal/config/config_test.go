package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the global config at a temp dir and moves into another
// temp dir so no real config files leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	for _, key := range keys {
		t.Setenv("INTAKE_"+strings.ToUpper(key), "")
		_ = os.Unsetenv("INTAKE_" + strings.ToUpper(key))
	}
	return tmpDir
}

func TestGlobalPath(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := GlobalPath(); got != "/custom/config/intake/intake.yml" {
			t.Errorf("GlobalPath() = %v, want /custom/config/intake/intake.yml", got)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		got := GlobalPath()
		if !filepath.IsAbs(got) {
			t.Errorf("GlobalPath() should return absolute path, got %v", got)
		}
		if !strings.HasSuffix(got, filepath.Join(".config", "intake", "intake.yml")) {
			t.Errorf("GlobalPath() should end with .config/intake/intake.yml, got %v", got)
		}
	})
}

func TestProjectPath(t *testing.T) {
	if got := ProjectPath(); got != "intake.yml" {
		t.Errorf("ProjectPath() = %v, want intake.yml", got)
	}
}

func TestExists(t *testing.T) {
	isolate(t)

	if Exists() {
		t.Error("Exists() = true, want false when no config files exist")
	}

	if err := os.WriteFile(ProjectPath(), []byte("backend: nats\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}
	if !Exists() {
		t.Error("Exists() = false, want true when project config exists")
	}
}

func TestWriteGlobal(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Backend = BackendNATS
	cfg.SubmitLatency = 250 * time.Millisecond
	cfg.LogFile = "/tmp/intake.log"

	if err := WriteGlobal(cfg); err != nil {
		t.Fatalf("WriteGlobal() error = %v", err)
	}

	data, err := os.ReadFile(GlobalPath())
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	content := string(data)
	expectedFields := []string{
		"backend: nats",
		"submit_latency: 250ms",
		"dismiss_delay: 2s",
		"request_timeout: 5s",
		"max_retries: 3",
		"simulate_failure: false",
		"log_file: /tmp/intake.log",
	}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Config file missing expected field: %s\nContent:\n%s", field, content)
		}
	}
}

func TestLoad_NoConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if *cfg != *def {
		t.Errorf("Load() with no config = %+v, want defaults %+v", *cfg, *def)
	}
	if cfg.SubmitLatency != 1500*time.Millisecond {
		t.Errorf("Load() default SubmitLatency = %v, want 1.5s", cfg.SubmitLatency)
	}
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)

	global := Default()
	global.Backend = BackendNATS
	global.MaxRetries = 5
	global.LogLevel = "warn"
	if err := WriteGlobal(global); err != nil {
		t.Fatalf("WriteGlobal() error = %v", err)
	}

	// Project file overrides only the keys it names.
	if err := os.WriteFile(ProjectPath(), []byte("max_retries: 1\ndismiss_delay: 500ms\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}

	// Env overrides both files.
	t.Setenv("INTAKE_LOG_LEVEL", "debug")
	t.Setenv("INTAKE_SIMULATE_FAILURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend != BackendNATS {
		t.Errorf("Backend = %v, want nats from global config", cfg.Backend)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("MaxRetries = %v, want 1 from project config", cfg.MaxRetries)
	}
	if cfg.DismissDelay != 500*time.Millisecond {
		t.Errorf("DismissDelay = %v, want 500ms from project config", cfg.DismissDelay)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug from env", cfg.LogLevel)
	}
	if !cfg.SimulateFailure {
		t.Error("SimulateFailure = false, want true from env")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	isolate(t)

	if err := os.WriteFile(ProjectPath(), []byte("backend: carrier-pigeon\n"), 0644); err != nil {
		t.Fatalf("Failed to write project config: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject an unknown backend")
	}
	if !strings.Contains(err.Error(), "Backend") {
		t.Errorf("error should name the invalid field, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero latency", mutate: func(c *Config) { c.SubmitLatency = 0 }},
		{name: "zero dismiss delay", mutate: func(c *Config) { c.DismissDelay = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.MCPPort = 70000 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
