package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/apikit/errors"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "apikit"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug log level, got %q", cfg.Logging.Level)
		}
		if cfg.Logging.ServiceName != "apikit" {
			t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
		}
	})

	t.Run("production keeps debug false and info level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "apikit", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info log level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		c := ServiceConfig{Name: "apikit", Environment: env}
		c.Logging.ApplyDefaults()
		return c
	}
	badLogging := valid("production")
	badLogging.Logging.Format = "xml"

	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", valid("development"), false, ""},
		{"valid staging", valid("staging"), false, ""},
		{"valid production", valid("production"), false, ""},
		{"missing name", ServiceConfig{Environment: "production"}, true, "name is required"},
		{"invalid environment", valid("qa"), true, "environment must be one of"},
		{"invalid logging", badLogging, true, "logging.format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), tc.errMsg) {
					t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
				}
				if !errors.IsAppError(err) {
					t.Errorf("expected AppError, got %T", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	HTTP          struct {
		BaseURL string `mapstructure:"base_url"`
		Timeout string `mapstructure:"timeout"`
	} `mapstructure:"http"`

	defaulted bool
}

func (c *testConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.defaulted = true
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: apikit
environment: staging
http:
  base_url: https://api.example.com
  timeout: 5s
`)

	var cfg testConfig
	if err := LoadConfig("apikit-yaml-test", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "apikit" {
		t.Errorf("expected name 'apikit', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.HTTP.BaseURL != "https://api.example.com" {
		t.Errorf("expected base url from file, got %q", cfg.HTTP.BaseURL)
	}
	if !cfg.defaulted {
		t.Error("expected ApplyDefaults to run after loading")
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected logging defaults applied, got format %q", cfg.Logging.Format)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: apikit
http:
  base_url: https://file.example.com
`)
	t.Setenv("APIKITENVTEST_HTTP_BASE_URL", "https://env.example.com")
	t.Setenv("OTHER_HTTP_BASE_URL", "https://ignored.example.com")

	var cfg testConfig
	if err := LoadConfig("apikitenvtest", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.HTTP.BaseURL != "https://env.example.com" {
		t.Errorf("expected env override, got %q", cfg.HTTP.BaseURL)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "DOTENVTEST_NAME=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("DOTENVTEST_NAME") })

	var cfg testConfig
	err := LoadConfig("dotenvtest", &cfg,
		WithFileSystem(&mockFS{files: map[string]bool{envPath: true}, real: true}),
		WithEnvFile(envPath),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("expected name from .env, got %q", cfg.Name)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("apikit", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestLoadConfigNothingFound(t *testing.T) {
	var cfg struct {
		Name string `mapstructure:"name"`
	}
	err := LoadConfig("nothing-here", &cfg, WithFileSystem(&mockFS{files: map[string]bool{}}))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed without files, got %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("expected empty config, got name %q", cfg.Name)
	}
}

type validatedConfig struct {
	ServiceConfig `mapstructure:",squash"`
}

func (c *validatedConfig) Validate() error { return c.ServiceConfig.Validate() }

func TestLoadConfigRunsValidate(t *testing.T) {
	var cfg validatedConfig
	err := LoadConfig("nothing-here", &cfg, WithFileSystem(&mockFS{files: map[string]bool{}}))
	if err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]bool
		want  string
	}{
		{"root wins", map[string]bool{"./config.yml": true, "./cmd/apikit/config.yml": true}, "./config.yml"},
		{"cmd dir", map[string]bool{"./cmd/apikit/config.yml": true}, "./cmd/apikit/config.yml"},
		{"config dir", map[string]bool{"./config/config.yml": true}, "./config/config.yml"},
		{"user config dir", map[string]bool{"/home/u/.config/apikit/config.yml": true}, "/home/u/.config/apikit/config.yml"},
		{"none", map[string]bool{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &Resolver{FileSystem: &mockFS{files: tc.files}}
			files := resolver.ResolveFiles("apikit", LoaderConfig{})
			if files.ConfigFile != tc.want {
				t.Errorf("expected %q, got %q", tc.want, files.ConfigFile)
			}
		})
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./config.yml": true, "./.env": true}}}
	files := resolver.ResolveFiles("apikit", LoaderConfig{ConfigFile: "/etc/apikit.yml", EnvFile: "/etc/apikit.env"})
	if files.ConfigFile != "/etc/apikit.yml" || files.EnvFile != "/etc/apikit.env" {
		t.Errorf("explicit paths should be returned as-is, got %+v", files)
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := EnvPrefix("api-kit"); got != "API_KIT" {
		t.Errorf("EnvPrefix = %q, want API_KIT", got)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("HTTP_BASE_URL")
	for _, want := range []string{"http_base_url", "http.base.url", "http.base_url", "http_base.url"} {
		found := false
		for _, v := range variants {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", want, variants)
		}
	}
	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("single-part key should map to itself, got %v", got)
	}
}

type mockFS struct {
	files map[string]bool
	real  bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	if m.real {
		return (&RealFileSystem{}).LoadEnv(path)
	}
	return nil
}
func (m *mockFS) UserConfigDir() (string, error) { return "/home/u/.config", nil }
