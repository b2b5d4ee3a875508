package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Index:    IndexConfig{Addresses: []string{"http://localhost:9200"}},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Database.Driver != DriverRedis {
		t.Errorf("expected driver %q, got %q", DriverRedis, cfg.Database.Driver)
	}
	if cfg.Index.Name != "users" {
		t.Errorf("expected index users, got %q", cfg.Index.Name)
	}
	if cfg.Search.ClusterThreshold != 100 || cfg.Search.FallbackDistanceKm != 25 || cfg.Search.RecencyDays != 90 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if len(cfg.Search.LegacyLocales) != 2 {
		t.Errorf("expected default legacy locales, got %v", cfg.Search.LegacyLocales)
	}
	if cfg.Repair.QueueSize != 256 || cfg.Repair.RatePerSec != 5 {
		t.Errorf("unexpected repair defaults: %+v", cfg.Repair)
	}
}

func TestApplyDefaults_KeepsExplicitEmptyLegacyLocales(t *testing.T) {
	cfg := validConfig()
	cfg.Search.LegacyLocales = []string{}
	cfg.ApplyDefaults()
	if len(cfg.Search.LegacyLocales) != 0 {
		t.Errorf("explicit empty list must be kept, got %v", cfg.Search.LegacyLocales)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid redis", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"redis without addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"sqlite without path", func(c *Config) { c.Database.Driver = DriverSQLite }, "database.path"},
		{"sqlite with path", func(c *Config) {
			c.Database.Driver = DriverSQLite
			c.Database.Path = "matchdex.db"
		}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"no index", func(c *Config) { c.Index.Addresses = nil }, "index.addresses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("MATCHDEX_ES_URL", "http://es:9200")

	cfg, err := Parse([]byte(`
http:
  port: ${MATCHDEX_PORT:-8081}
database:
  addrs: ["localhost:6379"]
index:
  addresses: ["${MATCHDEX_ES_URL}"]
search:
  cluster_threshold: 50
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("expected default port 8081, got %d", cfg.HTTP.Port)
	}
	if cfg.Index.Addresses[0] != "http://es:9200" {
		t.Errorf("expected expanded address, got %v", cfg.Index.Addresses)
	}
	if cfg.Search.ClusterThreshold != 50 {
		t.Errorf("expected threshold 50, got %d", cfg.Search.ClusterThreshold)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if cfg.HTTP.Port == 0 || len(cfg.Index.Addresses) == 0 {
		t.Errorf("unexpected local config: %+v", cfg)
	}
}
