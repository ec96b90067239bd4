package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
logging:
  development: true
api:
  port: 9090
x:
  accounts: ["NFLCharean", "AdamSchefter"]
  max_results: 50
  query_max_len: 256
  timeout_seconds: 10
harvest:
  peak_interval_seconds: 30
  off_peak_interval_seconds: 120
  peak_start_hour: 8
  peak_end_hour: 22
storage:
  provider: gcs
  gcs_bucket: ingest-artifacts
  media_prefix: media
ledger:
  dsn: postgres://ingest@localhost:5432/ingest
notify:
  project_id: my-project
  topic: ingest-commits
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !cfg.Logging.Development {
		t.Fatal("expected development logging")
	}
	if cfg.API.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.API.Port)
	}
	if len(cfg.X.Accounts) != 2 || cfg.X.Accounts[0] != "NFLCharean" {
		t.Fatalf("expected accounts to load, got %v", cfg.X.Accounts)
	}
	if cfg.X.MaxResults != 50 || cfg.X.QueryMaxLen != 256 {
		t.Fatalf("expected x overrides to apply: %+v", cfg.X)
	}
	if cfg.X.QuerySuffix != " -is:retweet -is:reply" {
		t.Fatalf("expected default query suffix, got %q", cfg.X.QuerySuffix)
	}
	if cfg.Storage.Provider != "gcs" || cfg.Storage.GCSBucket != "ingest-artifacts" {
		t.Fatalf("expected gcs storage config: %+v", cfg.Storage)
	}
	if cfg.Storage.NewsPrefix != "news/raw" {
		t.Fatalf("expected default news prefix, got %q", cfg.Storage.NewsPrefix)
	}
	if cfg.Ledger.DSN == "" || cfg.Notify.Topic != "ingest-commits" {
		t.Fatalf("expected ledger and notify config: %+v %+v", cfg.Ledger, cfg.Notify)
	}
	if len(cfg.Odds.PropMarkets) == 0 || cfg.Odds.PropMarkets[0] != "player_receptions" {
		t.Fatalf("expected default prop markets, got %v", cfg.Odds.PropMarkets)
	}
	if got := cfg.PeakInterval(); got != 30*time.Second {
		t.Fatalf("expected peak interval 30s, got %v", got)
	}
	if got := cfg.OffPeakInterval(); got != 120*time.Second {
		t.Fatalf("expected off-peak interval 120s, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		X: XConfig{
			MaxResults:     100,
			QueryClause:    "from:%s",
			QueryMaxLen:    512,
			TimeoutSeconds: 20,
		},
		Harvest: HarvestConfig{
			PeakIntervalSeconds:    60,
			OffPeakIntervalSeconds: 300,
			PeakStartHour:          9,
			PeakEndHour:            23,
		},
		Storage: StorageConfig{Provider: "memory"},
	}

	tests := []struct {
		name string
		cfg  func() Config
		want string
	}{
		{
			name: "max results out of range",
			cfg: func() Config {
				c := base
				c.X.MaxResults = 101
				return c
			},
			want: "x.max_results",
		},
		{
			name: "missing clause placeholder",
			cfg: func() Config {
				c := base
				c.X.QueryClause = "from:"
				return c
			},
			want: "x.query_clause",
		},
		{
			name: "zero interval",
			cfg: func() Config {
				c := base
				c.Harvest.OffPeakIntervalSeconds = 0
				return c
			},
			want: "harvest intervals",
		},
		{
			name: "gcs without bucket",
			cfg: func() Config {
				c := base
				c.Storage = StorageConfig{Provider: "gcs"}
				return c
			},
			want: "storage.gcs_bucket",
		},
		{
			name: "unknown provider",
			cfg: func() Config {
				c := base
				c.Storage.Provider = "s3"
				return c
			},
			want: "unknown storage provider",
		},
		{
			name: "notify half configured",
			cfg: func() Config {
				c := base
				c.Notify.Topic = "commits"
				return c
			},
			want: "notify.project_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg().Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBearerTokenFallback(t *testing.T) {
	t.Setenv("INGEST_X_BEARER_TOKEN", "")
	t.Setenv("BEARER_TOKEN", "fallback-token")

	tok, err := BearerToken()
	if err != nil {
		t.Fatalf("BearerToken() error = %v", err)
	}
	if tok != "fallback-token" {
		t.Fatalf("expected fallback token, got %q", tok)
	}

	t.Setenv("BEARER_TOKEN", "")
	if _, err := BearerToken(); err == nil {
		t.Fatal("expected error when no token is set")
	}
}
