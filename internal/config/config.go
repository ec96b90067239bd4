// Package config loads and validates ingest service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	API     APIConfig     `mapstructure:"api"`
	X       XConfig       `mapstructure:"x"`
	Harvest HarvestConfig `mapstructure:"harvest"`
	Storage StorageConfig `mapstructure:"storage"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Odds    OddsConfig    `mapstructure:"odds"`
	Feeds   FeedsConfig   `mapstructure:"feeds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// APIConfig controls the operational HTTP surface. Port 0 disables it.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// XConfig governs the recent-search harvester.
type XConfig struct {
	Accounts       []string `mapstructure:"accounts"`
	BaseURL        string   `mapstructure:"base_url"`
	MaxResults     int      `mapstructure:"max_results"`
	QueryClause    string   `mapstructure:"query_clause"`
	QuerySuffix    string   `mapstructure:"query_suffix"`
	QueryMaxLen    int      `mapstructure:"query_max_len"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// HarvestConfig sets tick pacing. Peak hours are local to the reference zone.
type HarvestConfig struct {
	PeakIntervalSeconds    int `mapstructure:"peak_interval_seconds"`
	OffPeakIntervalSeconds int `mapstructure:"off_peak_interval_seconds"`
	PeakStartHour          int `mapstructure:"peak_start_hour"`
	PeakEndHour            int `mapstructure:"peak_end_hour"`
}

// StorageConfig selects the blob backend and key prefixes.
type StorageConfig struct {
	Provider    string `mapstructure:"provider"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	LocalDir    string `mapstructure:"local_dir"`
	NewsPrefix  string `mapstructure:"news_prefix"`
	MediaPrefix string `mapstructure:"media_prefix"`
	RefPrefix   string `mapstructure:"ref_prefix"`
	OddsPrefix  string `mapstructure:"odds_prefix"`
}

// LedgerConfig controls the optional Postgres cycle ledger.
type LedgerConfig struct {
	DSN string `mapstructure:"dsn"`
}

// NotifyConfig holds metadata for commit notifications.
type NotifyConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// OddsConfig governs the one-shot odds snapshot job.
type OddsConfig struct {
	BaseURL        string   `mapstructure:"base_url"`
	Sport          string   `mapstructure:"sport"`
	Regions        string   `mapstructure:"regions"`
	Bookmaker      string   `mapstructure:"bookmaker"`
	Market         string   `mapstructure:"market"`
	OddsFormat     string   `mapstructure:"odds_format"`
	DaysFrom       int      `mapstructure:"days_from"`
	PropMarkets    []string `mapstructure:"prop_markets"`
	MaxEvents      int      `mapstructure:"max_events"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// FeedSource names one RSS feed to pull.
type FeedSource struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// FeedsConfig governs the one-shot RSS pull job.
type FeedsConfig struct {
	Sources        []FeedSource `mapstructure:"sources"`
	TimeoutSeconds int          `mapstructure:"timeout_seconds"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", false)
	v.SetDefault("api.port", 0)
	v.SetDefault("x.base_url", "https://api.twitter.com/2/tweets/search/recent")
	v.SetDefault("x.max_results", 100)
	v.SetDefault("x.query_clause", "from:%s")
	v.SetDefault("x.query_suffix", " -is:retweet -is:reply")
	v.SetDefault("x.query_max_len", 512)
	v.SetDefault("x.timeout_seconds", 20)
	v.SetDefault("harvest.peak_interval_seconds", 60)
	v.SetDefault("harvest.off_peak_interval_seconds", 300)
	v.SetDefault("harvest.peak_start_hour", 9)
	v.SetDefault("harvest.peak_end_hour", 23)
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_dir", "data")
	v.SetDefault("storage.news_prefix", "news/raw")
	v.SetDefault("storage.media_prefix", "news/media")
	v.SetDefault("storage.ref_prefix", "ref")
	v.SetDefault("storage.odds_prefix", "odds/raw")
	v.SetDefault("odds.base_url", "https://api.the-odds-api.com/v4")
	v.SetDefault("odds.sport", "americanfootball_nfl")
	v.SetDefault("odds.regions", "us")
	v.SetDefault("odds.bookmaker", "draftkings")
	v.SetDefault("odds.market", "totals")
	v.SetDefault("odds.odds_format", "decimal")
	v.SetDefault("odds.days_from", 2)
	v.SetDefault("odds.prop_markets", []string{
		"player_receptions",
		"player_reception_yds",
		"player_reception_longest",
		"player_rush_yds",
		"player_rush_attempts",
		"player_rush_longest",
		"player_rush_reception_yds",
		"player_pass_attempts",
		"player_pass_completions",
		"player_pass_yds",
		"player_pass_rush_yds",
		"player_pass_tds",
		"player_pass_interceptions",
		"player_pass_longest_completion",
		"player_anytime_td",
		"player_1st_td",
		"player_tackles_assists",
		"player_solo_tackles",
		"player_field_goals",
		"player_kicking_points",
	})
	v.SetDefault("odds.max_events", 0)
	v.SetDefault("odds.timeout_seconds", 20)
	v.SetDefault("feeds.timeout_seconds", 20)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.X.MaxResults <= 0 || c.X.MaxResults > 100 {
		return fmt.Errorf("x.max_results must be in 1..100")
	}
	if c.X.QueryMaxLen <= 0 {
		return fmt.Errorf("x.query_max_len must be > 0")
	}
	if !strings.Contains(c.X.QueryClause, "%s") {
		return fmt.Errorf("x.query_clause must contain a %%s placeholder")
	}
	if c.X.TimeoutSeconds <= 0 {
		return fmt.Errorf("x.timeout_seconds must be > 0")
	}
	if c.Harvest.PeakIntervalSeconds <= 0 || c.Harvest.OffPeakIntervalSeconds <= 0 {
		return fmt.Errorf("harvest intervals must be > 0")
	}
	if c.Harvest.PeakStartHour < 0 || c.Harvest.PeakStartHour > 23 ||
		c.Harvest.PeakEndHour < 0 || c.Harvest.PeakEndHour > 24 {
		return fmt.Errorf("harvest peak hours must be within a day")
	}
	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when provider is gcs")
		}
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir must be set when provider is local")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	if (c.Notify.ProjectID == "") != (c.Notify.Topic == "") {
		return fmt.Errorf("notify.project_id and notify.topic must be set together")
	}
	return nil
}

// PeakInterval returns the tick interval used inside the peak window.
func (c Config) PeakInterval() time.Duration {
	return time.Duration(c.Harvest.PeakIntervalSeconds) * time.Second
}

// OffPeakInterval returns the tick interval used outside the peak window.
func (c Config) OffPeakInterval() time.Duration {
	return time.Duration(c.Harvest.OffPeakIntervalSeconds) * time.Second
}

// XTimeout returns the per-request budget for the search API.
func (c Config) XTimeout() time.Duration {
	return time.Duration(c.X.TimeoutSeconds) * time.Second
}

// OddsTimeout returns the per-request budget for the odds API.
func (c Config) OddsTimeout() time.Duration {
	return time.Duration(c.Odds.TimeoutSeconds) * time.Second
}

// FeedsTimeout returns the per-feed fetch budget for the RSS puller.
func (c Config) FeedsTimeout() time.Duration {
	return time.Duration(c.Feeds.TimeoutSeconds) * time.Second
}
