package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type CacheSettings struct {
	Dir                string         `mapstructure:"dir"`
	DefaultTTLMinutes  int            `mapstructure:"default_ttl_minutes"`
	TTLMinutesBySource map[string]int `mapstructure:"ttl_minutes_by_source"`
}

func (c CacheSettings) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLMinutes) * time.Minute
}

func (c CacheSettings) TTLBySource() map[string]time.Duration {
	if len(c.TTLMinutesBySource) == 0 {
		return nil
	}
	ttls := make(map[string]time.Duration, len(c.TTLMinutesBySource))
	for source, minutes := range c.TTLMinutesBySource {
		ttls[source] = time.Duration(minutes) * time.Minute
	}
	return ttls
}

type BaselineSettings struct {
	Dir string `mapstructure:"dir"`
}

// CategoryRuleSetting is one entry of the ordered category list. Order in
// the file is match order.
type CategoryRuleSetting struct {
	Prefix   string `mapstructure:"prefix"`
	Category string `mapstructure:"category"`
}

type ReportSettings struct {
	SearchRowLimit       int                   `mapstructure:"search_row_limit"`
	MinOpportunityClicks int                   `mapstructure:"min_opportunity_clicks"`
	TopQueriesPerPage    int                   `mapstructure:"top_queries_per_page"`
	Categories           []CategoryRuleSetting `mapstructure:"categories"`
}

type SourceSettings struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RetryMax       int `mapstructure:"retry_max"`
}

func (s SourceSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Settings is the full searchledger.yaml document.
type Settings struct {
	Cache    CacheSettings    `mapstructure:"cache"`
	Baseline BaselineSettings `mapstructure:"baseline"`
	Reports  ReportSettings   `mapstructure:"reports"`
	Sources  SourceSettings   `mapstructure:"sources"`
}

// LoadSettings reads the settings file at path on top of the defaults. An
// empty path skips the file and returns the defaults, so a config file is
// never required to run.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file %s: %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	root := settingsRoot()
	v.SetDefault("cache.dir", filepath.Join(root, "cache"))
	v.SetDefault("cache.default_ttl_minutes", 15)
	v.SetDefault("baseline.dir", filepath.Join(root, "baselines"))
	v.SetDefault("reports.search_row_limit", 1000)
	v.SetDefault("reports.min_opportunity_clicks", 10)
	v.SetDefault("reports.top_queries_per_page", 5)
	v.SetDefault("sources.timeout_seconds", 30)
	v.SetDefault("sources.retry_max", 3)
}

// DefaultCredentialsPath is where NewRegistry looks unless --credentials
// says otherwise.
func DefaultCredentialsPath() string {
	return filepath.Join(settingsRoot(), "credentials")
}

func settingsRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".searchledger")
}
