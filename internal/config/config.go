package config

import (
	"fmt"
	"time"
)

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	Scrape        ScrapeConfig        `yaml:"scrape"`
	HTTP          HttpConfig          `yaml:"http"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	Headless         bool   `yaml:"headless"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
}

// ScrapeConfig: параметры сессии обхода справочника.
type ScrapeConfig struct {
	StartURL       string   `yaml:"start_url"`
	OutputPath     string   `yaml:"output_path"`
	WaitTimeoutS   int      `yaml:"wait_timeout_s"`
	PollIntervalMS int      `yaml:"poll_interval_ms"`
	PagePauseMS    int      `yaml:"page_pause_ms"`
	SettleMS       int      `yaml:"settle_ms"`
	FollowProfile  bool     `yaml:"follow_profile"`
	SkipLoginWait  bool     `yaml:"skip_login_wait"`
	MaxPages       int      `yaml:"max_pages"`
	EmailDomain    string   `yaml:"email_domain"`
	RoleMarkers    []string `yaml:"role_markers"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type HttpConfig struct {
	UserAgent      string `yaml:"user_agent"`
	TotalTimeoutMS int    `yaml:"total_timeout_ms"`
	MaxRetries     int    `yaml:"max_retries"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
}

type StorageConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
	TxPerPage        bool   `yaml:"tx_per_page"`
}

type ObservabilityConfig struct {
	LogPath    string `yaml:"log_path"`
	LogLevel   string `yaml:"log_level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default: значения, с которыми работает справочник без конфига.
func Default() *Config {
	return &Config{
		Rod: RodConfig{
			Enabled:          true,
			PageTimeoutS:     30,
			WaitLoadTimeoutS: 30,
		},
		Scrape: ScrapeConfig{
			StartURL:       "https://stanfordwho.stanford.edu/",
			OutputPath:     "stanfordwho_people.csv",
			WaitTimeoutS:   20,
			PollIntervalMS: 1000,
			PagePauseMS:    1000,
			SettleMS:       1000,
			EmailDomain:    "@stanford.edu",
			RoleMarkers:    []string{"Student", "Faculty", "Staff"},
		},
		HTTP: HttpConfig{
			UserAgent:      "Mozilla/5.0 (compatible; stanfordwho-parser/1.0)",
			TotalTimeoutMS: 30000,
			MaxRetries:     3,
		},
		Backoff: BackoffConfig{
			MinMS:     250,
			MaxMS:     4000,
			JitterPct: 20,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:       true,
			CollapseSpaces: true,
		},
		Storage: StorageConfig{
			Driver:           "mssql",
			CommandTimeoutMS: 30000,
			TxPerPage:        true,
		},
		Observability: ObservabilityConfig{
			LogLevel:   "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Scrape.StartURL == "" {
		return fmt.Errorf("scrape.start_url is required")
	}
	if c.Scrape.OutputPath == "" {
		return fmt.Errorf("scrape.output_path is required")
	}
	if c.Scrape.WaitTimeoutS <= 0 {
		return fmt.Errorf("scrape.wait_timeout_s must be > 0")
	}
	if c.Scrape.PollIntervalMS <= 0 {
		return fmt.Errorf("scrape.poll_interval_ms must be > 0")
	}
	if c.Scrape.PagePauseMS < 0 {
		return fmt.Errorf("scrape.page_pause_ms must be >= 0")
	}
	if c.Scrape.SettleMS < 0 {
		return fmt.Errorf("scrape.settle_ms must be >= 0")
	}
	if c.Scrape.MaxPages < 0 {
		return fmt.Errorf("scrape.max_pages must be >= 0")
	}
	if c.Scrape.EmailDomain == "" {
		return fmt.Errorf("scrape.email_domain is required")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.Storage.Enabled {
		if c.Storage.Driver != "mssql" {
			return fmt.Errorf("storage.driver must be 'mssql'")
		}
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.enabled is true")
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetWaitTimeout() time.Duration {
	return time.Duration(c.Scrape.WaitTimeoutS) * time.Second
}

func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Scrape.PollIntervalMS) * time.Millisecond
}

func (c *Config) GetPagePause() time.Duration {
	return time.Duration(c.Scrape.PagePauseMS) * time.Millisecond
}

func (c *Config) GetSettleDelay() time.Duration {
	return time.Duration(c.Scrape.SettleMS) * time.Millisecond
}
