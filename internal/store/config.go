package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode     string `yaml:"mode"`
	Exchange string `yaml:"exchange"`
	DBPath   string `yaml:"db_path"`

	Watchlist []string `yaml:"watchlist"`

	// Instruments maps trading symbols to Kite instrument tokens.
	Instruments map[string]uint32 `yaml:"instruments"`

	// YahooTickers overrides the default ".NS" mapping for the fallback
	// provider (indices need their caret tickers).
	YahooTickers map[string]string `yaml:"yahoo_tickers"`

	Scan struct {
		LookbackDays      int     `yaml:"lookback_days"`
		SymbolDelaySec    int     `yaml:"symbol_delay_sec"`
		MaxOrdersPerPass  int     `yaml:"max_orders_per_pass"`
		MaxSlotsPerFamily int     `yaml:"max_slots_per_family"`
		FreshnessDays     int     `yaml:"freshness_days"`
		MaxRiskPct        float64 `yaml:"max_risk_pct"`
	} `yaml:"scan"`

	Monitor struct {
		MaxHoldDays    int `yaml:"max_hold_days"`
		SymbolDelaySec int `yaml:"symbol_delay_sec"`
	} `yaml:"monitor"`

	Options struct {
		Enabled    bool    `yaml:"enabled"`
		Indices    []string `yaml:"indices"`
		VIXSymbol  string  `yaml:"vix_symbol"`
		DefaultVIX float64 `yaml:"default_vix"`
	} `yaml:"options"`

	Telegram struct {
		TokenEnv  string `yaml:"token_env"`
		ChatIDEnv string `yaml:"chat_id_env"`
	} `yaml:"telegram"`

	EOD struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"eod"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Watchlist) == 0 {
		return errors.New("watchlist cannot be empty")
	}
	if c.Scan.MaxRiskPct <= 0 || c.Scan.MaxRiskPct > 100 {
		return fmt.Errorf("scan.max_risk_pct must be between 0-100, got %.2f", c.Scan.MaxRiskPct)
	}
	if c.DBPath == "" {
		return errors.New("db_path cannot be empty")
	}
	return nil
}

func (c *Config) SymbolDelay() time.Duration {
	return time.Duration(c.Scan.SymbolDelaySec) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.DBPath == "" {
		c.DBPath = "trades.db"
	}
	if c.Scan.LookbackDays == 0 {
		c.Scan.LookbackDays = 250
	}
	if c.Scan.SymbolDelaySec == 0 {
		c.Scan.SymbolDelaySec = 1
	}
	if c.Scan.MaxOrdersPerPass == 0 {
		c.Scan.MaxOrdersPerPass = 3
	}
	if c.Scan.MaxSlotsPerFamily == 0 {
		c.Scan.MaxSlotsPerFamily = 5
	}
	if c.Scan.FreshnessDays == 0 {
		c.Scan.FreshnessDays = 4
	}
	if c.Scan.MaxRiskPct == 0 {
		c.Scan.MaxRiskPct = 2
	}
	if c.Monitor.MaxHoldDays == 0 {
		c.Monitor.MaxHoldDays = 30
	}
	if c.Options.DefaultVIX == 0 {
		c.Options.DefaultVIX = 15
	}
	if c.EOD.OutputDir == "" {
		c.EOD.OutputDir = "reports"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
