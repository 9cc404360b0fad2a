package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Periods is the set of accepted history period tokens.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// DataTypeOrder is the fixed menu order of data types, price history first.
var DataTypeOrder = []string{
	"historical",
	"financials", "quarterly_financials",
	"balance_sheet", "quarterly_balance_sheet",
	"cashflow", "quarterly_cashflow",
	"dividends", "splits", "info",
}

// DataTypeDescriptions maps each data type to its menu description.
var DataTypeDescriptions = map[string]string{
	"historical":              "Price and volume history",
	"financials":              "Annual financial statements",
	"quarterly_financials":    "Quarterly financial statements",
	"balance_sheet":           "Annual balance sheet",
	"quarterly_balance_sheet": "Quarterly balance sheet",
	"cashflow":                "Annual cash flow",
	"quarterly_cashflow":      "Quarterly cash flow",
	"dividends":               "Dividend history",
	"splits":                  "Stock split history",
	"info":                    "Company information",
}

// ChartColors holds the candle colors.
type ChartColors struct {
	Up   string `json:"up"`
	Down string `json:"down"`
}

// ChartSettings holds the chart styling options.
type ChartSettings struct {
	Style      string      `json:"style"`
	Colors     ChartColors `json:"colors"`
	Background string      `json:"background"`
	DPI        int         `json:"dpi"`
}

// Config holds all application configuration.
type Config struct {
	OutputDirectory string        `json:"output_directory"`
	DefaultPeriod   string        `json:"default_period"`
	GeneratePlots   bool          `json:"generate_plots"`
	GenerateSummary bool          `json:"generate_summary"`
	Retries         int           `json:"retries"`
	ChartSettings   ChartSettings `json:"chart_settings"`
	DataTypes       []string      `json:"data_types"`
	ExportFormats   []string      `json:"export_formats"`
	LogLevel        string        `json:"log_level"`
	TimeoutSeconds  int           `json:"timeout_seconds"`
	HistoryDB       string        `json:"history_db"`
	Proxy           string        `json:"proxy"`
}

// fileConfig mirrors Config with pointer booleans so that an absent key
// is distinguishable from an explicit false.
type fileConfig struct {
	OutputDirectory string         `json:"output_directory"`
	DefaultPeriod   string         `json:"default_period"`
	GeneratePlots   *bool          `json:"generate_plots"`
	GenerateSummary *bool          `json:"generate_summary"`
	Retries         int            `json:"retries"`
	ChartSettings   *ChartSettings `json:"chart_settings"`
	DataTypes       []string       `json:"data_types"`
	ExportFormats   []string       `json:"export_formats"`
	LogLevel        string         `json:"log_level"`
	TimeoutSeconds  int            `json:"timeout_seconds"`
	HistoryDB       string         `json:"history_db"`
	Proxy           string         `json:"proxy"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	outDir, _ := filepath.Abs("Analysis")
	return &Config{
		OutputDirectory: outDir,
		DefaultPeriod:   "2y",
		GeneratePlots:   true,
		GenerateSummary: true,
		Retries:         3,
		ChartSettings: ChartSettings{
			Style:      "charles",
			Colors:     ChartColors{Up: "#2ecc71", Down: "#e74c3c"},
			Background: "#1e1e1e",
			DPI:        300,
		},
		DataTypes:      append([]string(nil), DataTypeOrder[1:]...),
		ExportFormats:  []string{"excel"},
		LogLevel:       "info",
		TimeoutSeconds: 300,
	}
}

// Load reads config from a JSON file, then applies environment variable
// overrides and defaults. A missing file is not an error; malformed JSON is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if fc.OutputDirectory != "" {
			cfg.OutputDirectory = fc.OutputDirectory
		}
		if fc.DefaultPeriod != "" {
			cfg.DefaultPeriod = fc.DefaultPeriod
		}
		if fc.GeneratePlots != nil {
			cfg.GeneratePlots = *fc.GeneratePlots
		}
		if fc.GenerateSummary != nil {
			cfg.GenerateSummary = *fc.GenerateSummary
		}
		if fc.Retries != 0 {
			cfg.Retries = fc.Retries
		}
		if fc.ChartSettings != nil {
			cfg.ChartSettings = *fc.ChartSettings
		}
		if fc.DataTypes != nil {
			cfg.DataTypes = fc.DataTypes
		}
		if fc.ExportFormats != nil {
			cfg.ExportFormats = fc.ExportFormats
		}
		if fc.LogLevel != "" {
			cfg.LogLevel = fc.LogLevel
		}
		if fc.TimeoutSeconds != 0 {
			cfg.TimeoutSeconds = fc.TimeoutSeconds
		}
		cfg.HistoryDB = fc.HistoryDB
		cfg.Proxy = fc.Proxy
	}

	// Environment variable overrides
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	if abs, err := filepath.Abs(cfg.OutputDirectory); err == nil {
		cfg.OutputDirectory = abs
	}
	return cfg, nil
}

// Validate checks every field eagerly so bad configuration fails at startup,
// not at point of use.
func (c *Config) Validate() error {
	if c.OutputDirectory == "" {
		return fmt.Errorf("output_directory is required")
	}
	if !ValidPeriod(c.DefaultPeriod) {
		return fmt.Errorf("default_period %q is not a valid period token", c.DefaultPeriod)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be >= 1, got %d", c.Retries)
	}
	if c.ChartSettings.DPI <= 0 {
		return fmt.Errorf("chart_settings.dpi must be positive, got %d", c.ChartSettings.DPI)
	}
	if len(c.DataTypes) == 0 {
		return fmt.Errorf("data_types must not be empty")
	}
	for _, dt := range c.DataTypes {
		if _, ok := DataTypeDescriptions[dt]; !ok {
			return fmt.Errorf("unknown data type %q", dt)
		}
	}
	for _, f := range c.ExportFormats {
		if f != "excel" {
			return fmt.Errorf("unsupported export format %q", f)
		}
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the global watchdog deadline for one batch run.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ExcelEnabled reports whether xlsx exports are requested.
func (c *Config) ExcelEnabled() bool {
	for _, f := range c.ExportFormats {
		if f == "excel" {
			return true
		}
	}
	return false
}

// ValidPeriod reports whether p is one of the accepted period tokens.
func ValidPeriod(p string) bool {
	for _, v := range Periods {
		if p == v {
			return true
		}
	}
	return false
}
