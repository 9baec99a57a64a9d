// =============================================================================
// Incidencias Export - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration from a YAML
// document. The configuration supplies:
//   - App presentation settings (title, icon, layout) and table page size
//   - Directory paths (data, periods, master workbook, backups)
//   - Cost settings (the social-security multiplier)
//   - Load settings (supervisors excluded from the Centers sheet)
//   - Consolidation settings (external command, timeout, required input files)
//   - User-facing message templates
//
// A missing configuration file is fatal: Load returns an error and the CLI
// exits. Individual unset values fall back to defaults instead.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	App           AppConfig           `yaml:"app"`
	Paths         PathsConfig         `yaml:"paths"`
	Costs         CostsConfig         `yaml:"costs"`
	Load          LoadConfig          `yaml:"load"`
	Consolidation ConsolidationConfig `yaml:"consolidation"`

	// Messages holds user-facing message templates keyed by message id.
	// Templates may contain {placeholder} tokens filled in via Message.
	Messages map[string]string `yaml:"messages"`
}

// AppConfig holds presentation and session settings.
type AppConfig struct {
	// Title is the application title shown by the hosting UI.
	Title string `yaml:"title"`

	// Icon is the application icon shown by the hosting UI.
	Icon string `yaml:"icon"`

	// Layout is the page layout hint for the hosting UI ("wide" or "centered").
	Layout string `yaml:"layout"`

	// PageSize is the number of incidence rows per table page.
	// Default: 50
	PageSize int `yaml:"page_size"`

	// CacheTTLSeconds is the time-to-live hint for cached lookup indexes.
	// Default: 3600
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`

	// CacheEntries is the maximum number of (path, hash) lookup indexes
	// retained before LRU eviction.
	// Default: 8
	CacheEntries int `yaml:"cache_entries"`
}

// PathsConfig holds the directory layout of the application.
type PathsConfig struct {
	// Data is the base data directory.
	// Default: "./data"
	Data string `yaml:"data"`

	// Periods is the directory containing one folder per consolidation period.
	// Default: "<data>/periodos"
	Periods string `yaml:"periods"`

	// Maestros is the path to the master workbook.
	// Default: "<data>/maestros.xlsx"
	// Overridable with the MAESTROS_FILE_PATH environment variable.
	Maestros string `yaml:"maestros"`

	// Backups is the directory where master workbook backups are kept.
	// Default: "<data>/backups"
	Backups string `yaml:"backups"`
}

// CostsConfig holds cost computation settings.
type CostsConfig struct {
	// SSMultiplier is the employer social-security overhead factor applied
	// to base + night amounts when computing the total cost.
	// Default: 1.3195
	SSMultiplier float64 `yaml:"ss_multiplier"`
}

// LoadConfig holds master workbook cleaning settings.
type LoadConfig struct {
	// ExcludedSupervisors lists supervisor names whose centers are dropped
	// at load time.
	ExcludedSupervisors []string `yaml:"excluded_supervisors"`
}

// ConsolidationConfig holds settings for the external consolidation process.
type ConsolidationConfig struct {
	// Command is the external command invoked with the period folder appended
	// as its one positional argument.
	Command []string `yaml:"command"`

	// TimeoutSeconds bounds the consolidation run.
	// Default: 300
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// RequiredFiles maps an input key to the file name that must exist in the
	// period's raw/ folder. The "tarifarios" key is special: its file is
	// static and lives in the data directory instead.
	RequiredFiles map[string]string `yaml:"required_files"`

	// OutputRelPath is where the consolidation process leaves the rebuilt
	// master workbook, relative to the period folder.
	// Default: "processed/maestros.xlsx"
	OutputRelPath string `yaml:"output_relpath"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads, defaults, and validates the configuration at configPath.
// Environment overrides (MAESTROS_FILE_PATH) are applied after parsing.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.App.Title == "" {
		cfg.App.Title = "Plantilla de Registro de Incidencias"
	}
	if cfg.App.Layout == "" {
		cfg.App.Layout = "wide"
	}
	if cfg.App.PageSize == 0 {
		cfg.App.PageSize = 50
	}
	if cfg.App.CacheTTLSeconds == 0 {
		cfg.App.CacheTTLSeconds = 3600
	}
	if cfg.App.CacheEntries == 0 {
		cfg.App.CacheEntries = 8
	}

	if cfg.Paths.Data == "" {
		cfg.Paths.Data = "./data"
	}
	if cfg.Paths.Periods == "" {
		cfg.Paths.Periods = filepath.Join(cfg.Paths.Data, "periodos")
	}
	if cfg.Paths.Maestros == "" {
		cfg.Paths.Maestros = filepath.Join(cfg.Paths.Data, "maestros.xlsx")
	}
	if cfg.Paths.Backups == "" {
		cfg.Paths.Backups = filepath.Join(cfg.Paths.Data, "backups")
	}

	if cfg.Costs.SSMultiplier == 0 {
		cfg.Costs.SSMultiplier = 1.3195
	}

	if cfg.Load.ExcludedSupervisors == nil {
		cfg.Load.ExcludedSupervisors = []string{
			"Angel Alcalde",
			"Esther Martin Gonzalez",
			"Julio",
		}
	}

	if cfg.Consolidation.TimeoutSeconds == 0 {
		cfg.Consolidation.TimeoutSeconds = 300
	}
	if cfg.Consolidation.OutputRelPath == "" {
		cfg.Consolidation.OutputRelPath = filepath.Join("processed", "maestros.xlsx")
	}

	if cfg.Messages == nil {
		cfg.Messages = map[string]string{}
	}
	if _, ok := cfg.Messages["consolidation_ok"]; !ok {
		cfg.Messages["consolidation_ok"] = "Periodo {periodo} consolidado correctamente"
	}
	if _, ok := cfg.Messages["no_periods"]; !ok {
		cfg.Messages["no_periods"] = "No hay periodos con archivos completos"
	}
}

// applyEnvOverrides applies environment variable overrides on top of the
// parsed document. The variable names match the ones the hosting environment
// has historically used.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MAESTROS_FILE_PATH"); v != "" {
		cfg.Paths.Maestros = v
	}
}

// validate checks the configuration and creates missing directories.
func validate(cfg *Config) error {
	if cfg.App.PageSize < 1 {
		return fmt.Errorf("app.page_size must be positive, got %d", cfg.App.PageSize)
	}
	if cfg.Costs.SSMultiplier < 1 {
		return fmt.Errorf("costs.ss_multiplier must be >= 1, got %g", cfg.Costs.SSMultiplier)
	}

	dirs := []string{
		cfg.Paths.Data,
		cfg.Paths.Periods,
		cfg.Paths.Backups,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// Message renders the template registered under key, replacing {name} tokens
// with the supplied values. Unknown keys return the key itself so a missing
// template never hides an outcome from the user.
func (c *Config) Message(key string, args map[string]string) string {
	tmpl, ok := c.Messages[key]
	if !ok {
		return key
	}
	for name, value := range args {
		tmpl = strings.ReplaceAll(tmpl, "{"+name+"}", value)
	}
	return tmpl
}
