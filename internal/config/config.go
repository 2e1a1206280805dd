// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Catalog source
	APIURL     string `json:"api_url,omitempty" validate:"omitempty,url"` // Catalog endpoint, query params included
	CountryKey string `json:"country_key,omitempty"`                      // Country section inside staticData.data
	LocaleKey  string `json:"locale_key,omitempty"`                       // Locale section inside the country node

	// Storage
	RunsDir       string `json:"runs_dir,omitempty"`       // Root directory for run snapshots
	DictionaryDir string `json:"dictionary_dir,omitempty"` // Output directory for dictionary CSVs

	// Translation
	TranslateURL   string `json:"translate_url,omitempty" validate:"omitempty,url"` // Translation endpoint
	TranslateLang  string `json:"translate_lang,omitempty" validate:"omitempty,len=2"`
	TranslateCache string `json:"translate_cache,omitempty"` // SQLite translation-memory path
	NoTranslate    bool   `json:"no_translate,omitempty"`    // Write dictionaries without calling the translator

	// Behavior
	DatabaseURL string `json:"database_url,omitempty"` // Optional PostgreSQL run-history DSN
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		CountryKey:     "country_118",
		LocaleKey:      "primaryLang",
		RunsDir:        "runs",
		DictionaryDir:  "dictionary",
		TranslateURL:   "https://translate.googleapis.com/translate_a/single",
		TranslateLang:  "he",
		TranslateCache: filepath.Join("dictionary", "translations.db"),
	}
}

// Load reads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills unset fields from environment variables. The .env file, if
// any, has already been loaded by the entry point.
func (c *Config) FromEnv() {
	setIfEmpty(&c.APIURL, os.Getenv("RIMON_API_URL"))
	setIfEmpty(&c.RunsDir, os.Getenv("RIMON_RUNS_DIR"))
	setIfEmpty(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	setIfEmpty(&c.TranslateURL, os.Getenv("RIMON_TRANSLATE_URL"))
	setIfEmpty(&c.TranslateLang, os.Getenv("RIMON_TRANSLATE_LANG"))
}

func setIfEmpty(dst *string, val string) {
	if *dst == "" && val != "" {
		*dst = val
	}
}

// MergeWithDefaults fills any unset field from defaults.
func (c Config) MergeWithDefaults(defaults Config) Config {
	setIfEmpty(&c.APIURL, defaults.APIURL)
	setIfEmpty(&c.CountryKey, defaults.CountryKey)
	setIfEmpty(&c.LocaleKey, defaults.LocaleKey)
	setIfEmpty(&c.RunsDir, defaults.RunsDir)
	setIfEmpty(&c.DictionaryDir, defaults.DictionaryDir)
	setIfEmpty(&c.TranslateURL, defaults.TranslateURL)
	setIfEmpty(&c.TranslateLang, defaults.TranslateLang)
	setIfEmpty(&c.TranslateCache, defaults.TranslateCache)
	setIfEmpty(&c.DatabaseURL, defaults.DatabaseURL)
	return c
}

// Validate checks that the configuration has valid values. Required fields
// are checked by the commands after merging, not here.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("config error: field %s failed %s validation", first.Field(), first.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
