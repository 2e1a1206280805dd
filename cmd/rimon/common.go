package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/liorgins/rimon-api/internal/config"
	"github.com/liorgins/rimon-api/internal/observability"
	"github.com/liorgins/rimon-api/internal/pipeline"
)

// commonFlags are shared by every subcommand. Values follow the usual
// precedence: explicit flag > config file > environment > built-in default.
type commonFlags struct {
	configPath     string
	apiURL         string
	countryKey     string
	localeKey      string
	runsDir        string
	dictionaryDir  string
	translateURL   string
	translateLang  string
	translateCache string
	noTranslate    bool
	dbURL          string
	verbose        bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Catalog API endpoint (defaults to RIMON_API_URL env var)")
	cmd.Flags().StringVar(&f.countryKey, "country-key", "", "Country section key inside the catalog document")
	cmd.Flags().StringVar(&f.localeKey, "locale-key", "", "Locale section key inside the country node")
	cmd.Flags().StringVar(&f.runsDir, "runs-dir", "", "Root directory holding run snapshots")
	cmd.Flags().StringVar(&f.dictionaryDir, "dictionary-dir", "", "Output directory for dictionary CSVs")
	cmd.Flags().StringVar(&f.translateURL, "translate-url", "", "Translation endpoint URL")
	cmd.Flags().StringVar(&f.translateLang, "translate-lang", "", "Target language code for dictionaries")
	cmd.Flags().StringVar(&f.translateCache, "translate-cache", "", "SQLite translation-memory path")
	cmd.Flags().BoolVar(&f.noTranslate, "no-translate", false, "Build dictionaries without calling the translation service")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "PostgreSQL run-history URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve merges config file, explicitly-set flags, environment and
// defaults into the final configuration.
func (f *commonFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if cmd.Flags().Changed("country-key") {
		cfg.CountryKey = f.countryKey
	}
	if cmd.Flags().Changed("locale-key") {
		cfg.LocaleKey = f.localeKey
	}
	if cmd.Flags().Changed("runs-dir") {
		cfg.RunsDir = f.runsDir
	}
	if cmd.Flags().Changed("dictionary-dir") {
		cfg.DictionaryDir = f.dictionaryDir
	}
	if cmd.Flags().Changed("translate-url") {
		cfg.TranslateURL = f.translateURL
	}
	if cmd.Flags().Changed("translate-lang") {
		cfg.TranslateLang = f.translateLang
	}
	if cmd.Flags().Changed("translate-cache") {
		cfg.TranslateCache = f.translateCache
	}
	if cmd.Flags().Changed("no-translate") {
		cfg.NoTranslate = f.noTranslate
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.dbURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg.FromEnv()
	cfg = cfg.MergeWithDefaults(config.Defaults())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newPipelineOptions builds the per-run logger, printer and pipeline
// options. The returned cleanup flushes the logger.
func newPipelineOptions(cfg config.Config) (pipeline.Options, func(), error) {
	log, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return pipeline.Options{}, nil, err
	}
	opts := pipeline.Options{
		Config:  cfg,
		Log:     log,
		Printer: observability.NewPrinter(os.Stdout),
	}
	cleanup := func() { _ = log.Sync() }
	return opts, cleanup, nil
}
