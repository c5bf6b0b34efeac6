// Package main is the entry point for the mdparse CLI. It parses HTML files and
// URLs into Markdown article records and writes them as JSON.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"md-article-parser/internal/config"
	"md-article-parser/internal/logger"
	"md-article-parser/internal/scraper"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	appConfig config.Config
	appLogger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mdparse",
	Short: "Extract readable article content as Markdown",
	Long: `mdparse rewrites HTML documents into Markdown-flavored text and extracts the
main article with readability. Results are written as JSON files named after
the article title; extract-md turns those files into plain .md documents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg

		log, err := logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		appLogger = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLogger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./mdparse.yaml or ~/.config/mdparse/mdparse.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("out", "out", "output directory for JSON results")
	flags.Int("wpm", 0, "reading speed in words per minute (default 200)")
	flags.Bool("keep-classes", false, "keep class attributes in the extracted HTML")
	flags.Bool("disable-jsonld", false, "ignore JSON-LD metadata")

	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("out", flags.Lookup("out"))
	_ = viper.BindPFlag("wpm", flags.Lookup("wpm"))
	_ = viper.BindPFlag("parser.keepClasses", flags.Lookup("keep-classes"))
	_ = viper.BindPFlag("parser.disableJSONLD", flags.Lookup("disable-jsonld"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mdparse")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mdparse"))
		}
	}

	viper.SetEnvPrefix("MDPARSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the YAML file viper located, then applies flags and MDPARSE_* variables on top
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return config.Config{}, err
	}

	if viper.IsSet("log.level") && viper.GetString("log.level") != "" {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("wpm") && viper.GetInt("wpm") > 0 {
		cfg.Parser.WordsPerMinute = viper.GetInt("wpm")
	}
	if viper.IsSet("parser.keepClasses") {
		cfg.Parser.KeepClasses = viper.GetBool("parser.keepClasses")
	}
	if viper.IsSet("parser.disableJSONLD") {
		cfg.Parser.DisableJSONLD = viper.GetBool("parser.disableJSONLD")
	}
	if viper.IsSet("browser_fallback") {
		cfg.Scrape.BrowserFallback = viper.GetBool("browser_fallback")
	}

	return cfg, nil
}

// outputDir returns the configured JSON output directory
func outputDir() string {
	if dir := viper.GetString("out"); dir != "" {
		return dir
	}
	return "out"
}

func newParser() *scraper.Parser {
	return scraper.NewParser(
		scraper.WithParserOptions(appConfig.Parser),
		scraper.WithLogger(appLogger),
		scraper.WithFetcher(scraper.NewScraper(appConfig.Scrape, appLogger)),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		appLogger.Error("mdparse failed", zap.Error(err))
		_ = appLogger.Sync()
		os.Exit(1)
	}
}
