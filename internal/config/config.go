package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"md-article-parser/internal/models"
)

// Log levels and formats understood by the logger package
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatConsole = "console"
	LogFormatText    = "text"
	LogFormatJSON    = "json"
)

// DefaultWordsPerMinute is the reading speed used for reading time estimates
const DefaultWordsPerMinute = 200

// Config is the top-level configuration for the parser binaries
type Config struct {
	Scrape ScrapeConfig         `yaml:"scrape"`
	Parser models.ParserOptions `yaml:"parser"`
	Log    LogConfig            `yaml:"log"`
}

// ScrapeConfig contains general fetching configuration
type ScrapeConfig struct {
	UserAgent       string `yaml:"userAgent"`
	TimeoutMs       int    `yaml:"timeoutMs"`
	SizeLimitBytes  int    `yaml:"sizeLimitBytes"`
	MaxRetries      int    `yaml:"maxRetries"`
	MaxRedirects    int    `yaml:"maxRedirects"`
	ChromeMajor     int    `yaml:"chromeMajor"`
	BrowserFallback bool   `yaml:"browserFallback"`
	BrowserBlockJS  bool   `yaml:"browserBlockJS"`
	TryAlternates   bool   `yaml:"tryAlternates"`
}

// LogConfig configures console and file log outputs
type LogConfig struct {
	Level   string           `yaml:"level"`
	Console ConsoleLogConfig `yaml:"console"`
	File    FileLogConfig    `yaml:"file"`
}

type ConsoleLogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

type FileLogConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level"`
	Format   string         `yaml:"format"`
	Path     string         `yaml:"path"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"maxSize"`
	MaxAge     int  `yaml:"maxAge"`
	MaxBackups int  `yaml:"maxBackups"`
	Compress   bool `yaml:"compress"`
}

// DefaultParserOptions returns the extraction defaults. Callers override fields on the copy.
func DefaultParserOptions() models.ParserOptions {
	return models.ParserOptions{
		KeepClasses:    false,
		DisableJSONLD:  false,
		WordsPerMinute: DefaultWordsPerMinute,
	}
}

// DefaultScrapeConfig returns the default fetching configuration
func DefaultScrapeConfig() ScrapeConfig {
	chromeMajor := 133
	if env := os.Getenv("CHROME_MAJOR"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil {
			chromeMajor = parsed
		}
	}

	userAgent := os.Getenv("SCRAPE_USER_AGENT")
	if userAgent == "" {
		userAgent = fmt.Sprintf("Mozilla/5.0 (Windows NT 10; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.6943.126 Safari/537.36", chromeMajor)
	}

	timeoutMs := 30000
	if env := os.Getenv("SCRAPE_TIMEOUT_MS"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			timeoutMs = parsed
		}
	}

	return ScrapeConfig{
		UserAgent:       userAgent,
		TimeoutMs:       timeoutMs,
		SizeLimitBytes:  6_000_000,
		MaxRetries:      2,
		MaxRedirects:    5,
		ChromeMajor:     chromeMajor,
		BrowserFallback: os.Getenv("MDPARSE_BROWSER_FALLBACK") == "true",
	}
}

// DefaultLogConfig logs to the console at info level
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: LogLevelInfo,
		Console: ConsoleLogConfig{
			Enabled: true,
			Format:  LogFormatConsole,
		},
		File: FileLogConfig{
			Format: LogFormatText,
		},
	}
}

// Default returns the full default configuration with environment overrides applied
func Default() Config {
	parser := DefaultParserOptions()
	if env := os.Getenv("MDPARSE_WPM"); env != "" {
		if parsed, err := strconv.Atoi(env); err == nil && parsed > 0 {
			parser.WordsPerMinute = parsed
		}
	}

	return Config{
		Scrape: DefaultScrapeConfig(),
		Parser: parser,
		Log:    DefaultLogConfig(),
	}
}

// Load reads a YAML config file on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Parser.WordsPerMinute <= 0 {
		cfg.Parser.WordsPerMinute = DefaultWordsPerMinute
	}
	if cfg.Scrape.TimeoutMs <= 0 {
		cfg.Scrape.TimeoutMs = DefaultScrapeConfig().TimeoutMs
	}

	return cfg, nil
}

// CompileRegexes pre-compiles regex patterns for better performance
func CompileRegexes() map[string]*regexp.Regexp {
	return map[string]*regexp.Regexp{
		"cfBlock":         regexp.MustCompile(`(attention required|cloudflare ray id|what can i do to resolve this\?|why have i been blocked\?|performance & security by cloudflare)`),
		"leadingSpace":    regexp.MustCompile(`(?m)^\s*`),
		"htmlContentType": regexp.MustCompile(`(?i)(text/html|application/xhtml\+xml)`),
	}
}
