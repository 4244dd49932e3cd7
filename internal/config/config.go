package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPageURL   = "https://www.samsung.com/cz/offer/samsung-festival/"
	DefaultAPIFilter = "https://searchapi.samsung.com/v6/front/b2c/product/card/detail/newhybris"
	DefaultExpect    = "newhybris"
	DefaultWait      = 5 * time.Second
)

type Config struct {
	PageURL    string
	APIFilter  string
	Expect     string
	Wait       time.Duration
	NavTimeout time.Duration
	OutputDir  string
	Browser    string
	Channel    string
	Headless   bool
	LogLevel   string
	LogFile    string
	// Source is the config file that was applied, if any.
	Source string
}

type rawConfig struct {
	PageURL    string `toml:"page_url"`
	APIFilter  string `toml:"api_filter"`
	Expect     string `toml:"expect"`
	Wait       string `toml:"wait"`
	NavTimeout string `toml:"nav_timeout"`
	OutputDir  string `toml:"output_dir"`
	Browser    string `toml:"browser"`
	Channel    string `toml:"channel"`
	Headless   *bool  `toml:"headless"`
	LogLevel   string `toml:"log_level"`
	LogFile    string `toml:"log_file"`
}

func Default() Config {
	return Config{
		PageURL:   DefaultPageURL,
		APIFilter: DefaultAPIFilter,
		Expect:    DefaultExpect,
		Wait:      DefaultWait,
		OutputDir: ".",
		Browser:   "chromium",
		Headless:  true,
		LogLevel:  "info",
	}
}

// Load resolves defaults, then a config file, then APICAP_* environment
// variables. An explicit path must exist; otherwise the first system path
// found is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	} else if err := loadSystemConfig(&cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func SystemPaths() []string {
	paths := []string{
		"/opt/homebrew/etc/apicap/config.toml",
		"/usr/local/etc/apicap/config.toml",
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "apicap", "config.toml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "apicap", "config.toml"))
	}
	return paths
}

func loadSystemConfig(cfg *Config) error {
	for _, path := range SystemPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadFile(cfg, path)
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	var raw rawConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := raw.apply(cfg); err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.Source = path
	return nil
}

func (raw rawConfig) apply(cfg *Config) error {
	if raw.PageURL != "" {
		cfg.PageURL = raw.PageURL
	}
	if raw.APIFilter != "" {
		cfg.APIFilter = raw.APIFilter
	}
	if raw.Expect != "" {
		cfg.Expect = raw.Expect
	}
	if raw.Wait != "" {
		d, err := ParseDuration("wait", raw.Wait)
		if err != nil {
			return err
		}
		cfg.Wait = d
	}
	if raw.NavTimeout != "" {
		d, err := ParseDuration("nav_timeout", raw.NavTimeout)
		if err != nil {
			return err
		}
		cfg.NavTimeout = d
	}
	if raw.OutputDir != "" {
		cfg.OutputDir = raw.OutputDir
	}
	if raw.Browser != "" {
		cfg.Browser = raw.Browser
	}
	if raw.Channel != "" {
		cfg.Channel = raw.Channel
	}
	if raw.Headless != nil {
		cfg.Headless = *raw.Headless
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.LogFile != "" {
		cfg.LogFile = raw.LogFile
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("APICAP_PAGE_URL")); v != "" {
		cfg.PageURL = v
	}
	if v := strings.TrimSpace(os.Getenv("APICAP_API_FILTER")); v != "" {
		cfg.APIFilter = v
	}
	if v := os.Getenv("APICAP_EXPECT"); v != "" {
		cfg.Expect = v
	}
	if v := strings.TrimSpace(os.Getenv("APICAP_WAIT")); v != "" {
		d, err := ParseDuration("APICAP_WAIT", v)
		if err != nil {
			return err
		}
		cfg.Wait = d
	}
	if v := strings.TrimSpace(os.Getenv("APICAP_OUTPUT_DIR")); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("APICAP_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// ParseDuration parses a non-negative duration; name labels the error.
func ParseDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: negative duration %s", name, value)
	}
	return d, nil
}
