package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/diesi/ask/internal/openai"
)

const (
	DefaultListen    = ":8080"
	DefaultLogFormat = "text"
	DefaultDotEnv    = ".env"
	defaultFileName  = ".ask.yaml"
)

// Config is the resolved application configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Debug     bool
	NoColor   bool
	Listen    string
	LogFormat string
	// File is the config file that was read, empty if none.
	File string
}

// Options controls where Load looks for configuration.
type Options struct {
	// File is an explicit config file; when empty $HOME/.ask.yaml is read if present.
	File string
	// DotEnv is the dotenv file merged into the process environment. Variables
	// already set win. Defaults to ".env"; a missing file is ignored.
	DotEnv string
	// Flags, when set, override every other source for the flags the user changed.
	Flags *pflag.FlagSet
}

// flag name -> viper key
var flagKeys = map[string]string{
	"model":      "model",
	"base-url":   "base_url",
	"timeout":    "timeout",
	"debug":      "debug",
	"no-color":   "no_color",
	"listen":     "listen",
	"log-format": "log_format",
}

// Load resolves configuration from, in increasing precedence: defaults, the
// config file, ASK_* environment variables (after merging the dotenv file)
// and command-line flags.
func Load(opts Options) (Config, error) {
	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = DefaultDotEnv
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	v := viper.New()
	v.SetDefault("model", openai.DefaultModel)
	v.SetDefault("base_url", openai.DefaultBaseURL)
	v.SetDefault("timeout", openai.DefaultTimeout.String())
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("log_format", DefaultLogFormat)
	v.SetDefault("debug", false)
	v.SetDefault("no_color", false)

	v.SetEnvPrefix("ASK")
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvAPIKey, EnvOpenAIAPIKey); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("no_color", EnvNoColorASK, EnvNoColor); err != nil {
		return Config{}, err
	}

	file := opts.File
	if file == "" {
		file = Get(EnvConfig)
	}
	if file == "" {
		file = defaultFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	timeout, err := parseTimeout(v.GetString("timeout"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		APIKey:    strings.TrimSpace(v.GetString("api_key")),
		BaseURL:   strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		Model:     strings.TrimSpace(v.GetString("model")),
		Timeout:   timeout,
		Debug:     v.GetBool("debug"),
		NoColor:   v.GetBool("no_color"),
		Listen:    v.GetString("listen"),
		LogFormat: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		File:      v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base url must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// parseTimeout accepts Go durations ("30s", "1m") and bare numbers of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	return d, nil
}

func defaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return ""
	}
	path := filepath.Join(home, defaultFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
