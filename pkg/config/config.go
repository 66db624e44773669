// Package config loads tcat-client settings from a YAML file and command-line
// flags. Flags given explicitly win over the file, which wins over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/espressif/openthread/pkg/dataset"
	"github.com/espressif/openthread/pkg/discovery"
	"github.com/espressif/openthread/pkg/session"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the client configuration.
type Config struct {
	// CertDir holds commissioner_cert.pem, commissioner_key.pem and ca_cert.pem.
	CertDir string `yaml:"cert_dir"`

	// RequestTimeout bounds every request/response round trip. Zero disables.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CaptureFile receives protocol capture events when set.
	CaptureFile string `yaml:"capture_file"`

	// HistoryFile keeps REPL history when set.
	HistoryFile string `yaml:"history_file"`

	// Dataset is an initial commissioning dataset in hex.
	Dataset string `yaml:"dataset"`

	// Connect is a device address to connect to at start-up.
	Connect string `yaml:"connect"`

	Discovery DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig configures the scan command.
type DiscoveryConfig struct {
	Service   string        `yaml:"service"`
	Domain    string        `yaml:"domain"`
	Timeout   time.Duration `yaml:"timeout"`
	Interface string        `yaml:"interface"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		CertDir:        session.DefaultCertDir,
		RequestTimeout: session.DefaultRequestTimeout,
		LogLevel:       "info",
		Discovery: DiscoveryConfig{
			Service: discovery.ServiceType,
			Domain:  discovery.Domain,
			Timeout: discovery.BrowseTimeout,
		},
	}
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// AddFlags binds the configuration fields to flags in fs, using the current
// field values as defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.CertDir, "cert-path", c.CertDir, "directory holding the commissioner certificate, key and CA")
	fs.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "request/response timeout (0 disables)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.CaptureFile, "capture", c.CaptureFile, "write protocol capture to this .tlog file")
	fs.StringVar(&c.HistoryFile, "history", c.HistoryFile, "REPL history file")
	fs.StringVar(&c.Dataset, "dataset", c.Dataset, "initial commissioning dataset (hex)")
	fs.StringVar(&c.Connect, "connect", c.Connect, "connect to host:port at start-up")
	fs.StringVar(&c.Discovery.Service, "service", c.Discovery.Service, "DNS-SD service type to scan for")
	fs.StringVar(&c.Discovery.Domain, "domain", c.Discovery.Domain, "mDNS domain")
	fs.DurationVar(&c.Discovery.Timeout, "scan-timeout", c.Discovery.Timeout, "how long a scan waits for answers")
	fs.StringVar(&c.Discovery.Interface, "interface", c.Discovery.Interface, "network interface to scan on (default: all)")
}

// Load parses args with fs. When --config names a file it is loaded and the
// flags set explicitly on the command line are re-applied on top of it.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := Default()
	cfg.AddFlags(fs)
	var path string
	fs.StringVar(&path, "config", "", "YAML configuration file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		overrides := pflag.NewFlagSet("overrides", pflag.ContinueOnError)
		fileCfg.AddFlags(overrides)
		var setErr error
		fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			if overrides.Lookup(f.Name) != nil {
				setErr = overrides.Set(f.Name, f.Value.String())
			}
		})
		if setErr != nil {
			return nil, setErr
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.CertDir == "" {
		return fmt.Errorf("%w: cert_dir is empty", ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	}
	if c.Discovery.Timeout < 0 {
		return fmt.Errorf("%w: discovery.timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Dataset != "" {
		if _, err := dataset.FromHex(c.Dataset); err != nil {
			return fmt.Errorf("%w: dataset: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Level returns the slog level for LogLevel, or info if it is invalid.
func (c *Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// SessionOptions returns the session options derived from the configuration.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		CertDir:        c.CertDir,
		RequestTimeout: c.RequestTimeout,
	}
}

// BrowserConfig returns the discovery settings for an MDNSBrowser.
func (c *Config) BrowserConfig() discovery.BrowserConfig {
	return discovery.BrowserConfig{
		Service:   c.Discovery.Service,
		Domain:    c.Discovery.Domain,
		Timeout:   c.Discovery.Timeout,
		Interface: c.Discovery.Interface,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
}
