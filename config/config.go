// Package config loads gofm settings from a YAML file and the command line.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

// Source kinds.
const (
	SourceWebSocket = "ws"
	SourceStdin     = "stdin"
	SourceFile      = "file"
)

// Output kinds.
const (
	OutputTUI  = "tui"
	OutputJSON = "json"
)

type Config struct {
	Source      string        `yaml:"source"`
	URL         string        `yaml:"url"`
	File        string        `yaml:"file"`
	ReplayDelay time.Duration `yaml:"replay_delay"`
	RBDS        bool          `yaml:"rbds"`
	Refresh     time.Duration `yaml:"refresh"`
	Output      string        `yaml:"output"`
	MetricsAddr string        `yaml:"metrics_addr"`
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	Font        string        `yaml:"font"`
}

func Default() *Config {
	return &Config{
		Source:   SourceWebSocket,
		URL:      "ws://localhost:8080/data",
		Refresh:  250 * time.Millisecond,
		Output:   OutputTUI,
		LogLevel: "info",
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var c = Default()

	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return c, nil
}

// Flags registers one flag per setting, plus --config, on fs.
func Flags(fs *pflag.FlagSet) {
	var d = Default()

	fs.StringP("config", "c", "", "YAML config file.")
	fs.StringP("source", "s", d.Source, "Where records come from: ws, stdin or file.")
	fs.StringP("url", "u", d.URL, "Tuner data socket URL, for --source=ws.")
	fs.StringP("file", "f", d.File, "Capture file to replay, for --source=file.")
	fs.Duration("replay-delay", d.ReplayDelay, "Delay between replayed records.")
	fs.Bool("rbds", d.RBDS, "Use North American (RBDS) program types and call signs.")
	fs.Duration("refresh", d.Refresh, "Display refresh interval.")
	fs.StringP("output", "o", d.Output, "Presentation: tui or json.")
	fs.String("metrics-addr", d.MetricsAddr, "Serve Prometheus metrics on this address, e.g. :9100.")
	fs.String("log-level", d.LogLevel, "debug, info, warn or error.")
	fs.String("log-file", d.LogFile, "Append logs here instead of stderr. The tui discards logs without one.")
	fs.String("font", d.Font, "FIGlet font file for the large PS banner.")
}

// Override copies every flag the user actually set onto c.
func (c *Config) Override(fs *pflag.FlagSet) error {
	var err error

	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "source":
			c.Source, err = fs.GetString(f.Name)
		case "url":
			c.URL, err = fs.GetString(f.Name)
		case "file":
			c.File, err = fs.GetString(f.Name)
		case "replay-delay":
			c.ReplayDelay, err = fs.GetDuration(f.Name)
		case "rbds":
			c.RBDS, err = fs.GetBool(f.Name)
		case "refresh":
			c.Refresh, err = fs.GetDuration(f.Name)
		case "output":
			c.Output, err = fs.GetString(f.Name)
		case "metrics-addr":
			c.MetricsAddr, err = fs.GetString(f.Name)
		case "log-level":
			c.LogLevel, err = fs.GetString(f.Name)
		case "log-file":
			c.LogFile, err = fs.GetString(f.Name)
		case "font":
			c.Font, err = fs.GetString(f.Name)
		}
	})
	return err
}

// FromFlags loads the --config file, if any, and applies the flags over it.
func FromFlags(fs *pflag.FlagSet) (*Config, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.Override(fs); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *Config) Validate() error {
	switch c.Source {
	case SourceWebSocket:
		u, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("%w: url: %v", ErrInvalid, err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("%w: url %q must be ws:// or wss://", ErrInvalid, c.URL)
		}
	case SourceFile:
		if c.File == "" {
			return fmt.Errorf("%w: source file needs a file", ErrInvalid)
		}
	case SourceStdin:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalid, c.Source)
	}

	switch c.Output {
	case OutputTUI, OutputJSON:
	default:
		return fmt.Errorf("%w: unknown output %q", ErrInvalid, c.Output)
	}
	if c.Output == OutputTUI && c.Source == SourceStdin {
		return fmt.Errorf("%w: the tui needs the terminal, use --output=json with stdin", ErrInvalid)
	}

	if c.Refresh <= 0 {
		return fmt.Errorf("%w: refresh must be positive", ErrInvalid)
	}
	if c.ReplayDelay < 0 {
		return fmt.Errorf("%w: replay_delay must not be negative", ErrInvalid)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	return nil
}

// Level is the parsed log level. Call after Validate.
func (c *Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}
