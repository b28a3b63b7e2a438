// Package config loads session, serial framing and logging settings from
// defaults, an optional YAML file, SERIALCOMM_* environment variables and
// bound command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/logging"
	"github.com/allbin/go-serialcomm/internal/session"
)

// EnvPrefix is prepended to every environment override, e.g. SERIALCOMM_SESSION_BAUD_RATE
const EnvPrefix = "SERIALCOMM"

// Config represents the application configuration
type Config struct {
	Session SessionConfig  `mapstructure:"session"`
	Serial  SerialConfig   `mapstructure:"serial"`
	Logging logging.Config `mapstructure:"logging"`
}

// SessionConfig holds the operator-editable session parameters
type SessionConfig struct {
	Port            string   `mapstructure:"port"`
	BaudRate        int      `mapstructure:"baud_rate"`
	TimeoutMs       int      `mapstructure:"timeout_ms"`
	SamplingRate    float64  `mapstructure:"sampling_rate"`
	CommandInterval float64  `mapstructure:"command_interval"`
	Commands        []string `mapstructure:"commands"`
	Greeting        string   `mapstructure:"greeting"`
	Delimiter       string   `mapstructure:"delimiter"`
}

// SerialConfig holds line framing options applied on every open
type SerialConfig struct {
	DataBits    int    `mapstructure:"data_bits"`
	StopBits    int    `mapstructure:"stop_bits"`
	Parity      string `mapstructure:"parity"`
	FlowControl string `mapstructure:"flow_control"`
	SyncWrite   bool   `mapstructure:"sync_write"`
}

// New returns a viper instance with defaults and environment lookup installed
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads file (or, when empty, serialcomm.yaml from the working directory
// or $HOME/.config/serialcomm if present) into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("serialcomm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/serialcomm")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Session defaults
	v.SetDefault("session.port", "")
	v.SetDefault("session.baud_rate", session.DefaultBaudRate)
	v.SetDefault("session.timeout_ms", session.DefaultTimeoutMs)
	v.SetDefault("session.sampling_rate", session.DefaultSamplingRate)
	v.SetDefault("session.command_interval", 0.0)
	v.SetDefault("session.commands", []string{session.DefaultCommand, session.DefaultCommand})
	v.SetDefault("session.greeting", "")
	v.SetDefault("session.delimiter", `\n`)

	// Serial framing defaults
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.flow_control", "none")
	v.SetDefault("serial.sync_write", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

// Validate checks every section; the first problem found is returned
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := c.SerialOptions(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// Params converts the session section into validated session parameters
func (c *Config) Params() (session.Params, error) {
	delim, err := ParseDelimiter(c.Session.Delimiter)
	if err != nil {
		return session.Params{}, err
	}

	p := session.Params{
		Port:            c.Session.Port,
		BaudRate:        c.Session.BaudRate,
		TimeoutMillis:   c.Session.TimeoutMs,
		SamplingRate:    c.Session.SamplingRate,
		IntervalSeconds: c.Session.CommandInterval,
		Commands:        append([]string(nil), c.Session.Commands...),
		Greeting:        c.Session.Greeting,
		Delimiter:       delim,
	}
	if err := p.Validate(); err != nil {
		return session.Params{}, err
	}
	return p, nil
}

// SerialOptions converts the serial section into driver options
func (c *Config) SerialOptions() ([]serial.Option, error) {
	s := c.Serial
	if s.DataBits < 5 || s.DataBits > 8 {
		return nil, fmt.Errorf("%w: serial.data_bits must be 5-8, got %d", serial.ErrInvalidConfig, s.DataBits)
	}
	if s.StopBits != 1 && s.StopBits != 2 {
		return nil, fmt.Errorf("%w: serial.stop_bits must be 1 or 2, got %d", serial.ErrInvalidConfig, s.StopBits)
	}
	parity, err := serial.ParseParity(strings.ToLower(s.Parity))
	if err != nil {
		return nil, err
	}

	var flow serial.FlowControl
	switch strings.ToLower(s.FlowControl) {
	case "", "none":
		flow = serial.FlowControlNone
	case "rtscts", "hardware":
		flow = serial.FlowControlRTSCTS
	default:
		return nil, fmt.Errorf("%w: unknown flow control %q", serial.ErrInvalidConfig, s.FlowControl)
	}

	opts := []serial.Option{
		serial.WithDataBits(s.DataBits),
		serial.WithStopBits(s.StopBits),
		serial.WithParity(parity),
		serial.WithFlowControl(flow),
	}
	if s.SyncWrite {
		opts = append(opts, serial.WithSyncWrite())
	}
	return opts, nil
}

// ParseDelimiter accepts a single byte, or an escape such as \n, \r or \x03.
// An empty string means the default delimiter.
func ParseDelimiter(s string) (byte, error) {
	if s == "" {
		return session.Delimiter, nil
	}
	if len(s) == 1 {
		return s[0], nil
	}

	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil || len(unquoted) != 1 {
		return 0, fmt.Errorf("%w: delimiter must be a single byte, got %q", session.ErrInvalidParams, s)
	}
	return unquoted[0], nil
}
