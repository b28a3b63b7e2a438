/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allbin/go-serialcomm/internal/config"
	"github.com/allbin/go-serialcomm/internal/logging"
	"github.com/allbin/go-serialcomm/internal/session"
)

var (
	cfgFile string
	v       = config.New()

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serialcomm",
	Short: "Drive a serial instrument with a timed command sequence",
	Long: `serialcomm talks to one serial-attached instrument at a time.

It opens a port at the configured baud rate, sends an ordered list of commands
(each terminated by a carriage return) on a fixed interval, and reads back one
newline-terminated response per command with a bounded timeout.

Settings come from, in increasing precedence: built-in defaults, a YAML file
(--config, or ./serialcomm.yaml), SERIALCOMM_* environment variables and flags.

Example usage:
  serialcomm list
  serialcomm run --port /dev/ttyUSB0 --command '*IDN?' --command 'MEAS?' --interval 2
  serialcomm session --config bench.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("✗"), err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./serialcomm.yaml)")
	flags.StringP("port", "p", "", "Serial device path (default: first candidate port)")
	flags.IntP("baud", "b", session.DefaultBaudRate, "Baud rate")
	flags.Int("timeout", session.DefaultTimeoutMs, "Read timeout in milliseconds")
	flags.Float64P("interval", "i", 0, "Seconds between commands")
	flags.StringArrayP("command", "c", nil, "Command to send; repeat for a sequence")
	flags.String("greeting", "", "Command sent once after every successful connect")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")

	for key, name := range map[string]string{
		"session.port":             "port",
		"session.baud_rate":        "baud",
		"session.timeout_ms":       "timeout",
		"session.command_interval": "interval",
		"session.commands":         "command",
		"session.greeting":         "greeting",
		"logging.level":            "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// loadConfig reads the configuration once flags have been parsed
func loadConfig() (*config.Config, error) {
	return config.Load(v, cfgFile)
}

// newLogger builds the configured logger. quiet discards stream output so it
// cannot draw over a full-screen interface.
func newLogger(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	if quiet && cfg.Logging.IsStream() {
		return zap.NewNop(), nil
	}
	return logging.New(cfg.Logging)
}

// newController wires link, enumerator and parameters for one session
func newController(cfg *config.Config, log *zap.Logger) (*session.Controller, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SerialOptions()
	if err != nil {
		return nil, err
	}

	link := session.NewLink(log, nil, opts...)
	return session.NewController(link, session.NewEnumerator(log), params, log)
}

// setup is the common prologue of the session commands
func setup(quiet bool) (*config.Config, *zap.Logger, *session.Controller, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg, quiet)
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := newController(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, c, nil
}
