/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allbin/go-serialcomm/internal/session"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect and play the command sequence once, without a UI",
	Long: `Connect to the configured port, send the greeting if one is set, then
unpause the sequence: the first command goes out immediately and each following
command after the configured interval. Every response is printed as it arrives.

The command exits when the last command has been sent (the sequence auto-pauses),
when the connection fails, on Ctrl+C, or after --max-wait.

Responses can also be appended to a file with --output, one per line.

Example usage:
  serialcomm run -p /dev/ttyUSB0 -c '*IDN?'
  serialcomm run -p /dev/ttyUSB0 -c 'MEAS:VOLT?' -c 'MEAS:CURR?' -i 1.5 --output bench.log
  SERIALCOMM_SESSION_BAUD_RATE=115200 serialcomm run --config bench.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxWait, _ := cmd.Flags().GetDuration("max-wait")
		outputPath, _ := cmd.Flags().GetString("output")

		_, log, c, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()

		var out io.Writer = io.Discard
		if outputPath != "" {
			f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runSequence(ctx, c, log, maxWait, out)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Duration("max-wait", 0, "Give up after this long (0 waits for the sequence)")
	runCmd.Flags().StringP("output", "o", "", "Append every response to this file")
}

var errSequenceStopped = errors.New("sequence stopped")

// runSequence drives one session loop until the sequence completes
func runSequence(ctx context.Context, c *session.Controller, log *zap.Logger, maxWait time.Duration, out io.Writer) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan session.Snapshot, 16)
	loop := session.NewLoop(c, func(s session.Snapshot) {
		select {
		case updates <- s:
		case <-loopCtx.Done():
		}
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run(loopCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	var deadline <-chan time.Time
	if maxWait > 0 {
		timer := time.NewTimer(maxWait)
		defer timer.Stop()
		deadline = timer.C
	}

	loop.Connect("")
	loop.Unpause()

	var prev session.Snapshot
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("%s interrupted\n", mutedStyle.Render("■"))
			return nil
		case <-deadline:
			return fmt.Errorf("sequence did not finish within %s", maxWait)
		case s := <-updates:
			printSnapshot(prev, s, out)
			prev = s

			switch {
			case s.Status == session.StatusConnectFailed:
				return fmt.Errorf("%s (%s)", s.Status, s.LastError)
			case s.SequenceDone:
				fmt.Printf("%s %s\n", successStyle.Render("✓"), "Sequence complete.")
				log.Info("Run finished", zap.Int("commands", s.Total), zap.Int("responses", s.Reads))
				return nil
			case s.LastError != "" && s.State != session.Armed:
				return fmt.Errorf("%w: %s", errSequenceStopped, s.LastError)
			}
		}
	}
}

// printSnapshot prints what changed between two snapshots
func printSnapshot(prev, s session.Snapshot, out io.Writer) {
	if s.Status != prev.Status {
		style := infoStyle
		if s.Status == session.StatusConnected {
			style = successStyle
		}
		fmt.Printf("%s %s %s\n", style.Render("⚡"), s.Status, mutedStyle.Render(s.Port))
	}
	if s.Dispatches > prev.Dispatches {
		fmt.Printf("%s %s\n", infoStyle.Render("→"), s.LastCommand)
	}
	if s.Reads > prev.Reads {
		text := string(s.LastRead)
		suffix := ""
		if s.Truncated {
			suffix = mutedStyle.Render(" (no delimiter)")
		}
		fmt.Printf("%s %s%s\n", successStyle.Render("←"), text, suffix)
		fmt.Fprintln(out, text)
	}
}
