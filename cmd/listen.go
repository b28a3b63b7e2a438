/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print delimiter-framed responses without sending anything",
	Long: `Connect to the configured port and perform back-to-back bounded reads,
printing every non-empty response. Nothing is written to the device. Each read
ends at the delimiter, when the buffer is full, or after the read timeout.

Runs until interrupted (Ctrl+C) or until --count responses have been printed.

Example usage:
  serialcomm listen -p /dev/ttyUSB0
  serialcomm listen -p /dev/ttyUSB0 --timeout 500 --count 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		_, log, c, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer c.Close()

		if err := c.Connect(""); err != nil {
			return fmt.Errorf("%s: %w", c.Status(), err)
		}
		fmt.Printf("%s %s %s\n", successStyle.Render("⚡"), c.Status(), mutedStyle.Render(c.Snapshot().Port))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		printed := 0
		for ctx.Err() == nil {
			if err := c.Read(); err != nil {
				return err
			}

			s := c.Snapshot()
			if len(s.LastRead) == 0 {
				continue
			}
			printResponse(s)
			printed++
			if count > 0 && printed >= count {
				return nil
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().IntP("count", "n", 0, "Stop after this many responses (0 runs until interrupted)")
}
