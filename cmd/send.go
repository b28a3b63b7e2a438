/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/allbin/go-serialcomm/internal/session"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [command...]",
	Short: "Send one-off commands and print each response",
	Long: `Connect to the configured port and send each command once, in order,
outside the configured sequence. A carriage return is appended to every command
and one response is read back per command.

Commands can be provided as:
- Command line arguments: serialcomm send '*IDN?' 'SYST:ERR?'
- From stdin (pipe), one per line: printf '*IDN?\nMEAS?\n' | serialcomm send

Example usage:
  serialcomm send -p /dev/ttyUSB0 '*IDN?'
  serialcomm send -p /dev/ttyACM0 -b 115200 'AT' 'AT+GMR'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		commands := args
		if len(commands) == 0 {
			var err error
			commands, err = readCommands(os.Stdin)
			if err != nil {
				return fmt.Errorf("error reading from stdin: %w", err)
			}
		}
		if len(commands) == 0 {
			return fmt.Errorf("no commands given")
		}

		_, log, c, err := setup(false)
		if err != nil {
			return err
		}
		defer log.Sync()
		defer c.Close()

		if err := c.Connect(""); err != nil {
			return fmt.Errorf("%s: %w", c.Status(), err)
		}
		fmt.Printf("%s %s %s\n", successStyle.Render("✓"), c.Status(), mutedStyle.Render(c.Snapshot().Port))

		for _, command := range commands {
			fmt.Printf("%s %s\n", infoStyle.Render("→"), command)
			if err := c.SendRaw(command); err != nil {
				return err
			}
			printResponse(c.Snapshot())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

// readCommands reads non-empty lines from a pipe; a terminal yields nothing
func readCommands(in *os.File) ([]string, error) {
	stat, err := in.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return nil, nil
	}
	return scanLines(in)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func printResponse(s session.Snapshot) {
	if s.Truncated && len(s.LastRead) == 0 {
		fmt.Printf("%s %s\n", mutedStyle.Render("←"), mutedStyle.Render("(no response)"))
		return
	}
	suffix := ""
	if s.Truncated {
		suffix = mutedStyle.Render(" (no delimiter)")
	}
	fmt.Printf("%s %s%s\n", successStyle.Render("←"), s.LastRead, suffix)
}
