/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/session"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidate serial ports",
	Long: `List every device under /dev whose name contains "tty".

The list is recomputed on every call and is not sorted; it contains whatever
the directory read returns, virtual terminals included. Use --usb to keep only
ports the system enumerator identifies as USB adapters.

Example usage:
  serialcomm list
  serialcomm list --table
  serialcomm list --usb --table`,
	Run: func(cmd *cobra.Command, args []string) {
		tableFormat, _ := cmd.Flags().GetBool("table")
		usbOnly, _ := cmd.Flags().GetBool("usb")
		dir, _ := cmd.Flags().GetString("dir")

		ports := session.NewEnumeratorIn(dir, nil).ListCandidatePorts()

		var infos []*serial.PortInfo
		if tableFormat || usbOnly {
			infos = describePorts(ports)
			if usbOnly {
				infos = filterUSB(infos)
			}
		}

		if len(ports) == 0 || (usbOnly && len(infos) == 0) {
			fmt.Println("No serial ports found")
			return
		}

		switch {
		case tableFormat:
			renderTable(infos)
		case usbOnly:
			for _, info := range infos {
				fmt.Println(info.Path)
			}
		default:
			for _, port := range ports {
				fmt.Println(port)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table with USB metadata")
	listCmd.Flags().BoolP("usb", "u", false, "Only list USB serial adapters")
	listCmd.Flags().String("dir", serial.DeviceDir, "Directory to scan")
	_ = listCmd.Flags().MarkHidden("dir")
}

// describePorts looks up metadata; ports that are not character devices are skipped
func describePorts(ports []string) []*serial.PortInfo {
	infos := make([]*serial.PortInfo, 0, len(ports))
	for _, port := range ports {
		info, err := serial.GetPortInfo(port)
		if info == nil {
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", mutedStyle.Render("skip"), port, err)
			}
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

func filterUSB(infos []*serial.PortInfo) []*serial.PortInfo {
	var usb []*serial.PortInfo
	for _, info := range infos {
		if info.IsUSB {
			usb = append(usb, info)
		}
	}
	return usb
}

const (
	columnKeyPort    = "port"
	columnKeyType    = "type"
	columnKeyUSB     = "usb"
	columnKeyProduct = "product"
)

// renderTable renders the port list with bubble-table
func renderTable(infos []*serial.PortInfo) {
	fmt.Printf("Found %d serial port(s):\n\n", len(infos))

	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		usb := ""
		if info.IsUSB {
			usb = strings.ToLower(info.VendorID + ":" + info.ProductID)
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:    info.Path,
			columnKeyType:    info.Description,
			columnKeyUSB:     usb,
			columnKeyProduct: info.Product,
		}))
	}

	t := table.New([]table.Column{
		table.NewColumn(columnKeyPort, "Port", 18),
		table.NewColumn(columnKeyType, "Type", 20),
		table.NewColumn(columnKeyUSB, "VID:PID", 11),
		table.NewColumn(columnKeyProduct, "Product", 30),
	}).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))).
		WithBaseStyle(lipgloss.NewStyle().Align(lipgloss.Left))

	fmt.Println(t.View())
}
