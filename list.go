package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// DeviceDir is the directory scanned for candidate ports
const DeviceDir = "/dev"

// candidateMarker is the substring a device name must contain to be listed
const candidateMarker = "tty"

// allow tests to override the OS enumerator
var detailedPortsList = enumerator.GetDetailedPortsList

// ListCandidatePorts returns every entry of /dev whose name contains "tty".
// The order is whatever the directory read yields and is not stable across calls.
func ListCandidatePorts() ([]string, error) {
	return ScanPorts(DeviceDir)
}

// ScanPorts returns dir/<name> for every entry of dir whose name contains "tty".
// Entries are not sorted.
func ScanPorts(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	ports := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if strings.Contains(name, candidateMarker) {
			ports = append(ports, filepath.Join(dir, name))
		}
	}

	return ports, nil
}

// PortInfo describes a serial port and, for USB adapters, its USB identity
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	fi, err := os.Stat(portPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, portPath)
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return nil, fmt.Errorf("%w: %s is not a character device", ErrDeviceNotFound, portPath)
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	details, err := detailedPortsList()
	if err != nil {
		// Metadata is optional; the path itself is still usable.
		return info, fmt.Errorf("%w: %v", ErrPortInfoNotAvailable, err)
	}
	for _, d := range details {
		if d.Name != portPath {
			continue
		}
		info.IsUSB = d.IsUSB
		info.VendorID = d.VID
		info.ProductID = d.PID
		info.SerialNumber = d.SerialNumber
		info.Product = d.Product
		break
	}

	return info, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "tty"):
		return "Terminal Device"
	default:
		return "Serial Port"
	}
}
