package serial

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"go.bug.st/serial/enumerator"
)

func makeEntries(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("setup %s: %v", name, err)
		}
	}
}

func TestScanPortsFiltersOnTTY(t *testing.T) {
	dir := t.TempDir()
	makeEntries(t, dir, "ttyUSB0", "ttyS1", "tty0", "cu.tty.usbserial", "null", "random", "TTYUSB9", "ptmx")
	if err := os.Mkdir(filepath.Join(dir, "pts"), 0o755); err != nil {
		t.Fatal(err)
	}

	ports, err := ScanPorts(dir)
	if err != nil {
		t.Fatalf("ScanPorts failed: %v", err)
	}

	got := append([]string(nil), ports...)
	sort.Strings(got)
	want := []string{
		filepath.Join(dir, "cu.tty.usbserial"),
		filepath.Join(dir, "tty0"),
		filepath.Join(dir, "ttyS1"),
		filepath.Join(dir, "ttyUSB0"),
	}
	if len(got) != len(want) {
		t.Fatalf("ScanPorts = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("port %d = %s, want %s", i, got[i], want[i])
		}
	}

	for _, p := range ports {
		if !strings.Contains(filepath.Base(p), "tty") {
			t.Errorf("non-candidate entry returned: %s", p)
		}
		if !strings.HasPrefix(p, dir+string(os.PathSeparator)) {
			t.Errorf("entry not qualified with directory: %s", p)
		}
	}
}

func TestScanPortsEmptyDir(t *testing.T) {
	ports, err := ScanPorts(t.TempDir())
	if err != nil {
		t.Fatalf("ScanPorts failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("expected no ports, got %v", ports)
	}
}

func TestScanPortsMissingDir(t *testing.T) {
	if _, err := ScanPorts(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestGetPortDescription(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"ttyUSB0", "USB Serial Port"},
		{"ttyACM0", "USB CDC/ACM Device"},
		{"ttyS0", "Standard Serial Port"},
		{"ttyAMA0", "ARM Serial Port"},
		{"ttymxc0", "i.MX Serial Port"},
		{"ttyO0", "OMAP Serial Port"},
		{"ttySAC0", "Samsung Serial Port"},
		{"ttyTHS0", "Tegra Serial Port"},
		{"tty1", "Terminal Device"},
		{"unknown", "Serial Port"},
	}

	for _, test := range tests {
		result := getPortDescription(test.name)
		if result != test.expected {
			t.Errorf("getPortDescription(%s) = %s, expected %s", test.name, result, test.expected)
		}
	}
}

func TestGetPortInfo(t *testing.T) {
	orig := detailedPortsList
	t.Cleanup(func() { detailedPortsList = orig })

	detailedPortsList = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/null", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "FT123456", Product: "FT232R"},
		}, nil
	}

	info, err := GetPortInfo("/dev/null")
	if err != nil {
		t.Fatalf("GetPortInfo failed for /dev/null: %v", err)
	}
	if info.Name != "null" || info.Path != "/dev/null" {
		t.Errorf("unexpected identity: %+v", info)
	}
	if !info.IsUSB || info.VendorID != "0403" || info.ProductID != "6001" || info.SerialNumber != "FT123456" {
		t.Errorf("USB metadata not copied: %+v", info)
	}

	if _, err := GetPortInfo("/dev/nonexistent"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}

	if _, err := GetPortInfo(t.TempDir()); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound for a directory, got %v", err)
	}
}

func TestGetPortInfoEnumeratorFailure(t *testing.T) {
	orig := detailedPortsList
	t.Cleanup(func() { detailedPortsList = orig })

	detailedPortsList = func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("no udev")
	}

	info, err := GetPortInfo("/dev/null")
	if !errors.Is(err, ErrPortInfoNotAvailable) {
		t.Errorf("Expected ErrPortInfoNotAvailable, got %v", err)
	}
	if info == nil || info.Path != "/dev/null" {
		t.Errorf("basic info should still be returned, got %+v", info)
	}
}

// TestListCandidatePortsIntegration lists the real /dev directory
func TestListCandidatePortsIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ports, err := ListCandidatePorts()
	if err != nil {
		t.Fatalf("ListCandidatePorts failed: %v", err)
	}

	t.Logf("Found %d candidate ports", len(ports))
	for _, p := range ports {
		if !strings.HasPrefix(p, "/dev/") {
			t.Errorf("Port path doesn't start with /dev/: %s", p)
		}
	}
}

func BenchmarkListCandidatePorts(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ListCandidatePorts(); err != nil {
			b.Errorf("ListCandidatePorts failed: %v", err)
		}
	}
}
