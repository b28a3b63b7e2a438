// Package serial is the low-level serial driver used by serialcomm.
//
// It opens Linux serial devices in raw mode through golang.org/x/sys/unix and
// exposes a small Port interface with a poll-based timed read, which is all the
// session layer needs to frame delimiter-terminated responses.
//
// # Basic Usage
//
// Open a serial port with the default configuration (9600 8N1, no flow control):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("*IDN?\r"))
//	buf := make([]byte, 256)
//	n, err = port.ReadTimeout(buf, 500*time.Millisecond)
//
// # Configuration Options
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(115200),
//	    serial.WithDataBits(7),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithFlowControl(serial.FlowControlRTSCTS),
//	)
//
// # Port Discovery
//
// ListCandidatePorts returns every /dev entry whose name contains "tty", in
// directory order. GetPortInfo adds USB vendor/product metadata when the OS
// enumerator can provide it:
//
//	ports, _ := serial.ListCandidatePorts()
//	for _, p := range ports {
//	    info, _ := serial.GetPortInfo(p)
//	    fmt.Println(info.Path, info.Description, info.VendorID, info.ProductID)
//	}
//
// # Error Handling
//
// Open classifies failures with sentinel errors; use errors.Is:
//
//	if errors.Is(err, serial.ErrDeviceNotFound) {
//	    // bad path
//	}
package serial
