package transport

import (
	"time"

	goserial "github.com/tarm/serial"
)

// Serial is a persistent, point-to-point RS-232/USB-CDC link to the I/O
// board. It is opened once per session and closed at teardown; Open/Close
// here are no-ops per spec.md §3 (the socket-lifetime semantics only apply
// to Datagram).
//
// Grounded on the teacher's serial.NewLeo485/GetADsWithTimeout in
// _examples/CK6170-CalRunrilla-web/serial/leo485.go and com.go: same
// goserial.Config shape (8N1, ParityNone, Stop1), same poll-with-deadline
// read loop as readUntil, generalized from "read until line terminator" to
// "read exactly one byte".
type Serial struct {
	port    *goserial.Port
	timeout time.Duration
}

// OpenSerial opens the named device at baud and returns a ready Transport.
func OpenSerial(devicePath string, baud int, timeout time.Duration) (*Serial, error) {
	cfg := &goserial.Config{
		Name:        devicePath,
		Baud:        baud,
		Parity:      goserial.ParityNone,
		Size:        8,
		StopBits:    goserial.Stop1,
		ReadTimeout: 50 * time.Millisecond,
	}
	port, err := goserial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &Serial{port: port, timeout: timeout}, nil
}

// Open is a no-op: the port is already live for the session.
func (s *Serial) Open() error { return nil }

// Close is a no-op here; the caller closes the underlying port once at
// session teardown via CloseSession.
func (s *Serial) Close() error { return nil }

// CloseSession releases the OS handle. Called once by the owning session,
// not by the FSMs.
func (s *Serial) CloseSession() error { return s.port.Close() }

func (s *Serial) Write(cmd []byte) error {
	_, err := s.port.Write(cmd)
	return err
}

// ReadByte polls the port (bounded by the per-byte ReadTimeout configured
// at open) until one byte is available or the configured timeout, counted
// afresh on each call, elapses.
func (s *Serial) ReadByte() (byte, error) {
	deadline := time.Now().Add(s.timeout)
	buf := make([]byte, 1)
	for time.Now().Before(deadline) {
		n, err := s.port.Read(buf)
		if n > 0 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
	return 0, ErrTimeout
}
