package transport

import (
	"fmt"
	"net"
	"os"
	"time"
)

// Datagram is the UDP variant of Transport: the destination is fixed (the
// I/O board's IP and port) but the OS socket itself has transaction-local
// lifetime — Open binds a fresh ephemeral local port and dials the peer;
// Close tears it down. An FSM calls Open once in comms_start and Close in
// every terminal state (spec.md §3, §5).
//
// Per spec.md §4.1 the firmware sends each response field as its own
// datagram, yet a single recv can return up to one MTU of payload. The
// REDESIGN/open-question in spec.md §9 asks for a per-transaction buffer
// that feeds the field decoders byte-by-byte regardless of how the
// firmware actually chunks its datagrams; dgBuffer below does exactly
// that: ReadByte drains bytes from the last datagram it already received
// before issuing a new recv.
type Datagram struct {
	peerAddr *net.UDPAddr
	timeout  time.Duration

	conn   *net.UDPConn
	dgBuffer []byte
}

// NewDatagram builds a Datagram transport targeting ip:port. No socket is
// opened until Open is called.
func NewDatagram(ip [4]byte, port int, timeout time.Duration) *Datagram {
	return &Datagram{
		peerAddr: &net.UDPAddr{IP: net.IPv4(ip[0], ip[1], ip[2], ip[3]), Port: port},
		timeout:  timeout,
	}
}

// Open creates a new ephemeral UDP socket for this transaction and connects
// it to the fixed peer so Write/Read don't need to repeat the address.
func (d *Datagram) Open() error {
	conn, err := net.DialUDP("udp4", nil, d.peerAddr)
	if err != nil {
		return err
	}
	d.conn = conn
	d.dgBuffer = nil
	return nil
}

// Close releases this transaction's OS socket handle.
func (d *Datagram) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	d.dgBuffer = nil
	return err
}

func (d *Datagram) Write(cmd []byte) error {
	if d.conn == nil {
		return fmt.Errorf("transport: datagram socket not open")
	}
	_, err := d.conn.Write(cmd)
	return err
}

// ReadByte returns the next undelivered byte of the most recent datagram,
// or performs a fresh recv (one datagram, up to 1024 bytes per spec.md §9)
// if the buffer is empty.
func (d *Datagram) ReadByte() (byte, error) {
	if d.conn == nil {
		return 0, fmt.Errorf("transport: datagram socket not open")
	}
	if len(d.dgBuffer) == 0 {
		if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
			return 0, err
		}
		buf := make([]byte, 1024)
		n, err := d.conn.Read(buf)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return 0, ErrTimeout
			}
			if os.IsTimeout(err) {
				return 0, ErrTimeout
			}
			return 0, err
		}
		d.dgBuffer = buf[:n]
	}
	b := d.dgBuffer[0]
	d.dgBuffer = d.dgBuffer[1:]
	return b, nil
}
