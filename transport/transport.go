// Package transport implements the byte-oriented duplex channels used to
// reach the I/O board: a persistent Serial link and a per-transaction UDP
// Datagram link. Both satisfy the same narrow Transport capability so the
// protocol FSMs in package protocol never branch on which one is in use.
package transport

import (
	"errors"
	"time"
)

// ErrTimeout is returned by ReadByte when no byte (Serial) or no datagram
// (Datagram) arrives within the configured deadline. FSMs distinguish this
// from any other error to drive their retry logic.
var ErrTimeout = errors.New("transport: read timeout")

// Transport is a bidirectional byte channel with a per-read timeout.
//
// Write is assumed non-blocking for the small ASCII command frames this
// protocol sends. ReadByte returns exactly one byte on either transport —
// callers that need more than one byte (the field decoders in package
// protocol) invoke ReadByte once per logical byte. On Datagram a call
// first drains any bytes left over from the last received datagram and
// only issues a new receive once those are used up, so it works whether
// the firmware sends each field as its own datagram or several together.
type Transport interface {
	// Open acquires the transport-local resource. For Serial this is a
	// no-op after the initial session-level open; for Datagram this binds
	// a fresh ephemeral UDP socket for the transaction about to start.
	Open() error

	// Close releases the transaction-local resource. For Serial this is a
	// no-op (the serial port is held for the life of the session); for
	// Datagram this closes the per-transaction socket.
	Close() error

	// Write sends cmd in full.
	Write(cmd []byte) error

	// ReadByte returns exactly one logical byte, or ErrTimeout if none
	// arrives before the configured deadline.
	ReadByte() (byte, error)
}

// Config bundles together the knobs both transport variants accept. Callers
// fill in only the fields relevant to the variant they construct.
type Config struct {
	// Serial
	DevicePath string
	BaudRate   int

	// Datagram
	PeerIP   [4]byte
	PeerPort int

	// Shared
	Timeout time.Duration
}
