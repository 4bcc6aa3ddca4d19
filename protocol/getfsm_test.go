package protocol

import (
	"testing"

	"github.com/CK6170/ucio-go/transport"
)

func TestRunGetWifiRSSI(t *testing.T) {
	// spec.md §8 example 2: get_wifi_rssi() transmits [WGT]; reply
	// ACK + 0xFF 0xFF 0xFF 0xC4 -> -60.
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0xFF, 0xFF, 0xFF, 0xC4)

	fields, err := RunGet(tr, GetWifiRSSI(), []FieldType{FieldI32}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].(int32) != -60 {
		t.Fatalf("got %v, want -60", fields[0])
	}
	if len(tr.Written) != 1 || string(tr.Written[0]) != "[WGT]" {
		t.Fatalf("wrote %q, want one [WGT] frame", tr.Written)
	}
}

func TestRunGetWifiIP(t *testing.T) {
	// spec.md §8 example 5.
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0xC0, 0xA8, 0x01, 0x32)

	fields, err := RunGet(tr, GetWifiIP(), []FieldType{FieldByte, FieldByte, FieldByte, FieldByte}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [4]byte{192, 168, 1, 50}
	for i, w := range want {
		if fields[i].(uint8) != w {
			t.Fatalf("field[%d] = %v, want %v", i, fields[i], w)
		}
	}
}

func TestRunGetNakIsTerminal(t *testing.T) {
	tr := transport.NewScripted().QueueByte(0x15)
	_, err := RunGet(tr, GetWifiStatus(), []FieldType{FieldU16}, false, false)
	pf, ok := err.(*ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *ProtocolFailure", err, err)
	}
	if pf.Reason != "nak_rx" {
		t.Fatalf("got reason %q, want nak_rx", pf.Reason)
	}
	if tr.CloseCalls != 1 {
		t.Fatalf("CloseCalls = %d, want 1", tr.CloseCalls)
	}
}

func TestRunGetAckTimeoutRetriesThenSucceeds(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueTimeout()
	tr.QueueByte(0x06)
	tr.QueueByte(0x2A)

	fields, err := RunGet(tr, GetRTCConfigFlag(), []FieldType{FieldByte}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].(uint8) != 0x2A {
		t.Fatalf("got %v", fields[0])
	}
	if len(tr.Written) != 2 {
		t.Fatalf("wrote %d frames, want 2 (original + retry)", len(tr.Written))
	}
}

func TestRunGetAckRetryExhaustion(t *testing.T) {
	tr := transport.NewScripted()
	for i := 0; i < retryLimit; i++ {
		tr.QueueTimeout()
	}
	_, err := RunGet(tr, GetWifiStatus(), []FieldType{FieldU16}, false, false)
	pf, ok := err.(*ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *ProtocolFailure", err, err)
	}
	if pf.Reason != "retry_get_ack>limit" {
		t.Fatalf("got reason %q, want retry_get_ack>limit", pf.Reason)
	}
}

func TestRunGetAckNinthTimeoutStillSucceeds(t *testing.T) {
	tr := transport.NewScripted()
	for i := 0; i < retryLimit-1; i++ {
		tr.QueueTimeout()
	}
	tr.QueueByte(0x06)
	tr.QueueByte(0x2A)

	fields, err := RunGet(tr, GetRTCConfigFlag(), []FieldType{FieldByte}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields[0].(uint8) != 0x2A {
		t.Fatalf("got %v", fields[0])
	}
	if len(tr.Written) != retryLimit {
		t.Fatalf("wrote %d frames, want %d", len(tr.Written), retryLimit)
	}
}

func TestRunGetCRCMismatchIsTerminal(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueByte(0x01) // field
	tr.QueueByte(0xFF) // bogus trailer
	_, err := RunGet(tr, GetRTCConfigFlag(), []FieldType{FieldByte}, false, true)
	pf, ok := err.(*ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *ProtocolFailure", err, err)
	}
	if pf.Reason != "crc_mismatch" {
		t.Fatalf("got reason %q, want crc_mismatch", pf.Reason)
	}
}
