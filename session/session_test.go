package session

import (
	"testing"
	"time"

	"github.com/CK6170/ucio-go/protocol"
	"github.com/CK6170/ucio-go/transport"
)

func TestGetRTCTime(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0x07, 0xB3) // 1971
	tr.QueueByte(1)
	tr.QueueByte(1)
	tr.QueueByte(10)
	tr.QueueByte(0)
	tr.QueueByte(0)

	s := New(tr, false, false)
	got, err := s.GetRTCTime()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(1971, time.January, 1, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("GetRTCTime() = %v, want %v", got, want)
	}
}

func TestGetProbeReading(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0x41, 0xC8, 0x00, 0x00) // 25.0

	s := New(tr, false, false)
	got, err := s.GetProbeReading(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 25.0 {
		t.Fatalf("GetProbeReading(2) = %v, want 25.0", got)
	}
}

func TestGetProbeReadingRejectsInvalidNum(t *testing.T) {
	s := New(transport.NewScripted(), false, false)
	if _, err := s.GetProbeReading(9); err != protocol.ErrUnexpectedIONum {
		t.Fatalf("got err=%v, want ErrUnexpectedIONum", err)
	}
}

func TestSetClearEEPROMAssertsCounterIncrement(t *testing.T) {
	tr := transport.NewScripted()
	// prior count fetch: GetClearEEPROMCount -> EGK
	tr.QueueByte(0x06)
	tr.QueueBytes(0x00, 0x05) // prior = 5
	// Set: set ack, get ack, readback count = 6
	tr.QueueByte(0x06)
	tr.QueueByte(0x06)
	tr.QueueBytes(0x00, 0x06)

	s := New(tr, false, false)
	if err := s.SetClearEEPROM(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetClearEEPROMFailsOnStaleCounter(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0x00, 0x05) // prior = 5
	tr.QueueByte(0x06)
	tr.QueueByte(0x06)
	tr.QueueBytes(0x00, 0x05) // readback unchanged -> mismatch

	s := New(tr, false, false)
	err := s.SetClearEEPROM()
	pf, ok := err.(*protocol.ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *protocol.ProtocolFailure", err, err)
	}
	if pf.State != "uc_failure" {
		t.Fatalf("got state %q, want uc_failure", pf.State)
	}
}

func TestPulseOptoOutputAssertsDelta(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueBytes(0x00, 0x02) // prior = 2
	tr.QueueByte(0x06)        // set ack
	tr.QueueByte(0x06)        // get ack
	tr.QueueBytes(0x00, 0x05) // prior + 3

	s := New(tr, false, false)
	if err := s.PulseOptoOutput(1, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetOutputAlarmChecksEnableAndTime(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06) // set ack
	tr.QueueByte(0x06) // get ack
	tr.QueueByte(1)    // enable = true
	tr.QueueByte(6)    // hour
	tr.QueueByte(30)   // minute
	tr.QueueByte(0)    // second

	s := New(tr, false, false)
	alarmTime := time.Date(0, 1, 1, 6, 30, 0, 0, time.UTC)
	if err := s.SetOutputAlarm(1, true, true, alarmTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetOutputAlarmRejectsEnableMismatch(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06)
	tr.QueueByte(0x06)
	tr.QueueByte(0) // enable = false, expected true
	tr.QueueByte(6)
	tr.QueueByte(30)
	tr.QueueByte(0)

	s := New(tr, false, false)
	alarmTime := time.Date(0, 1, 1, 6, 30, 0, 0, time.UTC)
	err := s.SetOutputAlarm(1, true, true, alarmTime)
	pf, ok := err.(*protocol.ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *protocol.ProtocolFailure", err, err)
	}
	if pf.State != "uc_failure" {
		t.Fatalf("got state %q, want uc_failure", pf.State)
	}
}
