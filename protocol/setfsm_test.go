package protocol

import (
	"testing"
	"time"

	"github.com/CK6170/ucio-go/transport"
)

func TestRunSetDirectPath(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06) // set ack
	tr.QueueByte(0x06) // get ack
	tr.QueueByte(0x01) // bool field: true

	assertion := Assertion{Kind: AssertEqBool, ExpectedBool: true}
	err := RunSet(tr, SetMasterAlarmEnable(true), GetMasterAlarmEnable(), []FieldType{FieldBool}, assertion, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Written) != 2 || string(tr.Written[0]) != "[ESM1]" || string(tr.Written[1]) != "[EGM]" {
		t.Fatalf("wrote %q, want [ESM1] then [EGM]", tr.Written)
	}
}

func TestRunSetVerifyPathOnAckLoss(t *testing.T) {
	// spec.md §8 example 3: config_master_alarm_enable(true) transmits
	// [ESM1], on ACK loss transmits [EGM], reply 0x06 0x01 succeeds via
	// verify path.
	tr := transport.NewScripted()
	tr.QueueTimeout() // set ack lost
	tr.QueueByte(0x06) // verify get ack
	tr.QueueByte(0x01) // bool field: true

	assertion := Assertion{Kind: AssertEqBool, ExpectedBool: true}
	err := RunSet(tr, SetMasterAlarmEnable(true), GetMasterAlarmEnable(), []FieldType{FieldBool}, assertion, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Written) != 2 || string(tr.Written[0]) != "[ESM1]" || string(tr.Written[1]) != "[EGM]" {
		t.Fatalf("wrote %q, want [ESM1] then [EGM]", tr.Written)
	}
}

func TestRunSetRTCTimeWithinTolerance(t *testing.T) {
	// spec.md §8 example 4: config_rtc_time(dt=1971-01-01T10:00:00)
	// transmits [TSJan 01 1971|10:00:00], then [TGR]; reply ACK followed
	// by year=0x07B3(1971), mo=1, d=1, h=10, mi=0, s=0 -> epoch delta 0.
	ts := time.Date(1971, time.January, 1, 10, 0, 0, 0, time.UTC)
	tr := transport.NewScripted()
	tr.QueueByte(0x06) // set ack
	tr.QueueByte(0x06) // get ack
	tr.QueueBytes(0x07, 0xB3) // year 1971
	tr.QueueByte(1)           // month
	tr.QueueByte(1)           // day
	tr.QueueByte(10)          // hour
	tr.QueueByte(0)           // minute
	tr.QueueByte(0)           // second

	assertion := Assertion{Kind: AssertTimeWithinTolerance, ExpectedTime: ts, ToleranceSeconds: 5}
	schedule := []FieldType{FieldU16, FieldByte, FieldByte, FieldByte, FieldByte, FieldByte}
	err := RunSet(tr, SetRTCTime(ts), GetRTCTime(), schedule, assertion, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunSetAssertMismatchIsUcFailure(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueByte(0x06) // set ack
	tr.QueueByte(0x06) // get ack
	tr.QueueByte(0x00) // bool field: false, but we expect true

	assertion := Assertion{Kind: AssertEqBool, ExpectedBool: true}
	err := RunSet(tr, SetMasterAlarmEnable(true), GetMasterAlarmEnable(), []FieldType{FieldBool}, assertion, false, false)
	pf, ok := err.(*ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *ProtocolFailure", err, err)
	}
	if pf.State != "uc_failure" {
		t.Fatalf("got state %q, want uc_failure", pf.State)
	}
}

func TestRunSetNakOnSetIsCommsFailure(t *testing.T) {
	tr := transport.NewScripted().QueueByte(0x15)
	assertion := Assertion{Kind: AssertEqBool, ExpectedBool: true}
	err := RunSet(tr, SetMasterAlarmEnable(true), GetMasterAlarmEnable(), []FieldType{FieldBool}, assertion, false, false)
	pf, ok := err.(*ProtocolFailure)
	if !ok {
		t.Fatalf("got %v (%T), want *ProtocolFailure", err, err)
	}
	if pf.State != "comms_failure" || pf.Reason != "nak_rx" {
		t.Fatalf("got state=%q reason=%q, want comms_failure/nak_rx", pf.State, pf.Reason)
	}
}

func TestRunSetVerifyPathRetriesOnMismatch(t *testing.T) {
	tr := transport.NewScripted()
	tr.QueueTimeout()  // set ack lost -> verify path
	tr.QueueByte(0x06) // verify get ack #1
	tr.QueueByte(0x00) // mismatch
	tr.QueueByte(0x06) // re-issued set ack
	tr.QueueByte(0x06) // verify get ack #2
	tr.QueueByte(0x01) // match

	assertion := Assertion{Kind: AssertEqBool, ExpectedBool: true}
	err := RunSet(tr, SetMasterAlarmEnable(true), GetMasterAlarmEnable(), []FieldType{FieldBool}, assertion, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// [ESM1] initial, [EGM] verify read #1, [ESM1] re-issue, [EGM] verify read #2
	if len(tr.Written) != 4 {
		t.Fatalf("wrote %d frames, want 4; got %q", len(tr.Written), tr.Written)
	}
}
