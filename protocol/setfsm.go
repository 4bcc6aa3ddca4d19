package protocol

import (
	"github.com/CK6170/ucio-go/transport"
)

// RunSet drives the Set FSM (spec.md §4.6): write setPayload, wait for its
// ACK, then read back via getPayload and check assertion against the
// decoded fields. If the initial ACK is lost to a timeout, the verify path
// is taken instead, assuming the device accepted the write (spec.md §4.6
// wait_set_ack). A failed assertion on the non-verify path is terminal
// (uc_failure); a failed assertion on the verify path re-issues the
// set-command and retries up to retryLimit times before giving up.
func RunSet(tr transport.Transport, setPayload, getPayload string, schedule []FieldType, assertion Assertion, txCRC, rxCRC bool) error {
	if err := tr.Open(); err != nil {
		return &ProtocolFailure{State: "comms_start", Reason: "open", Err: err}
	}
	defer tr.Close()

	setFrame := EncodeFrame(setPayload, txCRC)
	getFrame := EncodeFrame(getPayload, txCRC)

	if err := tr.Write(setFrame); err != nil {
		return &ProtocolFailure{State: "comms_start", Reason: "write", Err: err}
	}

	verifyPath, err := waitSetAck(tr, getFrame)
	if err != nil {
		return err
	}

	if verifyPath {
		return runVerifyPath(tr, setFrame, getFrame, schedule, assertion, rxCRC)
	}
	return runAssertPath(tr, getFrame, schedule, assertion, rxCRC)
}

// waitSetAck reads the ACK for the initial set-command. On ACK, it writes
// the get-command and reports the non-verify path. On timeout, it also
// writes the get-command but reports the verify path, per spec.md §4.6's
// ACK-loss assumption. NAK or an unexpected byte is terminal.
func waitSetAck(tr transport.Transport, getFrame []byte) (verifyPath bool, err error) {
	ackErr := ReadAck(tr)
	switch ackErr {
	case nil:
		if werr := tr.Write(getFrame); werr != nil {
			return false, &ProtocolFailure{State: "wait_get_ack", Reason: "write", Err: werr}
		}
		return false, nil
	case transport.ErrTimeout:
		if werr := tr.Write(getFrame); werr != nil {
			return false, &ProtocolFailure{State: "wait_verify_get_ack", Reason: "write", Err: werr}
		}
		return true, nil
	case ErrNakReceived:
		return false, &ProtocolFailure{State: "comms_failure", Reason: "nak_rx", Err: ackErr}
	default:
		return false, &ProtocolFailure{State: "comms_failure", Reason: "unexpected_byte_rx", Err: ackErr}
	}
}

// runAssertPath is the non-verify branch: wait_get_ack -> wait_data ->
// assert_data. A failed assertion is a terminal uc_failure (spec.md §4.6).
func runAssertPath(tr transport.Transport, getFrame []byte, schedule []FieldType, assertion Assertion, rxCRC bool) error {
	if err := waitGetAckWithRetry(tr, getFrame); err != nil {
		return err
	}
	fields, _, err := decodeScheduleWithRetry(tr, getFrame, schedule, rxCRC)
	if err != nil {
		return err
	}
	if !assertion.Evaluate(fields) {
		return &ProtocolFailure{State: "uc_failure", Reason: "assert_data_mismatch"}
	}
	return nil
}

// runVerifyPath re-reads via getFrame using its own retry counters and, on
// a failed assertion, re-issues setFrame and retries the whole verify cycle
// up to retryLimit times (spec.md §4.6 assert_verify_data).
func runVerifyPath(tr transport.Transport, setFrame, getFrame []byte, schedule []FieldType, assertion Assertion, rxCRC bool) error {
	verifyRetries := 0
	for {
		if err := waitGetAckWithRetry(tr, getFrame); err != nil {
			return err
		}
		fields, _, err := decodeScheduleWithRetry(tr, getFrame, schedule, rxCRC)
		if err != nil {
			return err
		}
		if assertion.Evaluate(fields) {
			return nil
		}
		verifyRetries++
		if verifyRetries >= retryLimit {
			return &ProtocolFailure{State: "comms_failure", Reason: "retry_verify_assert_data>limit"}
		}
		if err := tr.Write(setFrame); err != nil {
			return &ProtocolFailure{State: "wait_set_ack", Reason: "write", Err: err}
		}
		if err := ReadAck(tr); err != nil {
			return &ProtocolFailure{State: "comms_failure", Reason: "invalid_assert+tx_set_cmd", Err: err}
		}
		if err := tr.Write(getFrame); err != nil {
			return &ProtocolFailure{State: "wait_verify_get_ack", Reason: "write", Err: err}
		}
	}
}

// waitGetAckWithRetry implements the wait_get_ack / increment_retry_get
// pattern for both branches of the Set FSM (RunGet carries its own copy of
// the same loop): on ACK timeout, rewrite getFrame and retry up to
// retryLimit times.
func waitGetAckWithRetry(tr transport.Transport, getFrame []byte) error {
	retries := 0
	for {
		err := ReadAck(tr)
		if err == nil {
			return nil
		}
		if err == transport.ErrTimeout {
			retries++
			if retries >= retryLimit {
				return &ProtocolFailure{State: "comms_failure", Reason: "retry_get_ack>limit", Err: err}
			}
			if werr := tr.Write(getFrame); werr != nil {
				return &ProtocolFailure{State: "comms_failure", Reason: "write", Err: werr}
			}
			continue
		}
		if err == ErrNakReceived {
			return &ProtocolFailure{State: "comms_failure", Reason: "nak_rx", Err: err}
		}
		return &ProtocolFailure{State: "comms_failure", Reason: "unexpected_byte_rx", Err: err}
	}
}
