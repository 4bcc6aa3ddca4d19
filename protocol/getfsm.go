package protocol

import (
	"github.com/CK6170/ucio-go/transport"
)

const retryLimit = 10

// RunGet drives the Get FSM (spec.md §4.5) to completion: open the
// transport, write payload, wait for ACK, decode fields, then verify the
// optional CRC8 trailer. It returns the decoded field values in schedule
// order or a *ProtocolFailure describing the terminal failure state.
func RunGet(tr transport.Transport, payload string, schedule []FieldType, txCRC, rxCRC bool) ([]interface{}, error) {
	if err := tr.Open(); err != nil {
		return nil, &ProtocolFailure{State: "comms_start", Reason: "open", Err: err}
	}
	defer tr.Close()

	frame := EncodeFrame(payload, txCRC)
	if err := tr.Write(frame); err != nil {
		return nil, &ProtocolFailure{State: "comms_start", Reason: "write", Err: err}
	}

	ackRetries := 0
	for {
		err := ReadAck(tr)
		if err == nil {
			break
		}
		if err == transport.ErrTimeout {
			ackRetries++
			if ackRetries >= retryLimit {
				return nil, &ProtocolFailure{State: "comms_failure", Reason: "retry_get_ack>limit", Err: err}
			}
			if werr := tr.Write(frame); werr != nil {
				return nil, &ProtocolFailure{State: "comms_failure", Reason: "write", Err: werr}
			}
			continue
		}
		if err == ErrNakReceived {
			return nil, &ProtocolFailure{State: "comms_failure", Reason: "nak_rx", Err: err}
		}
		return nil, &ProtocolFailure{State: "comms_failure", Reason: "unexpected_byte_rx", Err: err}
	}

	fields, _, err := decodeScheduleWithRetry(tr, frame, schedule, rxCRC)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeScheduleWithRetry runs wait_data: decode every field in schedule,
// accumulating raw bytes, then verify the CRC8 trailer if rxCRC is set. A
// timeout here re-issues frame and restarts the data stage, up to
// retryLimit times, independent of the ACK stage's counter (spec.md §4.5).
func decodeScheduleWithRetry(tr transport.Transport, frame []byte, schedule []FieldType, rxCRC bool) ([]interface{}, []byte, error) {
	dataRetries := 0
	for {
		fields, raw, err := decodeOnce(tr, schedule, rxCRC)
		if err == nil {
			return fields, raw, nil
		}
		if err == transport.ErrTimeout {
			dataRetries++
			if dataRetries >= retryLimit {
				return nil, nil, &ProtocolFailure{State: "comms_failure", Reason: "retry_get_data>limit", Err: err}
			}
			if werr := tr.Write(frame); werr != nil {
				return nil, nil, &ProtocolFailure{State: "comms_failure", Reason: "write", Err: werr}
			}
			if aerr := ReadAck(tr); aerr != nil {
				return nil, nil, &ProtocolFailure{State: "comms_failure", Reason: "retry_get_data_ack", Err: aerr}
			}
			continue
		}
		if err == ErrCRCMismatch {
			return nil, nil, &ProtocolFailure{State: "comms_failure", Reason: "crc_mismatch", Err: err}
		}
		return nil, nil, &ProtocolFailure{State: "comms_failure", Reason: "unexpected_byte_rx", Err: err}
	}
}

func decodeOnce(tr transport.Transport, schedule []FieldType, rxCRC bool) ([]interface{}, []byte, error) {
	fields := make([]interface{}, 0, len(schedule))
	var raw []byte
	for _, ft := range schedule {
		v, b, err := DecodeField(tr, ft)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, v)
		raw = append(raw, b...)
	}
	if rxCRC {
		crcByte, err := tr.ReadByte()
		if err != nil {
			return nil, nil, err
		}
		if !VerifyTrailerCRC(raw, crcByte) {
			return nil, nil, ErrCRCMismatch
		}
	}
	return fields, raw, nil
}
