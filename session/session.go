// Package session implements the high-level named operations (spec.md
// §4.7): thin adapters that build a command (and, for Set variants, a
// verify command and assertion), drive the appropriate FSM, and return
// typed values or a *protocol.ProtocolFailure. None of these methods retain
// state across calls; Session only carries the transport and the two
// process-wide CRC flags.
package session

import (
	"time"

	"github.com/CK6170/ucio-go/protocol"
	"github.com/CK6170/ucio-go/transport"
)

// Session is the caller-facing handle for one I/O board connection. It is
// safe to reuse across many sequential operations (spec.md §5: no
// concurrency across multiple in-flight transactions on one link), but
// concurrent calls from multiple goroutines are not supported.
type Session struct {
	tr    transport.Transport
	txCRC bool
	rxCRC bool
}

// New wraps tr into a Session with the given transmit/receive CRC8 enable
// flags (spec.md §3 Frame: "CRC enable is a process-wide flag, separately
// for transmit and receive").
func New(tr transport.Transport, txCRC, rxCRC bool) *Session {
	return &Session{tr: tr, txCRC: txCRC, rxCRC: rxCRC}
}

func (s *Session) get(payload string, schedule []protocol.FieldType) ([]interface{}, error) {
	return protocol.RunGet(s.tr, payload, schedule, s.txCRC, s.rxCRC)
}

func (s *Session) set(setPayload, getPayload string, schedule []protocol.FieldType, assertion protocol.Assertion) error {
	return protocol.RunSet(s.tr, setPayload, getPayload, schedule, assertion, s.txCRC, s.rxCRC)
}

var rtcSchedule = []protocol.FieldType{
	protocol.FieldU16, protocol.FieldByte, protocol.FieldByte,
	protocol.FieldByte, protocol.FieldByte, protocol.FieldByte,
}

func fieldsToTime(fields []interface{}) time.Time {
	year := fields[0].(uint16)
	month := fields[1].(uint8)
	day := fields[2].(uint8)
	hour := fields[3].(uint8)
	minute := fields[4].(uint8)
	second := fields[5].(uint8)
	return time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC)
}

// GetSystemTime reads the host-observed system time (TGT).
func (s *Session) GetSystemTime() (time.Time, error) {
	fields, err := s.get(protocol.GetSystemTime(), rtcSchedule)
	if err != nil {
		return time.Time{}, err
	}
	return fieldsToTime(fields), nil
}

// GetRTCTime reads the board's RTC time (TGR).
func (s *Session) GetRTCTime() (time.Time, error) {
	fields, err := s.get(protocol.GetRTCTime(), rtcSchedule)
	if err != nil {
		return time.Time{}, err
	}
	return fieldsToTime(fields), nil
}

// SetRTCTime writes t to the board's RTC, then reads it back and asserts it
// is within 5 seconds of t (spec.md §4.6 assertion predicates).
func (s *Session) SetRTCTime(t time.Time) error {
	assertion := protocol.Assertion{Kind: protocol.AssertTimeWithinTolerance, ExpectedTime: t, ToleranceSeconds: 5}
	return s.set(protocol.SetRTCTime(t), protocol.GetRTCTime(), rtcSchedule, assertion)
}

// GetRTCConfigFlag reads the RTC configured-at-boot flag (TGC).
func (s *Session) GetRTCConfigFlag() (bool, error) {
	return s.getBool(protocol.GetRTCConfigFlag())
}

// GetRTCParseFlag reads the RTC time-string-parsed-OK flag (TGP).
func (s *Session) GetRTCParseFlag() (bool, error) {
	return s.getBool(protocol.GetRTCParseFlag())
}

// GetSystemTimeFlag reads the system-time-valid flag (TGS).
func (s *Session) GetSystemTimeFlag() (bool, error) {
	return s.getBool(protocol.GetSystemTimeFlag())
}

func (s *Session) getBool(payload string) (bool, error) {
	fields, err := s.get(payload, []protocol.FieldType{protocol.FieldBool})
	if err != nil {
		return false, err
	}
	return fields[0].(bool), nil
}

func (s *Session) getU16(payload string) (uint16, error) {
	fields, err := s.get(payload, []protocol.FieldType{protocol.FieldU16})
	if err != nil {
		return 0, err
	}
	return fields[0].(uint16), nil
}

// GetMasterAlarmEnable reads the master alarm enable flag (EGM).
func (s *Session) GetMasterAlarmEnable() (bool, error) {
	return s.getBool(protocol.GetMasterAlarmEnable())
}

// SetMasterAlarmEnable writes the master alarm enable flag (ESM) and reads
// it back via EGM.
func (s *Session) SetMasterAlarmEnable(enable bool) error {
	assertion := protocol.Assertion{Kind: protocol.AssertEqBool, ExpectedBool: enable}
	return s.set(protocol.SetMasterAlarmEnable(enable), protocol.GetMasterAlarmEnable(), []protocol.FieldType{protocol.FieldBool}, assertion)
}

// GetClearEEPROMCount reads the EEPROM-clear counter (EGK).
func (s *Session) GetClearEEPROMCount() (uint16, error) {
	return s.getU16(protocol.GetClearEEPROMCount())
}

// SetClearEEPROM triggers an EEPROM clear (ESA) and asserts the counter
// advanced by exactly one, per spec.md §4.6's counter assertion.
func (s *Session) SetClearEEPROM() error {
	prior, err := s.GetClearEEPROMCount()
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertEqU16, ExpectedU16: prior + 1}
	return s.set(protocol.SetClearEEPROM(), protocol.GetClearEEPROMCount(), []protocol.FieldType{protocol.FieldU16}, assertion)
}

// GetSetExpectedIOCount reads the set-expected-IO counter (EGX).
func (s *Session) GetSetExpectedIOCount() (uint16, error) {
	return s.getU16(protocol.GetSetExpectedIOCount())
}

// SetExpectedIOState writes the expected IO state (ESX) and asserts the
// counter advanced by exactly one.
func (s *Session) SetExpectedIOState(ioType protocol.IOType, n int) error {
	prior, err := s.GetSetExpectedIOCount()
	if err != nil {
		return err
	}
	payload, err := protocol.SetExpectedIOState(ioType, n)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertEqU16, ExpectedU16: prior + 1}
	return s.set(payload, protocol.GetSetExpectedIOCount(), []protocol.FieldType{protocol.FieldU16}, assertion)
}

// GetNumberProbes reads how many temperature probes the board recognizes (KGN).
func (s *Session) GetNumberProbes() (uint16, error) {
	return s.getU16(protocol.GetNumberProbes())
}

// GetProbeRecognition reads whether probe n is recognized (KGR<n>).
func (s *Session) GetProbeRecognition(n int) (bool, error) {
	payload, err := protocol.GetProbeRecognition(n)
	if err != nil {
		return false, err
	}
	return s.getBool(payload)
}

func (s *Session) getF32(payload string) (float32, error) {
	fields, err := s.get(payload, []protocol.FieldType{protocol.FieldF32})
	if err != nil {
		return 0, err
	}
	return fields[0].(float32), nil
}

// GetProbeReading reads probe n's temperature in degrees Celsius (KGC<n>).
func (s *Session) GetProbeReading(n int) (float32, error) {
	payload, err := protocol.GetProbeReading(n)
	if err != nil {
		return 0, err
	}
	return s.getF32(payload)
}

// GetAnalogReading reads analog input n (AGR<n>).
func (s *Session) GetAnalogReading(n int) (float32, error) {
	payload, err := protocol.GetAnalogReading(n)
	if err != nil {
		return 0, err
	}
	return s.getF32(payload)
}

// GetWifiStatus reads the Wi-Fi connection status code (WGS).
func (s *Session) GetWifiStatus() (uint16, error) {
	return s.getU16(protocol.GetWifiStatus())
}

// GetWifiIP reads the board's Wi-Fi IPv4 address (WGI).
func (s *Session) GetWifiIP() ([4]byte, error) {
	fields, err := s.get(protocol.GetWifiIP(), []protocol.FieldType{protocol.FieldByte, protocol.FieldByte, protocol.FieldByte, protocol.FieldByte})
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{fields[0].(uint8), fields[1].(uint8), fields[2].(uint8), fields[3].(uint8)}, nil
}

// GetWifiRSSI reads the Wi-Fi signal strength in dBm (WGT).
func (s *Session) GetWifiRSSI() (int32, error) {
	fields, err := s.get(protocol.GetWifiRSSI(), []protocol.FieldType{protocol.FieldI32})
	if err != nil {
		return 0, err
	}
	return fields[0].(int32), nil
}

// GetIOState reads whether the given channel is currently on.
func (s *Session) GetIOState(ioType protocol.IOType, n int) (bool, error) {
	payload, err := protocol.GetIOState(ioType, n)
	if err != nil {
		return false, err
	}
	return s.getBool(payload)
}

// SetIOState writes the given SSR or opto channel's state and reads it
// back to confirm.
func (s *Session) SetIOState(ioType protocol.IOType, n int, on bool) error {
	setPayload, err := protocol.SetIOState(ioType, n, on)
	if err != nil {
		return err
	}
	getPayload, err := protocol.GetIOState(ioType, n)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertEqBool, ExpectedBool: on}
	return s.set(setPayload, getPayload, []protocol.FieldType{protocol.FieldBool}, assertion)
}

// GetInputPulseCount reads the pulse counter for push-button input n (IG<n>).
func (s *Session) GetInputPulseCount(n int) (uint16, error) {
	payload, err := protocol.GetInputPulseCount(n)
	if err != nil {
		return 0, err
	}
	return s.getU16(payload)
}

// GetOptoPulseCount reads the pulse counter for opto output n (LG<n>).
func (s *Session) GetOptoPulseCount(n int) (uint16, error) {
	payload, err := protocol.GetOptoPulseCount(n)
	if err != nil {
		return 0, err
	}
	return s.getU16(payload)
}

// PulseOptoOutput pulses opto output n k times and asserts the opto pulse
// counter advanced by exactly k.
func (s *Session) PulseOptoOutput(n, k int) error {
	prior, err := s.GetOptoPulseCount(n)
	if err != nil {
		return err
	}
	setPayload, err := protocol.PulseOptoOutput(n, k)
	if err != nil {
		return err
	}
	getPayload, err := protocol.GetOptoPulseCount(n)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertEqU16, ExpectedU16: prior + uint16(k)}
	return s.set(setPayload, getPayload, []protocol.FieldType{protocol.FieldU16}, assertion)
}

var alarmSchedule = []protocol.FieldType{protocol.FieldBool, protocol.FieldByte, protocol.FieldByte, protocol.FieldByte}

// GetOutputAlarm reads output n's alarm-on or alarm-off enable flag and
// time.
func (s *Session) GetOutputAlarm(n int, onOff bool) (enable bool, alarmTime time.Time, err error) {
	payload, err := protocol.GetOutputAlarm(n, onOff)
	if err != nil {
		return false, time.Time{}, err
	}
	fields, err := s.get(payload, alarmSchedule)
	if err != nil {
		return false, time.Time{}, err
	}
	enable = fields[0].(bool)
	hour := fields[1].(uint8)
	minute := fields[2].(uint8)
	second := fields[3].(uint8)
	alarmTime = time.Date(1971, time.January, 1, int(hour), int(minute), int(second), 0, time.UTC)
	return enable, alarmTime, nil
}

// SetOutputAlarm writes output n's alarm-on or alarm-off enable flag and
// time, then reads it back and asserts both match (spec.md §4.6, §9:
// AlarmEquals checks enable AND time within tolerance).
func (s *Session) SetOutputAlarm(n int, onOff, enable bool, t time.Time) error {
	setPayload, err := protocol.SetOutputAlarm(n, onOff, enable, t)
	if err != nil {
		return err
	}
	getPayload, err := protocol.GetOutputAlarm(n, onOff)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertAlarmEquals, ExpectedBool: enable, ExpectedTime: t, ToleranceSeconds: 5}
	return s.set(setPayload, getPayload, alarmSchedule, assertion)
}

// GetOutputAlarmMode reads output n's alarm mode flag (EGO<n>).
func (s *Session) GetOutputAlarmMode(n int) (bool, error) {
	payload, err := protocol.GetOutputAlarmMode(n)
	if err != nil {
		return false, err
	}
	return s.getBool(payload)
}

// SetOutputAlarmMode writes output n's alarm mode (ESO<n>) and reads it
// back.
func (s *Session) SetOutputAlarmMode(n int, mode bool) error {
	setPayload, err := protocol.SetOutputAlarmMode(n, mode)
	if err != nil {
		return err
	}
	getPayload, err := protocol.GetOutputAlarmMode(n)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertEqBool, ExpectedBool: mode}
	return s.set(setPayload, getPayload, []protocol.FieldType{protocol.FieldBool}, assertion)
}

// SetOutputTimer writes output n's periodic-cycle or one-shot-duration
// timer (EST<n>) and verifies it via the alarm read-back (EGC), preserving
// the source's choice to reuse that read-back rather than a distinct timer
// read-back (spec.md §9).
func (s *Session) SetOutputTimer(n int, cycleOrDurDigit byte, enable bool, t time.Time) error {
	setPayload, err := protocol.SetOutputTimer(n, cycleOrDurDigit, enable, t)
	if err != nil {
		return err
	}
	getPayload, err := protocol.GetOutputAlarm(n, true)
	if err != nil {
		return err
	}
	assertion := protocol.Assertion{Kind: protocol.AssertAlarmEquals, ExpectedBool: enable, ExpectedTime: t, ToleranceSeconds: 5}
	return s.set(setPayload, getPayload, alarmSchedule, assertion)
}
