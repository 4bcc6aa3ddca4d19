package protocol

import "time"

// AssertionKind is the closed set of read-back checks the Set FSM can run
// against the parsed response fields (spec.md §4.6, §9 design note: a sum
// type plus a single evaluator is preferred over an injected predicate
// callback + expected value, which is what the source does).
type AssertionKind int

const (
	// AssertEqBool compares fields[0] (bool) against ExpectedBool.
	AssertEqBool AssertionKind = iota
	// AssertEqU16 compares fields[0] (uint16) against ExpectedU16. Used for
	// counters where the caller has already computed prior_value+1 or
	// prior_value+k (EEPROM-clear count, expected-IO count, opto pulse
	// count) before starting the Set FSM.
	AssertEqU16
	// AssertTimeWithinTolerance reconstructs a date+time from fields
	// [u16 year, byte month, byte day, byte hour, byte minute, byte second]
	// and compares its epoch against ExpectedTime within ToleranceSeconds.
	AssertTimeWithinTolerance
	// AssertAlarmEquals reconstructs an alarm time (year 1971, fixed) from
	// fields [bool enable, byte hour, byte minute, byte second] and checks
	// both the enable flag and the epoch tolerance. Only ExpectedTime's
	// clock time is compared: it is placed on the same 1971-01-01 date
	// before the tolerance check, since the alarm wire format carries no date.
	AssertAlarmEquals
)

// Assertion is the Set FSM's (assertion predicate, expected value) tuple,
// spec.md §3's Operation descriptor, made into data instead of a closure.
type Assertion struct {
	Kind             AssertionKind
	ExpectedBool     bool
	ExpectedU16      uint16
	ExpectedTime     time.Time
	ToleranceSeconds int
}

// Evaluate runs the assertion against the fields decoded by the Set FSM's
// wait_data/wait_verify_data stage (spec.md §4.6 assert_data/assert_verify_data).
func (a Assertion) Evaluate(fields []interface{}) bool {
	switch a.Kind {
	case AssertEqBool:
		b, ok := fields[0].(bool)
		return ok && b == a.ExpectedBool
	case AssertEqU16:
		v, ok := fields[0].(uint16)
		return ok && v == a.ExpectedU16
	case AssertTimeWithinTolerance:
		got, ok := rtcFieldsToTime(fields)
		if !ok {
			return false
		}
		return withinTolerance(got, a.ExpectedTime, a.ToleranceSeconds)
	case AssertAlarmEquals:
		enable, ok := fields[0].(bool)
		if !ok || enable != a.ExpectedBool {
			return false
		}
		got, ok := alarmFieldsToTime(fields)
		if !ok {
			return false
		}
		want := time.Date(1971, time.January, 1, a.ExpectedTime.Hour(), a.ExpectedTime.Minute(), a.ExpectedTime.Second(), 0, time.UTC)
		return withinTolerance(got, want, a.ToleranceSeconds)
	default:
		return false
	}
}

func withinTolerance(got, want time.Time, toleranceSeconds int) bool {
	diff := got.Unix() - want.Unix()
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(toleranceSeconds)
}

// rtcFieldsToTime reconstructs the year/month/day/hour/minute/second
// sequence returned by TGT/TGR/TS read-back (spec.md §4.4 table).
func rtcFieldsToTime(fields []interface{}) (time.Time, bool) {
	if len(fields) < 6 {
		return time.Time{}, false
	}
	year, ok := fields[0].(uint16)
	if !ok {
		return time.Time{}, false
	}
	month, ok := fields[1].(uint8)
	if !ok {
		return time.Time{}, false
	}
	day, ok := fields[2].(uint8)
	if !ok {
		return time.Time{}, false
	}
	hour, ok := fields[3].(uint8)
	if !ok {
		return time.Time{}, false
	}
	minute, ok := fields[4].(uint8)
	if !ok {
		return time.Time{}, false
	}
	second, ok := fields[5].(uint8)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(int(year), time.Month(month), int(day), int(hour), int(minute), int(second), 0, time.UTC), true
}

// alarmFieldsToTime reconstructs an alarm's hour/minute/second into a fixed
// 1971-01-01 date, matching the original firmware's epoch-comparison
// convention for alarm/timer read-backs (spec.md §4.6, §9).
func alarmFieldsToTime(fields []interface{}) (time.Time, bool) {
	if len(fields) < 4 {
		return time.Time{}, false
	}
	hour, ok := fields[1].(uint8)
	if !ok {
		return time.Time{}, false
	}
	minute, ok := fields[2].(uint8)
	if !ok {
		return time.Time{}, false
	}
	second, ok := fields[3].(uint8)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(1971, time.January, 1, int(hour), int(minute), int(second), 0, time.UTC), true
}
