// Command udp-demo exercises a board over the UDP datagram channel,
// reproducing the original interface script's fixed operation sequence plus
// the same extra read-backs as the serial demo.
package main

import (
	"flag"
	"time"

	"github.com/CK6170/ucio-go/config"
	"github.com/CK6170/ucio-go/diagnostics"
	"github.com/CK6170/ucio-go/protocol"
	"github.com/CK6170/ucio-go/session"
	"github.com/CK6170/ucio-go/transport"
	"github.com/CK6170/ucio-go/ui"
)

func main() {
	configPath := flag.String("config", "settings.json", "path to the JSON settings file")
	interactive := flag.Bool("interactive", false, "pause for a keypress between each phase")
	debug := flag.Bool("debug", false, "print per-operation debug diagnostics")
	flag.Parse()

	if *interactive {
		ui.ClearScreen()
	}
	ui.Greenf("Config Settings via udp com interface\n")

	settings, err := config.Load(*configPath)
	if err != nil {
		ui.Warningf("failed to load settings: %v\n", err)
		return
	}

	tr := transport.NewDatagram(settings.PeerIP(), settings.CommSettings.UDPPort, 200*time.Millisecond)
	run(session.New(tr, false, false), *interactive, *debug)
}

// step pauses for a keypress between phases when interactive is set; it
// reports whether the run should continue (false after Esc).
func step(interactive bool, label string) bool {
	if !interactive {
		return true
	}
	return ui.StepPrompt("-- "+label+" -- press C to continue, Esc to stop", 'C') != 27
}

func run(s *session.Session, interactive, debug bool) {
	if !step(interactive, "Wi-Fi status") {
		return
	}
	if status, err := s.GetWifiStatus(); err == nil {
		ui.PrintReading("Wi-Fi status", 0, float32(status), "")
	} else {
		ui.Warningf("get_wifi_status: %v\n", err)
	}
	if ip, err := s.GetWifiIP(); err == nil {
		ui.Greenf("Wi-Fi IP: %d.%d.%d.%d\n", ip[0], ip[1], ip[2], ip[3])
		ui.Debugf(debug, "raw wifi ip octets: %v\n", ip)
	}
	if rssi, err := s.GetWifiRSSI(); err == nil {
		ui.PrintReading("Wi-Fi RSSI", 0, float32(rssi), "dBm")
	}

	if !step(interactive, "RTC / system time") {
		return
	}
	if err := s.SetRTCTime(time.Now().UTC()); err != nil {
		ui.Warningf("config_rtc_time: %v\n", err)
	}
	if rtc, err := s.GetRTCTime(); err == nil {
		ui.PrintRTC("RTC time", rtc.Format(time.RFC3339))
	}
	s.GetRTCConfigFlag()
	s.GetRTCParseFlag()
	s.GetSystemTime()

	if !step(interactive, "push-button / analog / probe reads") {
		return
	}
	for n := 1; n <= 2; n++ {
		if on, err := s.GetIOState(protocol.PushButton, n); err == nil {
			ui.PrintIOState("push_button", n, on)
		}
	}
	for n := 1; n <= 2; n++ {
		if v, err := s.GetAnalogReading(n); err == nil {
			ui.PrintReading("analog", n, v, "V")
		}
	}
	s.GetNumberProbes()
	for n := 1; n <= 4; n++ {
		if rec, err := s.GetProbeRecognition(n); err == nil && rec {
			if v, err := s.GetProbeReading(n); err == nil {
				ui.PrintReading("probe", n, v, "C")
			}
		}
	}

	if !step(interactive, "SSR / opto state sweep") {
		return
	}
	for _, iot := range []protocol.IOType{protocol.SSR, protocol.Opto, protocol.SSR, protocol.Opto} {
		for n := 1; n <= 4; n++ {
			if on, err := s.GetIOState(iot, n); err == nil {
				ui.PrintIOState(string(rune(iot)), n, on)
			}
		}
	}

	if !step(interactive, "SSR alarm / master alarm / expected-IO config") {
		return
	}
	alarmOnTimes := []time.Time{
		time.Date(1971, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 10, 30, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 13, 0, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 13, 30, 0, 0, time.UTC),
	}
	alarmOffTimes := []time.Time{
		time.Date(1971, 1, 1, 15, 30, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 15, 0, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 14, 30, 0, 0, time.UTC),
		time.Date(1971, 1, 1, 14, 0, 0, 0, time.UTC),
	}
	for n := 1; n <= 4; n++ {
		if err := s.SetOutputAlarm(n, true, true, alarmOnTimes[n-1]); err != nil {
			ui.Warningf("config_output_alarm(ssr,%d,on): %v\n", n, err)
		}
	}
	for n := 1; n <= 4; n++ {
		if err := s.SetOutputAlarm(n, false, true, alarmOffTimes[n-1]); err != nil {
			ui.Warningf("config_output_alarm(ssr,%d,off): %v\n", n, err)
		}
	}

	if err := s.SetMasterAlarmEnable(true); err != nil {
		ui.Warningf("config_master_alarm_enable: %v\n", err)
	}

	for n := 1; n <= 4; n++ {
		if err := s.SetExpectedIOState(protocol.SSR, n); err != nil {
			ui.Warningf("config_expected_io_state(ssr,%d): %v\n", n, err)
		}
	}

	// Extra operations beyond the original sequence: a periodic timer on
	// SSR 1, opto/push-button pulse counts, and an analog diagnostics
	// sample.
	if !step(interactive, "output timer / pulse counts / diagnostics sample") {
		return
	}
	timerTime := protocol.CycleDurationTime(protocol.NearestCyclesPerDay(24))
	if err := s.SetOutputTimer(1, '1', true, timerTime); err != nil {
		ui.Warningf("config_output_timer(ssr,1): %v\n", err)
	}
	for n := 1; n <= 2; n++ {
		if c, err := s.GetInputPulseCount(n); err == nil {
			ui.PrintReading("input pulse count", n, float32(c), "")
		}
	}
	for n := 1; n <= 4; n++ {
		if c, err := s.GetOptoPulseCount(n); err == nil {
			ui.PrintReading("opto pulse count", n, float32(c), "")
		}
	}
	sample, err := diagnostics.Collect(10, func() (float64, error) {
		v, err := s.GetAnalogReading(1)
		return float64(v), err
	})
	if err == nil {
		ui.Greenf("analog 1 over 10 reads: mean=%.3f stddev=%.3f\n", sample.Mean(), sample.StdDev())
		lo, hi := sample.Range()
		ui.Debugf(debug, "analog 1 sample values: %v (range %.3f-%.3f)\n", sample.Values, lo, hi)
	}
}
