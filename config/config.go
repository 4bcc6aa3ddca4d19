// Package config loads and persists the JSON settings file that chooses a
// transport (Serial or Datagram) and its connection parameters. This is
// ambient plumbing the protocol engine is handed, not part of it: the demo
// drivers pass its fields to the transport constructors, and the engine
// only ever sees the resulting transport.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// CommSettings mirrors the `comm_settings` object of the JSON settings file.
type CommSettings struct {
	ArduinoIP1       byte    `json:"arduino_ip_1"`
	ArduinoIP2       byte    `json:"arduino_ip_2"`
	ArduinoIP3       byte    `json:"arduino_ip_3"`
	ArduinoIP4       byte    `json:"arduino_ip_4"`
	UDPPort          int     `json:"udp_port"`
	BaudRate         int     `json:"baud_rate"`
	TimeoutSeconds   float64 `json:"timeout"`
	DefaultInterface string  `json:"default_interface_type"`
	WindowsPortName  string  `json:"windows_port_name"`
	LinuxPortName    string  `json:"linux_port_name"`
	OSXPortName      string  `json:"osx_port_name"`
}

// Settings is the top-level JSON settings document.
type Settings struct {
	CommSettings CommSettings `json:"comm_settings"`
}

// Load reads and parses the settings file at path.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &s, nil
}

// Save writes s to path as indented JSON.
func Save(path string, s *Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// DevicePath selects the serial device name for the running OS.
func (s *Settings) DevicePath() string {
	switch runtime.GOOS {
	case "windows":
		return s.CommSettings.WindowsPortName
	case "darwin":
		return s.CommSettings.OSXPortName
	default:
		return s.CommSettings.LinuxPortName
	}
}

// PeerIP returns the configured Datagram peer address as four octets.
func (s *Settings) PeerIP() [4]byte {
	return [4]byte{
		s.CommSettings.ArduinoIP1,
		s.CommSettings.ArduinoIP2,
		s.CommSettings.ArduinoIP3,
		s.CommSettings.ArduinoIP4,
	}
}

// PeerAddr renders the configured peer IP as a dotted-quad string.
func (s *Settings) PeerAddr() string {
	ip := s.PeerIP()
	return fmt.Sprintf("%d.%d.%d.%d", ip[0], ip[1], ip[2], ip[3])
}

// TransportKind reports which transport the settings file selects: "serial"
// or "datagram", from the original interface's own "Serial"/"Wifi" values
// for default_interface_type. Anything else is an error.
func (s *Settings) TransportKind() (string, error) {
	switch s.CommSettings.DefaultInterface {
	case "Serial":
		return "serial", nil
	case "Wifi":
		return "datagram", nil
	default:
		return "", fmt.Errorf("config: unrecognized default_interface_type %q", s.CommSettings.DefaultInterface)
	}
}
