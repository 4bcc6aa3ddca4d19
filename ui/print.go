package ui

import "fmt"

// PrintIOState prints a single-line status for one I/O channel, coloring
// the state green for on/true and the default terminal color for off/false.
func PrintIOState(label string, n int, state bool) {
	if state {
		Greenf("%s %d: ON\n", label, n)
		return
	}
	fmt.Printf("%s %d: OFF\n", label, n)
}

// PrintReading prints a labeled floating-point reading with its unit.
func PrintReading(label string, n int, value float32, unit string) {
	fmt.Printf("%s %d: %.2f%s\n", label, n, value, unit)
}

// PrintRTC prints the board's reported date/time line.
func PrintRTC(label, dateTime string) {
	fmt.Printf("%s: %s\n", label, dateTime)
}
