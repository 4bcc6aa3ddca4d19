package ui

import (
	"fmt"
	"strings"
)

// StepPrompt prints message in green, then blocks for a single keypress
// drawn from allowed (case-insensitive) or the ESC key. It returns the
// matched rune uppercased, or 27 for ESC. Demo drivers use it wherever the
// original had a bespoke yes/no, retry-or-skip, or continue-or-abort prompt;
// the allowed set is what used to distinguish those prompts.
func StepPrompt(message string, allowed ...rune) rune {
	fmt.Printf("\033[32m%s\033[0m\n", message)
	DrainKeys()
	keyEvents := StartKeyEvents()
	upper := make(map[rune]bool, len(allowed))
	for _, r := range allowed {
		upper[toUpperRune(r)] = true
	}
	for {
		k := <-keyEvents
		if k == 27 {
			return 27
		}
		u := toUpperRune(k)
		if upper[u] {
			return u
		}
	}
}

func toUpperRune(r rune) rune {
	return []rune(strings.ToUpper(string(r)))[0]
}
