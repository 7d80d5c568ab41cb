package service

import (
	"errors"
	"fmt"
	"strings"
)

// RequiredSyllables is the 5-7-5 pattern, one entry per line.
var RequiredSyllables = [3]int{5, 7, 5}

// ValidationError collects every rule a submission broke.
type ValidationError struct {
	Messages []string
}

// Error joins the messages with spaces.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// MissingLetters returns the letters a..z that do not occur in text, in
// alphabetical order. Case is ignored; anything outside a..z is skipped.
func MissingLetters(text string) []rune {
	var seen [26]bool
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			seen[r-'a'] = true
		}
	}
	var missing []rune
	for i, ok := range seen {
		if !ok {
			missing = append(missing, rune('a'+i))
		}
	}
	return missing
}

func letterMessage(missing []rune) string {
	return fmt.Sprintf("Must contain every letter of the alphabet (missing: %s).", string(missing))
}

func syllableMessage(line, want, got int) string {
	return fmt.Sprintf("Line %d must have %d syllables (found %d).", line, want, got)
}
