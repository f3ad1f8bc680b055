// Package mask implements fixed input masks for identification numbers,
// postal codes and phone numbers.
//
// A pattern uses '9' as a digit placeholder; every other rune is literal
// punctuation, e.g. "999.999.999-99" for a CPF.
package mask

import (
	"strings"
	"unicode"
)

// Pattern is a digit-placeholder mask.
type Pattern string

const placeholder = '9'

// Common Brazilian masks.
const (
	CPF       Pattern = "999.999.999-99"
	CNPJ      Pattern = "99.999.999/9999-99"
	CEP       Pattern = "99999-999"
	Phone     Pattern = "(99) 99999-9999"
	NoPattern Pattern = ""
)

// Digits removes every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slots returns the number of digit placeholders in the pattern.
func (p Pattern) Slots() int {
	return strings.Count(string(p), string(placeholder))
}

// IsZero reports whether the pattern is empty.
func (p Pattern) IsZero() bool {
	return p == ""
}

// Apply formats the digits of raw into the pattern the way an input mask
// does while the user types: literals are emitted only up to the last digit
// available, extra digits are dropped.
func (p Pattern) Apply(raw string) string {
	if p.IsZero() {
		return raw
	}
	digits := []rune(Digits(raw))
	if len(digits) == 0 {
		return ""
	}
	var b strings.Builder
	i := 0
	for _, r := range string(p) {
		if i >= len(digits) {
			break
		}
		if r == placeholder {
			b.WriteRune(digits[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Format re-punctuates a stored value for display. Values that do not carry
// exactly as many digits as the pattern has slots, or that contain anything
// other than digits, are returned unchanged.
func (p Pattern) Format(stored string) string {
	if p.IsZero() || stored == "" {
		return stored
	}
	for _, r := range stored {
		if !unicode.IsDigit(r) {
			return stored
		}
	}
	if len(stored) != p.Slots() {
		return stored
	}
	return p.Apply(stored)
}
