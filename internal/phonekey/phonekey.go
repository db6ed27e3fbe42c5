// Package phonekey derives the comparable key used to merge phone numbers.
package phonekey

import "strings"

// PhoneKey is the digits-only form of a phone number
type PhoneKey string

// Normalize strips every character that is not an ASCII decimal digit.
// It never fails; input without digits yields an empty key.
func Normalize(raw string) PhoneKey {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return PhoneKey(b.String())
}

// Valid reports whether the key can address a record
func (k PhoneKey) Valid() bool {
	return k != ""
}

// String implements fmt.Stringer
func (k PhoneKey) String() string {
	return string(k)
}

// Masked hides all but the last four digits, for logs
func (k PhoneKey) Masked() string {
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + string(k[len(k)-4:])
}
