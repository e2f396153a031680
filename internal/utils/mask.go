package utils

import "strings"

const (
	cpfDigits   = 11
	phoneDigits = 11
)

// DigitsOnly removes every non-digit character, keeping the order of the digits
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// MaskCPF formats up to 11 digits as ddd.ddd.ddd-dd. Partial input gets the
// separators reached so far, so it can be applied on every keystroke.
func MaskCPF(s string) string {
	d := truncate(DigitsOnly(s), cpfDigits)

	var b strings.Builder
	b.WriteString(slice(d, 0, 3))
	if part := slice(d, 3, 6); part != "" {
		b.WriteString(".")
		b.WriteString(part)
	}
	if part := slice(d, 6, 9); part != "" {
		b.WriteString(".")
		b.WriteString(part)
	}
	if part := slice(d, 9, 11); part != "" {
		b.WriteString("-")
		b.WriteString(part)
	}
	return b.String()
}

// MaskPhone formats up to 11 digits as a Brazilian phone number:
// (dd) dddd-dddd for up to 10 digits, (dd) ddddd-dddd for 11.
func MaskPhone(s string) string {
	d := truncate(DigitsOnly(s), phoneDigits)
	if d == "" {
		return ""
	}

	// area code, prefix, line
	middle := 4
	if len(d) == phoneDigits {
		middle = 5
	}
	area := slice(d, 0, 2)
	prefix := slice(d, 2, 2+middle)
	line := slice(d, 2+middle, len(d))

	var b strings.Builder
	b.WriteString("(")
	b.WriteString(area)
	if len(area) == 2 {
		b.WriteString(") ")
	}
	b.WriteString(prefix)
	if line != "" {
		b.WriteString("-")
		b.WriteString(line)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// slice returns s[from:to] clamped to the bounds of s
func slice(s string, from, to int) string {
	if from >= len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
