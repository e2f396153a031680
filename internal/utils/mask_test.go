package utils

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "formatted cpf", input: "123.456.789-01", want: "12345678901"},
		{name: "formatted phone", input: "(11) 98765-4321", want: "11987654321"},
		{name: "letters and symbols", input: "a1b2c3!@#", want: "123"},
		{name: "no digits", input: "abc", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "unicode", input: "nº 26 – Centro", want: "26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DigitsOnly(tt.input))
			assert.Equal(t, tt.want, DigitsOnly(DigitsOnly(tt.input)))
		})
	}
}

func TestMaskCPF(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "1", want: "1"},
		{input: "123", want: "123"},
		{input: "1234", want: "123.4"},
		{input: "12345", want: "123.45"},
		{input: "123456", want: "123.456"},
		{input: "1234567", want: "123.456.7"},
		{input: "123456789", want: "123.456.789"},
		{input: "1234567890", want: "123.456.789-0"},
		{input: "12345678901", want: "123.456.789-01"},
		{input: "123456789012345", want: "123.456.789-01"},
		{input: "123.456.789-01", want: "123.456.789-01"},
		{input: "abc", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskCPF(tt.input))
		})
	}
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "1", want: "(1"},
		{input: "11", want: "(11) "},
		{input: "113", want: "(11) 3"},
		{input: "113333", want: "(11) 3333"},
		{input: "1133334", want: "(11) 3333-4"},
		{input: "1133334444", want: "(11) 3333-4444"},
		{input: "11987654321", want: "(11) 98765-4321"},
		{input: "1198765432100", want: "(11) 98765-4321"},
		{input: "(11) 98765-4321", want: "(11) 98765-4321"},
		{input: "xyz", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.input))
		})
	}
}

func TestMasks_PreserveDigitsAndAreIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n <= 11; n++ {
		for round := 0; round < 50; round++ {
			var b strings.Builder
			for i := 0; i < n; i++ {
				b.WriteByte(byte('0' + rng.Intn(10)))
			}
			input := b.String()

			cpf := MaskCPF(input)
			assert.Equal(t, input, DigitsOnly(cpf), "cpf digits for %q", input)
			assert.Equal(t, cpf, MaskCPF(cpf), "cpf idempotence for %q", input)
			assert.Empty(t, strings.Trim(cpf, "0123456789.-"), "cpf separators for %q", input)

			phone := MaskPhone(input)
			assert.Equal(t, input, DigitsOnly(phone), "phone digits for %q", input)
			assert.Equal(t, phone, MaskPhone(phone), "phone idempotence for %q", input)
			assert.Empty(t, strings.Trim(phone, "0123456789-() "), "phone separators for %q", input)
		}
	}
}

func TestMasks_NoisyInput(t *testing.T) {
	noisy := strings.Repeat("9-a ", 20)
	assert.Equal(t, "999.999.999-99", MaskCPF(noisy))
	assert.Equal(t, "(99) 99999-9999", MaskPhone(noisy))
}
