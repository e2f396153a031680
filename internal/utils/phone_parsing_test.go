package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhoneForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "masked mobile", input: "(11) 98765-4321", want: "(11) 98765-4321"},
		{name: "mobile digits", input: "11987654321", want: "(11) 98765-4321"},
		{name: "landline digits", input: "1836210000", want: "(18) 3621-0000"},
		{name: "with country code", input: "+55 11 98765-4321", want: "(11) 98765-4321"},
		{name: "country code without plus", input: "5511987654321", want: "(11) 98765-4321"},
		{name: "foreign number", input: "+1 650-253-0000", want: "+1 650-253-0000"},
		{name: "too short falls back to mask", input: "123", want: "(12) 3"},
		{name: "no digits kept as is", input: " n/d ", want: "n/d"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhoneForDisplay(tt.input))
		})
	}
}

func TestPhoneE164(t *testing.T) {
	got, ok := PhoneE164("(11) 98765-4321")
	assert.True(t, ok)
	assert.Equal(t, "+5511987654321", got)

	got, ok = PhoneE164("5511987654321")
	assert.True(t, ok)
	assert.Equal(t, "+5511987654321", got)

	_, ok = PhoneE164("123")
	assert.False(t, ok)

	_, ok = PhoneE164("")
	assert.False(t, ok)
}
