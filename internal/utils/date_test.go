package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{name: "float from JSON", input: float64(1700000000), expected: "2023-11-14 22:13:20"},
		{name: "int", input: 0, expected: "1970-01-01 00:00:00"},
		{name: "int64", input: int64(1700000000), expected: "2023-11-14 22:13:20"},
		{name: "json number", input: json.Number("1700000000"), expected: "2023-11-14 22:13:20"},
		{name: "numeric string", input: "1700000000", expected: "2023-11-14 22:13:20"},
		{name: "non numeric string kept", input: "yesterday", expected: "yesterday"},
		{name: "nil", input: nil, expected: ""},
		{name: "unsupported type", input: []int{1}, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTimestamp(tt.input, time.UTC))
		})
	}
}

func TestFormatTimestampZone(t *testing.T) {
	zone := time.FixedZone("CET", 3600)
	assert.Equal(t, "2023-11-14 23:13:20", FormatTimestamp(float64(1700000000), zone))
}
