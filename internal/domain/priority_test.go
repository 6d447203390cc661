package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority_DisplayMetadata(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		title    string
		color    string
		str      string
	}{
		{name: "low", priority: PriorityLow, title: "Low priority", color: "#A0A0FF", str: "low"},
		{name: "medium", priority: PriorityMedium, title: "Medium priority", color: "#00D000", str: "medium"},
		{name: "high", priority: PriorityHigh, title: "High priority", color: "#FF0000", str: "high"},
		{name: "unknown falls back to medium", priority: Priority(7), title: "Medium priority", color: "#00D000", str: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, tt.priority.Title())
			assert.Equal(t, tt.color, tt.priority.Color())
			assert.Equal(t, tt.str, tt.priority.String())
		})
	}
}

func TestPriority_Normalize(t *testing.T) {
	assert.Equal(t, PriorityHigh, PriorityHigh.Normalize())
	assert.Equal(t, PriorityMedium, Priority(-1).Normalize())
	assert.Equal(t, PriorityMedium, Priority(3).Normalize())
	assert.True(t, PriorityLow < PriorityMedium && PriorityMedium < PriorityHigh)
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input    string
		expected Priority
		wantErr  bool
	}{
		{input: "low", expected: PriorityLow},
		{input: "HIGH", expected: PriorityHigh},
		{input: " medium ", expected: PriorityMedium},
		{input: "2", expected: PriorityHigh},
		{input: "0", expected: PriorityLow},
		{input: "urgent", expected: PriorityMedium, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParsePriority(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expected, p)
		})
	}
}
