package legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestParseTimestamp_Layouts(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"date only", "15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"day first minutes", "15/01/2024 09:30", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"day first seconds", "15/01/2024 09:30:15", time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC)},
		{"year first slashes", "2024/01/15 09:30:15", time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC)},
		{"year first slashes minutes", "2024/01/15 09:30", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"day first dashes", "15-01-2024 09:30:15", time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC)},
		{"day first dashes minutes", "15-01-2024 09:30", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
		{"iso", "2024-01-15 09:30:15", time.Date(2024, 1, 15, 9, 30, 15, 0, time.UTC)},
		// British Summer Time is one hour ahead of UTC.
		{"summer time", "2024-07-01 12:00:00", time.Date(2024, 7, 1, 11, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(ptr(tt.value), london)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s, want %s", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestamp_Empty(t *testing.T) {
	got, err := ParseTimestamp(nil, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseTimestamp(ptr("   "), time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseTimestamp_Invalid(t *testing.T) {
	got, err := ParseTimestamp(ptr("yesterday"), time.UTC)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "yesterday")
}

func TestIsTrue(t *testing.T) {
	assert.True(t, IsTrue(ptr("True")))
	assert.True(t, IsTrue(ptr(" 1 ")))
	assert.False(t, IsTrue(ptr("False")))
	assert.False(t, IsTrue(ptr("")))
	assert.False(t, IsTrue(nil))
}
