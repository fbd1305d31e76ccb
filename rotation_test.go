package logmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketForSameWindow(t *testing.T) {
	base := time.Date(2024, 5, 1, 13, 27, 10, 0, time.UTC)
	tests := []struct {
		rotation Rotation
		later    time.Time
		want     BucketID
	}{
		{RotationMinutely, base.Add(49 * time.Second), "2024-05-01-13-27"},
		{RotationHourly, base.Add(32 * time.Minute), "2024-05-01-13"},
		{RotationDaily, base.Add(10 * time.Hour), "2024-05-01"},
		{RotationNever, base.AddDate(3, 0, 0), ""},
	}
	for _, tt := range tests {
		t.Run(tt.rotation.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(base, tt.rotation))
			assert.Equal(t, BucketFor(base, tt.rotation), BucketFor(tt.later, tt.rotation))
			assert.False(t, Crossed(BucketFor(base, tt.rotation), tt.later, tt.rotation))
		})
	}
}

func TestBucketForStraddle(t *testing.T) {
	tests := []struct {
		rotation Rotation
		boundary time.Time
	}{
		{RotationMinutely, time.Date(2024, 5, 1, 13, 28, 0, 0, time.UTC)},
		{RotationHourly, time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)},
		{RotationDaily, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{RotationDaily, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.rotation.String(), func(t *testing.T) {
			before := tt.boundary.Add(-time.Nanosecond)
			assert.Less(t, BucketFor(before, tt.rotation), BucketFor(tt.boundary, tt.rotation))
			assert.True(t, Crossed(BucketFor(before, tt.rotation), tt.boundary, tt.rotation))
			assert.Equal(t, tt.boundary, tt.rotation.Next(before))
		})
	}
}

func TestBucketForUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	local := time.Date(2024, 5, 2, 2, 0, 0, 0, loc) // 2024-05-01 21:00 UTC
	assert.Equal(t, BucketID("2024-05-01"), BucketFor(local, RotationDaily))
	assert.Equal(t, BucketID("2024-05-01-21"), BucketFor(local, RotationHourly))
}

func TestBucketForMonotonic(t *testing.T) {
	start := time.Date(2024, 12, 31, 22, 58, 0, 0, time.UTC)
	for _, r := range []Rotation{RotationMinutely, RotationHourly, RotationDaily, RotationNever} {
		prev := BucketFor(start, r)
		for i := 1; i < 500; i++ {
			next := BucketFor(start.Add(time.Duration(i)*17*time.Second), r)
			require.LessOrEqual(t, prev, next, r.String())
			prev = next
		}
	}
}

func TestParseRotation(t *testing.T) {
	for input, want := range map[string]Rotation{
		"MINUTELY": RotationMinutely,
		"hourly":   RotationHourly,
		" Daily ":  RotationDaily,
		"NEVER":    RotationNever,
	} {
		got, err := ParseRotation(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseRotation("weekly")
	assert.ErrorIs(t, err, ErrInvalidRotationFileFormat)
}

func TestRotationText(t *testing.T) {
	text, err := RotationHourly.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "HOURLY", string(text))

	var r Rotation
	require.NoError(t, r.UnmarshalText([]byte("minutely")))
	assert.Equal(t, RotationMinutely, r)
	assert.ErrorIs(t, r.UnmarshalText([]byte("yearly")), ErrInvalidRotationFileFormat)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "app.2024-05-01-13.log", FileName("app", "2024-05-01-13", "log"))
	assert.Equal(t, "app.log", FileName("app", "", "log"))
	assert.Equal(t, "2024-05-01.log", FileName("", "2024-05-01", "log"))
	assert.Equal(t, "app.2024-05-01", FileName("app", "2024-05-01", ""))
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		suffix   string
		rotation Rotation
		want     BucketID
		ok       bool
	}{
		{"app.2024-05-01-13.log", "app", "log", RotationHourly, "2024-05-01-13", true},
		{"app.2024-05-01.log", "app", "log", RotationHourly, "", false},
		{"app.2024-05-01.log", "app", "log", RotationDaily, "2024-05-01", true},
		{"other.2024-05-01.log", "app", "log", RotationDaily, "", false},
		{"app.2024-05-01.txt", "app", "log", RotationDaily, "", false},
		{"app.2024-13-01.log", "app", "log", RotationDaily, "", false},
		{"app.log", "app", "log", RotationNever, "", true},
		{"app.2024-05-01.log", "app", "log", RotationNever, "", false},
		{"2024-05-01-13-05.log", "", "log", RotationMinutely, "2024-05-01-13-05", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFileName(tt.name, tt.prefix, tt.suffix, tt.rotation)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
