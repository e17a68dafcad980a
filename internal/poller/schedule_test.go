package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleVariants(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     SpecKind
		source   string
		duration time.Duration
	}{
		{name: "default", raw: "600s", kind: SpecInterval, source: "duration", duration: 10 * time.Minute},
		{name: "cron", raw: "*/10 * * * *", kind: SpecCron, source: "cron"},
		{name: "descriptor", raw: "@every 10m", kind: SpecCron, source: "cron"},
		{name: "prefixed cron", raw: "cron:0 * * * *", kind: SpecCron, source: "cron"},
		{name: "prefixed interval", raw: "interval:45s", kind: SpecInterval, source: "duration", duration: 45 * time.Second},
		{name: "prefixed every hhmm", raw: "every:00:05", kind: SpecInterval, source: "hhmm", duration: 5 * time.Minute},
		{name: "hhmm", raw: "01:30", kind: SpecInterval, source: "hhmm", duration: 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.source, got.Source)
			if tt.kind == SpecInterval {
				assert.Equal(t, tt.duration, got.Every)
			}
			_, err = got.Schedule()
			assert.NoError(t, err)
		})
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	for _, raw := range []string{"", "not-a-schedule", "-5m", "0s", "00:00", "01:75", "interval:", "cron:"} {
		_, err := ParseSchedule(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewScheduleRejectsBadCron(t *testing.T) {
	_, err := NewSchedule("61 * * * *")
	assert.Error(t, err)
}

func TestScheduleNext(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 3, 0, 0, time.Local)

	every, err := NewSchedule("600s")
	require.NoError(t, err)
	assert.True(t, every.Next(start).Equal(start.Add(10*time.Minute)))

	cronSched, err := NewSchedule("*/10 * * * *")
	require.NoError(t, err)
	assert.True(t, cronSched.Next(start).Equal(time.Date(2024, 3, 1, 12, 10, 0, 0, time.Local)))
}
