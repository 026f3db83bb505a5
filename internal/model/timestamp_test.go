package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		raw  string
	}{
		{name: "rfc3339", in: `"2025-01-10T14:03:22Z"`, want: time.Date(2025, 1, 10, 14, 3, 22, 0, time.UTC)},
		{name: "zone-less", in: `"2025-01-10T14:03:22.123"`, want: time.Date(2025, 1, 10, 14, 3, 22, 123e6, time.Local)},
		{name: "zone-less seconds", in: `"2025-01-10T14:03:22"`, want: time.Date(2025, 1, 10, 14, 3, 22, 0, time.Local)},
		{name: "unparseable kept", in: `"10 Jan 2025"`, raw: "10 Jan 2025"},
		{name: "number kept", in: `1736517802`, raw: "1736517802"},
		{name: "null", in: `null`},
		{name: "empty", in: `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
			assert.Equal(t, tt.raw, ts.Raw)
		})
	}
}

func TestTimestampFormat(t *testing.T) {
	assert.Equal(t, "10 Jan 2025", Timestamp{Raw: "10 Jan 2025"}.Format("2006-01-02"))
	ts := NewTimestamp(time.Date(2025, 1, 10, 14, 3, 0, 0, time.Local))
	assert.Equal(t, "2025-01-10 14:03", ts.Format("2006-01-02 15:04"))
	assert.True(t, Timestamp{}.IsZero())
}

func TestImportJobZoneLessCreatedAt(t *testing.T) {
	var jobs []ImportJob
	err := json.Unmarshal([]byte(`[
		{"jobId":"j1","status":"PENDING","createdAt":"2025-01-10T14:03:22.123"},
		{"jobId":"j2","status":"PENDING","createdAt":"yesterday"}
	]`), &jobs)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 2025, jobs[0].CreatedAt.Time.Year())
	assert.Equal(t, "yesterday", jobs[1].CreatedAt.Raw)
}
