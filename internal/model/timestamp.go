package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// localLayout matches zone-less timestamps such as "2025-01-10T14:03:22.123".
const localLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a server time shown for display only. Values that parse as
// neither RFC 3339 nor a zone-less local time are kept verbatim in Raw, so
// one odd value never fails decoding of the surrounding response.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// IsZero reports whether neither a time nor a raw value is present.
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero() && ts.Raw == ""
}

// Format renders the time in local time with layout, or the raw value when
// it could not be parsed.
func (ts Timestamp) Format(layout string) string {
	if ts.Time.IsZero() {
		return ts.Raw
	}
	return ts.Time.Local().Format(layout)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		ts.Raw = string(data)
		return nil
	}
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	if t, err := time.ParseInLocation(localLayout, s, time.Local); err == nil {
		ts.Time = t
		return nil
	}
	ts.Raw = s
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case !ts.Time.IsZero():
		return json.Marshal(ts.Time.Format(time.RFC3339Nano))
	case ts.Raw != "":
		return json.Marshal(ts.Raw)
	}
	return []byte("null"), nil
}
