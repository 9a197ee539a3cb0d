package models

import (
	"bytes"
	"strconv"
	"time"
)

// FlexTime is a nullable timestamp that tolerates the heterogeneous date
// representations produced by upstream feeds: RFC3339 strings (with or
// without sub-second precision), bare dates, and numeric epochs in seconds
// or milliseconds. Unparseable input leaves the value invalid rather than
// failing the surrounding decode.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

// NewFlexTime wraps a concrete time.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t, Valid: true}
}

var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFlexTime parses any of the supported string representations.
func ParseFlexTime(s string) (time.Time, bool) {
	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EpochToTime interprets a numeric epoch, accepting either seconds or
// milliseconds based on magnitude. Values from upstream vary; anything at or
// above 1e11 can only plausibly be milliseconds.
func EpochToTime(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	ms := int64(n)
	if n < 1e11 {
		ms = int64(n * 1000)
	}
	return time.UnixMilli(ms).UTC(), true
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(t.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"))), nil
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	t.Time, t.Valid = time.Time{}, false
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil || s == "" {
			return nil
		}
		if parsed, ok := ParseFlexTime(s); ok {
			t.Time, t.Valid = parsed, true
		}
		return nil
	}
	if n, err := strconv.ParseFloat(string(data), 64); err == nil {
		if parsed, ok := EpochToTime(n); ok {
			t.Time, t.Valid = parsed, true
		}
	}
	return nil
}

// Scan implements sql.Scanner so FlexTime columns read directly from
// database drivers.
func (t *FlexTime) Scan(src interface{}) error {
	t.Time, t.Valid = time.Time{}, false
	switch v := src.(type) {
	case nil:
	case time.Time:
		t.Time, t.Valid = v, true
	case []byte:
		if parsed, ok := ParseFlexTime(string(v)); ok {
			t.Time, t.Valid = parsed, true
		}
	case string:
		if parsed, ok := ParseFlexTime(v); ok {
			t.Time, t.Valid = parsed, true
		}
	case int64:
		if parsed, ok := EpochToTime(float64(v)); ok {
			t.Time, t.Valid = parsed, true
		}
	case float64:
		if parsed, ok := EpochToTime(v); ok {
			t.Time, t.Valid = parsed, true
		}
	}
	return nil
}
