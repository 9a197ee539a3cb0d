// Package timeutil provides day/window boundary computation and defensive
// timestamp coercion for the heterogeneous date representations that arrive
// from upstream feeds.
package timeutil

import (
	"encoding/json"
	"time"

	"github.com/MEMAtest/horizon-scanner-backend-sub011/pkg/models"
)

// DayKeyLayout is the calendar-day bucket key format.
const DayKeyLayout = "2006-01-02"

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// StartOfDay returns t with the time-of-day zeroed out.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// SubtractDays returns t shifted n days into the past.
func SubtractDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// ToISO formats t as a UTC ISO-8601 string with millisecond precision.
func ToISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// DayKey returns the calendar-day bucket key for t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ToTime coerces any supported date representation into a time.Time. It
// accepts time.Time values and pointers, models.FlexTime, numeric epochs
// (seconds or milliseconds), parseable strings, and values exposing a
// Time() or ISOString() accessor. It never fails; unsupported input reports
// ok=false.
func ToTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case models.FlexTime:
		if !t.Valid {
			return time.Time{}, false
		}
		return t.Time, true
	case *models.FlexTime:
		if t == nil || !t.Valid {
			return time.Time{}, false
		}
		return t.Time, true
	case string:
		return models.ParseFlexTime(t)
	case int:
		return models.EpochToTime(float64(t))
	case int64:
		return models.EpochToTime(float64(t))
	case float64:
		return models.EpochToTime(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return models.EpochToTime(f)
		}
		return time.Time{}, false
	case interface{ Time() time.Time }:
		inner := t.Time()
		if inner.IsZero() {
			return time.Time{}, false
		}
		return inner, true
	case interface{ ISOString() string }:
		return models.ParseFlexTime(t.ISOString())
	default:
		return time.Time{}, false
	}
}

// ToTimestamp coerces any supported date representation into epoch
// milliseconds, returning 0 for anything unparseable.
func ToTimestamp(v interface{}) int64 {
	t, ok := ToTime(v)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// ExtractUpdateDate probes the update's date fields in priority order and
// returns the first valid one.
func ExtractUpdateDate(u models.RegulatoryUpdate) (time.Time, bool) {
	for _, ft := range []models.FlexTime{u.PublishedAt, u.PublishedDate, u.FetchedDate, u.CreatedAt} {
		if ft.Valid {
			return ft.Time, true
		}
	}
	return time.Time{}, false
}

// UpdateTimestamp returns the update's extracted date as epoch milliseconds,
// or 0 when the update carries no usable date.
func UpdateTimestamp(u models.RegulatoryUpdate) int64 {
	t, ok := ExtractUpdateDate(u)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// GroupUpdatesByDay buckets updates by the calendar-day key of their
// extracted date. Undated updates are silently dropped.
func GroupUpdatesByDay(updates []models.RegulatoryUpdate) map[string][]models.RegulatoryUpdate {
	groups := make(map[string][]models.RegulatoryUpdate)
	for _, u := range updates {
		t, ok := ExtractUpdateDate(u)
		if !ok {
			continue
		}
		key := DayKey(t)
		groups[key] = append(groups[key], u)
	}
	return groups
}
