package models

import "time"

// Timestamp normalizes t to UTC at millisecond precision, the resolution every backend keeps
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// TimestampPtr is Timestamp for optional values
func TimestampPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Timestamp(*t)
	return &n
}
