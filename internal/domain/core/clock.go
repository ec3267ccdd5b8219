package core

import "time"

// Clock supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Stamp normalizes a timestamp to the precision every backend keeps.
func Stamp(t time.Time) time.Time { return t.UTC().Truncate(time.Microsecond) }

// NextStamp returns a stamp strictly after prev, using now when it already is.
func NextStamp(prev, now time.Time) time.Time {
	now = Stamp(now)
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}

// FuncClock adapts a plain function, handy in tests.
type FuncClock func() time.Time

func (f FuncClock) Now() time.Time { return f() }
