package sessionless

import (
	"strconv"
	"time"
)

// Clock provides the current time for timestamp generation.
type Clock interface {
	Now() time.Time
}

// SystemClock uses the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// fixedClock always returns the same time, useful for testing.
type fixedClock struct {
	time time.Time
}

func (c fixedClock) Now() time.Time {
	return c.time
}

// FixedClock returns a Clock that always returns the same time.
func FixedClock(t time.Time) Clock {
	return fixedClock{time: t}
}

// Timestamp reads clock and renders the result as decimal milliseconds
// since the Unix epoch. Zero and pre-epoch readings are rejected.
func Timestamp(clock Clock) (string, error) {
	now := clock.Now()
	if now.IsZero() || now.UnixMilli() <= 0 {
		return "", &ClockError{Time: now}
	}
	return strconv.FormatInt(now.UnixMilli(), 10), nil
}

// ParseTimestamp parses a decimal millisecond timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
