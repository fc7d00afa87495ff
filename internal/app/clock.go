package app

import "time"

// Clock supplies the current instant. The sweep asks for it on every tick.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location so calendar days match the scheduler's time zone.
type SystemClock struct {
	Location *time.Location
}

func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Location: loc}
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
