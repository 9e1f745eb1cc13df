package service

import "time"

// Clock reads the time used to measure sessions.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// since reports how long ago start was according to c.
func since(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start)
}
