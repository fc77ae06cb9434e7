package services

import "time"

// Clock isolates "now" so the schedule computation and the confirmation
// timestamp can be tested against a fixed date.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the default wall clock used by all services.
var SystemClock Clock = systemClock{}

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
