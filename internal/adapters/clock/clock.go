package clock

import (
	"time"

	"stagecrew/internal/domain"
)

type systemClock struct{}

// NewSystemClock returns a domain.Clock backed by the wall clock, in UTC.
func NewSystemClock() domain.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
