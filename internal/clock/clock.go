package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so dated documents are reproducible in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// New returns the system clock.
func New() Clock {
	return realClock{}
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
