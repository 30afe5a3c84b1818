package domain

import "time"

// Clock abstracts wall-clock reads so deadline and cutoff-window logic is
// deterministic in tests. Production code injects a real clock; tests inject
// a fixed one.
type Clock interface {
	Now() time.Time
}
