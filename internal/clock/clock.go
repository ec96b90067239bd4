// Package clock abstracts wall-clock access so loops can be tested with fixed time.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}
