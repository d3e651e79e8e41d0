package proxysdk

import "time"

// Now returns the host's notion of the current time. Plugins should prefer
// this over time.Now so deterministic hosts (tests, replay) control the
// clock.
func Now() time.Time {
	nanos, err := hostCurrentTimeNanos()
	if _, ok := checkConcern("current-time", nanos, err); !ok {
		return time.Time{}
	}
	return time.Unix(0, int64(nanos))
}

// SetTickPeriod arranges for periodic OnTick events on the current root
// context. A zero period disables the timer.
func SetTickPeriod(period time.Duration) error {
	return hostSetTickPeriod(period)
}
