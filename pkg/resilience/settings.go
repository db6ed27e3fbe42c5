package resilience

import "time"

const (
	defaultInterval         = time.Minute
	defaultOpenTimeout      = 30 * time.Second
	defaultFailureThreshold = 5
	defaultSuccessThreshold = 1
)

// BuildSettings turns the integer knobs found in environment config (seconds
// and counts) into Settings. Zero or negative values take the defaults.
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         secondsOr(intervalSeconds, defaultInterval),
		Timeout:          secondsOr(timeoutSeconds, defaultOpenTimeout),
		FailureThreshold: countOr(failureThreshold, defaultFailureThreshold),
		SuccessThreshold: countOr(successThreshold, defaultSuccessThreshold),
	}
}

func secondsOr(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func countOr(n int, def uint32) uint32 {
	if n <= 0 {
		return def
	}
	return uint32(n)
}
