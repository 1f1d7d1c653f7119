package timex

import "time"

// Clock returns the current time as epoch milliseconds.
type Clock func() int64

// NowMillis is the wall clock used by default.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Fixed returns a Clock that always reports ms. Handy in tests.
func Fixed(ms int64) Clock {
	return func() int64 { return ms }
}

// Monotonic returns a timestamp that is never below prev+1, so successive
// local mutations always produce strictly increasing values even when the
// wall clock stalls or steps back.
func Monotonic(now, prev int64) int64 {
	if now <= prev {
		return prev + 1
	}
	return now
}
