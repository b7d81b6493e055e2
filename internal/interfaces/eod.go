package interfaces

import "time"

// EodSummarizer writes the end-of-day trade summary. ShouldRunNow
// reports whether the market close has settled, with a reason when not.
type EodSummarizer interface {
	SummarizeDay(t time.Time) (csvPath string, err error)
	SummarizeToday() (csvPath string, err error)
	ShouldRunNow() (shouldRun bool, reason string)
}
