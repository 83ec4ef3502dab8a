package util

import "github.com/taxmitra/grievance/pkg/logger"

// ProgressFunc receives a stage label and a completion fraction in [0,1].
// A nil ProgressFunc is valid and reports nothing.
type ProgressFunc func(stage string, fraction float64)

// Report invokes the callback if one is set. A panicking callback is
// contained so that reporting can never take down a running pipeline.
func (fn ProgressFunc) Report(stage string, fraction float64) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("[Progress] callback panicked", "stage", stage, "panic", r)
		}
	}()
	fn(stage, fraction)
}
