package notification

import "context"

// PassResult summarizes one monitor pass.
type PassResult struct {
	DaysAssessed int `json:"days_assessed"`
	JobsCreated  int `json:"jobs_created"`
	AutoClosed   int `json:"auto_closed"`
	Failures     int `json:"failures"`
}

// Monitor evaluates attendance rules over recent local days and produces
// deduplicated notification jobs. A pass is idempotent: re-running it over
// the same instant and data creates nothing new.
type Monitor interface {
	Run(ctx context.Context) (PassResult, error)
}
