package healthcheck

import (
	"context"
	"time"
)

// Report is the aggregated health of the service.
type Report struct {
	Status    string        `json:"status"`
	CheckedAt time.Time     `json:"checked_at"`
	Checks    []CheckResult `json:"checks"`
}

// Aggregator runs a fixed set of checkers.
type Aggregator struct {
	checkers []Checker
	timeout  time.Duration
}

// NewAggregator creates an Aggregator. Nil checkers are ignored.
func NewAggregator(timeout time.Duration, checkers ...Checker) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	kept := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Aggregator{checkers: kept, timeout: timeout}
}

// Run evaluates every checker. The overall status is the worst item status.
func (a *Aggregator) Run(ctx context.Context) Report {
	report := Report{Status: StatusOK, CheckedAt: time.Now().UTC(), Checks: []CheckResult{}}
	if a == nil {
		return report
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	for _, c := range a.checkers {
		report.Checks = append(report.Checks, c.ListChecks(ctx)...)
	}
	for _, item := range report.Checks {
		if severity(item.Status) > severity(report.Status) {
			report.Status = item.Status
		}
	}
	return report
}

func severity(status string) int {
	switch status {
	case StatusOK:
		return 0
	case StatusUnknown:
		return 1
	case StatusWarn:
		return 2
	case StatusError:
		return 3
	default:
		return 1
	}
}
