package app

import (
	"time"

	"copypics/internal/pics"
)

// Run statuses recorded in the run history.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// newImportRun creates the in-memory record of a run that is about to start.
func newImportRun(id string, source, dest *pics.Root, startedAt time.Time) *pics.ImportRun {
	return &pics.ImportRun{
		ID:          id,
		Source:      source.String(),
		Destination: dest.String(),
		StartedAt:   startedAt,
		Status:      StatusRunning,
	}
}

// finishImportRun copies the outcome of the walk into run. A run that was
// interrupted or had any failure is recorded as an error; a run that never
// walked (report is nil) is an error too.
func finishImportRun(run *pics.ImportRun, report *pics.WalkReport, runErr error, finishedAt time.Time) {
	run.FinishedAt = finishedAt
	run.Status = StatusSuccess

	if report == nil {
		run.Status = StatusError
		return
	}
	run.Imported = report.Imported
	run.Duplicates = report.Duplicates
	run.Failures = len(report.Failures)
	if runErr != nil || run.Failures > 0 {
		run.Status = StatusError
	}
}
