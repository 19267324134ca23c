package journal

import (
	"context"

	"github.com/MRudenko/go-budget-sync/models"
)

type nopRecorder struct{}

// Nop returns a Recorder that records nothing. Used when no journal path is
// configured and in tests.
func Nop() Recorder {
	return nopRecorder{}
}

func (nopRecorder) BeginCycle(context.Context) (string, error) { return "", nil }

func (nopRecorder) RecordAttempt(context.Context, string, models.SyncAttemptOutcome) error {
	return nil
}

func (nopRecorder) EndCycle(context.Context, string, models.CycleReport) error { return nil }

func (nopRecorder) Close() error { return nil }
