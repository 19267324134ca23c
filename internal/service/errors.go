package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDataDirUnwritable is returned by SessionManager.Open when the
	// budget cache directory cannot be created or written to.
	ErrDataDirUnwritable = errors.New("data directory is not writable")
)

// CycleError aggregates every sync target that exhausted its retry attempts
// during one cycle. It is returned by SyncOrchestrator.RunCycle so the
// scheduler can treat the whole cycle as failed while individual successful
// targets keep their results.
type CycleError struct {
	// FailedSyncIDs lists the exhausted targets in configured order.
	FailedSyncIDs []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sync cycle failed for %d budget(s): %s",
		len(e.FailedSyncIDs), strings.Join(e.FailedSyncIDs, ", "))
}
