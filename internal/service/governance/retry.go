package governance

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"schoolgle/internal/domain"
	"schoolgle/internal/domain/repositories"
)

// maxConflictRetries is how many times a transition is re-run after losing a version race
const maxConflictRetries = 1

// runTransition executes fn in a transaction. A VersionConflict re-runs the
// whole transaction once, with fresh reads; every other error is final.
func runTransition(ctx context.Context, deps Dependencies, action string, fn repositories.TxFn) error {
	attempt := 0
	op := func() error {
		attempt++
		err := deps.TxManager.ExecTx(ctx, fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			if deps.Conflicts != nil {
				deps.Conflicts.RecordVersionConflict()
			}
			deps.Logger.Warn("version conflict",
				"action", action,
				"attempt", attempt,
				"error", err,
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, maxConflictRetries), ctx)
	return backoff.Retry(op, policy)
}
