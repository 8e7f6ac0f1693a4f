package health

import (
	"context"
	"errors"

	"mercator-hq/cardvault/pkg/archive"
)

// probeID is looked up by StoreCheck. It is never a real archive id.
const probeID = "\x00health-probe"

// StoreCheck reports whether the archive store answers lookups. A missing
// record is the expected answer.
func StoreCheck(store archive.Store) CheckFunc {
	return func(ctx context.Context) error {
		_, err := store.Get(ctx, archive.CollectionTrash, probeID)
		if err == nil || errors.Is(err, archive.ErrNotFound) {
			return nil
		}
		return err
	}
}

// Runner is a background component that reports whether it is running.
// *retention.Scheduler implements it.
type Runner interface {
	IsRunning() bool
}

// RunnerCheck fails while r is not running.
func RunnerCheck(name string, r Runner) CheckFunc {
	return func(ctx context.Context) error {
		if !r.IsRunning() {
			return errors.New(name + " is not running")
		}
		return nil
	}
}
