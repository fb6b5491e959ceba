package search

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/flock"
)

// Sibling files of an index: the advisory lock and the file Save writes
// before renaming it into place.
const (
	LockSuffix = ".lock"
	TempSuffix = ".tmp"
)

// Save and Load give up on a contended lock after lockTimeout.
var (
	lockTimeout = 10 * time.Second
	lockRetry   = 25 * time.Millisecond
)

var errLockBusy = errors.New("index is locked by another process")

// LockPath returns the lock file guarding indexPath.
func LockPath(indexPath string) string {
	return indexPath + LockSuffix
}

// lockIndex takes the index lock, shared for readers and exclusive for
// writers, and returns the function that releases it. The lock file's
// directory must already exist.
func lockIndex(indexPath string, shared bool) (release func(), err error) {
	f := flock.New(LockPath(indexPath))
	try := f.TryLockContext
	if shared {
		try = f.TryRLockContext
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := try(ctx, lockRetry)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, errLockBusy
	case err != nil:
		return nil, err
	case !ok:
		return nil, errLockBusy
	}
	return func() { _ = f.Unlock() }, nil
}
