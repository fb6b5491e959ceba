package watcher

import (
	"context"
	"time"
)

// batch merges changes from in and delivers them on out once the stream
// has been quiet for quiet, or maxWait after the first pending change.
// A batch the consumer is not ready for stays pending and absorbs later
// changes, so nothing is dropped. out is closed when ctx is done or in
// is closed.
func batch(ctx context.Context, in <-chan Change, out chan<- []Change, quiet, maxWait time.Duration) {
	defer close(out)

	pending := make(changeSet)
	var since time.Time
	timer := time.NewTimer(quiet)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case c, ok := <-in:
			if !ok {
				return
			}
			if len(pending) == 0 {
				since = time.Now()
			}
			pending.add(c)
			timer.Reset(min(quiet, max(maxWait-time.Since(since), 0)))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			select {
			case out <- pending.sorted():
				pending = make(changeSet)
			default:
				timer.Reset(quiet)
			}
		}
	}
}
