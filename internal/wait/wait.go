package wait

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

const (
	defaultInterval = 1 * time.Second
	defaultTimeout  = 10 * time.Minute
)

// ErrStalled is returned when the fetched snapshot stops changing for
// longer than the configured staleness timeout.
//
// Callers can match it with [errors.Is] to distinguish a stalled job
// from a fetch failure.
var ErrStalled = errors.New("snapshot unchanged within staleness timeout")

// Options configures a [Wait] call for snapshots of type S.
type Options[S any] struct {
	// Interval is the delay between consecutive fetches.
	// Defaults to 1 second. Only one fetch is ever in flight at a time;
	// the next tick is scheduled after the previous fetch fully resolves.
	Interval time.Duration

	// Timeout is the staleness window: the wait fails once this long
	// passes without an observed change in the snapshot. Defaults to
	// 10 minutes. This is not a bound on total wait time.
	Timeout time.Duration

	// IsPending reports whether a snapshot is still in progress.
	// Required. A snapshot for which IsPending returns false is terminal
	// and resolves the wait.
	IsPending func(S) bool

	// Equal compares two snapshots for change detection. Defaults to
	// [reflect.DeepEqual], which compares maps independent of key order.
	Equal func(a, b S) bool

	// OnProgress, if non-nil, is invoked with each snapshot that differs
	// from the previous observation. It is guaranteed to be invoked at
	// least once before the wait resolves, even when the very first
	// fetch is already terminal.
	OnProgress func(S)
}

// Wait repeatedly invokes fetch until it observes a terminal snapshot,
// returning that snapshot.
//
// The first fetch happens immediately; subsequent fetches follow at the
// configured interval. A fetch error aborts the wait with that error.
// If the snapshot stops changing for longer than the staleness timeout
// the wait fails with an error wrapping [ErrStalled]. Cancelling the
// context aborts the wait with the context's error. No tick is ever
// scheduled after the wait has resolved or failed.
func Wait[S any](ctx context.Context, fetch func(context.Context) (S, error), opts Options[S]) (S, error) {
	var zero S
	if fetch == nil {
		return zero, errors.New("wait: fetch function is required")
	}
	if opts.IsPending == nil {
		return zero, errors.New("wait: IsPending is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	equal := opts.Equal
	if equal == nil {
		equal = func(a, b S) bool { return reflect.DeepEqual(a, b) }
	}

	var (
		last       S
		haveLast   bool
		notified   bool
		lastUpdate = time.Now()
		timer      *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		snap, err := fetch(ctx)
		if err != nil {
			return zero, err
		}

		pending := opts.IsPending(snap)
		updated := !haveLast || !equal(snap, last)
		now := time.Now()

		if updated {
			lastUpdate = now
		} else if now.Sub(lastUpdate) >= timeout {
			return zero, fmt.Errorf("%w (%s of inactivity)", ErrStalled, timeout)
		}

		// Suppress the notification when the very first observation is
		// already terminal; the resolution path below still guarantees
		// one call in that case.
		if opts.OnProgress != nil && (haveLast || pending) && updated {
			opts.OnProgress(snap)
			notified = true
		}

		last = snap
		haveLast = true

		if !pending {
			if opts.OnProgress != nil && !notified {
				opts.OnProgress(snap)
			}
			return snap, nil
		}

		if timer == nil {
			timer = time.NewTimer(interval)
		} else {
			// timer.C was drained by the previous tick, safe to re-arm
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
