package dateutils

import (
	"context"
	"time"
)

// Waiter will return a channel that will close after the specified duration.
// If the context is cancelled first, the channel closes only if closeOnCtxDone
// is set, and never closes otherwise.
func Waiter(ctx context.Context, duration time.Duration, closeOnCtxDone bool) <-chan struct{} {
	return WaiterWithCallback(ctx, duration, closeOnCtxDone, nil)
}

// WaiterWithCallback is Waiter, calling callback after the channel closes
// because the duration elapsed.
func WaiterWithCallback(ctx context.Context, duration time.Duration, closeOnCtxDone bool, callback func(ctx context.Context)) <-chan struct{} {
	waitChan := make(chan struct{})
	if duration <= 0 {
		close(waitChan)
		if callback != nil {
			callback(ctx)
		}
		return waitChan
	}
	timer := time.NewTimer(duration)
	go func() {
		select {
		case <-timer.C:
			close(waitChan)
			if callback != nil {
				callback(ctx)
			}
		case <-ctx.Done():
			timer.Stop()
			if closeOnCtxDone {
				close(waitChan)
			}
		}
	}()
	return waitChan
}

// Expired reports, without blocking, whether a channel from Waiter has closed.
func Expired(waiter <-chan struct{}) bool {
	select {
	case <-waiter:
		return true
	default:
		return false
	}
}
