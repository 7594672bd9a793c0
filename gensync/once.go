package gensync

import (
	"sync"
	"sync/atomic"

	"github.com/Invicton-Labs/go-stackerr"
)

// Once is like sync.Once, except that the function can fail. A failed
// call does not count as done, so the next Do will try again.
type Once struct {
	m    sync.Mutex
	done atomic.Bool
}

// Do calls f if, and only if, no previous call to f on this Once
// has succeeded.
func (o *Once) Do(f func() stackerr.Error) stackerr.Error {
	if o.done.Load() {
		return nil
	}
	o.m.Lock()
	defer o.m.Unlock()
	if o.done.Load() {
		return nil
	}
	if err := f(); err != nil {
		return err
	}
	o.done.Store(true)
	return nil
}
