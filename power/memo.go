package power

import (
	"fmt"
	"sync/atomic"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/gensync"
	"golang.org/x/sync/singleflight"
)

// MemoObserver is notified of every cache lookup made by a Memo or BoundedMemo.
// Implementations must be safe for concurrent use.
type MemoObserver interface {
	Hit()
	Miss()
}

type noopObserver struct{}

func (noopObserver) Hit()  {}
func (noopObserver) Miss() {}

// MemoStats is a point-in-time view of a memo cache.
type MemoStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

type memoOptions struct {
	singleFlight bool
	observer     MemoObserver
}

type MemoOption func(opts *memoOptions)

// WithSingleFlight makes concurrent misses on the same key wait for a single
// computation instead of each computing the value.
func WithSingleFlight() MemoOption {
	return func(opts *memoOptions) {
		opts.singleFlight = true
	}
}

// WithObserver registers an observer for hits and misses.
func WithObserver(observer MemoObserver) MemoOption {
	return func(opts *memoOptions) {
		if observer != nil {
			opts.observer = observer
		}
	}
}

func newMemoOptions(opts []MemoOption) memoOptions {
	o := memoOptions{
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type memoKey[B constraints.Numeric, E constraints.Integer] struct {
	base B
	exp  E
}

func (k memoKey[B, E]) String() string {
	return fmt.Sprintf("%v^%v", k.base, k.exp)
}

// cacheable reports whether results for base can be stored under base as a
// key. NaN never equals itself, so it could be inserted forever but never
// found. +0 and -0 are equal as keys but odd powers keep their sign.
func cacheable[B constraints.Numeric](base B) bool {
	return base == base && base != 0
}

// Memo caches the results of a kernel by (base, exponent).
//
// Entries are never evicted: memory grows with the number of distinct pairs
// seen for as long as the Memo is reachable. Use BoundedMemo when the inputs
// are not known to come from a small fixed set.
//
// A Memo is safe for concurrent use. The kernel is always called outside of
// any lock. Without WithSingleFlight, concurrent misses on the same key may
// each compute the value, but only the first one stored is ever returned.
type Memo[B constraints.Numeric, E constraints.Integer] struct {
	kernel   Kernel[B, E]
	entries  gensync.Map[memoKey[B, E], B]
	group    *singleflight.Group
	observer MemoObserver
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// NewMemo creates an empty cache in front of kernel. A nil kernel means Binary.
func NewMemo[B constraints.Numeric, E constraints.Integer](kernel Kernel[B, E], opts ...MemoOption) *Memo[B, E] {
	if kernel == nil {
		kernel = Binary[B, E]
	}
	o := newMemoOptions(opts)
	m := &Memo[B, E]{
		kernel:   kernel,
		observer: o.observer,
	}
	if o.singleFlight {
		m.group = &singleflight.Group{}
	}
	return m
}

// Pow returns base^exp, from the cache if this pair has been seen before.
func (m *Memo[B, E]) Pow(base B, exp E) B {
	if !cacheable(base) {
		return m.kernel(base, exp)
	}
	key := memoKey[B, E]{base: base, exp: exp}
	if v, ok := m.entries.Load(key); ok {
		m.hits.Add(1)
		m.observer.Hit()
		return v
	}
	m.misses.Add(1)
	m.observer.Miss()

	if m.group == nil {
		actual, _ := m.entries.LoadOrStore(key, m.kernel(base, exp))
		return actual
	}
	v, _, _ := m.group.Do(key.String(), func() (any, error) {
		// Another caller may have finished storing it while this one
		// was waiting to get in.
		if v, ok := m.entries.Load(key); ok {
			return v, nil
		}
		actual, _ := m.entries.LoadOrStore(key, m.kernel(base, exp))
		return actual, nil
	})
	return v.(B)
}

// Kernel returns m.Pow as a Kernel, so a Memo can stand in wherever a
// plain kernel is expected.
func (m *Memo[B, E]) Kernel() Kernel[B, E] {
	return m.Pow
}

// Len returns the number of distinct (base, exponent) pairs stored.
func (m *Memo[B, E]) Len() int {
	return m.entries.Length()
}

func (m *Memo[B, E]) Stats() MemoStats {
	return MemoStats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: m.entries.Length(),
	}
}

// Reset drops every entry and zeroes the counters.
func (m *Memo[B, E]) Reset() {
	m.entries.Clear()
	m.hits.Store(0)
	m.misses.Store(0)
}
