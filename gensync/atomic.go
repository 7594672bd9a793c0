package gensync

import (
	"sync"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

// Atomic guards a value with a mutex. The zero value holds the zero T.
type Atomic[T any] struct {
	l sync.Mutex
	v T
}

func (a *Atomic[T]) Load() T {
	a.l.Lock()
	defer a.l.Unlock()
	return a.v
}

func (a *Atomic[T]) Store(val T) {
	a.l.Lock()
	defer a.l.Unlock()
	a.v = val
}

func (a *Atomic[T]) StoreIf(val T, condition func(old T, new T) bool) (stored bool) {
	a.l.Lock()
	defer a.l.Unlock()
	if condition(a.v, val) {
		a.v = val
		return true
	}
	return false
}

// AtomicNumeric is an Atomic that also supports arithmetic updates.
type AtomicNumeric[T constraints.Numeric] struct {
	Atomic[T]
}

func NewAtomicNumeric[T constraints.Numeric](val T) *AtomicNumeric[T] {
	return &AtomicNumeric[T]{
		Atomic: Atomic[T]{v: val},
	}
}

func (a *AtomicNumeric[T]) Add(delta T) (new T) {
	a.l.Lock()
	defer a.l.Unlock()
	a.v += delta
	return a.v
}

// StoreMax stores val if it is greater than the current value.
func (a *AtomicNumeric[T]) StoreMax(val T) (stored bool) {
	return a.StoreIf(val, func(old T, new T) bool {
		return new > old
	})
}
