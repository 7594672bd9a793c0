package gensync

import (
	"sync"

	"github.com/Invicton-Labs/go-powerix/collections"
)

// Slice collects values appended from many goroutines.
// The zero value is empty and ready for use.
type Slice[T any] struct {
	mu sync.Mutex
	s  []T
}

// Append adds values to the end, in order, as one operation.
func (s *Slice[T]) Append(values ...T) {
	s.mu.Lock()
	s.s = append(s.s, values...)
	s.mu.Unlock()
}

// Load returns a copy of the current contents.
func (s *Slice[T]) Load() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return collections.CopySlice(s.s)
}

func (s *Slice[T]) Length() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.s)
}
