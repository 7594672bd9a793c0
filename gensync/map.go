package gensync

import "sync"

// Map is a typed sync.Map. The zero value is empty and ready for use, and
// like sync.Map it must not be copied after first use.
type Map[K comparable, V any] struct {
	m sync.Map
}

// NewMap returns a Map holding a copy of initial.
func NewMap[K comparable, V any](initial map[K]V) *Map[K, V] {
	m := &Map[K, V]{}
	for k, v := range initial {
		m.m.Store(k, v)
	}
	return m
}

func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	v, ok := m.m.Load(key)
	if ok {
		value = v.(V)
	}
	return value, ok
}

func (m *Map[K, V]) Store(key K, value V) {
	m.m.Store(key, value)
}

// LoadOrStore returns the value already stored under key, if any, and
// otherwise stores value. The first stored value always wins.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.m.LoadOrStore(key, value)
	return v.(V), loaded
}

func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.m.Load(key)
	return ok
}

func (m *Map[K, V]) Delete(key K) {
	m.m.Delete(key)
}

// Range calls f for each entry until f returns false. It has the same
// consistency guarantees as sync.Map.Range: none across concurrent writes.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.m.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

// Length counts the entries with Range, so it is O(n) and only a snapshot.
func (m *Map[K, V]) Length() (length int) {
	m.m.Range(func(_, _ any) bool {
		length++
		return true
	})
	return length
}

func (m *Map[K, V]) Clear() {
	m.m.Clear()
}
