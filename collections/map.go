package collections

import "github.com/Invicton-Labs/go-powerix/constraints"

// CopyMap creates a copy of the input map
func CopyMap[Key comparable, Value any](in map[Key]Value) map[Key]Value {
	m := make(map[Key]Value, len(in))
	for k, v := range in {
		m[k] = v
	}
	return m
}

// MergeMaps will merge multiple maps together, with values for keys in later maps
// overwriting values with the same keys in previous maps. If no maps are passed
// in, it returns nil. If one map is passed in, it will create a copy of that map.
func MergeMaps[Key comparable, Value any](maps ...map[Key]Value) map[Key]Value {
	if len(maps) == 0 {
		return nil
	}
	out := make(map[Key]Value, len(maps[0]))
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// MapKeys gets all keys of the input map as a slice.
func MapKeys[Key comparable, Value any](in map[Key]Value) []Key {
	r := make([]Key, len(in))
	idx := 0
	for k := range in {
		r[idx] = k
		idx++
	}
	return r
}

// MapKeysAscending gets all keys of the input map as a slice, sorted in
// ascending order.
func MapKeysAscending[Key constraints.Ordered, Value any](in map[Key]Value) []Key {
	keys := MapKeys(in)
	SortSliceAscendingInPlace(keys)
	return keys
}
