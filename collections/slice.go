package collections

import (
	"sort"

	"github.com/Invicton-Labs/go-powerix/constraints"
)

// CopySlice will create a copy of the given slice.
func CopySlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}

// FilterSlice creates a new slice of elements that meet a given condition function.
func FilterSlice[T any](in []T, filterFunc func(value T) (include bool)) []T {
	if in == nil {
		return nil
	}
	r := []T{}
	for _, v := range in {
		if filterFunc(v) {
			r = append(r, v)
		}
	}
	return r
}

// SortSliceAscendingInPlace sorts a slice in ascending order, modifying the input slice.
func SortSliceAscendingInPlace[SliceType constraints.Ordered](in []SliceType) {
	sort.Slice(in, func(i, j int) bool {
		return in[i] < in[j]
	})
}

// SortSliceByKeyInPlace sorts a slice in ascending order of a key extracted from
// each element. Elements with equal keys keep their relative order.
func SortSliceByKeyInPlace[SliceType any, KeyType constraints.Ordered](in []SliceType, keyFunc func(value SliceType) KeyType) {
	sort.SliceStable(in, func(i, j int) bool {
		return keyFunc(in[i]) < keyFunc(in[j])
	})
}

// SliceContains reports whether value is an element of slice.
func SliceContains[T comparable](slice []T, value T) bool {
	_, found := SliceFind(slice, value)
	return found
}

// SliceFind returns the index of the first element equal to value.
func SliceFind[T comparable](slice []T, value T) (int, bool) {
	for i, v := range slice {
		if v == value {
			return i, true
		}
	}
	return -1, false
}
