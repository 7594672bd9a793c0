package power

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/numbers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bitsOf returns the bit pattern of v widened to 64 bits, so that float
// results can be compared exactly and NaNs compare equal to themselves.
func bitsOf[B constraints.Numeric](v B) uint64 {
	if numbers.IsFloatKind[B]() {
		return math.Float64bits(float64(v))
	}
	return uint64(v)
}

func kernels[B constraints.Numeric, E constraints.Integer]() map[string]Kernel[B, E] {
	return map[string]Kernel[B, E]{
		"binary":         Binary[B, E],
		"hierarchical":   Hierarchical[B, E],
		"small_exponent": SmallExponent[B, E],
		"memo":           NewMemo[B, E](nil).Pow,
		"memo_single":    NewMemo[B, E](Hierarchical[B, E], WithSingleFlight()).Pow,
		"bounded_memo":   NewBoundedMemo[B, E](nil, 1<<20, 0).Pow,
	}
}

func assertKernelsAgree[B constraints.Numeric, E constraints.Integer](t *testing.T, bases []B, maxExp E) {
	t.Helper()
	for name, kernel := range kernels[B, E]() {
		for _, b := range bases {
			for e := E(0); e <= maxExp; e++ {
				want := Binary(b, e)
				got := kernel(b, e)
				require.Equal(t, bitsOf(want), bitsOf(got), "%s(%v, %v) = %v, want %v", name, b, e, got, want)
			}
		}
	}
}

func TestKernelsAgreeBitForBit(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	floats := make([]float64, 32)
	for i := range floats {
		floats[i] = (rng.Float64()*2 - 1) * 3
	}
	floats32 := make([]float32, len(floats))
	for i, f := range floats {
		floats32[i] = float32(f)
	}

	t.Run("int16", func(t *testing.T) { assertKernelsAgree(t, []int16{-7, -2, 2, 3, 5, 7, 11}, int16(20)) })
	t.Run("int32", func(t *testing.T) { assertKernelsAgree(t, []int32{-3, 2, 3, 5, 7, 11}, int32(40)) })
	t.Run("int64", func(t *testing.T) { assertKernelsAgree(t, []int64{-5, 2, 3, 5, 7, 11}, int64(64)) })
	t.Run("uint32", func(t *testing.T) { assertKernelsAgree(t, []uint32{2, 3, 5, 7, 11}, uint32(40)) })
	t.Run("uint64", func(t *testing.T) { assertKernelsAgree(t, []uint64{2, 3, 5, 7, 11}, uint64(64)) })
	t.Run("float32", func(t *testing.T) { assertKernelsAgree(t, floats32, 40) })
	t.Run("float64", func(t *testing.T) { assertKernelsAgree(t, floats, 64) })
	t.Run("float64 dataset", func(t *testing.T) {
		assertKernelsAgree(t, []float64{0.1, 0.5, 1.3, 2.7, 5.9}, int32(15))
	})
}

func TestKernelsZeroAndOneExponent(t *testing.T) {
	for name, kernel := range kernels[float64, int]() {
		for _, b := range []float64{0, 1, -1, 0.1, 2.5, -3, 1e300, math.Inf(1)} {
			assert.Equal(t, 1.0, kernel(b, 0), "%s(%v, 0)", name, b)
			assert.Equal(t, b, kernel(b, 1), "%s(%v, 1)", name, b)
		}
	}
	for name, kernel := range kernels[int64, uint8]() {
		for _, b := range []int64{0, 1, -1, 9, math.MaxInt64, math.MinInt64} {
			assert.Equal(t, int64(1), kernel(b, 0), "%s(%v, 0)", name, b)
			assert.Equal(t, b, kernel(b, 1), "%s(%v, 1)", name, b)
		}
	}
}

func TestKnownPowers(t *testing.T) {
	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"binary 2^10", Binary(int64(2), 10), 1024},
		{"binary 3^39", Binary(int64(3), 39), 4052555153018976267},
		{"hierarchical 5^3", Hierarchical(int64(5), 3), 125},
		{"hierarchical -2^5", Hierarchical(int64(-2), 5), -32},
		{"small exponent 7^8", SmallExponent(int64(7), 8), 5764801},
		{"small exponent 11^15", SmallExponent(int64(11), 15), 4177248169415651},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Equal(t, uint32(1024), Binary(uint32(2), uint32(10)))
	assert.Equal(t, 1024.0, Hierarchical(2.0, 10))
	assert.Equal(t, float32(0.25), SmallExponent(float32(0.5), 2))
}

func TestNegativeExponent(t *testing.T) {
	for name, kernel := range kernels[float64, int]() {
		assert.True(t, math.IsNaN(kernel(2, -1)), name)
	}
	for name, kernel := range kernels[int32, int8]() {
		assert.Equal(t, int32(0), kernel(2, -3), name)
	}

	v, err := BinaryChecked(2.0, -1)
	assert.True(t, math.IsNaN(v))
	assert.Equal(t, ErrNegativeExponent, err)

	i, err := BinaryChecked(int16(3), int16(4))
	require.NoError(t, err)
	assert.Equal(t, int16(81), i)
}

func TestOverflow(t *testing.T) {
	// Integers wrap.
	assert.Equal(t, int8(-128), Binary(int8(2), 7))
	assert.Equal(t, int8(0), Hierarchical(int8(2), 8))
	assert.Equal(t, uint16(0), SmallExponent(uint16(256), 2))

	// Floats saturate.
	assert.True(t, math.IsInf(float64(Binary(float32(10), 40)), 1))
	assert.True(t, math.IsInf(Hierarchical(-10.0, 309), -1))
	assert.Equal(t, 0.0, Binary(1e-200, 2))
}

func TestHierarchicalLargestExponents(t *testing.T) {
	assert.Equal(t, int64(1), Hierarchical(int64(1), int64(math.MaxInt64)))
	assert.Equal(t, int64(-1), Hierarchical(int64(-1), int64(math.MaxInt64)))
	assert.Equal(t, uint64(1), Hierarchical(uint64(1), uint64(math.MaxUint64)))
	assert.Equal(t, 1.0, Hierarchical(-1.0, uint64(math.MaxUint64-1)))
	assert.Equal(t, Binary(1.0000001, uint64(math.MaxUint64)), Hierarchical(1.0000001, uint64(math.MaxUint64)))
}

func TestReference(t *testing.T) {
	assert.Equal(t, 1024.0, Reference(2, 10))
	assert.InDelta(t, math.Sqrt2, Reference(float32(2), 0.5), 1e-15)
	assert.Equal(t, 0.5, Reference(int16(2), int8(-1)))
	assert.True(t, math.IsNaN(Reference(-8.0, TwoThirds)))
}
