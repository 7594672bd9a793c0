package power

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/Invicton-Labs/go-powerix/constraints"
	"github.com/Invicton-Labs/go-powerix/numbers"
	"github.com/die-net/lrucache"
)

// entrySize is the encoded size of a cached result, and of each half of a
// cache key.
const entrySize = 8

// entryFootprint is what lrucache charges for one stored pair. Keys and
// values are fixed width, so the charge is the same for every entry and the
// entry count follows from the cache size.
var entryFootprint = func() int64 {
	c := lrucache.New(math.MaxInt64, 0)
	c.Set(string(make([]byte, 2*entrySize)), make([]byte, entrySize))
	return c.Size()
}()

// BoundedMemo is a Memo whose memory use is capped. Least recently used
// entries are evicted once the stored keys and values exceed the byte budget,
// and evicted pairs are simply recomputed on their next lookup.
type BoundedMemo[B constraints.Numeric, E constraints.Integer] struct {
	kernel   Kernel[B, E]
	cache    *lrucache.LruCache
	observer MemoObserver
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// NewBoundedMemo creates a cache in front of kernel holding at most
// maxSizeBytes of keys and values. Entries older than maxAgeSeconds are
// treated as absent; zero means they never expire. A nil kernel means Binary.
// WithSingleFlight has no effect on a BoundedMemo.
func NewBoundedMemo[B constraints.Numeric, E constraints.Integer](kernel Kernel[B, E], maxSizeBytes int64, maxAgeSeconds int64, opts ...MemoOption) *BoundedMemo[B, E] {
	if kernel == nil {
		kernel = Binary[B, E]
	}
	o := newMemoOptions(opts)
	return &BoundedMemo[B, E]{
		kernel:   kernel,
		cache:    lrucache.New(maxSizeBytes, maxAgeSeconds),
		observer: o.observer,
	}
}

func (m *BoundedMemo[B, E]) Pow(base B, exp E) B {
	if !cacheable(base) {
		return m.kernel(base, exp)
	}
	key := boundedKey(base, exp)
	if encoded, ok := m.cache.Get(key); ok && len(encoded) == entrySize {
		m.hits.Add(1)
		m.observer.Hit()
		return decodeValue[B](encoded)
	}
	m.misses.Add(1)
	m.observer.Miss()
	v := m.kernel(base, exp)
	m.cache.Set(key, encodeValue(v))
	return v
}

func (m *BoundedMemo[B, E]) Kernel() Kernel[B, E] {
	return m.Pow
}

// SizeBytes returns the current size of the stored keys and values.
func (m *BoundedMemo[B, E]) SizeBytes() int64 {
	return m.cache.Size()
}

// Stats reports hits and misses since creation. Entries counts the pairs
// currently resident, so it drops as entries are evicted.
func (m *BoundedMemo[B, E]) Stats() MemoStats {
	return MemoStats{
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: int(m.cache.Size() / entryFootprint),
	}
}

// boundedKey packs the bit patterns of base and exp into a fixed-width key.
func boundedKey[B constraints.Numeric, E constraints.Integer](base B, exp E) string {
	buf := make([]byte, 0, 2*entrySize)
	buf = binary.LittleEndian.AppendUint64(buf, valueBits(base))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(exp))
	return string(buf)
}

func valueBits[B constraints.Numeric](v B) uint64 {
	if numbers.IsFloatKind[B]() {
		return math.Float64bits(float64(v))
	}
	return uint64(v)
}

// encodeValue stores the bit pattern of v, so that 64-bit integers beyond
// 2^53 survive the round trip exactly.
func encodeValue[B constraints.Numeric](v B) []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, entrySize), valueBits(v))
}

func decodeValue[B constraints.Numeric](buf []byte) B {
	bits := binary.LittleEndian.Uint64(buf)
	if numbers.IsFloatKind[B]() {
		return B(math.Float64frombits(bits))
	}
	return B(bits)
}
