package debugging

import (
	"context"
	"runtime"
	"time"

	"github.com/Invicton-Labs/go-concurrency"
	"github.com/Invicton-Labs/go-powerix/gensync"
	"github.com/Invicton-Labs/go-stackerr"
)

// DefaultMemoryInterval is how often StartMemoryMonitor samples when given
// a non-positive interval.
const DefaultMemoryInterval = 10 * time.Millisecond

// MemoryPeak holds the highest memory usage seen by a MemoryMonitor, in bytes.
type MemoryPeak struct {
	// Reserved is the total memory obtained from the OS.
	Reserved uint64
	// InUse is heap plus stack memory in use.
	InUse uint64
}

// ReservedMiB and InUseMiB round down to whole mebibytes.
func (p MemoryPeak) ReservedMiB() uint64 { return bToMb(p.Reserved) }
func (p MemoryPeak) InUseMiB() uint64    { return bToMb(p.InUse) }

// MemoryMonitor samples runtime memory statistics in the background and keeps
// the maxima. It is safe for concurrent use.
type MemoryMonitor struct {
	cancel      context.CancelFunc
	done        context.Context
	maxReserved *gensync.AtomicNumeric[uint64]
	maxInUse    *gensync.AtomicNumeric[uint64]
}

// StartMemoryMonitor samples memory every interval until ctx is done or Stop
// is called.
func StartMemoryMonitor(ctx context.Context, interval time.Duration) *MemoryMonitor {
	if interval <= 0 {
		interval = DefaultMemoryInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	m := &MemoryMonitor{
		cancel:      cancel,
		maxReserved: gensync.NewAtomicNumeric[uint64](0),
		maxInUse:    gensync.NewAtomicNumeric[uint64](0),
	}
	m.sample()
	executor := concurrency.ContinuousFinal(
		ctx, concurrency.ContinuousFinalInput{
			Name: "memory-monitor",
			Func: func(ctx context.Context, metadata *concurrency.RoutineFunctionMetadata) (err stackerr.Error) {
				m.sample()
				return nil
			},
		}, interval)
	m.done = executor.Ctx()
	return m
}

func (m *MemoryMonitor) sample() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.maxReserved.StoreMax(mem.Sys)
	m.maxInUse.StoreMax(mem.HeapInuse + mem.StackInuse)
}

// Stop takes a last sample, stops the background sampling and returns the
// peak usage.
func (m *MemoryMonitor) Stop() MemoryPeak {
	m.sample()
	m.cancel()
	return m.Peak()
}

// Done is closed once the sampling routine has exited.
func (m *MemoryMonitor) Done() <-chan struct{} {
	return m.done.Done()
}

// Peak returns the maxima seen so far.
func (m *MemoryMonitor) Peak() MemoryPeak {
	return MemoryPeak{
		Reserved: m.maxReserved.Load(),
		InUse:    m.maxInUse.Load(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
