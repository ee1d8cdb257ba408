// Package memory controls the Go garbage collector around timed computations.
package memory

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/agbru/factcalc/internal/logging"
)

// GCMode controls the garbage collector behavior during calculation.
type GCMode string

const (
	GCModeAuto       GCMode = "auto"
	GCModeAggressive GCMode = "aggressive"
	GCModeDisabled   GCMode = "disabled"
)

// GCAutoThreshold is the minimum N for auto GC control to activate.
const GCAutoThreshold int64 = 200_000

// memoryLimitFactor bounds the heap while the collector is off.
const memoryLimitFactor = 3

// suspension tracks the controllers currently holding the collector off.
// GC settings are process-wide, so overlapping Begin/End pairs share one
// suspension and the settings seen before the first Begin are restored by
// the last End.
var suspension struct {
	sync.Mutex
	holders     int
	gcPercent   int
	memoryLimit int64
}

// GCController suspends the garbage collector for the duration of one large
// computation and restores it afterward. GC pauses would otherwise land inside
// the timed region and blur the serial/parallel comparison.
type GCController struct {
	mode       GCMode
	active     bool
	suspended  bool
	logger     logging.Logger
	startStats runtime.MemStats
	endStats   runtime.MemStats
}

// GCStats holds GC statistics for a calculation.
type GCStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// NewGCController creates a GC controller for the given mode and N.
// Unknown modes behave like GCModeDisabled.
func NewGCController(mode string, n int64) *GCController {
	gc := &GCController{mode: GCMode(mode), logger: logging.NewNopLogger()}
	switch gc.mode {
	case GCModeAggressive:
		gc.active = true
	case GCModeAuto:
		gc.active = n >= GCAutoThreshold
	}
	return gc
}

// SetLogger configures the logger for GC control events.
func (gc *GCController) SetLogger(l logging.Logger) {
	if l != nil {
		gc.logger = l
	}
}

// Active reports whether Begin will suspend the collector.
func (gc *GCController) Active() bool { return gc.active }

// Begin disables GC if the controller is active. Calling Begin again
// before End has no further effect.
func (gc *GCController) Begin() {
	if !gc.active || gc.suspended {
		return
	}
	runtime.ReadMemStats(&gc.startStats)

	suspension.Lock()
	if suspension.holders == 0 {
		suspension.gcPercent = debug.SetGCPercent(-1)
		suspension.memoryLimit = debug.SetMemoryLimit(-1)
		// Soft memory limit as OOM safety net.
		if limit := int64(gc.startStats.Sys) * memoryLimitFactor; limit > 0 {
			debug.SetMemoryLimit(limit)
		}
	}
	suspension.holders++
	suspension.Unlock()

	gc.suspended = true
	gc.logger.Debug("gc disabled",
		logging.String("mode", string(gc.mode)),
		logging.Uint64("heap_alloc_bytes", gc.startStats.HeapAlloc))
}

// End releases this controller's hold on the collector. The original GC
// settings come back, followed by a collection, once no other controller
// holds it.
func (gc *GCController) End() {
	if !gc.suspended {
		return
	}
	gc.suspended = false
	runtime.ReadMemStats(&gc.endStats)

	suspension.Lock()
	suspension.holders--
	last := suspension.holders == 0
	if last {
		debug.SetGCPercent(suspension.gcPercent)
		debug.SetMemoryLimit(suspension.memoryLimit)
	}
	suspension.Unlock()

	if last {
		runtime.GC()
	}
	gc.logger.Debug("gc re-enabled",
		logging.String("mode", string(gc.mode)),
		logging.Bool("restored", last),
		logging.Uint64("heap_alloc_bytes", gc.endStats.HeapAlloc),
		logging.Uint64("total_alloc_bytes", gc.endStats.TotalAlloc-gc.startStats.TotalAlloc),
		logging.Int("gc_cycles", int(gc.endStats.NumGC-gc.startStats.NumGC)))
}

// Stats returns GC statistics delta between Begin and End. It is zero when
// the controller was inactive.
func (gc *GCController) Stats() GCStats {
	return GCStats{
		HeapAlloc:    gc.endStats.HeapAlloc,
		TotalAlloc:   gc.endStats.TotalAlloc - gc.startStats.TotalAlloc,
		NumGC:        gc.endStats.NumGC - gc.startStats.NumGC,
		PauseTotalNs: gc.endStats.PauseTotalNs - gc.startStats.PauseTotalNs,
	}
}
