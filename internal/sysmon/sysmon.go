// Package sysmon provides system-wide CPU and memory usage sampling.
package sysmon

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Returns zero values on error.
func Sample() Stats {
	var s Stats
	cpuPcts, err := cpu.Percent(0, false)
	if err == nil && len(cpuPcts) > 0 {
		s.CPUPercent = cpuPcts[0]
	}
	vmem, err := mem.VirtualMemory()
	if err == nil && vmem != nil {
		s.MemPercent = vmem.UsedPercent
	}
	return s
}

// HostInfo describes the machine a benchmark ran on.
type HostInfo struct {
	ModelName     string
	LogicalCPUs   int
	PhysicalCores int
	TotalMemory   uint64
}

// Host reads the CPU model, core counts and installed memory. Fields that
// cannot be read are left zero.
func Host(ctx context.Context) HostInfo {
	var h HostInfo
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		h.ModelName = infos[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		h.LogicalCPUs = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		h.PhysicalCores = n
	}
	if vmem, err := mem.VirtualMemoryWithContext(ctx); err == nil && vmem != nil {
		h.TotalMemory = vmem.Total
	}
	return h
}

// Summary aggregates the samples taken by a Monitor.
type Summary struct {
	Samples    int
	AvgCPU     float64
	PeakCPU    float64
	PeakMemory float64
}

// Monitor samples Stats periodically in the background until stopped.
type Monitor struct {
	interval time.Duration
	sample   func() Stats

	mu      sync.Mutex
	summary Summary
	cpuSum  float64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor returns a monitor sampling every interval.
func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &Monitor{interval: interval, sample: Sample}
}

// Start begins sampling. It must be called at most once.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.sample() // prime the CPU delta
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.record(m.sample())
			}
		}
	}()
}

// Stop ends sampling and returns the summary. Stop on a monitor that was
// never started returns an empty Summary.
func (m *Monitor) Stop() Summary {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	return m.Summary()
}

// Summary returns the aggregate of the samples taken so far.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

func (m *Monitor) record(s Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summary.Samples++
	m.cpuSum += s.CPUPercent
	m.summary.AvgCPU = m.cpuSum / float64(m.summary.Samples)
	m.summary.PeakCPU = max(m.summary.PeakCPU, s.CPUPercent)
	m.summary.PeakMemory = max(m.summary.PeakMemory, s.MemPercent)
}
