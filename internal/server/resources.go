package server

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"coinboard/internal/logger"
)

// resourceSample is one reading of host resource usage.
type resourceSample struct {
	Timestamp   time.Time `json:"timestamp"`
	CPUPercent  float64   `json:"cpu_percent"`
	MemoryUsed  uint64    `json:"memory_used"`
	MemoryTotal uint64    `json:"memory_total"`
	MemoryPct   float64   `json:"memory_percent"`
	DiskUsed    uint64    `json:"disk_used"`
	DiskTotal   uint64    `json:"disk_total"`
	DiskPct     float64   `json:"disk_percent"`
}

// resourceSampler keeps a bounded history of host resource readings
// for the /api/resources endpoint.
type resourceSampler struct {
	mu       sync.RWMutex
	items    []resourceSample
	limit    int
	interval time.Duration
	diskPath string

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Log
}

// Sampling functions are variables so tests can stub the host away.
var (
	cpuPercentFn = func(ctx context.Context) ([]float64, error) {
		return cpu.PercentWithContext(ctx, 0, false)
	}
	memoryStatsFn = mem.VirtualMemoryWithContext
	diskUsageFn   = disk.UsageWithContext
)

func newResourceSampler(limit int, interval time.Duration, diskPath string, log *logger.Log) *resourceSampler {
	if limit <= 0 {
		limit = 120
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if diskPath == "" {
		diskPath = "/"
	}
	return &resourceSampler{
		limit:    limit,
		interval: interval,
		diskPath: diskPath,
		log:      log,
	}
}

func (s *resourceSampler) start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(childCtx)
	}()
}

func (s *resourceSampler) stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}

func (s *resourceSampler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if sample, ok := s.sample(ctx); ok {
			s.append(sample)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// sample reads the host once. A failed reading is logged and skipped;
// the next tick tries again.
func (s *resourceSampler) sample(ctx context.Context) (resourceSample, bool) {
	cpuSamples, err := cpuPercentFn(ctx)
	if err != nil {
		s.log.WithComponent("resources").WithError(err).Debug("failed to sample cpu usage")
		return resourceSample{}, false
	}
	memStats, err := memoryStatsFn(ctx)
	if err != nil {
		s.log.WithComponent("resources").WithError(err).Debug("failed to sample memory usage")
		return resourceSample{}, false
	}
	diskStats, err := diskUsageFn(ctx, s.diskPath)
	if err != nil {
		s.log.WithComponent("resources").WithError(err).Debug("failed to sample disk usage")
		return resourceSample{}, false
	}
	return resourceSample{
		Timestamp:   time.Now(),
		CPUPercent:  firstSample(cpuSamples),
		MemoryUsed:  memStats.Used,
		MemoryTotal: memStats.Total,
		MemoryPct:   memStats.UsedPercent,
		DiskUsed:    diskStats.Used,
		DiskTotal:   diskStats.Total,
		DiskPct:     diskStats.UsedPercent,
	}, true
}

func (s *resourceSampler) append(sample resourceSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, sample)
	if len(s.items) > s.limit {
		s.items = append([]resourceSample(nil), s.items[len(s.items)-s.limit:]...)
	}
}

func (s *resourceSampler) snapshot() []resourceSample {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]resourceSample, len(s.items))
	copy(out, s.items)
	return out
}

func firstSample(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[0]
}
