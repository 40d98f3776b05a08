package workers

import (
	"context"
	"edusmarthub/contract"
	"edusmarthub/domain"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// Gauge reads a live figure of the server, such as its connection count.
type Gauge func() int

// HealthMonitoringWorker samples the server's own process every metricInterval
// and keeps the latest sample for health endpoints.
type HealthMonitoringWorker struct {
	mu             sync.RWMutex
	log            *slog.Logger
	metricInterval time.Duration
	connections    Gauge
	rooms          Gauge
	latest         domain.Health
}

func NewHealthMonitoringWorker(log *slog.Logger, metricInterval time.Duration,
	connections, rooms Gauge) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		metricInterval: metricInterval,
		connections:    connections,
		rooms:          rooms,
		latest:         domain.Health{PID: int32(os.Getpid()), Status: domain.UNKNOWN},
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.Sample(p)
		}
	}
}

// Sample records one health snapshot. Process figures that cannot be read are left at zero.
func (w *HealthMonitoringWorker) Sample(p *process.Process) domain.Health {
	h := domain.Health{PID: p.Pid, Status: domain.UNKNOWN, At: time.Now().UTC()}
	if status, err := p.Status(); err == nil {
		h.Status = domain.ToStatus(status)
	} else {
		w.log.Debug("Error while finding process status", "err", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		h.CPU = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "err", err)
	}
	if mem, err := p.MemoryInfo(); err == nil {
		h.RAM = mem.RSS
	} else {
		w.log.Debug("Error while finding process ram usage", "err", err)
	}
	if w.connections != nil {
		h.Connections = w.connections()
	}
	if w.rooms != nil {
		h.Rooms = w.rooms()
	}

	w.mu.Lock()
	w.latest = h
	w.mu.Unlock()
	w.log.Debug("Health sample",
		"status", h.Status, "cpu", h.CPU, "ram", h.RAM,
		"connections", h.Connections, "rooms", h.Rooms)
	return h
}

func (w *HealthMonitoringWorker) Latest() domain.Health {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}
