package server

import (
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/ajitpratap0/metactx/pkg/api"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ResourceMonitor samples the resources of the server process.
type ResourceMonitor struct {
	process      *process.Process
	startCPUTime float64
	startTime    time.Time
	mu           sync.RWMutex
}

// ResourceUsage contains resource usage information
type ResourceUsage struct {
	CPUPercent            float64 `json:"cpuPercent"`
	MemoryRSS             uint64  `json:"memoryRSS"`
	MemoryVMS             uint64  `json:"memoryVMS"`
	SystemMemoryPercent   float64 `json:"systemMemoryPercent"`
	SystemMemoryAvailable uint64  `json:"systemMemoryAvailable"`
	GoroutineCount        int     `json:"goroutineCount"`
	ThreadCount           int32   `json:"threadCount"`
}

// Health is the body of /health.
type Health struct {
	Status    string         `json:"status"`
	Server    string         `json:"server"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Resources *ResourceUsage `json:"resources,omitempty"`
}

// NewResourceMonitor creates a resource monitor
func NewResourceMonitor() *ResourceMonitor {
	rm := &ResourceMonitor{startTime: time.Now()}
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return rm
	}
	rm.process = proc
	if cpuTime, err := proc.Times(); err == nil {
		rm.startCPUTime = cpuTime.Total()
	}
	return rm
}

// Uptime returns the time since the monitor was created.
func (rm *ResourceMonitor) Uptime() time.Duration {
	return time.Since(rm.startTime)
}

// Usage returns current resource usage. Values the platform cannot report
// stay zero.
func (rm *ResourceMonitor) Usage() *ResourceUsage {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	usage := &ResourceUsage{GoroutineCount: runtime.NumGoroutine()}

	if rm.process != nil {
		if cpuTime, err := rm.process.Times(); err == nil {
			elapsed := time.Since(rm.startTime).Seconds()
			if elapsed > 0 {
				usage.CPUPercent = ((cpuTime.Total() - rm.startCPUTime) / elapsed) * 100
			}
		}
		if memInfo, err := rm.process.MemoryInfo(); err == nil {
			usage.MemoryRSS = memInfo.RSS
			usage.MemoryVMS = memInfo.VMS
		}
		usage.ThreadCount, _ = rm.process.NumThreads()
	}

	if vmStat, err := mem.VirtualMemory(); err == nil {
		usage.SystemMemoryPercent = vmStat.UsedPercent
		usage.SystemMemoryAvailable = vmStat.Available
	}
	return usage
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, Health{
		Status:    "ok",
		Server:    s.name,
		Version:   s.version,
		Uptime:    s.monitor.Uptime().Round(time.Second).String(),
		Resources: s.monitor.Usage(),
	})
}
