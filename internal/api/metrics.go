package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessMetrics снимает показатели процесса клиента
type ProcessMetrics struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessMetrics создаёт источник метрик текущего процесса
func NewProcessMetrics() *ProcessMetrics {
	pm := &ProcessMetrics{StartTime: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		pm.proc = p
	}
	return pm
}

// GetUptime возвращает время работы
func (pm *ProcessMetrics) GetUptime() string {
	uptime := time.Since(pm.StartTime)

	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetCPUUsage возвращает загрузку CPU процессом в процентах
func (pm *ProcessMetrics) GetCPUUsage() (float64, error) {
	if pm.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	return pm.proc.CPUPercent()
}

// GetRSS возвращает резидентную память процесса в МБ
func (pm *ProcessMetrics) GetRSS() (float64, error) {
	if pm.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	mi, err := pm.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(mi.RSS) / 1024 / 1024, nil
}

// Snapshot собирает показатели процесса для /debug/stats
func (pm *ProcessMetrics) Snapshot() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	out := map[string]interface{}{
		"uptime":        pm.GetUptime(),
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
	if cpu, err := pm.GetCPUUsage(); err == nil {
		out["cpu_percent"] = fmt.Sprintf("%.2f", cpu)
	}
	if rss, err := pm.GetRSS(); err == nil {
		out["rss_mb"] = fmt.Sprintf("%.2f", rss)
	}
	return out
}
