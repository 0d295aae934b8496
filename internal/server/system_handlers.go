package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"fundscope/internal/database"
	"fundscope/internal/modules/funds"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves monitoring and operations endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	databases   []*database.DB
	syncService *funds.SyncService
}

// NewSystemHandlers creates the system handlers.
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB, syncService *funds.SyncService) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		databases:   databases,
		syncService: syncService,
	}
}

type databaseStatus struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	SizeBytes int64  `json:"sizeBytes"`
	WALBytes  int64  `json:"walBytes"`
}

type systemStatus struct {
	Status        string           `json:"status"`
	UptimeSeconds int64            `json:"uptimeSeconds"`
	CPUPercent    float64          `json:"cpuPercent"`
	MemoryPercent float64          `json:"memoryPercent"`
	DiskPercent   float64          `json:"diskPercent"`
	Databases     []databaseStatus `json:"databases"`
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	status := systemStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		DiskPercent:   h.diskUsage(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, db := range h.databases {
		ds := databaseStatus{Name: db.Name(), Healthy: true}
		if err := db.HealthCheck(ctx); err != nil {
			ds.Healthy = false
			status.Status = "degraded"
		}
		if stats, err := db.GetStats(); err == nil {
			ds.SizeBytes = stats.SizeBytes
			ds.WALBytes = stats.WALSizeBytes
		}
		status.Databases = append(status.Databases, ds)
	}

	h.writeJSON(w, status)
}

// HandleTriggerRefresh handles POST /api/system/jobs/refresh-funds
// The refresh pass runs synchronously and its summary is returned.
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual fund refresh triggered")

	result, err := h.syncService.RefreshAll()
	if err != nil {
		h.log.Error().Err(err).Msg("Manual refresh failed")
		http.Error(w, "Refresh failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, result)
}

// systemStats samples CPU and memory usage. A short CPU interval keeps
// the status endpoint responsive.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuAvg := 0.0
	if pct, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(pct) > 0 {
		cpuAvg = pct[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}
	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) diskUsage() float64 {
	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to get disk usage")
		return 0
	}
	return usage.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
