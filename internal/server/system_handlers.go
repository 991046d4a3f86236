package server

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/labourdash/internal/cache"
	"github.com/aristath/labourdash/internal/database"
	"github.com/aristath/labourdash/internal/reliability"
	"github.com/aristath/labourdash/internal/scheduler"
)

// JobRunner triggers and reports on background jobs
type JobRunner interface {
	RunNow(name string) error
	Status() map[string]scheduler.RunStatus
}

// CacheReporter reports trend cache effectiveness
type CacheReporter interface {
	CacheStats() cache.Stats
}

// BackupLister lists local backup archives
type BackupLister interface {
	LastBackup() *reliability.BackupInfo
	ListBackups() ([]reliability.BackupInfo, error)
}

// SystemHandlers handles system monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	databases   map[string]*database.DB
	jobs        JobRunner
	trendsCache CacheReporter
	backups     BackupLister
	// systemStats returns CPU and RAM usage percentages
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates system handlers. jobs, trendsCache and backups may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	databases map[string]*database.DB,
	jobs JobRunner,
	trendsCache CacheReporter,
	backups BackupLister,
) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		databases:   databases,
		jobs:        jobs,
		trendsCache: trendsCache,
		backups:     backups,
	}
	h.systemStats = h.getSystemStats
	return h
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleSystemStatus)
		r.Get("/databases", h.HandleDatabaseStats)
		r.Get("/backups", h.HandleListBackups)
		r.Get("/jobs", h.HandleJobsStatus)
		r.Post("/jobs/{name}", h.HandleTriggerJob)
	})
}

// SystemStatusResponse represents the overall system status
type SystemStatusResponse struct {
	Status        string                  `json:"status"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	CPUPercent    float64                 `json:"cpu_percent"`
	RAMPercent    float64                 `json:"ram_percent"`
	TrendsCache   *cache.Stats            `json:"trends_cache,omitempty"`
	LastBackup    *reliability.BackupInfo `json:"last_backup,omitempty"`
	Databases     map[string]string       `json:"databases"`
}

// HandleSystemStatus returns host and service health
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		RAMPercent:    ramPercent,
		Databases:     make(map[string]string, len(h.databases)),
	}

	for name, db := range h.databases {
		if err := db.HealthCheck(r.Context()); err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Database health check failed")
			response.Databases[name] = "unhealthy"
			response.Status = "degraded"
			continue
		}
		response.Databases[name] = "healthy"
	}

	if h.trendsCache != nil {
		stats := h.trendsCache.CacheStats()
		response.TrendsCache = &stats
	}
	if h.backups != nil {
		response.LastBackup = h.backups.LastBackup()
	}

	writeJSON(w, http.StatusOK, response, h.log)
}

// DatabaseStatsResponse holds per-database statistics
type DatabaseStatsResponse struct {
	Name  string          `json:"name"`
	Stats *database.Stats `json:"stats,omitempty"`
	Error string          `json:"error,omitempty"`
}

// HandleDatabaseStats returns size and page statistics for each database
// GET /api/system/databases
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.databases))
	for name := range h.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	response := make([]DatabaseStatsResponse, 0, len(names))
	for _, name := range names {
		entry := DatabaseStatsResponse{Name: name}
		stats, err := h.databases[name].GetStats()
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Stats = stats
		}
		response = append(response, entry)
	}

	writeJSON(w, http.StatusOK, response, h.log)
}

// HandleListBackups returns the local backup archives, newest first
// GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		writeJSON(w, http.StatusOK, []reliability.BackupInfo{}, h.log)
		return
	}

	backups, err := h.backups.ListBackups()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, http.StatusInternalServerError, "Failed to list backups", h.log)
		return
	}
	if backups == nil {
		backups = []reliability.BackupInfo{}
	}

	writeJSON(w, http.StatusOK, backups, h.log)
}

// HandleJobsStatus returns the run status of all registered jobs
// GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeJSON(w, http.StatusOK, map[string]scheduler.RunStatus{}, h.log)
		return
	}
	writeJSON(w, http.StatusOK, h.jobs.Status(), h.log)
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.jobs == nil {
		writeError(w, http.StatusNotFound, "Job not found", h.log)
		return
	}

	if err := h.jobs.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Job not found", h.log)
			return
		}
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		writeError(w, http.StatusInternalServerError, "Job failed: "+err.Error(), h.log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "completed",
		"job":     name,
		"message": "Job executed successfully",
	}, h.log)
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
