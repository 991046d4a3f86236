// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrJobNotFound is returned when triggering an unregistered job.
var ErrJobNotFound = errors.New("job not found")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// RunStatus records the outcome of a job's latest run
type RunStatus struct {
	Schedule   string    `json:"schedule,omitempty"`
	LastRun    time.Time `json:"last_run"`
	DurationMs int64     `json:"duration_ms"`
	LastError  string    `json:"last_error,omitempty"`
	Runs       int       `json:"runs"`
}

type registration struct {
	job    Job
	status RunStatus
	// running serialises runs of the same job across cron and manual triggers
	running sync.Mutex
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]*registration
}

// New creates a new scheduler. Schedules use six fields (with seconds).
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:  log.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]*registration),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.Jobs())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// Register makes a job available to RunNow without scheduling it
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("job %s already registered", job.Name())
	}
	s.jobs[job.Name()] = &registration{job: job}
	return nil
}

// AddJob registers a job and schedules it.
// Schedule examples:
//   - "0 */15 * * * *"     - Every 15 minutes
//   - "0 0 3 * * *"        - 3 AM daily
//   - "@hourly"            - Every hour
//   - "@every 30s"         - Every 30 seconds
//
// An empty schedule only registers the job.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if err := s.Register(job); err != nil {
		return err
	}
	if schedule == "" {
		s.log.Info().Str("job", job.Name()).Msg("Job registered without schedule")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(job.Name()); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		}
	})
	if err != nil {
		s.mu.Lock()
		delete(s.jobs, job.Name())
		s.mu.Unlock()
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}

	s.mu.Lock()
	s.jobs[job.Name()].status.Schedule = schedule
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a registered job immediately (outside schedule)
func (s *Scheduler) RunNow(name string) error {
	s.log.Info().Str("job", name).Msg("Running job immediately")
	return s.run(name)
}

// Jobs returns the registered job names in order
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns the run status of every registered job
func (s *Scheduler) Status() map[string]RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make(map[string]RunStatus, len(s.jobs))
	for name, reg := range s.jobs {
		status[name] = reg.status
	}
	return status
}

func (s *Scheduler) run(name string) error {
	s.mu.RLock()
	reg, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	reg.running.Lock()
	defer reg.running.Unlock()

	s.log.Debug().Str("job", name).Msg("Running job")
	start := time.Now()
	err := reg.job.Run()
	duration := time.Since(start)

	s.mu.Lock()
	reg.status.LastRun = start.UTC()
	reg.status.DurationMs = duration.Milliseconds()
	reg.status.Runs++
	reg.status.LastError = ""
	if err != nil {
		reg.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.log.Debug().Str("job", name).Dur("duration", duration).Msg("Job completed")
	return nil
}
