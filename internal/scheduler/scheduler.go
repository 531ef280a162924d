package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"real-estate-matching/internal/cleanup"
	"real-estate-matching/internal/config"
	"real-estate-matching/internal/matching"

	"github.com/robfig/cron/v3"
)

// Job names
const (
	JobFreshnessSweep = "freshness_sweep"
	JobOrphanRepair   = "orphan_repair"
	JobSwipeCleanup   = "swipe_cleanup"
)

// StaleMarker moves listings past their freshness window to stale
type StaleMarker interface {
	MarkStaleListings(ctx context.Context, cutoff time.Time) (int64, error)
}

// OrphanRepairer provisions deal rooms for matches stored without one
type OrphanRepairer interface {
	RepairOrphanedMatches(ctx context.Context) (*matching.RepairResult, error)
}

// SwipeCleaner removes archived swipes
type SwipeCleaner interface {
	PhysicallyDelete(ctx context.Context, opts cleanup.Options) (*cleanup.Result, error)
}

// JobStatus describes the last run of one job
type JobStatus struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Enabled   bool      `json:"enabled"`
	LastRunAt time.Time `json:"last_run_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
}

// Scheduler runs the periodic maintenance jobs
type Scheduler struct {
	cron     *cron.Cron
	config   *config.Config
	listings StaleMarker
	repairer OrphanRepairer
	cleaner  SwipeCleaner
	now      func() time.Time

	mu        sync.Mutex
	status    map[string]*JobStatus
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, listings StaleMarker, repairer OrphanRepairer, cleaner SwipeCleaner) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		config:   cfg,
		listings: listings,
		repairer: repairer,
		cleaner:  cleaner,
		now:      func() time.Time { return time.Now().UTC() },
		status:   make(map[string]*JobStatus),
	}

	sc := cfg.Scheduler
	s.status[JobFreshnessSweep] = &JobStatus{Name: JobFreshnessSweep, Spec: sc.FreshnessSweepSpec, Enabled: sc.FreshnessSweepEnabled}
	s.status[JobOrphanRepair] = &JobStatus{Name: JobOrphanRepair, Spec: sc.OrphanRepairSpec, Enabled: sc.OrphanRepairEnabled}
	s.status[JobSwipeCleanup] = &JobStatus{Name: JobSwipeCleanup, Spec: sc.SwipeCleanupSpec, Enabled: sc.SwipeCleanupEnabled}
	return s
}

// Start registers the enabled jobs and starts the cron loop
func (s *Scheduler) Start() error {
	sc := s.config.Scheduler

	jobs := []struct {
		name    string
		spec    string
		enabled bool
		run     func(context.Context) error
	}{
		{JobFreshnessSweep, sc.FreshnessSweepSpec, sc.FreshnessSweepEnabled, func(ctx context.Context) error {
			_, err := s.RunFreshnessSweep(ctx)
			return err
		}},
		{JobOrphanRepair, sc.OrphanRepairSpec, sc.OrphanRepairEnabled, func(ctx context.Context) error {
			_, err := s.RunOrphanRepair(ctx)
			return err
		}},
		{JobSwipeCleanup, sc.SwipeCleanupSpec, sc.SwipeCleanupEnabled, func(ctx context.Context) error {
			_, err := s.RunSwipeCleanup(ctx)
			return err
		}},
	}

	registered := 0
	for _, job := range jobs {
		if !job.enabled {
			log.Printf("[scheduler] %s is disabled in configuration", job.name)
			continue
		}
		run := job.run
		name := job.name
		if _, err := s.cron.AddFunc(job.spec, func() {
			if err := run(context.Background()); err != nil {
				log.Printf("[scheduler] %s failed: %v", name, err)
			}
		}); err != nil {
			return fmt.Errorf("scheduler: invalid spec %q for %s: %w", job.spec, job.name, err)
		}
		log.Printf("[scheduler] %s scheduled (cron: %s)", job.name, job.spec)
		registered++
	}

	if registered == 0 {
		return nil
	}

	s.mu.Lock()
	s.cron.Start()
	s.isRunning = true
	s.mu.Unlock()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	running := s.isRunning
	s.isRunning = false
	s.mu.Unlock()

	if running {
		<-s.cron.Stop().Done()
		log.Println("[scheduler] Stopped")
	}
}

// RunFreshnessSweep marks listings whose freshness verification is older than the window as stale
func (s *Scheduler) RunFreshnessSweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.config.Matching.GetFreshnessWindow())

	marked, err := s.listings.MarkStaleListings(ctx, cutoff)
	s.record(JobFreshnessSweep, err)
	if err != nil {
		return 0, err
	}

	log.Printf("[scheduler] freshness sweep marked %d listings stale (cutoff %s)", marked, cutoff.Format(time.RFC3339))
	return marked, nil
}

// RunOrphanRepair provisions deal rooms for orphaned matches
func (s *Scheduler) RunOrphanRepair(ctx context.Context) (*matching.RepairResult, error) {
	result, err := s.repairer.RepairOrphanedMatches(ctx)
	s.record(JobOrphanRepair, err)
	if err != nil {
		return nil, err
	}

	if result.Scanned > 0 {
		log.Printf("[scheduler] orphan repair: scanned %d, repaired %d, failed %d",
			result.Scanned, result.Repaired, result.Failed)
	}
	return result, nil
}

// RunSwipeCleanup removes archived "no" swipes using the cleanup config
func (s *Scheduler) RunSwipeCleanup(ctx context.Context) (*cleanup.Result, error) {
	result, err := s.cleaner.PhysicallyDelete(ctx, cleanup.OptionsFromConfig(s.config.Cleanup))
	s.record(JobSwipeCleanup, err)
	return result, err
}

// Status returns the state of every job, ordered by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.status))
	for _, name := range []string{JobFreshnessSweep, JobOrphanRepair, JobSwipeCleanup} {
		out = append(out, *s.status[name])
	}
	return out
}

func (s *Scheduler) record(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.status[name]
	st.LastRunAt = s.now()
	st.Runs++
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
}
