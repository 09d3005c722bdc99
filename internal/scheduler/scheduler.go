package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weatherfo/internal/radar"
	"github.com/i474232898/weatherfo/internal/store"
)

const (
	defaultRadarInterval = 10 * time.Minute
	defaultPruneInterval = 15 * time.Minute
)

// Scheduler runs the background jobs: radar index refresh and session pruning.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	radar         *radar.Catalog
	sessions      *store.MemoryStore
	radarInterval time.Duration
	pruneInterval time.Duration
}

// New creates a new Scheduler. Either job is skipped when its target is nil.
func New(catalog *radar.Catalog, sessions *store.MemoryStore, radarInterval, pruneInterval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:     s,
		radar:         catalog,
		sessions:      sessions,
		radarInterval: radarInterval,
		pruneInterval: pruneInterval,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.radar == nil && s.sessions == nil {
		log.Println("scheduler: nothing to schedule")
		return nil
	}

	if s.radar != nil {
		interval := s.radarInterval
		if interval <= 0 {
			interval = defaultRadarInterval
		}
		if _, err := s.scheduler.Every(interval).Do(s.RefreshRadar); err != nil {
			return err
		}
	}

	if s.sessions != nil {
		interval := s.pruneInterval
		if interval <= 0 {
			interval = defaultPruneInterval
		}
		if _, err := s.scheduler.Every(interval).Do(s.PruneSessions); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// RefreshRadar reloads the radar frame index.
func (s *Scheduler) RefreshRadar() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.radar.Refresh(ctx); err != nil {
		log.Printf("scheduler: radar refresh failed: %v", err)
		return
	}
	log.Println("scheduler: radar index refreshed")
}

// PruneSessions drops idle sessions.
func (s *Scheduler) PruneSessions() {
	if n := s.sessions.Prune(); n > 0 {
		log.Printf("scheduler: pruned %d idle sessions", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
