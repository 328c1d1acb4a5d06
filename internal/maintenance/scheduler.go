package maintenance

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/staffdb/internal/config"
)

// Database is the maintenance surface of the store
type Database interface {
	Optimize() error
	Vacuum() error
}

// Config holds scheduler settings
type Config struct {
	Schedule string // cron spec, e.g. "@daily" or "0 3 * * *"
	Vacuum   bool   // also VACUUM after optimizing
}

// DefaultConfig returns the default scheduler settings
func DefaultConfig() Config {
	return Config{Schedule: "@daily"}
}

// LoadConfig reads scheduler settings from persisted settings
func LoadConfig(loader *config.Loader) Config {
	def := DefaultConfig()
	return Config{
		Schedule: loader.String("maintenance.schedule", def.Schedule),
		Vacuum:   loader.Bool("maintenance.vacuum", def.Vacuum),
	}
}

// Status is a snapshot of the scheduler state
type Status struct {
	Running   bool
	Schedule  string
	LastRun   *time.Time
	NextRun   *time.Time
	LastError string
}

// Scheduler runs database maintenance on a cron schedule
type Scheduler struct {
	db      Database
	config  Config
	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.RWMutex
	running bool
	lastRun *time.Time
	lastErr error
}

// New creates a scheduler; call Start to begin running jobs
func New(db Database, cfg Config) *Scheduler {
	return &Scheduler{
		db:     db,
		config: cfg,
		cron:   cron.New(),
	}
}

// Start registers the schedule and starts the cron runner
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.config.Schedule == "" {
		return errors.New("maintenance schedule is empty")
	}

	id, err := s.cron.AddFunc(s.config.Schedule, s.scheduledRun)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	log.Info().
		Str("schedule", s.config.Schedule).
		Bool("vacuum", s.config.Vacuum).
		Msg("Maintenance scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cron.Remove(s.entryID)
	s.entryID = 0
	s.running = false
	s.mu.Unlock()

	// Waiting outside the lock lets an in-flight job record its result.
	ctx := s.cron.Stop()
	<-ctx.Done()

	log.Info().Msg("Maintenance scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Status returns the current scheduler status
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:  s.running,
		Schedule: s.config.Schedule,
		LastRun:  s.lastRun,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	if s.entryID != 0 {
		if entry := s.cron.Entry(s.entryID); !entry.Next.IsZero() {
			next := entry.Next
			status.NextRun = &next
		}
	}
	return status
}

// RunNow performs one maintenance pass synchronously
func (s *Scheduler) RunNow() error {
	start := time.Now()

	err := s.db.Optimize()
	if err == nil && s.config.Vacuum {
		err = s.db.Vacuum()
	}

	s.mu.Lock()
	s.lastRun = &start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	log.Info().Dur("duration", time.Since(start)).Bool("vacuum", s.config.Vacuum).Msg("Database maintenance complete")
	return nil
}

func (s *Scheduler) scheduledRun() {
	if err := s.RunNow(); err != nil {
		log.Error().Err(err).Msg("Scheduled database maintenance failed")
	}
}
