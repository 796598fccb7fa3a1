// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 10 * time.Minute

// Job represents a scheduled job
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	mu        sync.Mutex
	cron      *cron.Cron
	jobs      map[string]Job
	isRunning bool
}

// New creates a scheduler. Specs use the standard five fields or
// descriptors such as "@every 1h".
func New() *Scheduler {
	log := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(log),
			cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
		),
		jobs: make(map[string]Job),
	}
}

// AddJob registers a job with a cron specification
func (s *Scheduler) AddJob(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.run(job)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = job
	return nil
}

func (s *Scheduler) run(job Job) error {
	log := logger.AppLogger()
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		log.WithFields(map[string]interface{}{"job": job.Name()}).Error("scheduled job failed", err)
		return err
	}

	log.WithFields(map[string]interface{}{
		"job":         job.Name(),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Debug("scheduled job completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.cron.Start()
	s.isRunning = true
	logger.AppLogger().Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs or ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		logger.AppLogger().Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunJobNow runs a job immediately outside of its schedule
func (s *Scheduler) RunJobNow(name string) error {
	s.mu.Lock()
	job, exists := s.jobs[name]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not registered", name)
	}
	return s.run(job)
}

// cronLogger routes cron's own logging to the application logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.AppLogger().WithFields(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.AppLogger().WithFields(pairs(keysAndValues)).Error("cron: "+msg, err)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
