package services

import (
	"context"
	"sync"
	"time"

	"github.com/restwell-app/restwell-cli/internal/core/domain"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driven"
	"github.com/restwell-app/restwell-cli/internal/core/ports/driving"
	"github.com/restwell-app/restwell-cli/internal/logger"
)

// Scheduler manages background task execution: proactive token refresh and
// wellness reminders. It is a pure core service with no external control API.
type Scheduler struct {
	config      domain.SchedulerConfig
	store       driven.SchedulerStore
	auth        driving.AuthService
	suggestions driving.SuggestionService

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	auth driving.AuthService,
	suggestions driving.SuggestionService,
) *Scheduler {
	return &Scheduler{
		config:      config,
		store:       store,
		auth:        auth,
		suggestions: suggestions,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDTokenRefresh); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDTokenRefresh, "Token Refresh", taskCfg); err != nil {
			return err
		}
	}
	if taskCfg := s.config.GetTaskConfig(domain.TaskIDWellnessReminder); taskCfg.Enabled {
		if err := s.ensureTask(ctx, domain.TaskIDWellnessReminder, "Wellness Reminder", taskCfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task and records its outcome.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	defer s.wg.Done()

	logger.Debug("scheduler: running task %s", task.ID)
	started := time.Now()

	var err error
	switch task.ID {
	case domain.TaskIDTokenRefresh:
		err = s.refreshToken(ctx)
	case domain.TaskIDWellnessReminder:
		err = s.remind(ctx)
	default:
		logger.Warn("scheduler: unknown task %s", task.ID)
	}

	task.LastRun = started
	task.NextRun = started.Add(task.Interval)
	if err != nil {
		task.LastError = err.Error()
	} else {
		task.LastError = ""
		task.LastSuccess = time.Now()
	}

	if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
	}
}

// refreshToken keeps the access token fresh so interactive commands rarely
// hit the reactive refresh path.
func (s *Scheduler) refreshToken(ctx context.Context) error {
	if s.auth == nil || !s.auth.IsAuthenticated() {
		return nil // Nothing to refresh; not an error
	}
	return s.auth.RefreshAccessToken(ctx)
}

// remind surfaces the next suggested self-care slot.
func (s *Scheduler) remind(ctx context.Context) error {
	if s.suggestions == nil || s.auth == nil || !s.auth.IsAuthenticated() {
		return nil
	}
	slots, err := s.suggestions.Suggest(ctx, time.Now(), 1)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		logger.Info("reminder: %s at %s (%s)", slot.Title, slot.Start.Format("15:04"), slot.Category)
	}
	return nil
}
