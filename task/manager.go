package task

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ffclip/config"
	"ffclip/media"
)

const canceledMessage = "task canceled"

// Executor runs one operation to completion. Cancelling ctx asks it to abort.
type Executor interface {
	Execute(ctx context.Context, op media.Operation) media.Result
}

// Manager owns the task registry and the FIFO admission queue. At most limit
// tasks are Processing at any time; a freed slot admits the next Pending task.
type Manager struct {
	cfg         *config.Config
	log         zerolog.Logger
	executor    Executor
	abortGrace  time.Duration
	eventBuffer int

	mu         sync.Mutex
	tasks      map[string]*Task
	order      []string // submission order, for List
	queue      []string
	limit      int
	processing int
	subs       map[int]chan Event
	nextSub    int

	baseCtx context.Context
	stop    context.CancelFunc
	cron    *cron.Cron
}

func NewManager(cfg *config.Config, executor Executor, logger zerolog.Logger) (*Manager, error) {
	ctx, stop := context.WithCancel(context.Background())
	m := &Manager{
		cfg:         cfg,
		log:         logger.With().Str("component", "scheduler").Logger(),
		executor:    executor,
		abortGrace:  cfg.AbortGrace,
		eventBuffer: cfg.EventBuffer,
		tasks:       make(map[string]*Task),
		limit:       max(cfg.MaxConcurrency, 1),
		subs:        make(map[int]chan Event),
		baseCtx:     ctx,
		stop:        stop,
	}
	if m.abortGrace <= 0 {
		m.abortGrace = 5 * time.Second
	}
	if m.eventBuffer <= 0 {
		m.eventBuffer = 64
	}

	if cfg.CleanupSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.CleanupSchedule, func() {
			if n := m.Cleanup(); n > 0 {
				m.log.Info().Int("removed", n).Msg("scheduled cleanup removed finished tasks")
			}
		})
		if err != nil {
			stop()
			return nil, fmt.Errorf("invalid cleanup schedule %q: %w", cfg.CleanupSchedule, err)
		}
		m.cron = c
	}
	return m, nil
}

// Start runs the background services until ctx is done. Tasks still running
// at that point are aborted.
func (m *Manager) Start(ctx context.Context) {
	m.log.Info().Int("concurrency", m.ConcurrencyLimit()).Msg("task manager started")
	if m.cron != nil {
		m.cron.Start()
	}
	go func() {
		<-ctx.Done()
		m.log.Info().Msg("task manager shutting down")
		if m.cron != nil {
			<-m.cron.Stop().Done()
		}
		m.stop()
	}()
}

// Submit registers one Pending task per operation and returns their IDs in
// order. Execution happens in the background.
func (m *Manager) Submit(ops ...media.Operation) []string {
	now := time.Now()
	ids := make([]string, 0, len(ops))

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		t := &Task{
			ID:        fmt.Sprintf("%s_%d", shortuuid.New(), now.Unix()),
			Options:   op,
			Status:    StatusPending,
			CreatedAt: now,
		}
		if op != nil {
			t.Kind = op.Kind()
		}
		m.tasks[t.ID] = t
		m.order = append(m.order, t.ID)
		m.queue = append(m.queue, t.ID)
		ids = append(ids, t.ID)
		m.log.Debug().Str("task", t.ID).Str("kind", string(t.Kind)).Msg("task queued")
	}
	m.dispatchLocked()
	return ids
}

// dispatchLocked admits queued tasks while slots are free. It is the only
// place where tasks become Processing.
func (m *Manager) dispatchLocked() {
	for m.processing < m.limit && len(m.queue) > 0 {
		id := m.queue[0]
		m.queue = m.queue[1:]

		t, ok := m.tasks[id]
		if !ok || t.Status != StatusPending {
			continue
		}

		m.processing++
		ctx, cancel := context.WithCancel(m.baseCtx)
		t.Status = StatusProcessing
		t.StartedAt = time.Now()
		t.cancel = cancel
		t.done = make(chan struct{})

		m.log.Info().Str("task", t.ID).Str("kind", string(t.Kind)).Int("processing", m.processing).Msg("task started")
		m.publishLocked(EventStarted, t)
		go m.execute(ctx, t, t.Options, t.StartedAt)
	}
}

func (m *Manager) execute(ctx context.Context, t *Task, op media.Operation, started time.Time) {
	var res media.Result
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("task", t.ID).Interface("panic", r).Msg("task execution panicked")
			res = media.Result{
				ElapsedMs: time.Since(started).Milliseconds(),
				Error:     fmt.Sprintf("internal error: %v", r),
			}
		}
		m.finish(t, res)
	}()
	res = m.executor.Execute(ctx, op)
}

// finish records the outcome, frees the slot and admits the next task.
func (m *Manager) finish(t *Task, res media.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if t.canceled {
		res = media.Result{
			ElapsedMs: now.Sub(t.StartedAt).Milliseconds(),
			Error:     canceledMessage,
		}
	}
	if res.OutputPaths == nil {
		res.OutputPaths = []string{}
	}

	// Anything produced counts as completed, even when the operation also
	// reported an error; the error stays on the result.
	event := EventFailed
	t.Status = StatusFailed
	if len(res.OutputPaths) > 0 {
		t.Status = StatusCompleted
		event = EventCompleted
	}
	t.Result = &res
	t.CompletedAt = now
	t.cancel()
	t.cancel = nil
	close(t.done)
	m.processing--

	log := m.log.With().Str("task", t.ID).Int64("elapsed_ms", res.ElapsedMs).Logger()
	switch {
	case t.Status == StatusCompleted && res.Error != "":
		log.Warn().Str("error", res.Error).Int("outputs", len(res.OutputPaths)).Msg("task partially succeeded")
	case t.Status == StatusCompleted:
		log.Info().Int("outputs", len(res.OutputPaths)).Msg("task completed")
	default:
		log.Warn().Str("error", res.Error).Msg("task failed")
	}

	m.publishLocked(event, t)
	m.dispatchLocked()
}

// Get returns a snapshot of the task.
func (m *Manager) Get(taskID string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[taskID]
	if !ok {
		return Task{}, false
	}
	return t.snapshot(), true
}

// List returns snapshots of every registered task in submission order.
func (m *Manager) List() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	taskList := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		taskList = append(taskList, m.tasks[id].snapshot())
	}
	return taskList
}

// Cancel stops a task. Pending tasks are always cancelled. Processing tasks
// are asked to abort and Cancel waits up to the abort grace period for the
// operation to stop; if it does not, Cancel reports false and the task stays
// Processing (it is still recorded as cancelled once it does stop).
func (m *Manager) Cancel(taskID string) bool {
	m.mu.Lock()
	t, ok := m.tasks[taskID]
	if !ok {
		m.mu.Unlock()
		return false
	}

	switch t.Status {
	case StatusPending:
		m.queue = slices.DeleteFunc(m.queue, func(id string) bool { return id == taskID })
		t.Status = StatusFailed
		t.Result = &media.Result{OutputPaths: []string{}, Error: canceledMessage}
		t.CompletedAt = time.Now()
		m.publishLocked(EventFailed, t)
		m.mu.Unlock()
		m.log.Info().Str("task", taskID).Msg("task canceled while pending")
		return true

	case StatusProcessing:
		t.canceled = true
		cancel, done := t.cancel, t.done
		m.mu.Unlock()

		cancel()
		m.log.Info().Str("task", taskID).Msg("cancellation signal sent to running task")
		select {
		case <-done:
			return true
		case <-time.After(m.abortGrace):
			m.log.Warn().Str("task", taskID).Dur("grace", m.abortGrace).Msg("running task did not confirm cancellation")
			return false
		}

	default:
		m.mu.Unlock()
		return false
	}
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{Total: len(m.tasks)}
	for _, t := range m.tasks {
		switch t.Status {
		case StatusPending:
			s.Pending++
		case StatusProcessing:
			s.Processing++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Cleanup removes every Completed or Failed task and reports how many went.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	kept := m.order[:0]
	for _, id := range m.order {
		if m.tasks[id].Status.Terminal() {
			delete(m.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return removed
}

// SetConcurrencyLimit changes how many tasks may run at once (minimum 1).
// Running tasks are never preempted; a lower limit only delays admission.
func (m *Manager) SetConcurrencyLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = max(n, 1)
	m.log.Info().Int("concurrency", m.limit).Msg("concurrency limit changed")
	m.dispatchLocked()
}

func (m *Manager) ConcurrencyLimit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.limit
}
