// Package schedule runs recurring announcements: intents executed on a cron
// cadence without a user request, such as hourly promotions in the lobby
// scene.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/nongnai/nongnai/internal/action"
	"github.com/nongnai/nongnai/internal/executor"
	"github.com/nongnai/nongnai/pkg/logx"
	"github.com/robfig/cron/v3"
)

// PlanBuilder assembles the plan for an announcement's intent.
type PlanBuilder interface {
	BuildPlan(intent string, params map[string]any, confidence float64) *action.Plan
}

// PlanExecutor runs an assembled plan.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *action.Plan, executionID string) *executor.Result
}

// Announcement is one scheduled intent execution.
type Announcement struct {
	Name       string         `yaml:"name" json:"name"`
	Cron       string         `yaml:"cron" json:"cron"`
	Intent     string         `yaml:"intent" json:"intent"`
	Parameters map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// Scheduler owns the cron runner and the registered announcements.
type Scheduler struct {
	builder PlanBuilder
	exec    PlanExecutor
	cron    *cron.Cron

	mu   sync.RWMutex
	jobs map[string]Announcement

	ctx    context.Context
	cancel context.CancelFunc
}

func New(builder PlanBuilder, exec PlanExecutor) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		builder: builder,
		exec:    exec,
		cron:    cron.New(),
		jobs:    make(map[string]Announcement),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start registers the announcements and starts the cron runner. Invalid
// entries are skipped with a log, not fatal.
func (s *Scheduler) Start(announcements []Announcement) {
	for _, a := range announcements {
		if err := s.add(a); err != nil {
			logx.Warn().Str("announcement", a.Name).Err(err).Msg("schedule: skipping announcement")
		}
	}
	s.cron.Start()
}

// Stop cancels in-flight executions and waits for the cron runner to drain.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

func (s *Scheduler) add(a Announcement) error {
	if a.Name == "" {
		return fmt.Errorf("announcement name is required")
	}
	if a.Intent == "" {
		return fmt.Errorf("announcement %q: intent is required", a.Name)
	}
	name := a.Name
	if _, err := s.cron.AddFunc(a.Cron, func() { s.run(name) }); err != nil {
		return fmt.Errorf("announcement %q: invalid cron spec %q: %w", a.Name, a.Cron, err)
	}
	s.mu.Lock()
	s.jobs[a.Name] = a
	s.mu.Unlock()
	return nil
}

// RunNow triggers one announcement immediately, outside its cadence.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	_, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("announcement %q not found", name)
	}
	s.run(name)
	return nil
}

// List returns all registered announcements.
func (s *Scheduler) List() []Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Announcement, 0, len(s.jobs))
	for _, a := range s.jobs {
		out = append(out, a)
	}
	return out
}

func (s *Scheduler) run(name string) {
	s.mu.RLock()
	a, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return
	}

	plan := s.builder.BuildPlan(a.Intent, a.Parameters, 1.0)
	res := s.exec.Execute(s.ctx, plan, "")
	if res.Status != executor.StatusCompleted || len(res.Errors) > 0 {
		logx.Warn().Str("announcement", name).Str("status", string(res.Status)).
			Strs("errors", res.Errors).Msg("schedule: announcement finished with errors")
		return
	}
	logx.Info().Str("announcement", name).Str("intent", a.Intent).Msg("schedule: announcement executed")
}
