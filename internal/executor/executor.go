// Package executor walks an action plan's channel groups in order, fans each
// group out concurrently, and aggregates descriptors and isolated failures
// into one execution result.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nongnai/nongnai/internal/action"
	"github.com/nongnai/nongnai/internal/metrics"
	"github.com/nongnai/nongnai/pkg/logx"
)

// ResultStore persists terminal execution results. Persistence is
// best-effort; a store failure never fails the execution.
type ResultStore interface {
	SaveExecution(ctx context.Context, r *Result) error
}

// Config wires an Executor. Every field is optional: nil handlers get the
// built-in descriptor handlers bound to Outputs, a nil Outputs gets a fresh
// log.
type Config struct {
	Speech   SpeechExecutor
	Gesture  GestureExecutor
	Scene    SceneExecutor
	UI       UIExecutor
	Outputs  *Outputs
	Metrics  *metrics.Metrics
	Store    ResultStore
	Notifier func(Result)
}

// Executor runs plans. Each Execute call is independent: no cross-plan
// locking, any number of plans may run concurrently.
type Executor struct {
	speech   SpeechExecutor
	gesture  GestureExecutor
	scene    SceneExecutor
	ui       UIExecutor
	outputs  *Outputs
	metrics  *metrics.Metrics
	store    ResultStore
	notifier func(Result)

	mu      sync.Mutex
	active  map[string]*Result
	history []*Result
}

func New(cfg Config) *Executor {
	if cfg.Outputs == nil {
		cfg.Outputs = NewOutputs()
	}
	if cfg.Speech == nil {
		cfg.Speech = &speechHandler{outputs: cfg.Outputs}
	}
	if cfg.Gesture == nil {
		cfg.Gesture = &gestureHandler{outputs: cfg.Outputs}
	}
	if cfg.Scene == nil {
		cfg.Scene = &sceneHandler{outputs: cfg.Outputs}
	}
	if cfg.UI == nil {
		cfg.UI = &uiHandler{outputs: cfg.Outputs}
	}
	return &Executor{
		speech:   cfg.Speech,
		gesture:  cfg.Gesture,
		scene:    cfg.Scene,
		ui:       cfg.UI,
		outputs:  cfg.Outputs,
		metrics:  cfg.Metrics,
		store:    cfg.Store,
		notifier: cfg.Notifier,
		active:   make(map[string]*Result),
	}
}

// Outputs returns the shared per-channel output log.
func (e *Executor) Outputs() *Outputs {
	return e.outputs
}

// SetNotifier installs the completion callback after construction, for
// collaborators that need the executor to exist first. Synchronized with
// running executions.
func (e *Executor) SetNotifier(fn func(Result)) {
	e.mu.Lock()
	e.notifier = fn
	e.mu.Unlock()
}

// Execute walks the plan's execution order. Channel groups run sequentially;
// actions within a group run concurrently with per-action failure isolation.
// Individual action errors are recorded and do not fail the execution; only a
// failure of the group loop itself (context cancellation or a panic escaping
// a handler dispatch) flips the status to failed and stops further groups.
func (e *Executor) Execute(ctx context.Context, plan *action.Plan, executionID string) *Result {
	if executionID == "" {
		executionID = uuid.New().String()
	}

	res := &Result{
		ID:        executionID,
		Intent:    plan.Intent,
		Status:    StatusExecuting,
		StartedAt: time.Now().UTC(),
		Errors:    []string{},
	}
	e.mu.Lock()
	e.active[executionID] = res
	e.mu.Unlock()

	topErr := e.runGroups(ctx, plan, res)

	now := time.Now().UTC()
	e.mu.Lock()
	res.CompletedAt = &now
	if topErr != nil {
		res.Status = StatusFailed
		res.Errors = []string{topErr.Error()}
	} else {
		res.Status = StatusCompleted
	}
	e.history = append(e.history, res)
	delete(e.active, executionID)
	snapshot := copyResult(res)
	notify := e.notifier
	e.mu.Unlock()

	e.observe(snapshot)

	if e.store != nil {
		// Not the request context: the result is persisted even when the
		// caller gave up.
		if err := e.store.SaveExecution(context.Background(), res); err != nil {
			logx.Error().Err(err).Str("execution_id", executionID).Msg("executor: persisting result")
		}
	}
	if notify != nil {
		notify(snapshot)
	}
	return res
}

// runGroups processes the channel groups. The returned error, if any, is the
// top-level failure that aborted the loop.
func (e *Executor) runGroups(ctx context.Context, plan *action.Plan, res *Result) (topErr error) {
	defer func() {
		if r := recover(); r != nil {
			topErr = fmt.Errorf("plan execution panicked: %v", r)
		}
	}()

	for _, ch := range plan.ExecutionOrder {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch ch {
		case action.ChannelSpeech:
			outs, errs := runGroup(ctx, plan.SpeechActions, e.speech.Execute)
			e.record(res, ch, errs, func() { res.Results.Speech = outs })
		case action.ChannelGesture:
			outs, errs := runGroup(ctx, plan.GestureActions, e.gesture.Execute)
			e.record(res, ch, errs, func() { res.Results.Gesture = outs })
		case action.ChannelScene:
			outs, errs := runGroup(ctx, plan.SceneActions, e.scene.Execute)
			e.record(res, ch, errs, func() { res.Results.Scene = outs })
		case action.ChannelUI:
			outs, errs := runGroup(ctx, plan.UIActions, e.ui.Execute)
			e.record(res, ch, errs, func() { res.Results.UI = outs })
		default:
			logx.Warn().Str("channel", string(ch)).Str("intent", plan.Intent).
				Msg("executor: unknown channel in execution order, skipping")
		}
	}
	return nil
}

func (e *Executor) record(res *Result, ch action.Channel, errs []string, assign func()) {
	e.mu.Lock()
	assign()
	res.Errors = append(res.Errors, errs...)
	e.mu.Unlock()

	if e.metrics != nil {
		for range errs {
			e.metrics.ActionFailures.WithLabelValues(string(ch)).Inc()
		}
	}
	for _, msg := range errs {
		logx.Error().Str("channel", string(ch)).Str("intent", res.Intent).Msg("executor: action failed: " + msg)
	}
}

func (e *Executor) observe(r Result) {
	if e.metrics == nil {
		return
	}
	e.metrics.ExecutionsTotal.WithLabelValues(string(r.Status)).Inc()
	if ms := r.ExecutionTimeMS(); ms != nil {
		e.metrics.ExecutionDuration.Observe(float64(*ms) / 1000)
	}
}

// Active returns a snapshot of an in-flight execution.
func (e *Executor) Active(id string) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.active[id]
	if !ok {
		return Result{}, false
	}
	return copyResult(r), true
}

// History returns up to limit terminal results, most recent last. A
// non-positive limit returns everything.
func (e *Executor) History(limit int) []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	start := 0
	if limit > 0 && len(e.history) > limit {
		start = len(e.history) - limit
	}
	out := make([]Result, 0, len(e.history)-start)
	for _, r := range e.history[start:] {
		out = append(out, copyResult(r))
	}
	return out
}

// runGroup dispatches every action concurrently and reassembles successful
// outputs by dispatch index, so result order matches input order regardless
// of completion order. One action's failure never cancels its siblings.
func runGroup[A any, O any](ctx context.Context, actions []A, exec func(context.Context, A) (O, error)) ([]O, []string) {
	type outcome struct {
		out O
		err error
		ok  bool
	}
	outcomes := make([]outcome, len(actions))

	var wg sync.WaitGroup
	for i, a := range actions {
		wg.Add(1)
		go func(i int, a A) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = outcome{err: fmt.Errorf("action panicked: %v", r)}
				}
			}()
			out, err := exec(ctx, a)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return
			}
			outcomes[i] = outcome{out: out, ok: true}
		}(i, a)
	}
	wg.Wait()

	outs := make([]O, 0, len(actions))
	var errs []string
	for _, oc := range outcomes {
		if oc.err != nil {
			errs = append(errs, oc.err.Error())
			continue
		}
		if oc.ok {
			outs = append(outs, oc.out)
		}
	}
	return outs, errs
}
