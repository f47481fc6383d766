package executor

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of one plan execution. Executing transitions
// to exactly one of completed or failed; both are terminal.
type Status string

const (
	StatusExecuting Status = "executing"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Results holds the per-channel output descriptors of one execution, in the
// same order the actions were dispatched.
type Results struct {
	Speech  []SpeechOutput  `json:"speech"`
	Gesture []GestureOutput `json:"gesture"`
	Scene   []SceneOutput   `json:"scene"`
	UI      []UIOutput      `json:"ui"`
}

// Result tracks one call to Execute from start to terminal status.
// Per-action failures land in Errors without failing the execution; only a
// top-level failure flips Status to failed.
type Result struct {
	ID          string     `json:"execution_id"`
	Intent      string     `json:"intent"`
	Status      Status     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Results     Results    `json:"results"`
	Errors      []string   `json:"errors"`
}

// ExecutionTimeMS returns the wall-clock duration in milliseconds, or nil
// while the execution is still in flight.
func (r *Result) ExecutionTimeMS() *int64 {
	if r.CompletedAt == nil {
		return nil
	}
	ms := r.CompletedAt.Sub(r.StartedAt).Milliseconds()
	return &ms
}

func (r *Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		*alias
		ExecutionTimeMS *int64 `json:"execution_time_ms"`
	}{
		alias:           (*alias)(r),
		ExecutionTimeMS: r.ExecutionTimeMS(),
	})
}

func copyResult(r *Result) Result {
	out := *r
	out.Errors = append([]string{}, r.Errors...)
	out.Results = Results{
		Speech:  append([]SpeechOutput{}, r.Results.Speech...),
		Gesture: append([]GestureOutput{}, r.Results.Gesture...),
		Scene:   append([]SceneOutput{}, r.Results.Scene...),
		UI:      append([]UIOutput{}, r.Results.UI...),
	}
	return out
}
