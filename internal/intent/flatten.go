package intent

// FlatResponse is the flattened single-action view some callers consume
// instead of a full plan: the first spoken line, the first gesture clip, and
// the first UI component.
type FlatResponse struct {
	Intent     string         `json:"intent"`
	SpokenText string         `json:"spoken_text"`
	Animation  string         `json:"animation"`
	UIAction   map[string]any `json:"ui_action"`
}

// Flatten builds the plan for the intent and projects it down to the flat
// form. It is a read-side projection over BuildPlan, not a separate assembly
// path.
func (r *Resolver) Flatten(intentName string, params map[string]any) FlatResponse {
	plan := r.BuildPlan(intentName, params, 1.0)

	out := FlatResponse{Intent: intentName, UIAction: map[string]any{}}
	if len(plan.SpeechActions) > 0 {
		out.SpokenText = plan.SpeechActions[0].Text
	}
	if len(plan.GestureActions) > 0 {
		out.Animation = string(plan.GestureActions[0].Animation)
	}
	if len(plan.UIActions) > 0 {
		first := plan.UIActions[0]
		out.UIAction = map[string]any{
			"type": string(first.ComponentType),
			"data": first.Content,
		}
	}
	return out
}
