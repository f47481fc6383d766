package action

// Plan is the full multi-channel response assembled for one intent. Within a
// channel, slice order is render order. ExecutionOrder sequences the channel
// groups during execution; it does not serialize actions within a group.
// A Plan is built once and never mutated afterwards.
type Plan struct {
	Intent         string         `json:"intent"`
	Confidence     float64        `json:"confidence"`
	SpeechActions  []Speech       `json:"speech_actions"`
	GestureActions []Gesture      `json:"gesture_actions"`
	SceneActions   []Scene        `json:"scene_actions"`
	UIActions      []UI           `json:"ui_actions"`
	ExecutionOrder []Channel      `json:"execution_order"`
	Metadata       map[string]any `json:"metadata"`
}

func NewPlan(intent string, confidence float64, order []Channel) *Plan {
	if len(order) == 0 {
		order = DefaultExecutionOrder()
	}
	return &Plan{
		Intent:         intent,
		Confidence:     confidence,
		SpeechActions:  []Speech{},
		GestureActions: []Gesture{},
		SceneActions:   []Scene{},
		UIActions:      []UI{},
		ExecutionOrder: order,
		Metadata:       map[string]any{},
	}
}

// ActionCount returns the number of actions across all four channels.
func (p *Plan) ActionCount() int {
	return len(p.SpeechActions) + len(p.GestureActions) + len(p.SceneActions) + len(p.UIActions)
}
