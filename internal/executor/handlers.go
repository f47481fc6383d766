package executor

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/nongnai/nongnai/internal/action"
)

// Channel handlers turn one concrete action into a renderer-facing
// descriptor. They are deterministic in the action's fields; their only side
// effect is appending the descriptor to the shared output log.

const speechWordsPerMinute = 150

// SpeechOutput is the TTS descriptor for one spoken line. AudioURL encodes
// the synthesis request; no audio is produced here.
type SpeechOutput struct {
	Type        string         `json:"type"`
	Text        string         `json:"text"`
	Language    string         `json:"language"`
	Style       string         `json:"style"`
	DurationMS  int            `json:"duration_ms"`
	AudioURL    string         `json:"audio_url"`
	VoiceParams map[string]any `json:"voice_params,omitempty"`
}

// AnimationParams tells the renderer how to blend one gesture clip.
type AnimationParams struct {
	StartTime   int     `json:"start_time"`
	EndTime     int     `json:"end_time"`
	Easing      string  `json:"easing"`
	BlendWeight float64 `json:"blend_weight"`
}

type GestureOutput struct {
	Type             string          `json:"type"`
	Animation        string          `json:"animation"`
	Target           string          `json:"target"`
	DurationMS       int             `json:"duration_ms"`
	Loop             bool            `json:"loop"`
	FacialExpression string          `json:"facial_expression,omitempty"`
	AnimationParams  AnimationParams `json:"animation_params"`
}

// SceneOutput carries camera commands and scene-graph updates for one scene
// interaction.
type SceneOutput struct {
	Type            string           `json:"type"`
	InteractionType string           `json:"interaction_type"`
	Target          string           `json:"target"`
	DurationMS      int              `json:"duration_ms"`
	Commands        []map[string]any `json:"commands"`
	SceneUpdates    []map[string]any `json:"scene_updates"`
}

type UIOutput struct {
	Type          string            `json:"type"`
	ComponentType string            `json:"component_type"`
	Content       map[string]any    `json:"content"`
	Position      string            `json:"position"`
	DurationMS    int               `json:"duration_ms,omitempty"`
	CSSClasses    []string          `json:"css_classes"`
	EventHandlers map[string]string `json:"event_handlers"`
	InteractionOn bool              `json:"interaction_enabled"`
}

// SpeechExecutor executes one speech action. Implementations must be safe for
// concurrent use; the plan executor fans a channel group out in parallel.
type SpeechExecutor interface {
	Execute(ctx context.Context, a action.Speech) (SpeechOutput, error)
}

type GestureExecutor interface {
	Execute(ctx context.Context, a action.Gesture) (GestureOutput, error)
}

type SceneExecutor interface {
	Execute(ctx context.Context, a action.Scene) (SceneOutput, error)
}

type UIExecutor interface {
	Execute(ctx context.Context, a action.UI) (UIOutput, error)
}

type speechHandler struct {
	outputs *Outputs
}

func (h *speechHandler) Execute(_ context.Context, a action.Speech) (SpeechOutput, error) {
	duration := a.DurationMS
	if duration == 0 {
		duration = estimateSpeechDuration(a.Text)
	}

	q := url.Values{}
	q.Set("text", a.Text)
	q.Set("lang", a.Language)
	q.Set("style", string(a.Style))

	out := SpeechOutput{
		Type:        "speech",
		Text:        a.Text,
		Language:    a.Language,
		Style:       string(a.Style),
		DurationMS:  duration,
		AudioURL:    "/api/v1/tts?" + q.Encode(),
		VoiceParams: a.VoiceParams,
	}
	h.outputs.addSpeech(out)
	return out, nil
}

// estimateSpeechDuration derives a duration from a naive whitespace word
// count at the assumed speaking rate.
func estimateSpeechDuration(text string) int {
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) / speechWordsPerMinute * 60 * 1000))
}

type gestureHandler struct {
	outputs *Outputs
}

func (h *gestureHandler) Execute(_ context.Context, a action.Gesture) (GestureOutput, error) {
	out := GestureOutput{
		Type:             "gesture",
		Animation:        string(a.Animation),
		Target:           a.Target,
		DurationMS:       a.DurationMS,
		Loop:             a.Loop,
		FacialExpression: a.FacialExpression,
		AnimationParams: AnimationParams{
			StartTime:   0,
			EndTime:     a.DurationMS,
			Easing:      "ease-in-out",
			BlendWeight: a.Intensity,
		},
	}
	h.outputs.addGesture(out)
	return out, nil
}

type sceneHandler struct {
	outputs *Outputs
}

func (h *sceneHandler) Execute(_ context.Context, a action.Scene) (SceneOutput, error) {
	out := SceneOutput{
		Type:            "scene_interaction",
		InteractionType: string(a.InteractionType),
		Target:          a.Target,
		DurationMS:      a.DurationMS,
		Commands:        []map[string]any{},
		SceneUpdates:    []map[string]any{},
	}

	switch a.InteractionType {
	case action.InteractCameraMove:
		out.Commands = append(out.Commands, map[string]any{
			"action":   "move_to",
			"target":   a.Target,
			"duration": a.DurationMS,
			"easing":   paramOr(a.Parameters, "easing", "ease-in-out"),
		})
	case action.InteractZoomToLocation:
		out.Commands = append(out.Commands, map[string]any{
			"action":      "zoom_to",
			"coordinates": a.Target,
			"zoom_level":  paramOr(a.Parameters, "zoom_level", 15),
			"duration":    a.DurationMS,
		})
	case action.InteractFocusObject:
		out.Commands = append(out.Commands, map[string]any{
			"action":    "focus_on",
			"object_id": a.Target,
			"duration":  a.DurationMS,
			"offset":    paramOr(a.Parameters, "offset", []any{0, 2, 5}),
		})
	case action.InteractMapPinHighlight:
		out.SceneUpdates = append(out.SceneUpdates, map[string]any{
			"object_type": "map_pin",
			"object_id":   a.Target,
			"highlight":   true,
			"color":       paramOr(a.Parameters, "color", "#FF6B35"),
			"pulse":       paramOr(a.Parameters, "pulse", true),
			"duration":    a.DurationMS,
		})
	case action.InteractRotateView:
		out.SceneUpdates = append(out.SceneUpdates, map[string]any{
			"object_type": "camera",
			"rotation":    paramOr(a.Parameters, "rotation", []any{0, 45, 0}),
			"duration":    a.DurationMS,
		})
	}

	h.outputs.addScene(out)
	return out, nil
}

func paramOr(params map[string]any, key string, fallback any) any {
	if v, ok := params[key]; ok {
		return v
	}
	return fallback
}

type uiHandler struct {
	outputs *Outputs
}

func (h *uiHandler) Execute(_ context.Context, a action.UI) (UIOutput, error) {
	classes := []string{fmt.Sprintf("action-%s", a.ComponentType)}
	if a.Position != "" {
		classes = append(classes, fmt.Sprintf("position-%s", a.Position))
	}
	if a.Interactive() {
		classes = append(classes, "interactive")
	}

	handlers := map[string]string{}
	if a.ComponentType == action.ComponentButton {
		if buttons, ok := a.Content["buttons"].([]any); ok {
			for _, b := range buttons {
				button, ok := b.(map[string]any)
				if !ok {
					continue
				}
				if name, ok := button["action"].(string); ok && name != "" {
					handlers["click_"+name] = "handle_click_" + name
				}
			}
		}
	}
	if a.Interactive() {
		handlers["click"] = "handle_click"
		handlers["hover"] = "handle_hover"
	}

	out := UIOutput{
		Type:          "ui_component",
		ComponentType: string(a.ComponentType),
		Content:       a.Content,
		Position:      string(a.Position),
		DurationMS:    a.DurationMS,
		CSSClasses:    classes,
		EventHandlers: handlers,
		InteractionOn: a.Interactive(),
	}
	h.outputs.addUI(out)
	return out, nil
}
