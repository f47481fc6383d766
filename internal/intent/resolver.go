package intent

import (
	"fmt"
	"strings"

	"github.com/nongnai/nongnai/internal/action"
	"github.com/nongnai/nongnai/internal/template"
	"github.com/nongnai/nongnai/pkg/logx"
)

// Fallback content used when an intent has no mapping. Unknown intents are
// never an error: the guide apologizes and strikes a thinking pose instead.
const (
	fallbackApologyText      = "ขออภัยค่ะ ฉันไม่ค่อยเข้าใจคำขอนี้ ลองถามใหม่อีกครั้งได้ไหมคะ"
	fallbackFacialExpression = "confused"
)

// Resolver assembles plans from the template registry and the intent table.
type Resolver struct {
	templates *template.Registry
	mappings  *Mapper
}

func NewResolver(templates *template.Registry, mappings *Mapper) *Resolver {
	return &Resolver{templates: templates, mappings: mappings}
}

// BuildPlan resolves the intent into a concrete plan. Default parameters from
// the mapping are merged with caller parameters, caller values winning on key
// collision. Missing templates are skipped, unknown intents fall back to the
// apology plan; BuildPlan never fails.
func (r *Resolver) BuildPlan(intentName string, params map[string]any, confidence float64) *action.Plan {
	mapping, ok := r.mappings.Get(intentName)
	if !ok {
		logx.Debug().Str("intent", intentName).Msg("resolver: no mapping, using fallback plan")
		return r.fallbackPlan(intentName, confidence)
	}

	merged := mergeParams(mapping.Parameters, params)
	plan := action.NewPlan(intentName, confidence, mapping.ExecutionOrder)

	if mapping.Composite != "" {
		composite, ok := r.templates.Composite(mapping.Composite)
		if !ok {
			logx.Warn().Str("intent", intentName).Str("composite", mapping.Composite).
				Msg("resolver: composite template not found")
			return plan
		}
		for _, ch := range action.DefaultExecutionOrder() {
			r.appendChannel(plan, ch, composite[ch], merged)
		}
		return plan
	}

	r.appendChannel(plan, action.ChannelSpeech, mapping.SpeechTemplates, merged)
	r.appendChannel(plan, action.ChannelGesture, mapping.GestureTemplates, merged)
	r.appendChannel(plan, action.ChannelScene, mapping.SceneTemplates, merged)
	r.appendChannel(plan, action.ChannelUI, mapping.UITemplates, merged)
	return plan
}

func (r *Resolver) fallbackPlan(intentName string, confidence float64) *action.Plan {
	plan := action.NewPlan(intentName, confidence, []action.Channel{action.ChannelSpeech, action.ChannelGesture})
	apology, _ := action.NewSpeech(fallbackApologyText, action.StyleCalm)
	thinking, _ := action.NewGesture(action.AnimThinkingPose)
	thinking.FacialExpression = fallbackFacialExpression
	plan.SpeechActions = append(plan.SpeechActions, apology)
	plan.GestureActions = append(plan.GestureActions, thinking)
	plan.Metadata["fallback"] = true
	return plan
}

func (r *Resolver) appendChannel(plan *action.Plan, ch action.Channel, names []string, params map[string]any) {
	for _, name := range names {
		switch ch {
		case action.ChannelSpeech:
			t, ok := r.templates.Speech(name)
			if !ok {
				r.logMissing(ch, name)
				continue
			}
			plan.SpeechActions = append(plan.SpeechActions, customizeSpeech(t, params))
		case action.ChannelGesture:
			t, ok := r.templates.Gesture(name)
			if !ok {
				r.logMissing(ch, name)
				continue
			}
			// Gestures are used as-is; no parameter substitution is defined for them.
			plan.GestureActions = append(plan.GestureActions, t)
		case action.ChannelScene:
			t, ok := r.templates.Scene(name)
			if !ok {
				r.logMissing(ch, name)
				continue
			}
			plan.SceneActions = append(plan.SceneActions, customizeScene(t, params))
		case action.ChannelUI:
			t, ok := r.templates.UI(name)
			if !ok {
				r.logMissing(ch, name)
				continue
			}
			plan.UIActions = append(plan.UIActions, customizeUI(t, params))
		}
	}
}

func (r *Resolver) logMissing(ch action.Channel, name string) {
	logx.Warn().Str("channel", string(ch)).Str("template", name).
		Msg("resolver: template not found, skipping")
}

// mergeParams overlays caller params onto mapping defaults; caller wins.
func mergeParams(defaults, params map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(params))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	return merged
}

func customizeSpeech(t action.Speech, params map[string]any) action.Speech {
	for key, value := range params {
		token := "{" + key + "}"
		if strings.Contains(t.Text, token) {
			t.Text = strings.ReplaceAll(t.Text, token, fmt.Sprint(value))
		}
	}
	return t
}

func customizeScene(t action.Scene, params map[string]any) action.Scene {
	if coords, ok := params["coordinates"]; ok {
		t.Target = fmt.Sprint(coords)
	}
	if pin, ok := params["location_pin_id"]; ok {
		if t.Parameters == nil {
			t.Parameters = map[string]any{}
		}
		t.Parameters["pin_id"] = pin
	}
	return t
}

func customizeUI(t action.UI, params map[string]any) action.UI {
	if t.ComponentType != action.ComponentPhoto {
		return t
	}
	if url, ok := params["photo_url"]; ok {
		t.Content["src"] = fmt.Sprint(url)
	}
	if name, ok := params["place_name"]; ok {
		t.Content["alt"] = fmt.Sprintf("photo of %v", name)
		if _, hasTitle := t.Content["title"]; hasTitle {
			t.Content["title"] = fmt.Sprint(name)
		}
	}
	return t
}
