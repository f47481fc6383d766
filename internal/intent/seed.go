package intent

import "github.com/nongnai/nongnai/internal/action"

// SeededMapper returns the built-in intent table matching the seeded template
// set.
func SeededMapper() *Mapper {
	m := NewMapper()

	seeds := map[string]Mapping{
		"greet_user": {
			Composite:      "greeting_welcome",
			ExecutionOrder: []action.Channel{action.ChannelSpeech, action.ChannelGesture},
		},
		"suggest_place": {
			Composite: "place_suggestion",
			Parameters: map[string]any{
				"place_name": "วัดพระแก้ว",
			},
		},
		"suggest_cultural_place": {
			Composite: "cultural_suggestion",
			Parameters: map[string]any{
				"place_name": "พระบรมมหาราชวัง",
			},
		},
		"confirm_action": {
			SpeechTemplates:  []string{"confirm"},
			GestureTemplates: []string{"friendly_nod"},
			ExecutionOrder:   []action.Channel{action.ChannelSpeech, action.ChannelGesture},
		},
		"say_goodbye": {
			Composite:      "farewell_wave",
			ExecutionOrder: []action.Channel{action.ChannelSpeech, action.ChannelGesture},
		},
		"show_route": {
			SpeechTemplates: []string{"route_overview"},
			SceneTemplates:  []string{"zoom_to_place"},
			UITemplates:     []string{"route_panel"},
			Parameters: map[string]any{
				"travel_time": "30 นาที",
			},
		},
	}
	for intent, mapping := range seeds {
		_ = m.Register(intent, mapping)
	}
	return m
}
