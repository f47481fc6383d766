package template

import "github.com/nongnai/nongnai/internal/action"

// Seeded returns a registry populated with the built-in template set the
// guide ships with. The seeds cover every category, and the place-suggestion
// composite references templates from all four channels.
func Seeded() *Registry {
	r := NewRegistry()

	speech := map[string]action.Speech{
		"greeting": {
			Text:  "สวัสดีค่ะ! ยินดีต้อนรับสู่ประเทศไทย ฉันชื่อน้องใหม่ เป็นไกด์นำเที่ยวของคุณค่ะ",
			Style: action.StyleEnthusiastic,
		},
		"suggest_place": {
			Text:  "ขอแนะนำ {place_name} ค่ะ เป็นสถานที่ที่นักท่องเที่ยวชื่นชอบมาก ลองดูรายละเอียดบนแผนที่นะคะ",
			Style: action.StyleFriendly,
		},
		"suggest_cultural": {
			Text:  "{place_name} เป็นสถานที่สำคัญทางวัฒนธรรมค่ะ มีประวัติความเป็นมายาวนาน ควรค่าแก่การมาเยือนอย่างยิ่ง",
			Style: action.StyleInformative,
		},
		"confirm": {
			Text:  "ได้เลยค่ะ ดำเนินการให้เรียบร้อยแล้วนะคะ",
			Style: action.StyleCalm,
		},
		"farewell": {
			Text:  "ขอบคุณที่ใช้บริการค่ะ ขอให้เที่ยวให้สนุกนะคะ แล้วพบกันใหม่ค่ะ",
			Style: action.StyleFriendly,
		},
		"route_overview": {
			Text:  "เส้นทางไป {place_name} ใช้เวลาประมาณ {travel_time} ค่ะ ดูเส้นทางบนแผนที่ได้เลยนะคะ",
			Style: action.StyleInformative,
		},
	}
	for name, t := range speech {
		_ = r.RegisterSpeech(name, t)
	}

	gesture := map[string]action.Gesture{
		"wai_greeting": {Animation: action.AnimWaiGreeting, FacialExpression: "smile"},
		"friendly_nod": {Animation: action.AnimFriendlyNod, FacialExpression: "smile"},
		"point_to_map": {Animation: action.AnimPointForward, FacialExpression: "smile"},
		"thinking":     {Animation: action.AnimThinkingPose, FacialExpression: "confused"},
		"invite":       {Animation: action.AnimInvite, FacialExpression: "smile"},
		"excited":      {Animation: action.AnimExcitedJump, Intensity: 0.8, FacialExpression: "excited"},
		"farewell_bow": {Animation: action.AnimBow, FacialExpression: "smile"},
	}
	for name, t := range gesture {
		_ = r.RegisterGesture(name, t)
	}

	scene := map[string]action.Scene{
		"zoom_to_place": {InteractionType: action.InteractZoomToLocation, Target: "13.7563,100.5018"},
		"highlight_pin": {InteractionType: action.InteractMapPinHighlight, Target: "pin_default"},
		"focus_place":   {InteractionType: action.InteractFocusObject, Target: "landmark_default"},
		"pan_overview":  {InteractionType: action.InteractCameraMove, Target: "city_overview", DurationMS: 4000},
	}
	for name, t := range scene {
		_ = r.RegisterScene(name, t)
	}

	ui := map[string]action.UI{
		"place_photo": {
			ComponentType: action.ComponentPhoto,
			Content:       map[string]any{"src": "", "alt": "photo of place", "title": "สถานที่แนะนำ"},
		},
		"place_info": {
			ComponentType: action.ComponentInfoPanel,
			Content:       map[string]any{"title": "ข้อมูลสถานที่", "body": ""},
			Position:      action.PositionSidebar,
		},
		"booking_buttons": {
			ComponentType: action.ComponentButton,
			Content: map[string]any{
				"buttons": []any{
					map[string]any{"label": "จองเลย", "action": "book_now"},
					map[string]any{"label": "ดูรีวิว", "action": "show_reviews"},
				},
			},
		},
		"place_rating": {
			ComponentType: action.ComponentRating,
			Content:       map[string]any{"rating": 0.0, "review_count": 0},
		},
		"route_panel": {
			ComponentType: action.ComponentRoutePanel,
			Content:       map[string]any{"steps": []any{}},
			Position:      action.PositionSidebar,
		},
	}
	for name, t := range ui {
		_ = r.RegisterUI(name, t)
	}

	composites := map[string]Composite{
		"greeting_welcome": {
			action.ChannelSpeech:  {"greeting"},
			action.ChannelGesture: {"wai_greeting"},
		},
		"place_suggestion": {
			action.ChannelSpeech:  {"suggest_place"},
			action.ChannelGesture: {"point_to_map"},
			action.ChannelScene:   {"zoom_to_place", "highlight_pin"},
			action.ChannelUI:      {"place_photo", "place_info"},
		},
		"cultural_suggestion": {
			action.ChannelSpeech:  {"suggest_cultural"},
			action.ChannelGesture: {"invite"},
			action.ChannelScene:   {"focus_place"},
			action.ChannelUI:      {"place_info"},
		},
		"farewell_wave": {
			action.ChannelSpeech:  {"farewell"},
			action.ChannelGesture: {"farewell_bow"},
		},
	}
	for name, c := range composites {
		_ = r.RegisterComposite(name, c)
	}

	return r
}
