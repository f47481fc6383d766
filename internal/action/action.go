// Package action defines the closed vocabulary of renderer-facing actions the
// guide can perform: spoken lines, avatar gestures, scene-camera interactions,
// and UI overlays. Action kinds form a closed set; adding a kind means touching
// every switch that dispatches on Channel.
package action

import "fmt"

// Channel identifies one of the four output modalities.
type Channel string

const (
	ChannelSpeech  Channel = "speech"
	ChannelGesture Channel = "gesture"
	ChannelScene   Channel = "scene"
	ChannelUI      Channel = "ui"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSpeech, ChannelGesture, ChannelScene, ChannelUI:
		return true
	}
	return false
}

// DefaultExecutionOrder is the channel sequencing used when an intent mapping
// does not specify its own.
func DefaultExecutionOrder() []Channel {
	return []Channel{ChannelSpeech, ChannelGesture, ChannelScene, ChannelUI}
}

// SpeechStyle selects the TTS delivery style.
type SpeechStyle string

const (
	StyleFormal       SpeechStyle = "formal"
	StyleFriendly     SpeechStyle = "friendly"
	StyleEnthusiastic SpeechStyle = "enthusiastic"
	StyleCalm         SpeechStyle = "calm"
	StyleInformative  SpeechStyle = "informative"
)

func (s SpeechStyle) Valid() bool {
	switch s {
	case StyleFormal, StyleFriendly, StyleEnthusiastic, StyleCalm, StyleInformative:
		return true
	}
	return false
}

// Animation names one of the avatar's prebaked gesture clips.
type Animation string

const (
	AnimWaiGreeting  Animation = "wai_greeting"
	AnimFriendlyNod  Animation = "friendly_nod"
	AnimThinkingPose Animation = "thinking_pose"
	AnimPointLeft    Animation = "point_left"
	AnimPointRight   Animation = "point_right"
	AnimPointForward Animation = "point_forward"
	AnimInvite       Animation = "invite_gesture"
	AnimWaveHand     Animation = "wave_hand"
	AnimClapping     Animation = "clapping"
	AnimExcitedJump  Animation = "excited_jump"
	AnimBow          Animation = "bow"
	AnimShakeHead    Animation = "shake_head"
	AnimHeadTilt     Animation = "head_tilt"
	AnimIdle         Animation = "idle"
)

func (a Animation) Valid() bool {
	switch a {
	case AnimWaiGreeting, AnimFriendlyNod, AnimThinkingPose, AnimPointLeft,
		AnimPointRight, AnimPointForward, AnimInvite, AnimWaveHand, AnimClapping,
		AnimExcitedJump, AnimBow, AnimShakeHead, AnimHeadTilt, AnimIdle:
		return true
	}
	return false
}

// InteractionType selects the scene-camera command a scene action issues.
type InteractionType string

const (
	InteractCameraMove      InteractionType = "camera_move"
	InteractFocusObject     InteractionType = "focus_object"
	InteractMapPinHighlight InteractionType = "map_pin_highlight"
	InteractZoomToLocation  InteractionType = "zoom_to_location"
	InteractRotateView      InteractionType = "rotate_view"
)

func (i InteractionType) Valid() bool {
	switch i {
	case InteractCameraMove, InteractFocusObject, InteractMapPinHighlight,
		InteractZoomToLocation, InteractRotateView:
		return true
	}
	return false
}

// ComponentType selects the UI widget an overlay action renders.
type ComponentType string

const (
	ComponentPhoto         ComponentType = "photo"
	ComponentButton        ComponentType = "button"
	ComponentInfoPanel     ComponentType = "info_panel"
	ComponentMapOverlay    ComponentType = "map_overlay"
	ComponentRating        ComponentType = "rating_display"
	ComponentLocationPopup ComponentType = "show_location_popup"
	ComponentMapPinMarker  ComponentType = "map_pin_marker"
	ComponentReviewPanel   ComponentType = "review_panel"
	ComponentRoutePanel    ComponentType = "route_panel"
	ComponentImageGallery  ComponentType = "image_gallery"
	ComponentBillboard     ComponentType = "billboard"
)

func (c ComponentType) Valid() bool {
	switch c {
	case ComponentPhoto, ComponentButton, ComponentInfoPanel, ComponentMapOverlay,
		ComponentRating, ComponentLocationPopup, ComponentMapPinMarker,
		ComponentReviewPanel, ComponentRoutePanel, ComponentImageGallery,
		ComponentBillboard:
		return true
	}
	return false
}

// Position places a UI component on screen.
type Position string

const (
	PositionOverlay    Position = "overlay"
	PositionSidebar    Position = "sidebar"
	PositionFullscreen Position = "fullscreen"
)

func (p Position) Valid() bool {
	switch p {
	case PositionOverlay, PositionSidebar, PositionFullscreen:
		return true
	}
	return false
}

const (
	DefaultGestureDurationMS = 2000
	DefaultSceneDurationMS   = 3000
	DefaultLanguage          = "th-TH"
	DefaultGestureTarget     = "guide_avatar"
)

// Speech is one spoken line. Text may contain {placeholder} tokens that the
// plan builder substitutes from request parameters.
type Speech struct {
	Text        string         `json:"text" yaml:"text"`
	Language    string         `json:"language" yaml:"language"`
	Style       SpeechStyle    `json:"style" yaml:"style"`
	DurationMS  int            `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"` // 0 means estimate from text at execution
	VoiceParams map[string]any `json:"voice_params,omitempty" yaml:"voice_params,omitempty"`
}

func NewSpeech(text string, style SpeechStyle) (Speech, error) {
	s := Speech{Text: text, Language: DefaultLanguage, Style: style}.WithDefaults()
	return s, s.Validate()
}

func (s Speech) WithDefaults() Speech {
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Style == "" {
		s.Style = StyleFriendly
	}
	return s
}

func (s Speech) Validate() error {
	if !s.Style.Valid() {
		return fmt.Errorf("speech action: unknown style %q", s.Style)
	}
	return nil
}

// Gesture plays one avatar animation clip.
type Gesture struct {
	Animation        Animation `json:"animation" yaml:"animation"`
	Target           string    `json:"target" yaml:"target"`
	DurationMS       int       `json:"duration_ms" yaml:"duration_ms"`
	Intensity        float64   `json:"intensity" yaml:"intensity"`
	Loop             bool      `json:"loop" yaml:"loop"`
	FacialExpression string    `json:"facial_expression,omitempty" yaml:"facial_expression,omitempty"`
}

func NewGesture(anim Animation) (Gesture, error) {
	g := Gesture{Animation: anim}.WithDefaults()
	return g, g.Validate()
}

func (g Gesture) WithDefaults() Gesture {
	if g.Target == "" {
		g.Target = DefaultGestureTarget
	}
	if g.DurationMS == 0 {
		g.DurationMS = DefaultGestureDurationMS
	}
	if g.Intensity == 0 {
		g.Intensity = 1.0
	}
	return g
}

func (g Gesture) Validate() error {
	if !g.Animation.Valid() {
		return fmt.Errorf("gesture action: unknown animation %q", g.Animation)
	}
	if g.Intensity < 0 || g.Intensity > 1 {
		return fmt.Errorf("gesture action: intensity %v out of range [0,1]", g.Intensity)
	}
	return nil
}

// Scene drives the 3D scene camera or map layer. Target is opaque: an object
// id, a "lat,lng" coordinate string, or a map pin id depending on the
// interaction type.
type Scene struct {
	InteractionType InteractionType `json:"interaction_type" yaml:"interaction_type"`
	Target          string          `json:"target" yaml:"target"`
	DurationMS      int             `json:"duration_ms" yaml:"duration_ms"`
	Parameters      map[string]any  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func NewScene(it InteractionType, target string) (Scene, error) {
	s := Scene{InteractionType: it, Target: target}.WithDefaults()
	return s, s.Validate()
}

func (s Scene) WithDefaults() Scene {
	if s.DurationMS == 0 {
		s.DurationMS = DefaultSceneDurationMS
	}
	return s
}

func (s Scene) Validate() error {
	if !s.InteractionType.Valid() {
		return fmt.Errorf("scene action: unknown interaction type %q", s.InteractionType)
	}
	return nil
}

// UI renders one overlay component. Content is a free-form payload whose shape
// depends on the component type. A zero DurationMS means the component stays
// until dismissed.
type UI struct {
	ComponentType      ComponentType  `json:"component_type" yaml:"component_type"`
	Content            map[string]any `json:"content" yaml:"content"`
	Position           Position       `json:"position" yaml:"position"`
	DurationMS         int            `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	InteractionEnabled *bool          `json:"interaction_enabled,omitempty" yaml:"interaction_enabled,omitempty"`
}

func NewUI(ct ComponentType, content map[string]any) (UI, error) {
	u := UI{ComponentType: ct, Content: content}.WithDefaults()
	return u, u.Validate()
}

func (u UI) WithDefaults() UI {
	if u.Position == "" {
		u.Position = PositionOverlay
	}
	if u.InteractionEnabled == nil {
		enabled := true
		u.InteractionEnabled = &enabled
	}
	if u.Content == nil {
		u.Content = map[string]any{}
	}
	return u
}

// Interactive reports whether the component accepts input. Unset means yes.
func (u UI) Interactive() bool {
	return u.InteractionEnabled == nil || *u.InteractionEnabled
}

func (u UI) Validate() error {
	if !u.ComponentType.Valid() {
		return fmt.Errorf("ui action: unknown component type %q", u.ComponentType)
	}
	if !u.Position.Valid() {
		return fmt.Errorf("ui action: unknown position %q", u.Position)
	}
	return nil
}
