package executor

import "sync"

// AllOutputs is a snapshot of everything executed since the last clear,
// grouped by channel.
type AllOutputs struct {
	Speech  []SpeechOutput  `json:"speech"`
	Gesture []GestureOutput `json:"gesture"`
	Scene   []SceneOutput   `json:"scene"`
	UI      []UIOutput      `json:"ui"`
}

// Outputs accumulates every descriptor the channel handlers produce.
// Append-only from concurrently running executions; emptied only by an
// explicit Clear, never evicted.
type Outputs struct {
	mu      sync.Mutex
	speech  []SpeechOutput
	gesture []GestureOutput
	scene   []SceneOutput
	ui      []UIOutput
}

func NewOutputs() *Outputs {
	return &Outputs{}
}

func (o *Outputs) addSpeech(out SpeechOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.speech = append(o.speech, out)
}

func (o *Outputs) addGesture(out GestureOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gesture = append(o.gesture, out)
}

func (o *Outputs) addScene(out SceneOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scene = append(o.scene, out)
}

func (o *Outputs) addUI(out UIOutput) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ui = append(o.ui, out)
}

// All returns a copy of the four logs.
func (o *Outputs) All() AllOutputs {
	o.mu.Lock()
	defer o.mu.Unlock()
	return AllOutputs{
		Speech:  append([]SpeechOutput{}, o.speech...),
		Gesture: append([]GestureOutput{}, o.gesture...),
		Scene:   append([]SceneOutput{}, o.scene...),
		UI:      append([]UIOutput{}, o.ui...),
	}
}

// Clear empties all four logs.
func (o *Outputs) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.speech = nil
	o.gesture = nil
	o.scene = nil
	o.ui = nil
}
