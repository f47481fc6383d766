package action

// Clone returns a copy whose maps are independent of the original, so that
// parameter substitution on a resolved template never touches the registry's
// stored instance.

func (s Speech) Clone() Speech {
	s.VoiceParams = cloneMap(s.VoiceParams)
	return s
}

func (g Gesture) Clone() Gesture {
	return g
}

func (s Scene) Clone() Scene {
	s.Parameters = cloneMap(s.Parameters)
	return s
}

func (u UI) Clone() UI {
	u.Content = cloneMap(u.Content)
	if u.InteractionEnabled != nil {
		enabled := *u.InteractionEnabled
		u.InteractionEnabled = &enabled
	}
	return u
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
