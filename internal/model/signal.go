package model

// Suggestion is the ranked output of the VN30 momentum screen.
type Suggestion struct {
	Weak   []Snapshot // RSI below the midline, weakest first
	Strong []Snapshot // RSI above the midline, strongest first
	Failed []string   // symbols that could not be fetched or evaluated
}

// Empty reports whether nothing qualified on either side.
func (s *Suggestion) Empty() bool {
	return len(s.Weak) == 0 && len(s.Strong) == 0
}
