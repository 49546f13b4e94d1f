package workflow

// UnknownIntentID is substituted whenever classification fails or produces
// something unparsable. It always routes to a rejection, never to an agent.
const UnknownIntentID = "unknown"

// Intent is the classifier's structured reading of a user query.
type Intent struct {
	ID         string         `json:"id" yaml:"id"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Args       map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// UnknownIntent returns the fallback intent with zero confidence.
func UnknownIntent() Intent {
	return Intent{ID: UnknownIntentID, Confidence: 0, Args: map[string]any{}}
}

// IsUnknown returns true for the fallback intent.
func (i Intent) IsUnknown() bool {
	return i.ID == "" || i.ID == UnknownIntentID
}
