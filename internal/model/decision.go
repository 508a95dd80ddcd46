package model

// Verdict says what happened to the real event.
type Verdict uint8

const (
	VerdictPass Verdict = iota
	VerdictSuppress
)

func (v Verdict) String() string {
	if v == VerdictSuppress {
		return "suppress"
	}
	return "pass"
}

// MarshalText lets YAML and JSON output print the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Decision is the result of arbitrating one event.
type Decision struct {
	// Original is the event fetched from the windowing system.
	Original Event `yaml:"original" json:"original"`
	// Event is what the caller receives: the real event or a placeholder.
	Event   Event   `yaml:"event"   json:"event"`
	Verdict Verdict `yaml:"verdict" json:"verdict"`
	// StealBack, when set, is the window that must be given input focus
	// after the event is delivered.
	StealBack WindowID `yaml:"steal_back,omitempty" json:"steal_back,omitempty"`
	Phase     string   `yaml:"phase"                json:"phase"`
}

// Suppressed reports whether the real event was replaced.
func (d Decision) Suppressed() bool {
	return d.Verdict == VerdictSuppress
}
