package intent

import "fmt"

// Mode selects the classification algorithm.
type Mode string

// Classifier mode constants.
const (
	// ModeStrategy selects one intent strategy from per-result cues and scores with it.
	ModeStrategy Mode = "strategy"
	// ModeBasic counts signals for every intent and picks the largest tally.
	ModeBasic Mode = "basic"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool { return m == ModeStrategy || m == ModeBasic }

// Classifier turns a SERP into an intent verdict.
type Classifier struct {
	mode Mode
}

// NewClassifier creates a classifier. Empty mode means ModeStrategy.
func NewClassifier(mode Mode) (*Classifier, error) {
	if mode == "" {
		mode = ModeStrategy
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown intent classifier %q", mode)
	}
	return &Classifier{mode: mode}, nil
}

// Mode returns the configured algorithm.
func (c *Classifier) Mode() Mode { return c.mode }

// Classify returns the intent, confidence and signals for the input.
func (c *Classifier) Classify(in Input) (Verdict, error) {
	if c.mode == ModeBasic {
		return basic(in), nil
	}
	return Analyze(Select(in.Payload), in)
}
