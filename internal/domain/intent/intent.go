package intent

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/serpintel/internal/domain/keyword"
)

// Type is the searcher intent category.
type Type string

// Intent type constants, in tie-break order.
const (
	Transactional Type = "transactional"
	Informational Type = "informational"
	Exploratory   Type = "exploratory"
	Navigational  Type = "navigational"
)

// MaxSecondaryKeywords caps the secondary keyword list.
const MaxSecondaryKeywords = 20

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	return t == Transactional || t == Informational || t == Exploratory || t == Navigational
}

// Title returns the capitalized name used in human-readable evidence.
func (t Type) Title() string {
	switch t {
	case Transactional:
		return "Transactional"
	case Informational:
		return "Informational"
	case Exploratory:
		return "Exploratory"
	case Navigational:
		return "Navigational"
	default:
		return string(t)
	}
}

// All returns the intent types in tie-break order.
func All() []Type {
	return []Type{Transactional, Informational, Exploratory, Navigational}
}

// Parse converts a string to a Type.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown intent type %q", s)
	}
	return t, nil
}

// Analysis is the classified intent of a SERP plus its extracted keywords (immutable value object).
type Analysis struct {
	intentType Type
	confidence float64
	main       keyword.Keyword
	secondary  []keyword.Keyword
	signals    []string
}

// New validates and creates an Analysis.
// Secondary keywords are ordered by relevance descending (stable) and must not
// exceed the main keyword's relevance.
func New(t Type, confidence float64, main keyword.Keyword, secondary []keyword.Keyword, signals []string) (Analysis, error) {
	if !t.IsValid() {
		return Analysis{}, fmt.Errorf("unknown intent type %q", t)
	}
	if confidence < 0 || confidence > 1 {
		return Analysis{}, fmt.Errorf("intent confidence %v out of range [0,1]", confidence)
	}
	if main.Text() == "" {
		return Analysis{}, fmt.Errorf("main keyword is required")
	}
	if len(secondary) > MaxSecondaryKeywords {
		return Analysis{}, fmt.Errorf("too many secondary keywords (max %d)", MaxSecondaryKeywords)
	}

	sec := make([]keyword.Keyword, len(secondary))
	copy(sec, secondary)
	sort.SliceStable(sec, func(i, j int) bool { return sec[i].Relevance() > sec[j].Relevance() })
	for _, k := range sec {
		if k.Relevance() > main.Relevance() {
			return Analysis{}, fmt.Errorf(
				"secondary keyword %q relevance %v exceeds main keyword relevance %v",
				k.Text(), k.Relevance(), main.Relevance(),
			)
		}
	}

	sig := make([]string, len(signals))
	copy(sig, signals)

	return Analysis{intentType: t, confidence: confidence, main: main, secondary: sec, signals: sig}, nil
}

// Reconstruct creates an Analysis without validation (storage hydration).
func Reconstruct(t Type, confidence float64, main keyword.Keyword, secondary []keyword.Keyword, signals []string) Analysis {
	return Analysis{intentType: t, confidence: confidence, main: main, secondary: secondary, signals: signals}
}

// Type returns the intent category.
func (a Analysis) Type() Type { return a.intentType }

// Confidence returns the classification confidence in [0,1].
func (a Analysis) Confidence() float64 { return a.confidence }

// MainKeyword returns the primary keyword.
func (a Analysis) MainKeyword() keyword.Keyword { return a.main }

// SecondaryKeywords returns related keywords ordered by relevance.
func (a Analysis) SecondaryKeywords() []keyword.Keyword { return a.secondary }

// Signals returns the human-readable evidence behind the classification.
func (a Analysis) Signals() []string { return a.signals }
