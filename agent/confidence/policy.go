package confidence

import (
	"github.com/voicedeskai/voicedesk/agent/retrieval"
)

type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeEscalated Outcome = "escalated"
)

type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonLowConfidence Reason = "low_confidence"
	ReasonNoResults     Reason = "no_results"
)

// Decision is the resolve/escalate verdict for one query. Produced fresh
// per call to Decide and never mutated.
type Decision struct {
	Outcome    Outcome `json:"outcome"`
	Confidence float64 `json:"confidence"`
	Reason     Reason  `json:"reason"`
}

func (d Decision) Resolved() bool {
	return d.Outcome == OutcomeResolved
}

const DefaultThreshold = 0.70

type Config struct {
	Threshold float64 `envconfig:"THRESHOLD" split_words:"true" default:"0.70"`
}

// Policy maps a ranked retrieval result to a Decision. It is a pure
// function of its input: identical results always yield identical decisions.
type Policy struct {
	threshold float64
}

func NewPolicy(cfg Config) *Policy {
	threshold := cfg.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Policy{threshold: threshold}
}

func (p *Policy) Threshold() float64 {
	return p.threshold
}

// Decide resolves when the top score meets the threshold; a score exactly
// equal to the threshold resolves.
func (p *Policy) Decide(result retrieval.Result) Decision {
	if result.Empty() {
		return Decision{
			Outcome:    OutcomeEscalated,
			Confidence: 0.0,
			Reason:     ReasonNoResults,
		}
	}

	top := result.Top().Score
	if top < p.threshold {
		return Decision{
			Outcome:    OutcomeEscalated,
			Confidence: top,
			Reason:     ReasonLowConfidence,
		}
	}
	return Decision{
		Outcome:    OutcomeResolved,
		Confidence: top,
		Reason:     ReasonOK,
	}
}
