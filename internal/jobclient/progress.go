package jobclient

import "strings"

// PhaseWeight maps a phase-name substring to a presentation percentage.
type PhaseWeight struct {
	Match   string
	Percent int
}

// minPercent is shown before any phase label has been observed.
const minPercent = 20

func DefaultPhaseWeights() []PhaseWeight {
	return []PhaseWeight{
		{Match: "text", Percent: 30},
		{Match: "requirement", Percent: 50},
		{Match: "compliance", Percent: 70},
		{Match: "report", Percent: 90},
	}
}

// ProgressMapper turns the server's free-form phase labels into completion
// percentages. The mapping is total: unknown labels fall back to minPercent.
type ProgressMapper struct {
	weights []PhaseWeight
}

func NewProgressMapper(weights []PhaseWeight) *ProgressMapper {
	if len(weights) == 0 {
		weights = DefaultPhaseWeights()
	}

	return &ProgressMapper{weights: weights}
}

func (m *ProgressMapper) Percent(phase string) int {
	phase = strings.ToLower(phase)

	for _, w := range m.weights {
		if w.Match != "" && strings.Contains(phase, strings.ToLower(w.Match)) {
			return w.Percent
		}
	}

	return minPercent
}
