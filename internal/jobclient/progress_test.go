package jobclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurochkinivan/compliance_client/internal/jobclient"
)

func TestProgressMapper_DefaultWeights(t *testing.T) {
	t.Parallel()

	mapper := jobclient.NewProgressMapper(nil)

	tests := []struct {
		phase string
		want  int
	}{
		{phase: "", want: 20},
		{phase: "Warming up", want: 20},
		{phase: "Extracting text", want: 30},
		{phase: "Extracting requirements", want: 50},
		{phase: "Checking compliance", want: 70},
		{phase: "Generating report", want: 90},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapper.Percent(tt.phase), "phase %q", tt.phase)
	}
}

func TestProgressMapper_MatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	mapper := jobclient.NewProgressMapper([]jobclient.PhaseWeight{
		{Match: "Phase 2", Percent: 60},
	})

	assert.Equal(t, 60, mapper.Percent("running PHASE 2 of 3"))
}

func TestProgressMapper_FirstMatchWins(t *testing.T) {
	t.Parallel()

	mapper := jobclient.NewProgressMapper([]jobclient.PhaseWeight{
		{Match: "report", Percent: 90},
		{Match: "generating", Percent: 40},
	})

	assert.Equal(t, 90, mapper.Percent("Generating report"))
}

func TestProgressMapper_UnknownPhaseFallsBack(t *testing.T) {
	t.Parallel()

	mapper := jobclient.NewProgressMapper([]jobclient.PhaseWeight{
		{Match: "extract", Percent: 30},
	})

	assert.Equal(t, 20, mapper.Percent("something entirely new"))
}
