package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidence_Lower(t *testing.T) {
	tests := []struct {
		a, b, want Confidence
	}{
		{ConfidenceVerified, ConfidenceAIGenerated, ConfidenceAIGenerated},
		{ConfidenceAIGenerated, ConfidenceVerified, ConfidenceAIGenerated},
		{ConfidenceLow, ConfidenceVerified, ConfidenceLow},
		{ConfidenceVerified, ConfidenceVerified, ConfidenceVerified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.Lower(tt.b), "%s.Lower(%s)", tt.a, tt.b)
	}
}

func TestPlanOption_DemoteNeverRaises(t *testing.T) {
	opt := PlanOption{ConfidenceScore: 0.3, Confidence: ConfidenceLow}
	opt.Demote(0.55, ConfidenceAIGenerated)

	assert.Equal(t, 0.3, opt.ConfidenceScore)
	assert.Equal(t, ConfidenceLow, opt.Confidence)
}

func TestPlanSection_IsMarker(t *testing.T) {
	assert.True(t, PlanSection{Title: "Деловая встреча", TimeRange: "15:00–16:00"}.IsMarker())
	assert.False(t, PlanSection{Reserves: []PlanOption{{}}}.IsMarker())
	assert.False(t, PlanSection{Options: []PlanOption{{}}}.IsMarker())
}

func TestPlan_SnapshotIsDeep(t *testing.T) {
	d := 120.0
	p := &Plan{
		ID:    uuid.New(),
		Title: "День в Алматы",
		Sections: []PlanSection{{
			Title: "Кофе",
			Options: []PlanOption{{
				Stop: Stop{PlaceID: uuid.New(), Location: &Coordinate{Lat: 43.2, Lon: 76.9}, DistanceFromPrevM: &d},
				Why:  "вкусный кофе",
			}},
		}},
		Pool: []uuid.UUID{uuid.New()},
	}

	snap := p.Snapshot()
	require.Equal(t, p.Sections, snap.Sections)

	snap.Sections[0].Options[0].Why = "changed"
	snap.Sections[0].Options[0].Stop.Location.Lat = 0
	snap.Pool[0] = uuid.Nil

	assert.Equal(t, "вкусный кофе", p.Sections[0].Options[0].Why)
	assert.Equal(t, 43.2, p.Sections[0].Options[0].Stop.Location.Lat)
	assert.NotEqual(t, uuid.Nil, p.Pool[0])
}

func TestPlan_UsedIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := &Plan{Sections: []PlanSection{
		{Options: []PlanOption{{Stop: Stop{PlaceID: a}}}, Reserves: []PlanOption{{Stop: Stop{PlaceID: b}}}},
		{Title: "marker"},
	}}

	used := p.UsedIDs()
	assert.Len(t, used, 2)
	assert.Contains(t, used, a)
	assert.Contains(t, used, b)
}

func TestIssueType_Severe(t *testing.T) {
	assert.True(t, IssueFabricatedDetail.Severe())
	assert.True(t, IssueTemporalImpossibility.Severe())
	assert.True(t, IssueLogicalContradiction.Severe())
	assert.False(t, IssueGeographicError.Severe())
	assert.False(t, IssueType("other").Severe())
}
