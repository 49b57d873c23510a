package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/scenario-engine/profile"
)

func TestDefaultProfile_IsValid(t *testing.T) {
	require.NoError(t, profile.Default().Validate())
}

func TestValidate_RejectsUnknownEnumerations(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*profile.Profile)
		field string
	}{
		{"segment", func(p *profile.Profile) { p.Segment = "astronaut" }, "segment_key"},
		{"mood", func(p *profile.Profile) { p.Mood = "ecstatic" }, "mood"},
		{"pay type", func(p *profile.Profile) { p.PayCycle.Type = "daily" }, "pay_cycle.type"},
		{"negative predisposition", func(p *profile.Profile) {
			p.Predispositions = map[string]float64{"coffee": -1}
		}, "predispositions.coffee"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := profile.Default()
			tc.edit(&p)

			err := p.Validate()

			var perr *profile.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.field, perr.Field)
		})
	}
}

func TestPayCycle_Interval(t *testing.T) {
	assert.Equal(t, 7, profile.PayCycle{Type: profile.PayWeekly}.Interval())
	assert.Equal(t, 14, profile.PayCycle{Type: profile.PayBiweekly}.Interval())
	assert.Equal(t, 15, profile.PayCycle{Type: profile.PaySemimonthly}.Interval())
	assert.Equal(t, 30, profile.PayCycle{Type: profile.PayMonthly}.Interval())
}

func TestPayAmount_FallsBackToDefault(t *testing.T) {
	p := profile.Default()
	p.PayCycle.Amount = 0
	assert.Equal(t, profile.DefaultPayAmount, p.PayAmount())
}

func TestEnumerations_AreComplete(t *testing.T) {
	assert.Len(t, profile.SegmentKeys(), 20)
	assert.Len(t, profile.MoodKeys(), 10)
}
