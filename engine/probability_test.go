package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/profile"
)

// neutralProfile has no segment or mood weights, so every tag factor is 1.
func neutralProfile() profile.Profile {
	p := profile.Default()
	p.Segment = "unknown"
	p.Mood = "unknown"
	return p
}

func TestCompose_Deterministic_ZeroWithUnitFactors(t *testing.T) {
	s := engine.Scenario{Name: "Rent", Deterministic: true, BaseDailyProb: 0.5}

	p, f := engine.Composer{}.Compose(s, profile.Default(), 1000, nil, 1)

	assert.Equal(t, 0.0, p)
	assert.Equal(t, engine.UnitFactors(), f)
}

func TestCompose_ClampedToMax(t *testing.T) {
	// GIVEN: A scenario whose raw product exceeds 1
	// WHEN: Composing its probability
	// THEN: The result is capped at 0.95 and the breakdown keeps the raw factors

	s := engine.Scenario{Name: "Coffee Shop", BaseDailyProb: 0.9}
	p := neutralProfile()
	p.Predispositions = map[string]float64{"coffee": 10}

	prob, f := engine.Composer{}.Compose(s, p, 1000, nil, 1)

	assert.Equal(t, engine.MaxProbability, prob)
	assert.Equal(t, 10.0, f.Predisposition)
	assert.Equal(t, 0.9, f.Base)
}

func TestCompose_ProductOfFactors(t *testing.T) {
	s := engine.Scenario{Name: "Movie Night", Tags: []string{"entertainment"}, BaseDailyProb: 0.1}
	p := neutralProfile()
	p.Predispositions = map[string]float64{"entertainment": 2}

	prob, f := engine.Composer{}.Compose(s, p, 100, nil, 1)

	// entertainment is discretionary and 100 < 200
	assert.Equal(t, 0.5, f.Balance)
	assert.InDelta(t, 0.1*2*0.5, prob, 1e-12)
}

func TestCompose_BalanceFactor(t *testing.T) {
	leisure := engine.Scenario{Name: "Concert", Tags: []string{"leisure"}, BaseDailyProb: 0.1}
	grocery := engine.Scenario{Name: "Groceries", Tags: []string{"groceries"}, BaseDailyProb: 0.1}
	p := neutralProfile()

	cases := []struct {
		name     string
		scenario engine.Scenario
		balance  float64
		want     float64
	}{
		{"negative discretionary", leisure, -10, 0.2},
		{"low discretionary", leisure, 199.99, 0.5},
		{"healthy discretionary", leisure, 200, 1},
		{"negative essential", grocery, -10, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, f := engine.Composer{}.Compose(tc.scenario, p, tc.balance, nil, 1)
			assert.Equal(t, tc.want, f.Balance)
		})
	}
}

func TestCompose_LowBalanceThresholdConfigurable(t *testing.T) {
	s := engine.Scenario{Name: "Concert", Tags: []string{"leisure"}, BaseDailyProb: 0.1}

	_, f := engine.Composer{LowBalance: 50}.Compose(s, neutralProfile(), 100, nil, 1)

	assert.Equal(t, 1.0, f.Balance)
}

func TestCompose_Cooldown(t *testing.T) {
	// GIVEN: "Coffee" happened on day 5 with a 3-day cooldown
	// WHEN: Composing on days 8 and 9
	// THEN: Day 8 is inside the window (inclusive), day 9 is not

	s := engine.Scenario{Name: "Coffee", BaseDailyProb: 0.2, CooldownDays: 3}
	history := []engine.CommittedEvent{{Day: 5, Name: "Coffee"}}

	p8, f8 := engine.Composer{}.Compose(s, neutralProfile(), 1000, history, 8)
	p9, f9 := engine.Composer{}.Compose(s, neutralProfile(), 1000, history, 9)

	assert.Equal(t, 0.0, p8)
	assert.Equal(t, 0.0, f8.Cooldown)
	assert.InDelta(t, 0.2, p9, 1e-12)
	assert.Equal(t, 1.0, f9.Cooldown)
}

func TestOccurredWithin_StopsAtWindowEdge(t *testing.T) {
	history := []engine.CommittedEvent{
		{Day: 1, Name: "Coffee"},
		{Day: 10, Name: "Lunch"},
	}

	assert.False(t, engine.OccurredWithin(history, "Coffee", 2, 11))
	assert.True(t, engine.OccurredWithin(history, "Coffee", 10, 11))
	assert.True(t, engine.OccurredWithin(history, "Lunch", 1, 11))
	assert.False(t, engine.OccurredWithin(history, "Lunch", 0, 10))
}

func TestTagFactor_GeometricMean(t *testing.T) {
	weights := map[string]float64{"a": 4, "b": 1, "c": 0.25}

	assert.InDelta(t, 2.0, engine.TagFactor([]string{"a", "b"}, weights), 1e-12)
	assert.InDelta(t, 1.0, engine.TagFactor([]string{"a", "c"}, weights), 1e-12)
	assert.InDelta(t, 2.0, engine.TagFactor([]string{"a", "unknown"}, weights), 1e-12)
	assert.Equal(t, 1.0, engine.TagFactor(nil, weights))
	assert.Equal(t, 1.0, engine.TagFactor([]string{"a"}, nil))
}

func TestTagFactor_UsesSegmentTable(t *testing.T) {
	p := profile.Default()
	w := p.SegmentWeights()

	var tag string
	for k := range w {
		tag = k
		break
	}
	if tag == "" {
		t.Skip("segment has no weights")
	}

	assert.InDelta(t, w[tag], engine.TagFactor([]string{tag}, w), 1e-9)
}

func TestPredispositionFactor_Matching(t *testing.T) {
	s := engine.Scenario{Name: "Bar / Night Out", Tags: []string{"Leisure", "social"}}

	cases := []struct {
		name  string
		preds map[string]float64
		want  float64
	}{
		{"none", nil, 1},
		{"tag match", map[string]float64{"social": 1.5}, 1.5},
		{"tag match is case insensitive", map[string]float64{"LEISURE": 2}, 2},
		{"name substring", map[string]float64{"night_out": 3}, 3},
		{"name with spaces", map[string]float64{"Night Out": 3}, 3},
		{"product of matches", map[string]float64{"social": 2, "bar": 0.5, "night": 4}, 4},
		{"unmatched ignored", map[string]float64{"coffee": 9}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, engine.PredispositionFactor(s, tc.preds), 1e-12)
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "coffee_shop", engine.NormalizeKey("  Coffee Shop "))
	assert.Equal(t, "", engine.NormalizeKey("   "))
}

func TestCompose_NeverNaN(t *testing.T) {
	s := engine.Scenario{Name: "Odd", Tags: []string{"x"}, BaseDailyProb: 0.3}
	p := neutralProfile()
	p.Predispositions = map[string]float64{"x": 0}

	prob, _ := engine.Composer{}.Compose(s, p, 0, nil, 1)

	assert.False(t, math.IsNaN(prob))
	assert.Equal(t, 0.0, prob)
}
