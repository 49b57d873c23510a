/*
probability.go - Daily occurrence probability for non-deterministic scenarios

COMPOSITION:
  p = base × segment × mood × predisposition × balance × cooldown
  clamped to [0, MaxProbability].

  segment, mood:   geometric mean over the scenario's tags of the weight table,
                   absent tags weigh 1.0 and an empty tag set yields 1.0
  predisposition:  product of every matching predisposition (see below)
  balance:         0.2 when the balance is negative, 0.5 below the low-balance
                   threshold, for scenarios carrying a discretionary tag
  cooldown:        0 while a same-named event sits inside the cooldown window

PREDISPOSITION MATCHING:
  Keys and scenario names are normalized by lowercasing, trimming and replacing
  spaces with underscores. A key matches when it equals one of the scenario's
  tags (lowercased) or is a substring of the normalized scenario name, so
  "coffee" matches "Coffee Shop" and "night_out" matches "Bar / Night Out".

SEE ALSO:
  - profile/segments.go: Weight tables
*/
package engine

import (
	"math"
	"strings"

	"github.com/warp/scenario-engine/profile"
)

const (
	// MaxProbability caps any single scenario's daily chance.
	MaxProbability = 0.95

	// DefaultLowBalance is the balance under which discretionary scenarios halve.
	DefaultLowBalance = 200.0
)

// Composer computes daily probabilities. It holds no randomness.
type Composer struct {
	LowBalance float64
}

// Compose returns the clamped probability and its factor breakdown.
// Deterministic scenarios report 0 with unit factors.
func (c Composer) Compose(s Scenario, p profile.Profile, balance float64, history []CommittedEvent, day int) (float64, Factors) {
	if s.Deterministic {
		return 0, UnitFactors()
	}

	f := Factors{
		Base:           s.BaseDailyProb,
		Segment:        TagFactor(s.Tags, p.SegmentWeights()),
		Mood:           TagFactor(s.Tags, p.MoodWeights()),
		Predisposition: PredispositionFactor(s, p.Predispositions),
		Balance:        c.balanceFactor(s, balance),
		Cooldown:       1,
	}
	if OccurredWithin(history, s.Name, s.CooldownDays, day) {
		f.Cooldown = 0
	}

	prob := f.Base * f.Segment * f.Mood * f.Predisposition * f.Balance * f.Cooldown
	return math.Min(math.Max(prob, 0), MaxProbability), f
}

func (c Composer) balanceFactor(s Scenario, balance float64) float64 {
	if !s.discretionary() {
		return 1
	}
	low := c.LowBalance
	if low == 0 {
		low = DefaultLowBalance
	}
	switch {
	case balance < 0:
		return 0.2
	case balance < low:
		return 0.5
	default:
		return 1
	}
}

// TagFactor is the geometric mean of the weights of tags. Tags missing from
// weights count as 1.0; no tags at all yields 1.0.
func TagFactor(tags []string, weights map[string]float64) float64 {
	if len(tags) == 0 {
		return 1
	}
	var logSum float64
	for _, t := range tags {
		w, ok := weights[t]
		if !ok {
			w = 1
		}
		logSum += math.Log(math.Max(w, 1e-9))
	}
	return math.Exp(logSum / float64(len(tags)))
}

// PredispositionFactor multiplies every predisposition matching the scenario.
func PredispositionFactor(s Scenario, predispositions map[string]float64) float64 {
	if len(predispositions) == 0 {
		return 1
	}
	name := NormalizeKey(s.Name)
	factor := 1.0
	for k, v := range predispositions {
		key := NormalizeKey(k)
		if key == "" {
			continue
		}
		if matchesTag(key, s.Tags) || strings.Contains(name, key) {
			factor *= v
		}
	}
	return factor
}

// NormalizeKey lowercases, trims and replaces spaces with underscores.
func NormalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func matchesTag(key string, tags []string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == key {
			return true
		}
	}
	return false
}

// OccurredWithin reports whether an event named name happened within days of
// today, inclusive. History must be ordered by day; the scan stops at the
// first entry older than the window.
func OccurredWithin(history []CommittedEvent, name string, days, today int) bool {
	if days <= 0 {
		return false
	}
	for i := len(history) - 1; i >= 0; i-- {
		ev := history[i]
		if today-ev.Day > days {
			break
		}
		if ev.Name == name {
			return true
		}
	}
	return false
}
