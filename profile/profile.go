/*
Package profile defines who is playing the simulation.

PURPOSE:
  A Profile fixes the player's life stage (segment), current mood, pay cycle,
  optional predispositions and starting balance. The engine reads it to bias
  scenario probabilities and to schedule paychecks. Profiles are immutable
  once a session starts.

KEY CONCEPTS:
  - Segment: life-stage archetype with a tag -> weight affinity table
  - Mood: short-term disposition with its own tag -> weight table
  - PayCycle: weekly / biweekly / semimonthly / monthly paycheck cadence
  - Predispositions: per-tag or per-scenario-name multipliers

SEE ALSO:
  - segments.go: Segment and mood tables
  - engine/probability.go: Consumes the tables
*/
package profile

import (
	"fmt"
	"sort"
)

// =============================================================================
// PAY CYCLE
// =============================================================================

type PayType string

const (
	PayWeekly      PayType = "weekly"
	PayBiweekly    PayType = "biweekly"
	PaySemimonthly PayType = "semimonthly"
	PayMonthly     PayType = "monthly"
)

// DefaultPayAmount is used when a profile carries no pay amount.
const DefaultPayAmount = 2000.0

type PayCycle struct {
	Type     PayType `json:"type" yaml:"type"`
	StartDay int     `json:"start_day" yaml:"start_day"`
	Amount   float64 `json:"amount" yaml:"amount"`
}

// Interval returns the cycle length in days. Semimonthly reports 15; its
// schedule also fires on the start day itself.
func (c PayCycle) Interval() int {
	switch c.Type {
	case PayWeekly:
		return 7
	case PayBiweekly:
		return 14
	case PaySemimonthly:
		return 15
	default:
		return 30
	}
}

// =============================================================================
// PROFILE
// =============================================================================

type SegmentKey string
type MoodKey string

type Profile struct {
	Name            string             `json:"name"`
	Segment         SegmentKey         `json:"segment_key"`
	Mood            MoodKey            `json:"mood"`
	PayCycle        PayCycle           `json:"pay_cycle"`
	Predispositions map[string]float64 `json:"predispositions,omitempty"`
	StartingBalance float64            `json:"base_balance"`
}

// Default returns the profile a new player gets when nothing is specified.
func Default() Profile {
	return Profile{
		Name:            "Player",
		Segment:         "early_career",
		Mood:            "optimistic",
		PayCycle:        PayCycle{Type: PayBiweekly, StartDay: 1, Amount: 2200},
		StartingBalance: 1500,
	}
}

// SegmentWeights returns the tag weights of the profile's segment.
// Unknown segments yield nil, which every tag factor treats as neutral.
func (p Profile) SegmentWeights() map[string]float64 {
	return Segments[p.Segment].TagWeights
}

// MoodWeights returns the tag weights of the profile's mood.
func (p Profile) MoodWeights() map[string]float64 {
	return Moods[p.Mood]
}

// PayAmount returns the configured pay amount, or DefaultPayAmount.
func (p Profile) PayAmount() float64 {
	if p.PayCycle.Amount == 0 {
		return DefaultPayAmount
	}
	return p.PayCycle.Amount
}

// Validate checks the profile against the fixed enumerations.
func (p Profile) Validate() error {
	if _, ok := Segments[p.Segment]; !ok {
		return &Error{Field: "segment_key", Value: string(p.Segment)}
	}
	if _, ok := Moods[p.Mood]; !ok {
		return &Error{Field: "mood", Value: string(p.Mood)}
	}
	switch p.PayCycle.Type {
	case PayWeekly, PayBiweekly, PaySemimonthly, PayMonthly:
	default:
		return &Error{Field: "pay_cycle.type", Value: string(p.PayCycle.Type)}
	}
	if p.PayCycle.Amount < 0 {
		return &Error{Field: "pay_cycle.amount", Value: fmt.Sprintf("%.2f", p.PayCycle.Amount)}
	}
	for k, v := range p.Predispositions {
		if v < 0 {
			return &Error{Field: "predispositions." + k, Value: fmt.Sprintf("%g", v)}
		}
	}
	return nil
}

// Error reports a profile field outside its allowed values.
type Error struct {
	Field string
	Value string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid profile %s: %q", e.Field, e.Value)
}

// SegmentKeys returns all segment keys, sorted.
func SegmentKeys() []SegmentKey {
	keys := make([]SegmentKey, 0, len(Segments))
	for k := range Segments {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MoodKeys returns all mood keys, sorted.
func MoodKeys() []MoodKey {
	keys := make([]MoodKey, 0, len(Moods))
	for k := range Moods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
