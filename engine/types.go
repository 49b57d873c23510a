/*
Package engine provides the day-by-day scenario selection engine.

PURPOSE:
  Each simulated day the engine decides which life events are offered to the
  player, samples their amounts, builds a closed menu of response options and,
  once the player has chosen, commits the outcome into a running balance and an
  append-only history. Chosen options can schedule future events (deferred
  payments, late fees, lottery results) and start savings plans.

KEY CONCEPTS IN THIS FILE (types.go):
  - Scenario: catalog template for a possible life event
  - Offer / Option: the day-scoped proposal and its mutually exclusive responses
  - CommittedEvent: immutable history record
  - SavingPlan: a pledge amortized into periodic contributions

DESIGN PRINCIPLES:
  1. Determinism: all randomness comes from one seeded source owned by the Engine
  2. Precision: settled money uses decimal.Decimal rounded to cents
  3. Closed menus: options are a fixed set per category, never free-form amounts
  4. Append-only: history entries are never modified once committed

USAGE:
  cat, _ := engine.NewCatalog(scenarios)
  eng := engine.New(cat, engine.WithSeed(42))
  offers, _ := eng.Start(profile.Default())
  events, _ := eng.Commit(1, map[string]string{offers[0].ID: "regular"})

SEE ALSO:
  - sampler.go: Amount distributions
  - probability.go: Daily occurrence probability
  - schedule.go: Deterministic schedules
  - options.go: Option menus per category
  - engine.go: Propose / Commit
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY
// =============================================================================

type Category string

const (
	CategoryIncome       Category = "income"
	CategoryBill         Category = "bill"
	CategoryExpense      Category = "expense"
	CategoryDonation     Category = "donation"
	CategorySavingPledge Category = "saving_pledge"
	CategoryLottery      Category = "lottery"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryIncome, CategoryBill, CategoryExpense, CategoryDonation, CategorySavingPledge, CategoryLottery:
		return true
	}
	return false
}

// Sign is +1 for income and -1 for every outflow category.
func (c Category) Sign() float64 {
	if c == CategoryIncome {
		return 1
	}
	return -1
}

// =============================================================================
// PUBLIC VOCABULARY - consumed by the HUD layer, keep stable
// =============================================================================

const (
	NamePaycheck      = "Paycheck"
	NameLotteryResult = "Lottery Result"

	TagInvestment       = "investment"
	TagInvestmentIncome = "investment_income"
	TagSavings          = "savings"
	TagDonation         = "donation"
	TagEmergency        = "emergency"
	TagFees             = "fees"
	TagGambling         = "gambling"
)

// DiscretionaryTags are suppressed when the balance is low or negative.
var DiscretionaryTags = map[string]bool{
	"leisure": true, "entertainment": true, "shopping": true, "luxury": true,
	"travel": true, "donation": true, "gambling": true, "electronics": true,
	"clothes": true, "sports": true, "gift": true,
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ScenarioID string

// Reserved spawn targets. Every catalog resolves these; NewCatalog injects
// built-in definitions for any that are missing.
const (
	SpawnSavingContribution ScenarioID = "saving_contribution"
	SpawnLotteryResult      ScenarioID = "lottery_result"
	SpawnDeferredPayment    ScenarioID = "deferred_payment"
	SpawnLateFee            ScenarioID = "late_fee_generic"
)

// ReservedTargets returns the closed set of virtual spawn targets.
func ReservedTargets() []ScenarioID {
	return []ScenarioID{SpawnSavingContribution, SpawnLotteryResult, SpawnDeferredPayment, SpawnLateFee}
}

// =============================================================================
// AMOUNT SPECIFICATION
// =============================================================================

type Dist string

const (
	DistFixed        Dist = "fixed"
	DistUniform      Dist = "uniform"
	DistNormal       Dist = "normal"
	DistLognormal    Dist = "lognormal"
	DistPercentOfPay Dist = "percent_of_pay"
	DistChoice       Dist = "choice"
)

// AmountSpec declares how a scenario's magnitude is drawn. Only the fields
// relevant to Dist are read.
type AmountSpec struct {
	Dist    Dist      `json:"dist" yaml:"dist"`
	Value   float64   `json:"value,omitempty" yaml:"value,omitempty"`
	Low     float64   `json:"low,omitempty" yaml:"low,omitempty"`
	High    float64   `json:"high,omitempty" yaml:"high,omitempty"`
	Mean    float64   `json:"mean,omitempty" yaml:"mean,omitempty"`
	SD      float64   `json:"sd,omitempty" yaml:"sd,omitempty"`
	Sigma   float64   `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Min     *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Pct     float64   `json:"pct,omitempty" yaml:"pct,omitempty"`
	Options []float64 `json:"options,omitempty" yaml:"options,omitempty"`
	Weights []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// =============================================================================
// SCHEDULE & TRIGGERS
// =============================================================================

type ScheduleKind string

const (
	ScheduleEveryNDays ScheduleKind = "every_n_days"
	SchedulePayCycle   ScheduleKind = "pay_cycle"
)

type Schedule struct {
	Kind   ScheduleKind `json:"type" yaml:"type"`
	N      int          `json:"n,omitempty" yaml:"n,omitempty"`
	Offset int          `json:"offset,omitempty" yaml:"offset,omitempty"`
}

type TriggerData struct {
	OverrideAmount *float64 `json:"override_amount,omitempty" yaml:"override_amount,omitempty"`
	ExtraDesc      string   `json:"extra_desc,omitempty" yaml:"extra_desc,omitempty"`
	Frequency      string   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// TriggerTemplate schedules a future spawn. The Bernoulli trial at Prob runs
// when the trigger is scheduled, not when it matures.
type TriggerTemplate struct {
	Spawn     ScenarioID  `json:"spawn" yaml:"spawn"`
	AfterDays int         `json:"after_days" yaml:"after_days"`
	Prob      float64     `json:"prob" yaml:"prob"`
	Data      TriggerData `json:"data,omitempty" yaml:"data,omitempty"`
}

// =============================================================================
// SCENARIO - Catalog entry (immutable)
// =============================================================================

type Scenario struct {
	ID            ScenarioID
	Name          string
	Category      Category
	Tags          []string
	Description   string
	Amount        AmountSpec
	BaseDailyProb float64
	Deterministic bool
	Schedule      *Schedule
	CooldownDays  int
	Triggers      []TriggerTemplate

	// PledgeDays is the duration of plans started from a saving_pledge
	// scenario. Zero means DefaultPledgeDays.
	PledgeDays int
}

func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s Scenario) discretionary() bool {
	for _, t := range s.Tags {
		if DiscretionaryTags[t] {
			return true
		}
	}
	return false
}

// =============================================================================
// PROBABILITY AUDIT TRAIL
// =============================================================================

// Factors records each multiplicative term of a composed probability.
type Factors struct {
	Base           float64 `json:"base"`
	Segment        float64 `json:"segment"`
	Mood           float64 `json:"mood"`
	Predisposition float64 `json:"predisposition"`
	Balance        float64 `json:"balance"`
	Cooldown       float64 `json:"cooldown"`
}

// UnitFactors is the breakdown reported for anything not composed.
func UnitFactors() Factors {
	return Factors{Base: 0, Segment: 1, Mood: 1, Predisposition: 1, Balance: 1, Cooldown: 1}
}

// =============================================================================
// OFFER & OPTION - Day-scoped proposals
// =============================================================================

type OfferKind string

const (
	OfferChoice OfferKind = "choice" // player picks one option
	OfferForced OfferKind = "forced" // single option, no player choice
)

type OfferSource string

const (
	SourceScheduled     OfferSource = "scheduled"
	SourceProbabilistic OfferSource = "probabilistic"
	SourceTriggered     OfferSource = "triggered"
	SourcePlan          OfferSource = "plan"
)

// OptionForced is the code of the only option on a forced offer.
const OptionForced = "forced"

// PledgeEffect starts a savings plan when its option is committed.
type PledgeEffect struct {
	Total     decimal.Decimal
	Days      int
	StartIn   int
	Frequency Frequency
}

type Option struct {
	Code     string
	Label    string
	Amount   decimal.Decimal
	Triggers []TriggerTemplate
	Pledge   *PledgeEffect
}

type Offer struct {
	ID             string
	Day            int
	ScenarioID     ScenarioID
	Name           string
	Category       Category
	Tags           []string
	Description    string
	Kind           OfferKind
	Source         OfferSource
	Deterministic  bool
	ProposedAmount decimal.Decimal
	Probability    float64
	Factors        Factors
	Options        []Option

	// PlanID is set on savings contributions.
	PlanID string
}

// Option returns the option with the given code, falling back to the first.
func (o Offer) Option(code string) Option {
	for _, opt := range o.Options {
		if opt.Code == code {
			return opt
		}
	}
	return o.Options[0]
}

// =============================================================================
// COMMITTED EVENT - Append-only history record
// =============================================================================

type CommittedEvent struct {
	ID             string
	Day            int
	ScenarioID     ScenarioID
	Name           string
	Category       Category
	Tags           []string
	Description    string
	Deterministic  bool
	ProposedAmount decimal.Decimal
	Amount         decimal.Decimal
	Option         string
	OptionLabel    string
	Probability    float64
	Factors        Factors
}

func (e CommittedEvent) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Days splits a day-ordered history into one slice per day. Days without
// events are absent.
func Days(events []CommittedEvent) [][]CommittedEvent {
	var out [][]CommittedEvent
	for i, ev := range events {
		if i == 0 || ev.Day != events[i-1].Day {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], ev)
	}
	return out
}

// =============================================================================
// SAVING PLAN
// =============================================================================

type Frequency string

const (
	FrequencyWeekly Frequency = "weekly"
	FrequencyDaily  Frequency = "daily"
)

type SavingPlan struct {
	ID          string
	Name        string
	Total       decimal.Decimal
	StartDay    int
	DueDay      int
	Frequency   Frequency
	Contributed decimal.Decimal
}

// Remaining is never negative.
func (p SavingPlan) Remaining() decimal.Decimal {
	r := p.Total.Sub(p.Contributed)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Active reports whether the plan can still receive contributions on day.
func (p SavingPlan) Active(day int) bool {
	return p.Remaining().IsPositive() && day <= p.DueDay
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// Money rounds a float amount to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
