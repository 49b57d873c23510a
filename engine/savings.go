/*
savings.go - Savings-plan ledger

PURPOSE:
  Tracks pledges started from saving_pledge offers and emits a contribution
  on each due day until the plan is funded or past its due day.

CADENCE:
  Weekly plans contribute on the start day and every 7th day after it;
  daily plans contribute every day. Nothing is contributed after DueDay or
  once Contributed reaches Total.

AMORTIZATION:
  contribution = remaining / increments
  increments   = max(1, (DueDay - day) / 7)   weekly, integer division
               = 1                            daily
  floored at MinContribution, capped at the remaining balance. A skipped or
  late contribution is absorbed by the next one because every calculation
  starts from what is still outstanding.

Contributions are recorded by Contribute when their forced offer is
committed, so a discarded offer never counts toward the plan.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// MinContribution is the smallest auto-contribution.
var MinContribution = decimal.NewFromInt(5)

// DefaultPledgeDays is the plan duration when the scenario doesn't set one.
const DefaultPledgeDays = 90

// Contribution is a plan payment due today.
type Contribution struct {
	PlanID   string
	PlanName string
	Amount   decimal.Decimal
}

// SavingsLedger owns the engine's saving plans.
type SavingsLedger struct {
	plans []*SavingPlan
}

func NewSavingsLedger() *SavingsLedger {
	return &SavingsLedger{}
}

// Start registers a plan. Total is rounded to cents.
func (l *SavingsLedger) Start(id, name string, total decimal.Decimal, startDay, days int, freq Frequency) SavingPlan {
	if freq != FrequencyDaily {
		freq = FrequencyWeekly
	}
	plan := &SavingPlan{
		ID:          id,
		Name:        name,
		Total:       total.Abs().Round(2),
		StartDay:    startDay,
		DueDay:      startDay + days,
		Frequency:   freq,
		Contributed: decimal.Zero,
	}
	l.plans = append(l.plans, plan)
	return *plan
}

// Due returns the contributions owed on day, in plan creation order.
func (l *SavingsLedger) Due(day int) []Contribution {
	var out []Contribution
	for _, p := range l.plans {
		if !p.Active(day) || !p.dueOn(day) {
			continue
		}
		out = append(out, Contribution{PlanID: p.ID, PlanName: p.Name, Amount: p.contributionOn(day)})
	}
	return out
}

// Contribute records a payment toward a plan, never beyond its total.
// Unknown plan ids are ignored.
func (l *SavingsLedger) Contribute(planID string, amount decimal.Decimal) {
	for _, p := range l.plans {
		if p.ID != planID {
			continue
		}
		amt := decimal.Min(amount.Abs(), p.Remaining())
		p.Contributed = p.Contributed.Add(amt)
		return
	}
}

// Plans returns copies of every plan, including finished ones.
func (l *SavingsLedger) Plans() []SavingPlan {
	out := make([]SavingPlan, len(l.plans))
	for i, p := range l.plans {
		out[i] = *p
	}
	return out
}

func (p *SavingPlan) dueOn(day int) bool {
	if day < p.StartDay {
		return false
	}
	if p.Frequency == FrequencyDaily {
		return true
	}
	return (day-p.StartDay)%7 == 0
}

func (p *SavingPlan) contributionOn(day int) decimal.Decimal {
	remaining := p.Remaining()

	increments := 1
	if p.Frequency != FrequencyDaily {
		remainingDays := max(p.DueDay-day, 1)
		increments = max(1, remainingDays/7)
	}

	amt := remaining.Div(decimal.NewFromInt(int64(increments))).Round(2)
	amt = decimal.Max(amt, MinContribution)
	return decimal.Min(amt, remaining)
}
