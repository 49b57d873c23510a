/*
options.go - Closed option menus per scenario category

MENUS:
  bill           pay_now (100%) | pay_partial (50% now, 50% +5% via
                 deferred_payment in 3 days) | skip (0 now, 90% chance of
                 late_fee_generic in 5 days)
  expense        skip | budget (50%) | regular (100%) | splurge (150%)
  donation       skip | small (min(50%, $50)) | regular | large (min(200%, $200))
  income         accept | delay_1d (re-spawned tomorrow) | decline
  saving_pledge  start | start_smaller (80%) | start_bigger (120%) | decline
  lottery        skip | buy_1 | buy_5 (five independent lottery_result spawns)
  other          accept | delay | decline when the amount is >= 0,
                 otherwise skip | regular ("Proceed")

All amounts carry the category sign and are rounded to cents.

SCENARIO TRIGGERS:
  Lottery scenarios supply the per-ticket triggers. Saving pledges read the
  start delay and frequency from their saving_contribution trigger. For every
  other category the scenario's triggers ride on each option that settles a
  non-zero amount.
*/
package engine

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

const (
	partialShare    = 0.5
	deferredPremium = 1.05
	deferredAfter   = 3
	lateFeeAfter    = 5
	lateFeeProb     = 0.9
	lotteryTickets  = 5
)

// LateFeeAmounts is the fixed set a skipped bill's late fee is drawn from,
// whatever amount the catalog gives late_fee_generic.
var LateFeeAmounts = []float64{15, 25, 35, 45}

type OptionBuilder struct {
	sampler *Sampler

	// PledgeDays applies to pledge scenarios without their own duration.
	// Zero means DefaultPledgeDays.
	PledgeDays int
}

func NewOptionBuilder(s *Sampler) *OptionBuilder {
	return &OptionBuilder{sampler: s}
}

// Build returns the menu for s given its signed proposed amount.
func (b *OptionBuilder) Build(s Scenario, proposed float64) []Option {
	switch s.Category {
	case CategoryBill:
		return b.bill(s, proposed)
	case CategoryExpense:
		return b.expense(s, proposed)
	case CategoryDonation:
		return b.donation(s, proposed)
	case CategoryIncome:
		return b.income(s, proposed)
	case CategorySavingPledge:
		return b.pledge(s, proposed)
	case CategoryLottery:
		return b.lottery(s, proposed)
	default:
		return b.generic(s, proposed)
	}
}

func (b *OptionBuilder) bill(s Scenario, amt float64) []Option {
	deferred := amt * partialShare * deferredPremium
	fee := -b.sampler.Draw(AmountSpec{Dist: DistChoice, Options: LateFeeAmounts}, PayContext{})
	return []Option{
		b.option(s, "pay_now", "Pay now", amt),
		b.option(s, "pay_partial", "Pay 50% now, rest later (+5%)", amt*partialShare,
			spawnTrigger(SpawnDeferredPayment, deferredAfter, 1, deferred, "Deferred remainder +5%")),
		b.option(s, "skip", "Skip (risk late fee)", 0,
			spawnTrigger(SpawnLateFee, lateFeeAfter, lateFeeProb, fee, "Late fee")),
	}
}

func (b *OptionBuilder) expense(s Scenario, amt float64) []Option {
	return []Option{
		b.option(s, "skip", "Skip", 0),
		b.option(s, "budget", "Budget option (~50%)", amt*0.5),
		b.option(s, "regular", "Regular", amt),
		b.option(s, "splurge", "Splurge (~150%)", amt*1.5),
	}
}

func (b *OptionBuilder) donation(s Scenario, amt float64) []Option {
	base := math.Max(math.Abs(amt), 10)
	return []Option{
		b.option(s, "skip", "Skip", 0),
		b.option(s, "small", "Small donation", -math.Min(base*0.5, 50)),
		b.option(s, "regular", "Regular donation", -base),
		b.option(s, "large", "Large donation", -math.Min(base*2, 200)),
	}
}

func (b *OptionBuilder) income(s Scenario, amt float64) []Option {
	return []Option{
		b.option(s, "accept", "Accept now", amt),
		b.option(s, "delay_1d", "Delay to tomorrow", 0,
			spawnTrigger(s.ID, 1, 1, amt, "Delayed income")),
		b.option(s, "decline", "Decline", 0),
	}
}

func (b *OptionBuilder) pledge(s Scenario, amt float64) []Option {
	total := math.Abs(amt)
	if total == 0 {
		total = 500
	}

	days := s.PledgeDays
	if days <= 0 {
		days = b.PledgeDays
	}
	if days <= 0 {
		days = DefaultPledgeDays
	}
	startIn, freq := 1, FrequencyWeekly
	for _, t := range s.Triggers {
		if t.Spawn != SpawnSavingContribution {
			continue
		}
		startIn = t.AfterDays
		if Frequency(t.Data.Frequency) == FrequencyDaily {
			freq = FrequencyDaily
		}
		break
	}

	start := func(code, label string, scale float64) Option {
		t := Money(total * scale)
		return Option{
			Code:   code,
			Label:  fmt.Sprintf("%s ($%s)", label, humanize.Comma(t.IntPart())),
			Amount: Money(0),
			Pledge: &PledgeEffect{Total: t, Days: days, StartIn: startIn, Frequency: freq},
		}
	}
	return []Option{
		start("start", "Start pledge", 1),
		start("start_smaller", "Start smaller pledge", 0.8),
		start("start_bigger", "Start larger pledge", 1.2),
		{Code: "decline", Label: "Decline pledge", Amount: Money(0)},
	}
}

func (b *OptionBuilder) lottery(s Scenario, amt float64) []Option {
	cost := -math.Abs(amt)
	ticket := s.Triggers
	if len(ticket) == 0 {
		ticket = []TriggerTemplate{{Spawn: SpawnLotteryResult, AfterDays: 1, Prob: 1}}
	}

	five := make([]TriggerTemplate, 0, len(ticket)*lotteryTickets)
	for i := 0; i < lotteryTickets; i++ {
		five = append(five, ticket...)
	}
	return []Option{
		{Code: "skip", Label: "Skip", Amount: Money(0)},
		{Code: "buy_1", Label: "Buy 1 ticket", Amount: Money(cost), Triggers: append([]TriggerTemplate(nil), ticket...)},
		{Code: "buy_5", Label: "Buy 5 tickets", Amount: Money(cost * lotteryTickets), Triggers: five},
	}
}

func (b *OptionBuilder) generic(s Scenario, amt float64) []Option {
	if amt >= 0 {
		return []Option{
			b.option(s, "accept", "Accept", amt),
			b.option(s, "delay", "Delay by 1 day", 0, spawnTrigger(s.ID, 1, 1, amt, "Delayed")),
			b.option(s, "decline", "Decline", 0),
		}
	}
	return []Option{
		b.option(s, "skip", "Skip", 0),
		b.option(s, "regular", "Proceed", amt),
	}
}

// option attaches the scenario's own triggers when the option moves money.
func (b *OptionBuilder) option(s Scenario, code, label string, amount float64, extra ...TriggerTemplate) Option {
	opt := Option{Code: code, Label: label, Amount: Money(amount)}
	opt.Triggers = append(opt.Triggers, extra...)
	if !opt.Amount.IsZero() {
		opt.Triggers = append(opt.Triggers, s.Triggers...)
	}
	return opt
}

func spawnTrigger(target ScenarioID, after int, prob, override float64, desc string) TriggerTemplate {
	v, _ := Money(override).Float64()
	return TriggerTemplate{
		Spawn:     target,
		AfterDays: after,
		Prob:      prob,
		Data:      TriggerData{OverrideAmount: &v, ExtraDesc: desc},
	}
}
