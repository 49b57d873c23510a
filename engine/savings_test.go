package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/scenario-engine/engine"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSavingsLedger_WeeklyCadence(t *testing.T) {
	// GIVEN: A $500 weekly plan over 90 days starting day 10
	// WHEN: Walking every day and contributing what is due
	// THEN: Contributions fall on day 10 and every 7th day after, and sum to $500

	l := engine.NewSavingsLedger()
	plan := l.Start("plan-1", "Emergency Fund", dec("500"), 10, 90, engine.FrequencyWeekly)
	require.Equal(t, 100, plan.DueDay)

	var days []int
	total := decimal.Zero
	for d := 1; d <= 120; d++ {
		for _, c := range l.Due(d) {
			days = append(days, d)
			total = total.Add(c.Amount)
			l.Contribute(c.PlanID, c.Amount)
		}
	}

	// 12 increments; the day-87 payment clears the balance
	assert.Equal(t, []int{10, 17, 24, 31, 38, 45, 52, 59, 66, 73, 80, 87}, days)
	assert.True(t, total.Equal(dec("500")), "total %s", total)
	assert.True(t, l.Plans()[0].Contributed.Equal(dec("500")))
	assert.True(t, l.Plans()[0].Remaining().IsZero())
}

func TestSavingsLedger_FirstContributionAmortized(t *testing.T) {
	l := engine.NewSavingsLedger()
	l.Start("plan-1", "Emergency Fund", dec("500"), 10, 90, engine.FrequencyWeekly)

	due := l.Due(10)

	require.Len(t, due, 1)
	// 90 days left → 12 weekly increments
	assert.True(t, due[0].Amount.Equal(dec("41.67")), "got %s", due[0].Amount)
	assert.Equal(t, "Emergency Fund", due[0].PlanName)
}

func TestSavingsLedger_MinimumAndCap(t *testing.T) {
	l := engine.NewSavingsLedger()
	l.Start("small", "Small", dec("20"), 1, 90, engine.FrequencyWeekly)
	l.Start("tiny", "Tiny", dec("3"), 1, 90, engine.FrequencyWeekly)

	due := l.Due(1)

	require.Len(t, due, 2)
	assert.True(t, due[0].Amount.Equal(dec("5")), "floored at $5, got %s", due[0].Amount)
	assert.True(t, due[1].Amount.Equal(dec("3")), "capped at remaining, got %s", due[1].Amount)
}

func TestSavingsLedger_SkippedContributionSelfCorrects(t *testing.T) {
	l := engine.NewSavingsLedger()
	l.Start("p", "Laptop", dec("1000"), 1, 90, engine.FrequencyWeekly)

	first := l.Due(1)[0].Amount
	// Skip day 1 entirely; day 8 spreads the whole remaining amount
	second := l.Due(8)[0].Amount

	assert.True(t, second.GreaterThan(first), "%s should exceed %s", second, first)
}

func TestSavingsLedger_Daily(t *testing.T) {
	l := engine.NewSavingsLedger()
	l.Start("p", "Gifts", dec("50"), 3, 10, engine.FrequencyDaily)

	assert.Empty(t, l.Due(2))
	due := l.Due(3)
	require.Len(t, due, 1)
	assert.True(t, due[0].Amount.Equal(dec("50")))
}

func TestSavingsLedger_InactivePlans(t *testing.T) {
	l := engine.NewSavingsLedger()
	l.Start("p", "Vacation", dec("100"), 1, 14, engine.FrequencyWeekly)

	assert.Empty(t, l.Due(22), "past due day")

	l.Contribute("p", dec("100"))
	assert.Empty(t, l.Due(8), "fully funded")

	// Overpayment never pushes remaining below zero
	l.Contribute("p", dec("10"))
	assert.True(t, l.Plans()[0].Contributed.Equal(dec("100")))
}

func TestSavingsLedger_UnknownFrequencyIsWeekly(t *testing.T) {
	l := engine.NewSavingsLedger()

	plan := l.Start("p", "Fund", dec("100.456"), 1, 30, "monthly")

	assert.Equal(t, engine.FrequencyWeekly, plan.Frequency)
	assert.True(t, plan.Total.Equal(dec("100.46")))
}
