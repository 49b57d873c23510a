package hud_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func event(name string, cat engine.Category, amount float64, tags ...string) engine.CommittedEvent {
	return engine.CommittedEvent{Name: name, Category: cat, Amount: engine.Money(amount), Tags: tags}
}

func money(v float64) decimal.Decimal { return engine.Money(v) }

func assertMoney(t *testing.T, want float64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %v, got %s", want, got)
}

// =============================================================================
// ACCOUNT ROUTING
// =============================================================================

func TestAccounts_Routing(t *testing.T) {
	// GIVEN: A fresh HUD with $1,000 in checking
	// WHEN: A day with salary, dividend, savings transfer, stock buy and coffee
	// THEN: Each amount lands in its account and the total matches the net

	s := hud.New(money(1000))

	s.Apply([]engine.CommittedEvent{
		event("Paycheck", engine.CategoryIncome, 2000, "salary"),
		event("Dividend Income", engine.CategoryIncome, 25, "investment_income"),
		event("Savings Transfer", engine.CategoryExpense, -200, "savings"),
		event("Stock Purchase", engine.CategoryExpense, -300, "investment"),
		event("Coffee Shop", engine.CategoryExpense, -6, "dining"),
	})

	acc := s.Accounts()
	assertMoney(t, 1000+2000-200-300-6, acc.Checking)
	assertMoney(t, 200, acc.Savings)
	assertMoney(t, 325, acc.Investments)
	assertMoney(t, 1000+2000+25-200-300-6+200+300, acc.Total())
}

func TestAccounts_SavingContributionGoesToSavings(t *testing.T) {
	s := hud.New(money(500))

	s.Apply([]engine.CommittedEvent{{
		ScenarioID: engine.SpawnSavingContribution,
		Name:       "Saving Plan Contribution",
		Category:   engine.CategoryExpense,
		Amount:     money(-41.67),
	}})

	assertMoney(t, 458.33, s.Accounts().Checking)
	assertMoney(t, 41.67, s.Accounts().Savings)
}

func TestAccounts_NegativeIncomeIgnored(t *testing.T) {
	s := hud.New(money(100))

	s.Apply([]engine.CommittedEvent{event("Refund Reversal", engine.CategoryIncome, -20)})

	assertMoney(t, 100, s.Accounts().Checking)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth_StartsAt65(t *testing.T) {
	s := hud.New(money(0))

	assert.Equal(t, hud.StartingHealth, s.Health())
	assert.Equal(t, 65.0, s.Snapshot(1).Health)
}

func TestHealth_Deltas(t *testing.T) {
	cases := []struct {
		name   string
		events []engine.CommittedEvent
		want   float64
	}{
		{"quiet day", nil, 65},
		{"positive net capped at +3", []engine.CommittedEvent{event("Paycheck", engine.CategoryIncome, 2200)}, 68},
		{"small positive net", []engine.CommittedEvent{event("Side Gig", engine.CategoryIncome, 250)}, 65.5},
		{"negative net", []engine.CommittedEvent{event("Dinner", engine.CategoryExpense, -100)}, 64.5},
		{"negative net capped at -6", []engine.CommittedEvent{event("Rent", engine.CategoryBill, -1500)}, 59},
		{"emergency", []engine.CommittedEvent{event("Car Repair", engine.CategoryExpense, -200, "emergency")}, 61},
		{"fees", []engine.CommittedEvent{event("Overdraft Fee", engine.CategoryExpense, -20, "fees")}, 62.9},
		{"donation", []engine.CommittedEvent{event("Charity", engine.CategoryDonation, -20, "donation")}, 65.4},
		{"lottery ticket", []engine.CommittedEvent{event("Buy Lottery Ticket", engine.CategoryLottery, -2, "gambling")}, 64.79},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := hud.New(money(1000))

			s.Apply(tc.events)

			assert.InDelta(t, tc.want, s.Health(), 1e-9)
		})
	}
}

func TestHealth_SavingsBufferBonus(t *testing.T) {
	// GIVEN: $100 moved into savings
	// WHEN: The day is applied
	// THEN: -0.5 for the outflow, +1 for the savings tag, +1 buffer bonus

	s := hud.New(money(1000))

	s.Apply([]engine.CommittedEvent{event("Savings Transfer", engine.CategoryExpense, -100, "savings")})

	assert.InDelta(t, 66.5, s.Health(), 1e-9)
}

func TestHealth_Clamped(t *testing.T) {
	s := hud.New(money(0))

	for i := 0; i < 30; i++ {
		s.Apply([]engine.CommittedEvent{event("Car Repair", engine.CategoryExpense, -5000, "emergency", "fees")})
	}
	assert.Equal(t, 0.0, s.Health())

	for i := 0; i < 40; i++ {
		s.Apply([]engine.CommittedEvent{event("Paycheck", engine.CategoryIncome, 5000)})
	}
	assert.Equal(t, 100.0, s.Health())
}

// =============================================================================
// ACHIEVEMENTS
// =============================================================================

func TestAchievements(t *testing.T) {
	s := hud.New(money(0))

	s.Apply([]engine.CommittedEvent{event(engine.NamePaycheck, engine.CategoryIncome, 2000)})
	assert.True(t, s.Earned(hud.FirstPaycheck))
	assert.False(t, s.Earned(hud.Buffer500))

	s.Apply([]engine.CommittedEvent{event("Savings Transfer", engine.CategoryExpense, -500, "savings")})
	assert.True(t, s.Earned(hud.Buffer500))

	s.Apply([]engine.CommittedEvent{
		event("Charity", engine.CategoryDonation, -60, "donation"),
		event("Crowdfunding", engine.CategoryDonation, -40, "donation"),
	})
	assert.True(t, s.Earned(hud.Donor100))

	s.Apply([]engine.CommittedEvent{event(engine.NameLotteryResult, engine.CategoryIncome, 0)})
	assert.False(t, s.Earned(hud.LottoWin))
	s.Apply([]engine.CommittedEvent{event(engine.NameLotteryResult, engine.CategoryIncome, 12)})
	assert.True(t, s.Earned(hud.LottoWin))

	snap := s.Snapshot(6)
	assert.Equal(t, 4, snap.Trophies.Earned)
	assert.Equal(t, 5, snap.Trophies.Total)
}

func TestAchievements_Streak(t *testing.T) {
	// GIVEN: Six non-negative days, then a negative day, then seven quiet days
	// WHEN: The streak is tracked
	// THEN: The negative day resets it and streak_7 unlocks on the seventh

	s := hud.New(money(0))
	for i := 0; i < 6; i++ {
		s.Apply(nil)
	}
	s.Apply([]engine.CommittedEvent{event("Coffee", engine.CategoryExpense, -5)})
	assert.Equal(t, 0, s.Streak())

	for i := 0; i < 7; i++ {
		assert.False(t, s.Earned(hud.Streak7), "day %d", i)
		s.Apply(nil)
	}
	assert.True(t, s.Earned(hud.Streak7))
}

// =============================================================================
// SNAPSHOT
// =============================================================================

func TestCalendar(t *testing.T) {
	cases := []struct{ day, month, dom int }{
		{1, 1, 1},
		{30, 1, 30},
		{31, 2, 1},
		{65, 3, 5},
		{0, 1, 1},
	}
	for _, tc := range cases {
		month, dom := hud.Calendar(tc.day)
		assert.Equal(t, tc.month, month, "day %d", tc.day)
		assert.Equal(t, tc.dom, dom, "day %d", tc.day)
	}
}

func TestSnapshot(t *testing.T) {
	s := hud.New(money(1500))
	s.Apply([]engine.CommittedEvent{event("Rent", engine.CategoryBill, -1234.5)})

	snap := s.Snapshot(33)

	assert.Equal(t, 2, snap.Month)
	assert.Equal(t, 3, snap.DayInMonth)
	assert.Equal(t, "3rd day of month 2", snap.DateLabel)
	assert.Equal(t, "-$1,234.5", snap.LastNet)
	assertMoney(t, 265.5, snap.Accounts.Checking)
	require.NotNil(t, snap.Trophies.List)
	assert.Empty(t, snap.Trophies.List)
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{12.5, "$12.5"},
		{-1234.5, "-$1,234.5"},
		{2200, "$2,200"},
		{1000000.256, "$1,000,000.26"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, hud.FormatMoney(money(tc.in)), "%v", tc.in)
	}
}
