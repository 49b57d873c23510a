package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/warp/scenario-engine/engine"
)

// =============================================================================
// DEFAULT CATALOG
// =============================================================================
//
// Roughly a hundred everyday money events: the paycheck, monthly bills, weekly
// essentials, discretionary spending, emergencies, gifts and donations, extra
// income, investing and debt, lottery tickets, saving pledges, travel, large
// purchases, education, health, moving, government fees, refunds and social
// outings, plus the four reserved spawn targets.

// Default returns the built-in catalog. It panics if the built-in table is
// invalid, which the package tests rule out.
func Default() *engine.Catalog {
	cat, err := engine.NewCatalog(DefaultScenarios())
	if err != nil {
		panic(fmt.Sprintf("catalog: default catalog invalid: %v", err))
	}
	return cat
}

// DefaultScenarios returns a fresh copy of the built-in scenario table.
func DefaultScenarios() []engine.Scenario {
	var out []engine.Scenario

	out = append(out, engine.Scenario{
		ID:            "paycheck",
		Name:          engine.NamePaycheck,
		Category:      engine.CategoryIncome,
		Tags:          []string{"salary", "recurring"},
		Description:   "Regular salary paycheck determined by user's pay cycle.",
		Amount:        fixed(2000),
		Deterministic: true,
		Schedule:      &engine.Schedule{Kind: engine.SchedulePayCycle},
	})

	for i, b := range monthlyBills {
		avg := b.avg
		out = append(out, engine.Scenario{
			ID:            engine.ScenarioID(Slug(b.name)),
			Name:          b.name,
			Category:      engine.CategoryBill,
			Tags:          append(slices.Clone(b.tags), "recurring"),
			Description:   "Recurring monthly bill: " + b.name + ".",
			Amount:        lognormal(avg, avg*0.2, max(avg*0.5, 5)),
			Deterministic: true,
			Schedule:      &engine.Schedule{Kind: engine.ScheduleEveryNDays, N: 30, Offset: (i + 1) % 30},
		})
	}

	for i, w := range weeklyEssentials {
		out = append(out, engine.Scenario{
			ID:            engine.ScenarioID(Slug(w.name)),
			Name:          w.name,
			Category:      engine.CategoryExpense,
			Tags:          append(slices.Clone(w.tags), "recurring"),
			Description:   "Regular weekly spend on " + strings.ToLower(w.name) + ".",
			Amount:        lognormal(w.avg, w.avg*0.4, 10),
			Deterministic: true,
			Schedule:      &engine.Schedule{Kind: engine.ScheduleEveryNDays, N: 7, Offset: (i + 1) % 7},
		})
	}

	out = appendRandom(out, engine.CategoryExpense, "%s discretionary spend.", dayToDay)
	out = appendRandom(out, engine.CategoryExpense, "%s unexpected expense.", emergencies)

	for _, g := range giving {
		cat := engine.CategoryExpense
		if slices.Contains(g.tags, engine.TagDonation) {
			cat = engine.CategoryDonation
		}
		out = appendRandom(out, cat, "%s discretionary outflow.", []randomEvent{g})
	}

	out = appendRandom(out, engine.CategoryIncome, "%s received.", extraIncome)
	out = appendRandom(out, engine.CategoryExpense, "%s discretionary outflow.", investDebt)

	out = append(out, engine.Scenario{
		ID:            "buy_lottery_ticket",
		Name:          "Buy Lottery Ticket",
		Category:      engine.CategoryLottery,
		Tags:          []string{engine.TagGambling},
		Description:   "Purchase a lottery ticket.",
		Amount:        fixed(2),
		BaseDailyProb: 0.03,
		Triggers:      []engine.TriggerTemplate{{Spawn: engine.SpawnLotteryResult, AfterDays: 1, Prob: 1}},
	})

	for _, g := range savingGoals {
		out = append(out, engine.Scenario{
			ID:            engine.ScenarioID(Slug(g.name)),
			Name:          g.name,
			Category:      engine.CategorySavingPledge,
			Tags:          slices.Clone(g.tags),
			Description:   g.desc,
			Amount:        fixed(g.total),
			BaseDailyProb: g.prob,
			CooldownDays:  45,
			PledgeDays:    g.days,
			Triggers: []engine.TriggerTemplate{{
				Spawn:     engine.SpawnSavingContribution,
				AfterDays: 1,
				Prob:      1,
				Data:      engine.TriggerData{Frequency: string(engine.FrequencyWeekly)},
			}},
		})
	}

	out = appendRandom(out, engine.CategoryExpense, "%s planned spend.", travel)
	out = appendRandom(out, engine.CategoryExpense, "%s large purchase.", bigBuys)
	out = appendRandom(out, engine.CategoryExpense, "%s academic cost.", education)
	out = appendRandom(out, engine.CategoryExpense, "%s health/wellness expense.", health)
	out = appendRandom(out, engine.CategoryExpense, "%s.", moving)
	out = appendRandom(out, engine.CategoryIncome, "%s.", movingRefunds)
	out = appendRandom(out, engine.CategoryExpense, "%s.", government)
	out = appendRandom(out, engine.CategoryIncome, "%s.", refunds)
	out = appendRandom(out, engine.CategoryExpense, "%s.", social)

	out = append(out,
		engine.Scenario{
			ID: engine.SpawnLotteryResult, Name: engine.NameLotteryResult, Category: engine.CategoryIncome,
			Tags:        []string{engine.TagGambling, "windfall"},
			Description: "Lottery outcome (usually $0; small chance of win).",
			Amount:      engine.AmountSpec{Dist: engine.DistChoice, Options: []float64{0}},
		},
		engine.Scenario{
			ID: engine.SpawnSavingContribution, Name: "Saving Plan Contribution", Category: engine.CategoryExpense,
			Tags:        []string{engine.TagSavings},
			Description: "Contribution toward an active saving pledge.",
			Amount:      engine.AmountSpec{Dist: engine.DistChoice, Options: []float64{0}},
		},
		engine.Scenario{
			ID: engine.SpawnDeferredPayment, Name: "Deferred Payment Due", Category: engine.CategoryBill,
			Tags:        []string{engine.TagFees, "debt"},
			Description: "Deferred payment scheduled by player choice.",
			Amount:      fixed(0),
		},
		engine.Scenario{
			ID: engine.SpawnLateFee, Name: "Late Fee", Category: engine.CategoryExpense,
			Tags:        []string{engine.TagFees},
			Description: "Generic late fee incurred by skipping or deferring obligations.",
			Amount:      choice(15, 25, 35, 45),
		},
	)
	return out
}

// =============================================================================
// TABLES
// =============================================================================

type recurring struct {
	name string
	tags []string
	avg  float64
}

type randomEvent struct {
	name     string
	tags     []string
	amount   engine.AmountSpec
	prob     float64
	cooldown int
}

type savingGoal struct {
	name  string
	desc  string
	total float64
	days  int
	prob  float64
	tags  []string
}

var monthlyBills = []recurring{
	{"Rent", []string{"rent", "housing"}, 1200},
	{"Mortgage", []string{"mortgage", "housing"}, 1800},
	{"Electricity Bill", []string{"utilities"}, 80},
	{"Water Bill", []string{"utilities"}, 40},
	{"Gas Utility", []string{"utilities"}, 60},
	{"Internet Plan", []string{"internet", "utilities"}, 60},
	{"Mobile Phone Plan", []string{"mobile", "utilities"}, 70},
	{"Car Insurance", []string{"insurance", "car"}, 120},
	{"Health Insurance Premium", []string{"insurance", "healthcare"}, 350},
	{"Renter's Insurance", []string{"insurance", "housing"}, 18},
	{"Homeowner's Insurance", []string{"insurance", "housing"}, 95},
	{"Public Transit Pass", []string{"public_transit", "transport"}, 90},
	{"Parking Permit", []string{"car", "transport"}, 60},
	{"Gym Membership", []string{"subscriptions", "fitness"}, 35},
	{"Cloud Storage 2TB", []string{"subscriptions"}, 10},
	{"Productivity Software", []string{"subscriptions"}, 12},
	{"VPN Subscription", []string{"subscriptions"}, 8},
	{"News Subscription", []string{"subscriptions"}, 9},
	{"Streaming Video", []string{"subscriptions", "entertainment"}, 12},
	{"Music Streaming", []string{"subscriptions", "entertainment"}, 10},
	{"Coding Platform Pro", []string{"subscriptions", "education"}, 20},
	{"Credit Card Minimum Payment", []string{"debt"}, 45},
	{"Student Loan Payment", []string{"debt", "student_loan"}, 220},
	{"Daycare / Childcare", []string{"childcare"}, 750},
	{"Storage Unit", []string{"housing", "fees"}, 120},
}

var weeklyEssentials = []recurring{
	{"Groceries", []string{"groceries"}, 95},
	{"Fuel Refill", []string{"fuel", "car", "transport"}, 50},
}

var dayToDay = []randomEvent{
	{"Coffee Shop", []string{"dining", "leisure", "convenience"}, choice(4, 6, 8, 10), 0.22, 0},
	{"Lunch Out", []string{"dining", "leisure"}, uniform(9, 18), 0.18, 0},
	{"Dinner Out", []string{"dining", "leisure"}, uniform(15, 35), 0.12, 1},
	{"Ride-share Trip", []string{"transport", "convenience"}, uniform(8, 35), 0.10, 0},
	{"Movie Night", []string{"entertainment", "leisure"}, uniform(12, 45), 0.05, 3},
	{"Streaming Movie Rental", []string{"entertainment", "leisure"}, choice(4, 6), 0.06, 1},
	{"Clothes Shopping", []string{"shopping", "clothes"}, lognormal(65, 50, 15), 0.03, 7},
	{"Shoe Shopping", []string{"shopping", "clothes"}, lognormal(85, 60, 25), 0.02, 14},
	{"Electronics Accessory", []string{"shopping", "electronics"}, uniform(15, 90), 0.03, 7},
	{"Concert Ticket", []string{"entertainment", "leisure", "social"}, lognormal(80, 60, 25), 0.01, 20},
	{"Sports Event", []string{"entertainment", "sports", "social"}, lognormal(85, 65, 25), 0.01, 20},
	{"Bar / Night Out", []string{"leisure", "social", "alcohol"}, uniform(20, 80), 0.05, 2},
	{"Home Cleaning Service", []string{"convenience"}, lognormal(120, 60, 60), 0.01, 14},
}

var emergencies = []randomEvent{
	{"Parking Ticket", []string{"fines", "fees"}, choice(45, 65, 90), 0.01, 30},
	{"Speeding Ticket", []string{"fines", "fees"}, choice(120, 180, 240), 0.004, 60},
	{"Car Repair", []string{"car", "emergency"}, lognormal(450, 250, 150), 0.006, 60},
	{"Home Repair", []string{"home_improvement", "emergency"}, lognormal(600, 400, 150), 0.004, 60},
	{"Urgent Care Visit", []string{"healthcare", "emergency"}, lognormal(180, 120, 50), 0.006, 30},
	{"Vet Emergency", []string{"pet", "emergency"}, lognormal(350, 200, 100), 0.003, 90},
	{"Overdraft Fee", []string{"fees"}, fixed(35), 0.005, 10},
	{"Bank Account Fee", []string{"fees"}, choice(5, 10, 15), 0.01, 10},
	{"Credit Card Late Fee", []string{"fees", "debt"}, choice(25, 35, 40), 0.004, 30},
}

var giving = []randomEvent{
	{"Charity Donation", []string{"donation"}, choice(10, 25, 50, 100), 0.02, 7},
	{"Crowdfunding Support", []string{"donation", "social"}, choice(10, 20, 50), 0.015, 7},
	{"Birthday Gift for Friend", []string{"gift", "social"}, uniform(20, 80), 0.02, 20},
	{"Wedding Gift", []string{"gift", "social"}, uniform(75, 200), 0.006, 90},
	{"Holiday Gifts Shopping", []string{"gift", "holiday"}, lognormal(300, 150, 50), 0.003, 120},
}

var extraIncome = []randomEvent{
	{"Side Gig Payout", []string{"gig_income"}, lognormal(120, 80, 40), 0.05, 0},
	{"Freelance Invoice Paid", []string{"freelance_income"}, lognormal(600, 350, 150), 0.02, 7},
	{"Cash Gift from Family", []string{"windfall"}, choice(20, 50, 100, 200), 0.008, 30},
	{"Money from Friend", []string{"windfall", "social"}, choice(10, 20, 50), 0.02, 7},
	{"Tax Refund", []string{"tax", "windfall"}, lognormal(900, 400, 200), 0.001, 365},
	{"Performance Bonus", []string{"bonus", "windfall"}, lognormal(1500, 700, 400), 0.002, 180},
	{"Dividend Income", []string{"investment_income", "investment"}, choice(10, 25, 40), 0.02, 20},
	{"Marketplace Sale", []string{"windfall"}, lognormal(85, 50, 20), 0.02, 5},
}

var investDebt = []randomEvent{
	{"Stock Purchase", []string{"investment"}, lognormal(250, 150, 50), 0.02, 3},
	{"Crypto Purchase", []string{"investment"}, lognormal(150, 120, 20), 0.015, 3},
	{"Savings Transfer", []string{"savings"}, engine.AmountSpec{Dist: engine.DistPercentOfPay, Pct: 0.1}, 0.03, 2},
	{"Extra Credit Card Payment", []string{"debt"}, lognormal(120, 70, 25), 0.02, 5},
	{"Student Loan Extra Payment", []string{"debt", "student_loan"}, lognormal(200, 120, 50), 0.008, 10},
}

var savingGoals = []savingGoal{
	{"Start Emergency Fund Pledge", "Build a $500 emergency fund in 60 days.", 500, 60, 0.01, []string{"savings"}},
	{"Save for Vacation", "Save $1,200 for a trip in 120 days.", 1200, 120, 0.008, []string{"savings", "travel"}},
	{"Save for New Laptop", "Save $1,000 for a laptop in 90 days.", 1000, 90, 0.009, []string{"savings", "electronics"}},
	{"Holiday Gifts Pledge", "Save $800 for holiday gifts in 90 days.", 800, 90, 0.006, []string{"savings", "holiday", "gift"}},
}

var travel = []randomEvent{
	{"Weekend Getaway Booking", []string{"travel", "leisure"}, lognormal(350, 200, 120), 0.006, 45},
	{"Flight Ticket Purchase", []string{"travel"}, lognormal(420, 250, 150), 0.004, 60},
	{"Hotel Booking", []string{"travel"}, lognormal(300, 180, 120), 0.004, 45},
}

var bigBuys = []randomEvent{
	{"Appliance Replacement", []string{"home_improvement"}, lognormal(700, 450, 200), 0.003, 180},
	{"Furniture Purchase", []string{"home_improvement"}, lognormal(550, 300, 200), 0.004, 120},
	{"Phone Upgrade", []string{"electronics"}, lognormal(900, 300, 400), 0.003, 365},
	{"Laptop Upgrade", []string{"electronics"}, lognormal(1200, 400, 500), 0.002, 365},
	{"Television Upgrade", []string{"electronics"}, lognormal(800, 300, 300), 0.002, 270},
}

var education = []randomEvent{
	{"Course Enrollment Fee", []string{"education"}, lognormal(250, 120, 80), 0.01, 60},
	{"Exam Fee", []string{"education"}, choice(60, 100, 200), 0.008, 90},
	{"Textbook Purchase", []string{"education"}, lognormal(120, 60, 40), 0.015, 30},
}

var health = []randomEvent{
	{"Dental Cleaning Copay", []string{"healthcare"}, choice(20, 40, 60), 0.01, 180},
	{"Medication Refill", []string{"healthcare"}, lognormal(35, 20, 10), 0.03, 25},
	{"New Glasses / Contacts", []string{"healthcare"}, lognormal(180, 120, 60), 0.006, 365},
	{"Therapy Session Copay", []string{"healthcare"}, uniform(20, 60), 0.01, 14},
	{"Gym Day Pass", []string{"fitness", "leisure"}, choice(10, 15, 20), 0.03, 3},
}

var moving = []randomEvent{
	{"Security Deposit", []string{"housing"}, lognormal(1200, 500, 500), 0.001, 365},
	{"Moving Truck Rental", []string{"housing", "fees"}, lognormal(200, 120, 80), 0.002, 365},
}

var movingRefunds = []randomEvent{
	{"Deposit Returned", []string{"windfall", "housing"}, lognormal(900, 350, 200), 0.001, 365},
}

var government = []randomEvent{
	{"Driver License Renewal", []string{"fees"}, choice(20, 35, 50), 0.001, 365},
	{"Passport Fee", []string{"fees"}, choice(110, 140, 180), 0.0007, 365},
	{"Tax Filing Service", []string{"fees", "tax"}, choice(50, 100, 200), 0.002, 365},
	{"Library Late Fee", []string{"fees"}, choice(5, 10, 15), 0.01, 14},
}

var refunds = []randomEvent{
	{"Return Item for Refund", []string{"refund"}, lognormal(60, 40, 10), 0.01, 30},
	{"Mail-in Rebate", []string{"rebate"}, choice(10, 20, 50), 0.004, 120},
	{"Credit Card Cashback", []string{"cashback"}, choice(5, 10, 25), 0.05, 14},
}

var social = []randomEvent{
	{"Host Dinner at Home", []string{"leisure", "social"}, lognormal(85, 50, 25), 0.01, 20},
	{"Weekend Road Trip", []string{"travel", "social"}, lognormal(200, 120, 80), 0.006, 30},
	{"Join a Club / Association", []string{"subscriptions", "social"}, choice(10, 20, 50), 0.005, 180},
}

// =============================================================================
// HELPERS
// =============================================================================

func appendRandom(out []engine.Scenario, cat engine.Category, descFormat string, events []randomEvent) []engine.Scenario {
	for _, ev := range events {
		out = append(out, engine.Scenario{
			ID:            engine.ScenarioID(Slug(ev.name)),
			Name:          ev.name,
			Category:      cat,
			Tags:          slices.Clone(ev.tags),
			Description:   fmt.Sprintf(descFormat, ev.name),
			Amount:        ev.amount,
			BaseDailyProb: ev.prob,
			CooldownDays:  ev.cooldown,
		})
	}
	return out
}

func fixed(v float64) engine.AmountSpec {
	return engine.AmountSpec{Dist: engine.DistFixed, Value: v}
}

func uniform(low, high float64) engine.AmountSpec {
	return engine.AmountSpec{Dist: engine.DistUniform, Low: low, High: high}
}

func lognormal(mean, sigma, floor float64) engine.AmountSpec {
	return engine.AmountSpec{Dist: engine.DistLognormal, Mean: mean, Sigma: sigma, Min: &floor}
}

func choice(options ...float64) engine.AmountSpec {
	return engine.AmountSpec{Dist: engine.DistChoice, Options: options}
}
