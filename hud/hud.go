/*
Package hud turns the committed-event feed into player-facing status:
virtual accounts, a health score, achievements and a calendar position.

PURPOSE:
  The engine keeps one balance. Players want to see where the money sits, so
  the HUD splits every committed event across three virtual accounts and keeps
  a 0-100 health score that reacts to the day's net flow and event tags.

ACCOUNT ROUTING:
  income tagged investment/investment_income → investments
  other income                                → checking
  savings-tagged outflow                      → checking → savings
  investment-tagged outflow                   → checking → investments
  any other outflow                           → checking

HEALTH (starts at 65, clamped to [0, 100]):
  net >= 0:  +min(3, net/500)
  net <  0:  -min(6, |net|/200)
  per event: emergency -3, fees -2, savings +1, donation +0.5,
             lottery ticket purchase -0.2
  buffer:    +min(2, 0.01 × (savings + 0.5 × investments))

ACHIEVEMENTS:
  first_paycheck  a paycheck with a positive amount
  buffer_500      savings at or above $500
  streak_7        seven non-negative days in a row
  donor_100       $100 donated in total
  lotto_win       a lottery result above zero

SEE ALSO:
  - engine/engine.go: Source of committed events
  - api/handlers.go: Serves Snapshot with every response
*/
package hud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/warp/scenario-engine/engine"
)

const (
	StartingHealth = 65.0
	DaysPerMonth   = 30
)

type Achievement string

const (
	FirstPaycheck Achievement = "first_paycheck"
	Buffer500     Achievement = "buffer_500"
	Streak7       Achievement = "streak_7"
	Donor100      Achievement = "donor_100"
	LottoWin      Achievement = "lotto_win"
)

// AllAchievements lists every achievement in display order.
func AllAchievements() []Achievement {
	return []Achievement{FirstPaycheck, Buffer500, Streak7, Donor100, LottoWin}
}

var (
	bufferTarget   = decimal.NewFromInt(500)
	donationTarget = decimal.NewFromInt(100)
)

// =============================================================================
// ACCOUNTS
// =============================================================================

type Accounts struct {
	Checking    decimal.Decimal `json:"checking"`
	Savings     decimal.Decimal `json:"savings"`
	Investments decimal.Decimal `json:"investments"`
}

// Total is the sum of all three accounts.
func (a Accounts) Total() decimal.Decimal {
	return a.Checking.Add(a.Savings).Add(a.Investments)
}

func (a *Accounts) apply(ev engine.CommittedEvent) {
	amt := ev.Amount
	if ev.Category == engine.CategoryIncome {
		if amt.IsNegative() {
			amt = decimal.Zero
		}
		if ev.HasTag(engine.TagInvestment) || ev.HasTag(engine.TagInvestmentIncome) {
			a.Investments = a.Investments.Add(amt)
		} else {
			a.Checking = a.Checking.Add(amt)
		}
		return
	}

	switch {
	case ev.HasTag(engine.TagSavings) || ev.ScenarioID == engine.SpawnSavingContribution:
		x := amt.Abs()
		a.Checking = a.Checking.Sub(x)
		a.Savings = a.Savings.Add(x)
	case ev.HasTag(engine.TagInvestment):
		x := amt.Abs()
		a.Checking = a.Checking.Sub(x)
		a.Investments = a.Investments.Add(x)
	default:
		a.Checking = a.Checking.Add(amt)
	}
}

// =============================================================================
// STATE
// =============================================================================

// State accumulates HUD status across committed days. Not safe for
// concurrent use; callers serialize per session.
type State struct {
	accounts      Accounts
	health        float64
	achievements  map[Achievement]bool
	donationTotal decimal.Decimal
	streak        int
	lastNet       decimal.Decimal
}

func New(startingBalance decimal.Decimal) *State {
	return &State{
		accounts:     Accounts{Checking: startingBalance},
		health:       StartingHealth,
		achievements: make(map[Achievement]bool),
	}
}

// Apply folds one committed day into the HUD.
func (s *State) Apply(events []engine.CommittedEvent) {
	for _, ev := range events {
		s.accounts.apply(ev)
	}

	net := decimal.Zero
	for _, ev := range events {
		net = net.Add(ev.Amount)
		if ev.Category == engine.CategoryDonation || ev.HasTag(engine.TagDonation) {
			s.donationTotal = s.donationTotal.Add(ev.Amount.Abs())
		}
	}
	s.lastNet = net

	if net.IsNegative() {
		s.streak = 0
	} else {
		s.streak++
	}

	s.health = clamp(s.health+healthDelta(net, events, s.accounts), 0, 100)
	s.award(events)
}

func healthDelta(net decimal.Decimal, events []engine.CommittedEvent, acc Accounts) float64 {
	n := net.InexactFloat64()
	var delta float64
	if n >= 0 {
		delta += min(3, n/500)
	} else {
		delta -= min(6, -n/200)
	}

	for _, ev := range events {
		if ev.HasTag(engine.TagEmergency) {
			delta -= 3
		}
		if ev.HasTag(engine.TagFees) {
			delta -= 2
		}
		if ev.HasTag(engine.TagSavings) {
			delta++
		}
		if ev.HasTag(engine.TagDonation) {
			delta += 0.5
		}
		if ev.HasTag(engine.TagGambling) && strings.HasPrefix(strings.ToLower(ev.Name), "buy lottery ticket") {
			delta -= 0.2
		}
	}

	buffer := acc.Savings.Add(acc.Investments.Mul(decimal.NewFromFloat(0.5))).InexactFloat64() * 0.01
	return delta + min(2, buffer)
}

func (s *State) award(events []engine.CommittedEvent) {
	for _, ev := range events {
		if ev.Name == engine.NamePaycheck && ev.Amount.IsPositive() {
			s.achievements[FirstPaycheck] = true
		}
		if ev.Name == engine.NameLotteryResult && ev.Amount.IsPositive() {
			s.achievements[LottoWin] = true
		}
	}
	if s.accounts.Savings.GreaterThanOrEqual(bufferTarget) {
		s.achievements[Buffer500] = true
	}
	if s.streak >= 7 {
		s.achievements[Streak7] = true
	}
	if s.donationTotal.GreaterThanOrEqual(donationTarget) {
		s.achievements[Donor100] = true
	}
}

func (s *State) Accounts() Accounts { return s.accounts }
func (s *State) Health() float64    { return s.health }
func (s *State) Streak() int        { return s.streak }

// Earned reports whether an achievement has been unlocked.
func (s *State) Earned(a Achievement) bool { return s.achievements[a] }

// =============================================================================
// SNAPSHOT
// =============================================================================

type Trophies struct {
	Earned int           `json:"earned"`
	Total  int           `json:"total"`
	List   []Achievement `json:"list"`
}

// Snapshot is the JSON shape sent to clients.
type Snapshot struct {
	Month      int      `json:"month"`
	DayInMonth int      `json:"day_in_month"`
	DateLabel  string   `json:"date_label"`
	Health     float64  `json:"health"`
	Trophies   Trophies `json:"trophies"`
	Accounts   Accounts `json:"accounts"`
	LastNet    string   `json:"last_net"`
}

// Calendar maps a game day onto 30-day months. Day 1 is month 1, day 1.
func Calendar(day int) (month, dayInMonth int) {
	if day < 1 {
		day = 1
	}
	return (day-1)/DaysPerMonth + 1, (day-1)%DaysPerMonth + 1
}

// Snapshot reports the HUD as of the given game day.
func (s *State) Snapshot(day int) Snapshot {
	month, dom := Calendar(day)

	earned := []Achievement{}
	for a := range s.achievements {
		earned = append(earned, a)
	}
	sort.Slice(earned, func(i, j int) bool { return earned[i] < earned[j] })

	return Snapshot{
		Month:      month,
		DayInMonth: dom,
		DateLabel:  fmt.Sprintf("%s day of month %d", humanize.Ordinal(dom), month),
		Health:     decimal.NewFromFloat(s.health).Round(1).InexactFloat64(),
		Trophies:   Trophies{Earned: len(earned), Total: len(AllAchievements()), List: earned},
		Accounts: Accounts{
			Checking:    s.accounts.Checking.Round(2),
			Savings:     s.accounts.Savings.Round(2),
			Investments: s.accounts.Investments.Round(2),
		},
		LastNet: FormatMoney(s.lastNet),
	}
}

// FormatMoney renders signed dollars with thousands separators, e.g. "-$1,234.5".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + humanize.CommafWithDigits(d.Abs().Round(2).InexactFloat64(), 2)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
