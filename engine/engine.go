/*
engine.go - Session engine: daily proposal and commit

PURPOSE:
  Engine owns one player's simulation: running balance, append-only history,
  the pending offers of the current day, the delayed-spawn queue and the
  savings ledger. It is not safe for concurrent use; callers serialize access
  per session.

DAY LIFECYCLE:
  Start(profile) ──► Propose(1) ──► Commit(1, choices) ──► Propose(2) ──► ...

  Propose runs in a fixed order:
    1. Delayed spawns due today        forced offers
    2. Deterministic schedules         choice offers
    3. Probabilistic pool              choice offers, descending probability,
                                       independent Bernoulli trials, capped
    4. Savings-plan contributions      forced offers

  Proposing the same day twice returns the pending offers unchanged. Days
  are played in order: a committed day reports ErrDayNotProposed and a day
  past the one awaiting commit reports ErrInvalidDay.

  Commit settles every pending offer of the day. Missing or unknown option
  codes fall back to the first option, so one bad choice never fails a day.

SEE ALSO:
  - options.go: Menus attached to choice offers
  - savings.go: Contribution cadence
  - delayed.go: Spawn queue
*/
package engine

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/scenario-engine/profile"
)

const (
	// DefaultMaxProbabilistic caps the probabilistic offers of one day.
	DefaultMaxProbabilistic = 6

	lotteryNoWin    = 0.921
	lotterySmallWin = 0.079
)

// Engine is a single-session scenario engine.
type Engine struct {
	catalog  *Catalog
	rng      *rand.Rand
	sampler  *Sampler
	composer Composer
	options  *OptionBuilder

	maxProbabilistic int
	defaultPay       float64

	profile    profile.Profile
	started    bool
	day        int
	balance    decimal.Decimal
	lastPay    float64
	hasLastPay bool
	history    []CommittedEvent

	pending    []Offer
	pendingDay int

	queue  *DelayQueue
	ledger *SavingsLedger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSeed seeds the engine's random source. Two engines built with the same
// catalog and seed produce identical sessions for identical inputs.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithMaxProbabilistic sets the daily cap on probabilistic offers.
func WithMaxProbabilistic(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.maxProbabilistic = n
		}
	}
}

// WithLowBalance sets the balance under which discretionary scenarios are damped.
func WithLowBalance(threshold float64) EngineOption {
	return func(e *Engine) {
		e.composer.LowBalance = threshold
	}
}

// WithDefaultPay sets the pay used by percent_of_pay amounts before the
// first paycheck, when the profile has no pay amount.
func WithDefaultPay(amount float64) EngineOption {
	return func(e *Engine) {
		e.defaultPay = amount
	}
}

// WithPledgeDays sets the plan duration for pledges that don't declare one.
func WithPledgeDays(days int) EngineOption {
	return func(e *Engine) {
		e.options.PledgeDays = days
	}
}

// New builds an engine over a shared catalog. Without WithSeed the engine is
// seeded with 1.
func New(c *Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:          c,
		rng:              rand.New(rand.NewSource(1)),
		composer:         Composer{LowBalance: DefaultLowBalance},
		maxProbabilistic: DefaultMaxProbabilistic,
		defaultPay:       profile.DefaultPayAmount,
		options:          &OptionBuilder{},
		queue:            NewDelayQueue(),
		ledger:           NewSavingsLedger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sampler = NewSampler(e.rng)
	e.options.sampler = e.sampler
	return e
}

// =============================================================================
// SESSION SURFACE
// =============================================================================

// Start resets the session for p and returns the offers of day 1.
func (e *Engine) Start(p profile.Profile) ([]Offer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e.profile = p
	e.started = true
	e.day = 1
	e.balance = Money(p.StartingBalance)
	e.lastPay, e.hasLastPay = 0, false
	e.history = nil
	e.pending, e.pendingDay = nil, 0
	e.queue = NewDelayQueue()
	e.ledger = NewSavingsLedger()

	return e.Propose(1)
}

// Propose returns the offers of day. See the file header for ordering.
func (e *Engine) Propose(day int) ([]Offer, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	if day < 1 {
		return nil, ErrInvalidDay
	}
	if e.pending != nil && e.pendingDay == day {
		return e.Pending(), nil
	}
	// Days are played in order: a settled day is gone and skipping ahead
	// would strand queued spawns and plan contributions.
	switch {
	case day < e.day:
		return nil, ErrDayNotProposed
	case day > e.day:
		return nil, ErrInvalidDay
	}

	var offers []Offer

	for _, sp := range e.queue.PopDue(day) {
		if o, ok := e.realize(sp, day); ok {
			offers = append(offers, o)
		}
	}

	for _, s := range e.catalog.Scenarios() {
		if !s.Deterministic || !IsScheduled(s, e.profile.PayCycle, day) {
			continue
		}
		var amount float64
		if s.Name == NamePaycheck {
			amount = e.payAmount()
			e.lastPay, e.hasLastPay = amount, true
		} else {
			amount = e.signedDraw(s)
		}
		offers = append(offers, e.choiceOffer(s, day, amount, SourceScheduled, 0, UnitFactors()))
	}

	offers = append(offers, e.probabilistic(day)...)

	for _, c := range e.ledger.Due(day) {
		s := e.catalog.MustGet(SpawnSavingContribution)
		amount, _ := c.Amount.Neg().Float64()
		o := e.forcedOffer(s, day, amount, SourcePlan,
			joinDesc(s.Description, "Auto-contribution to '"+c.PlanName+"'"), "Scheduled contribution")
		o.PlanID = c.PlanID
		offers = append(offers, o)
	}

	if offers == nil {
		offers = []Offer{}
	}
	e.pending, e.pendingDay = offers, day
	return e.Pending(), nil
}

// Commit settles the pending offers of day with the given offer id to option
// code choices and returns the committed events in offer order.
func (e *Engine) Commit(day int, choices map[string]string) ([]CommittedEvent, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	if e.pending == nil || e.pendingDay != day {
		return nil, ErrDayNotProposed
	}

	committed := make([]CommittedEvent, 0, len(e.pending))
	for _, o := range e.pending {
		opt := o.Option(choices[o.ID])
		ev := CommittedEvent{
			ID:             e.newID("ev"),
			Day:            day,
			ScenarioID:     o.ScenarioID,
			Name:           o.Name,
			Category:       o.Category,
			Tags:           o.Tags,
			Description:    o.Description,
			Deterministic:  o.Deterministic,
			ProposedAmount: o.ProposedAmount,
			Amount:         opt.Amount,
			Option:         opt.Code,
			OptionLabel:    opt.Label,
			Probability:    o.Probability,
			Factors:        o.Factors,
		}

		e.balance = e.balance.Add(ev.Amount)
		e.history = append(e.history, ev)
		committed = append(committed, ev)

		if ev.Name == NamePaycheck {
			e.lastPay, e.hasLastPay = ev.Amount.InexactFloat64(), true
		}
		for _, t := range opt.Triggers {
			e.schedule(day, t, ev.ID)
		}
		if p := opt.Pledge; p != nil {
			e.ledger.Start(e.newID("plan"), o.Name, p.Total, day+p.StartIn, p.Days, p.Frequency)
		}
		if o.PlanID != "" {
			e.ledger.Contribute(o.PlanID, ev.Amount)
		}
	}

	e.pending, e.pendingDay = nil, 0
	e.day = day + 1
	return committed, nil
}

// Pending returns a copy of the offers awaiting commit.
func (e *Engine) Pending() []Offer {
	return append([]Offer{}, e.pending...)
}

// History returns the last n committed events, or all of them when n <= 0.
func (e *Engine) History(n int) []CommittedEvent {
	h := e.history
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return append([]CommittedEvent{}, h...)
}

// Balance is the running balance.
func (e *Engine) Balance() decimal.Decimal { return e.balance }

// Day is the day awaiting commit, or the next day to propose after a commit.
func (e *Engine) Day() int { return e.day }

func (e *Engine) Profile() profile.Profile { return e.profile }

// LastPay returns the cached pay amount and whether a paycheck has occurred.
func (e *Engine) LastPay() (float64, bool) { return e.lastPay, e.hasLastPay }

func (e *Engine) Plans() []SavingPlan { return e.ledger.Plans() }

func (e *Engine) PendingSpawns() []Spawn { return e.queue.Pending() }

// =============================================================================
// PROPOSAL STEPS
// =============================================================================

type candidate struct {
	scenario Scenario
	prob     float64
	factors  Factors
}

func (e *Engine) probabilistic(day int) []Offer {
	balance := e.balance.InexactFloat64()

	var pool []candidate
	for _, s := range e.catalog.Scenarios() {
		if s.Deterministic {
			continue
		}
		p, f := e.composer.Compose(s, e.profile, balance, e.history, day)
		if p > 0 {
			pool = append(pool, candidate{scenario: s, prob: p, factors: f})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].prob > pool[j].prob })

	var offers []Offer
	for _, c := range pool {
		if len(offers) >= e.maxProbabilistic {
			break
		}
		if !e.sampler.Bernoulli(c.prob) {
			continue
		}
		amount := e.signedDraw(c.scenario)
		offers = append(offers, e.choiceOffer(c.scenario, day, amount, SourceProbabilistic, c.prob, c.factors))
	}
	return offers
}

// realize turns a due spawn into a forced offer. Lottery results are rolled
// here, not when the ticket was bought. Override amounts take the target's
// category sign whatever sign the trigger was written with.
func (e *Engine) realize(sp Spawn, day int) (Offer, bool) {
	s, ok := e.catalog.Get(sp.Target)
	if !ok {
		return Offer{}, false
	}

	extra := sp.Data.ExtraDesc
	var amount float64
	switch {
	case sp.Target == SpawnLotteryResult:
		amount, extra = e.rollLottery()
	case sp.Data.OverrideAmount != nil:
		amount = s.Category.Sign() * math.Abs(*sp.Data.OverrideAmount)
	default:
		amount = e.signedDraw(s)
	}
	return e.forcedOffer(s, day, amount, SourceTriggered, joinDesc(s.Description, extra), "Forced"), true
}

func (e *Engine) rollLottery() (float64, string) {
	r := e.rng.Float64()
	switch {
	case r < lotteryNoWin:
		return 0, "Lottery result: no win."
	case r < lotteryNoWin+lotterySmallWin:
		return e.sampler.Uniform(5, 50), "Lottery result: small win."
	default:
		return e.sampler.Uniform(1000, 10000), "Lottery result: big win!"
	}
}

// schedule runs the trigger's Bernoulli trial now and queues the spawn on
// success. A spawn is never due before tomorrow.
func (e *Engine) schedule(day int, t TriggerTemplate, sourceEventID string) {
	if !e.sampler.Bernoulli(t.Prob) {
		return
	}
	e.queue.Push(Spawn{
		Target:        t.Spawn,
		Data:          t.Data,
		SourceEventID: sourceEventID,
		DueDay:        day + max(t.AfterDays, 1),
	})
}

// =============================================================================
// OFFER CONSTRUCTION
// =============================================================================

func (e *Engine) choiceOffer(s Scenario, day int, amount float64, src OfferSource, prob float64, f Factors) Offer {
	o := e.baseOffer(s, day, amount, src)
	o.Kind = OfferChoice
	o.Deterministic = s.Deterministic
	o.Probability = prob
	o.Factors = f
	o.Options = e.options.Build(s, amount)
	return o
}

func (e *Engine) forcedOffer(s Scenario, day int, amount float64, src OfferSource, desc, label string) Offer {
	o := e.baseOffer(s, day, amount, src)
	o.Kind = OfferForced
	o.Deterministic = true
	o.Probability = 1
	o.Factors = UnitFactors()
	o.Description = desc
	o.Options = []Option{{Code: OptionForced, Label: label, Amount: Money(amount)}}
	return o
}

func (e *Engine) baseOffer(s Scenario, day int, amount float64, src OfferSource) Offer {
	return Offer{
		ID:             e.newID("offer"),
		Day:            day,
		ScenarioID:     s.ID,
		Name:           s.Name,
		Category:       s.Category,
		Tags:           s.Tags,
		Description:    s.Description,
		Source:         src,
		ProposedAmount: Money(amount),
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Engine) signedDraw(s Scenario) float64 {
	ctx := PayContext{LastPay: e.lastPay, HasLastPay: e.hasLastPay, DefaultPay: e.payAmount()}
	return s.Category.Sign() * e.sampler.Draw(s.Amount, ctx)
}

func (e *Engine) payAmount() float64 {
	if e.profile.PayCycle.Amount != 0 {
		return e.profile.PayCycle.Amount
	}
	return e.defaultPay
}

// newID draws ids from the engine's random source so a seeded session is
// reproducible end to end.
func (e *Engine) newID(prefix string) string {
	u, err := uuid.NewRandomFromReader(e.rng)
	if err != nil {
		u = uuid.New()
	}
	return prefix + "_" + strings.ReplaceAll(u.String(), "-", "")[:10]
}

func joinDesc(desc, extra string) string {
	return strings.TrimSpace(desc + " " + extra)
}
