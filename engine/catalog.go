package engine

import (
	"fmt"
	"sort"
)

// =============================================================================
// CATALOG - Validated, read-only scenario set
// =============================================================================

// Catalog is immutable after NewCatalog and safe to share across engines.
type Catalog struct {
	byID  map[ScenarioID]Scenario
	order []ScenarioID
}

// NewCatalog validates every scenario, injects built-in definitions for
// missing reserved targets and checks that every trigger resolves. The first
// problem found is returned; a partially valid catalog is never built.
func NewCatalog(scenarios []Scenario) (*Catalog, error) {
	c := &Catalog{byID: make(map[ScenarioID]Scenario, len(scenarios)+4)}

	for _, s := range scenarios {
		if err := validateScenario(s); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, &ScenarioError{ID: s.ID, Field: "id", Reason: "is declared twice", Err: ErrDuplicateScenario}
		}
		c.add(s)
	}

	for _, s := range reservedDefaults() {
		if _, ok := c.byID[s.ID]; !ok {
			c.add(s)
		}
	}

	for _, id := range c.order {
		for i, t := range c.byID[id].Triggers {
			if _, ok := c.byID[t.Spawn]; !ok {
				return nil, &ScenarioError{
					ID:     id,
					Field:  fmt.Sprintf("triggers[%d].spawn", i),
					Reason: fmt.Sprintf("%q does not resolve", t.Spawn),
					Err:    ErrUnknownSpawnTarget,
				}
			}
		}
	}
	return c, nil
}

func (c *Catalog) add(s Scenario) {
	c.byID[s.ID] = s
	c.order = append(c.order, s.ID)
}

// Get looks up a scenario by id.
func (c *Catalog) Get(id ScenarioID) (Scenario, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// MustGet is for reserved targets, which always resolve.
func (c *Catalog) MustGet(id ScenarioID) Scenario {
	s, ok := c.byID[id]
	if !ok {
		panic(fmt.Sprintf("engine: scenario %q not in catalog", id))
	}
	return s
}

// Scenarios returns every entry in declaration order, injected defaults last.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.order))
	for i, id := range c.order {
		out[i] = c.byID[id]
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }

// IDs returns the sorted scenario ids.
func (c *Catalog) IDs() []ScenarioID {
	ids := append([]ScenarioID(nil), c.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateScenario(s Scenario) error {
	switch {
	case s.ID == "":
		return malformed(s.ID, "id", "is required")
	case s.Name == "":
		return malformed(s.ID, "name", "is required")
	case !s.Category.Valid():
		return malformed(s.ID, "type", fmt.Sprintf("%q is not a known category", s.Category))
	case s.CooldownDays < 0:
		return malformed(s.ID, "cooldown_days", "must not be negative")
	case s.PledgeDays < 0:
		return malformed(s.ID, "pledge_days", "must not be negative")
	}

	if s.Deterministic {
		if s.Schedule == nil {
			return malformed(s.ID, "schedule", "is required for deterministic scenarios")
		}
		switch s.Schedule.Kind {
		case ScheduleEveryNDays, SchedulePayCycle:
		default:
			return malformed(s.ID, "schedule.type", fmt.Sprintf("%q is not a known schedule", s.Schedule.Kind))
		}
		if s.Schedule.N < 0 || s.Schedule.Offset < 0 {
			return malformed(s.ID, "schedule", "n and offset must not be negative")
		}
	} else {
		if s.Schedule != nil {
			return malformed(s.ID, "schedule", "is only valid on deterministic scenarios")
		}
		if s.BaseDailyProb < 0 || s.BaseDailyProb > 1 {
			return malformed(s.ID, "base_daily_prob", "must be within [0, 1]")
		}
	}

	for i, t := range s.Triggers {
		field := fmt.Sprintf("triggers[%d]", i)
		switch {
		case t.Spawn == "":
			return malformed(s.ID, field+".spawn", "is required")
		case t.AfterDays < 0:
			return malformed(s.ID, field+".after_days", "must not be negative")
		case t.Prob < 0 || t.Prob > 1:
			return malformed(s.ID, field+".prob", "must be within [0, 1]")
		}
	}
	return nil
}

// =============================================================================
// RESERVED DEFAULTS
// =============================================================================

func reservedDefaults() []Scenario {
	return []Scenario{
		{
			ID:          SpawnSavingContribution,
			Name:        "Saving Plan Contribution",
			Category:    CategoryExpense,
			Tags:        []string{TagSavings},
			Description: "Auto-contribution to a saving plan.",
			Amount:      AmountSpec{Dist: DistFixed},
		},
		{
			ID:          SpawnLotteryResult,
			Name:        NameLotteryResult,
			Category:    CategoryIncome,
			Tags:        []string{TagGambling, "windfall"},
			Description: "Outcome of a lottery ticket.",
			Amount:      AmountSpec{Dist: DistFixed},
		},
		{
			ID:          SpawnDeferredPayment,
			Name:        "Deferred Payment",
			Category:    CategoryBill,
			Tags:        []string{TagFees, "debt"},
			Description: "Remainder of a partially paid bill.",
			Amount:      AmountSpec{Dist: DistFixed},
		},
		{
			ID:          SpawnLateFee,
			Name:        "Late Fee",
			Category:    CategoryExpense,
			Tags:        []string{TagFees},
			Description: "Penalty for a skipped bill.",
			Amount:      AmountSpec{Dist: DistChoice, Options: LateFeeAmounts},
		},
	}
}
