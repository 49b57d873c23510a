package engine

import (
	"github.com/shopspring/decimal"

	"github.com/warp/scenario-engine/profile"
)

// =============================================================================
// POLICY RUNNER - Headless sessions driven by a fixed decision rule
// =============================================================================

// Policy picks an option code for an offer. Unknown codes fall back to the
// offer's first option at commit.
type Policy func(Offer) string

// DefaultPolicy accepts income, pays bills in full, skips donations and
// lottery tickets, starts pledges and budgets expenses.
func DefaultPolicy(o Offer) string {
	if o.Kind == OfferForced {
		return OptionForced
	}
	prefer := func(code string) string {
		for _, opt := range o.Options {
			if opt.Code == code {
				return code
			}
		}
		return o.Options[0].Code
	}

	switch o.Category {
	case CategoryIncome:
		return prefer("accept")
	case CategoryBill:
		return prefer("pay_now")
	case CategoryDonation:
		return prefer("skip")
	case CategorySavingPledge:
		return prefer("start")
	case CategoryLottery:
		return prefer("skip")
	case CategoryExpense:
		return prefer("budget")
	}
	return o.Options[0].Code
}

// Row is one committed event of a policy run.
type Row struct {
	Day          int             `json:"day"`
	Name         string          `json:"name"`
	Category     Category        `json:"type"`
	Proposed     decimal.Decimal `json:"proposed"`
	Choice       string          `json:"choice"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// Run starts a fresh session for p and plays days days with policy. A nil
// policy means DefaultPolicy.
func Run(e *Engine, p profile.Profile, days int, policy Policy) ([]Row, error) {
	if policy == nil {
		policy = DefaultPolicy
	}

	offers, err := e.Start(p)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for d := 1; d <= days; d++ {
		if d > 1 {
			if offers, err = e.Propose(d); err != nil {
				return nil, err
			}
		}

		choices := make(map[string]string, len(offers))
		for _, o := range offers {
			choices[o.ID] = policy(o)
		}

		running := e.Balance()
		events, err := e.Commit(d, choices)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			running = running.Add(ev.Amount)
			rows = append(rows, Row{
				Day:          ev.Day,
				Name:         ev.Name,
				Category:     ev.Category,
				Proposed:     ev.ProposedAmount,
				Choice:       ev.Option,
				Amount:       ev.Amount,
				BalanceAfter: running,
			})
		}
	}
	return rows, nil
}
