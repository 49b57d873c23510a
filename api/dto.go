/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types carry
  decimal money and no JSON tags; the DTOs flatten money to numbers and fix
  the field names clients rely on.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Session:
    StartRequest, StartResponse, CommitRequest, CommitResponse,
    OffersResponse, StateResponse

  Content:
    OfferDTO, OptionDTO, EventDTO, PlanDTO

  Simulation:
    SimulateRequest, SimulateResponse, RowDTO

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/hud"
	"github.com/warp/scenario-engine/profile"
	"github.com/warp/scenario-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ProfileRequest carries the player profile fields. Omitted fields keep the
// values of profile.Default().
type ProfileRequest struct {
	Name            string             `json:"name"`
	SegmentKey      string             `json:"segment_key"`
	Mood            string             `json:"mood"`
	PayType         string             `json:"pay_type"`
	PayStartDay     int                `json:"pay_start_day"`
	PayAmount       float64            `json:"pay_amount"`
	BaseBalance     float64            `json:"base_balance"`
	Predispositions map[string]float64 `json:"predispositions,omitempty"`
}

func defaultProfileRequest() ProfileRequest {
	p := profile.Default()
	return ProfileRequest{
		Name:        p.Name,
		SegmentKey:  string(p.Segment),
		Mood:        string(p.Mood),
		PayType:     string(p.PayCycle.Type),
		PayStartDay: p.PayCycle.StartDay,
		PayAmount:   p.PayCycle.Amount,
		BaseBalance: p.StartingBalance,
	}
}

func (r ProfileRequest) profile() profile.Profile {
	return profile.Profile{
		Name:            r.Name,
		Segment:         profile.SegmentKey(r.SegmentKey),
		Mood:            profile.MoodKey(r.Mood),
		PayCycle:        profile.PayCycle{Type: profile.PayType(r.PayType), StartDay: r.PayStartDay, Amount: r.PayAmount},
		Predispositions: r.Predispositions,
		StartingBalance: r.BaseBalance,
	}
}

// StartRequest begins a session. A nil Seed uses the server's seed, or a
// random one when the server has none.
type StartRequest struct {
	ProfileRequest
	Seed *int64 `json:"seed,omitempty"`
}

// CommitRequest settles a day. Day defaults to the session's pending day.
type CommitRequest struct {
	SessionID string            `json:"session_id"`
	Day       int               `json:"day,omitempty"`
	Choices   map[string]string `json:"choices"`
}

// SimulateRequest runs a headless session with the default policy.
type SimulateRequest struct {
	ProfileRequest
	Days int    `json:"days"`
	Seed *int64 `json:"seed,omitempty"`
}

// =============================================================================
// CONTENT DTOs
// =============================================================================

type OptionDTO struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

type OfferDTO struct {
	ID             string         `json:"offer_id"`
	Day            int            `json:"day"`
	ScenarioID     string         `json:"scenario_id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	Tags           []string       `json:"tags"`
	Description    string         `json:"description"`
	Kind           string         `json:"kind"`
	Source         string         `json:"source"`
	Deterministic  bool           `json:"deterministic"`
	ProposedAmount float64        `json:"proposed_amount"`
	Probability    float64        `json:"probability"`
	Factors        engine.Factors `json:"factors"`
	Options        []OptionDTO    `json:"options"`
	PlanID         string         `json:"plan_id,omitempty"`
}

type EventDTO struct {
	ID             string   `json:"event_id"`
	Day            int      `json:"day"`
	ScenarioID     string   `json:"scenario_id"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Tags           []string `json:"tags"`
	Description    string   `json:"description"`
	Deterministic  bool     `json:"deterministic"`
	ProposedAmount float64  `json:"proposed_amount"`
	Amount         float64  `json:"amount"`
	Option         string   `json:"option"`
	OptionLabel    string   `json:"option_label"`
	Probability    float64  `json:"probability"`
}

type PlanDTO struct {
	ID          string  `json:"plan_id"`
	Name        string  `json:"name"`
	Total       float64 `json:"total"`
	Contributed float64 `json:"contributed"`
	Remaining   float64 `json:"remaining"`
	StartDay    int     `json:"start_day"`
	DueDay      int     `json:"due_day"`
	Frequency   string  `json:"frequency"`
}

type RowDTO struct {
	Day          int     `json:"day"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Proposed     float64 `json:"proposed"`
	Choice       string  `json:"choice"`
	Amount       float64 `json:"amount"`
	BalanceAfter float64 `json:"balance_after"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type MetaSegmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type MetaResponse struct {
	Segments  map[string]MetaSegmentDTO `json:"segments"`
	Moods     []string                  `json:"moods"`
	Defaults  ProfileRequest            `json:"defaults"`
	Scenarios int                       `json:"scenarios"`
}

type StartResponse struct {
	SessionID string         `json:"session_id"`
	Day       int            `json:"day"`
	Balance   float64        `json:"balance"`
	Offers    []OfferDTO     `json:"offers"`
	HUD       hud.Snapshot   `json:"hud"`
	User      ProfileRequest `json:"user"`
	Seed      int64          `json:"seed"`
}

type OffersResponse struct {
	Day     int          `json:"day"`
	Balance float64      `json:"balance"`
	Offers  []OfferDTO   `json:"offers"`
	HUD     hud.Snapshot `json:"hud"`
}

type CommitResponse struct {
	Committed  []EventDTO   `json:"committed"`
	Balance    float64      `json:"balance"`
	Day        int          `json:"day"`
	NextOffers []OfferDTO   `json:"next_offers"`
	HUD        hud.Snapshot `json:"hud"`
}

type StateResponse struct {
	Day           int          `json:"day"`
	Balance       float64      `json:"balance"`
	History       []EventDTO   `json:"history"`
	HUD           hud.Snapshot `json:"hud"`
	Plans         []PlanDTO    `json:"plans"`
	PendingSpawns int          `json:"pending_spawns"`
}

type SimulateResponse struct {
	Days         int      `json:"days"`
	Seed         int64    `json:"seed"`
	FinalBalance float64  `json:"final_balance"`
	Rows         []RowDTO `json:"rows"`
}

// ErrorResponse is the body of every non-2xx response.
// ArchivedSessionDTO is one archived session. Live reports whether it is
// currently held in memory.
type ArchivedSessionDTO struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Segment   string    `json:"segment_key"`
	Mood      string    `json:"mood"`
	Seed      int64     `json:"seed"`
	Day       int       `json:"day"`
	Balance   float64   `json:"balance"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Live      bool      `json:"live"`
}

type SessionsResponse struct {
	Sessions []ArchivedSessionDTO `json:"sessions"`
}

type EventsResponse struct {
	Session ArchivedSessionDTO `json:"session"`
	Events  []EventDTO         `json:"events"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func toOfferDTO(o engine.Offer) OfferDTO {
	opts := make([]OptionDTO, len(o.Options))
	for i, opt := range o.Options {
		opts[i] = OptionDTO{Code: opt.Code, Label: opt.Label, Amount: num(opt.Amount)}
	}
	return OfferDTO{
		ID:             o.ID,
		Day:            o.Day,
		ScenarioID:     string(o.ScenarioID),
		Name:           o.Name,
		Type:           string(o.Category),
		Tags:           tagsOrEmpty(o.Tags),
		Description:    o.Description,
		Kind:           string(o.Kind),
		Source:         string(o.Source),
		Deterministic:  o.Deterministic,
		ProposedAmount: num(o.ProposedAmount),
		Probability:    o.Probability,
		Factors:        o.Factors,
		Options:        opts,
		PlanID:         o.PlanID,
	}
}

func toOfferDTOs(offers []engine.Offer) []OfferDTO {
	out := make([]OfferDTO, len(offers))
	for i, o := range offers {
		out[i] = toOfferDTO(o)
	}
	return out
}

func toEventDTOs(events []engine.CommittedEvent) []EventDTO {
	out := make([]EventDTO, len(events))
	for i, ev := range events {
		out[i] = EventDTO{
			ID:             ev.ID,
			Day:            ev.Day,
			ScenarioID:     string(ev.ScenarioID),
			Name:           ev.Name,
			Type:           string(ev.Category),
			Tags:           tagsOrEmpty(ev.Tags),
			Description:    ev.Description,
			Deterministic:  ev.Deterministic,
			ProposedAmount: num(ev.ProposedAmount),
			Amount:         num(ev.Amount),
			Option:         ev.Option,
			OptionLabel:    ev.OptionLabel,
			Probability:    ev.Probability,
		}
	}
	return out
}

func toPlanDTOs(plans []engine.SavingPlan) []PlanDTO {
	out := make([]PlanDTO, len(plans))
	for i, p := range plans {
		out[i] = PlanDTO{
			ID:          p.ID,
			Name:        p.Name,
			Total:       num(p.Total),
			Contributed: num(p.Contributed),
			Remaining:   num(p.Remaining()),
			StartDay:    p.StartDay,
			DueDay:      p.DueDay,
			Frequency:   string(p.Frequency),
		}
	}
	return out
}

func toArchivedSessionDTO(rec sqlite.SessionRecord, live bool) ArchivedSessionDTO {
	return ArchivedSessionDTO{
		SessionID: rec.ID,
		Name:      rec.Profile.Name,
		Segment:   string(rec.Profile.Segment),
		Mood:      string(rec.Profile.Mood),
		Seed:      rec.Seed,
		Day:       rec.Day,
		Balance:   num(rec.Balance),
		StartedAt: rec.StartedAt,
		UpdatedAt: rec.UpdatedAt,
		Live:      live,
	}
}

func toRowDTOs(rows []engine.Row) []RowDTO {
	out := make([]RowDTO, len(rows))
	for i, r := range rows {
		out[i] = RowDTO{
			Day:          r.Day,
			Name:         r.Name,
			Type:         string(r.Category),
			Proposed:     num(r.Proposed),
			Choice:       r.Choice,
			Amount:       num(r.Amount),
			BalanceAfter: num(r.BalanceAfter),
		}
	}
	return out
}
