/*
Package catalog converts scenario definitions between JSON/YAML and
engine.Scenario, loads them from a folder, and ships the default catalog.

PURPOSE:
  Scenario content is data. Designers drop JSON or YAML files into a folder
  and the server picks them up at startup; nothing about a scenario requires a
  code change. Every entry goes through engine.NewCatalog, so a malformed file
  fails the load instead of silently producing no offers.

JSON SCHEMA:
  {
    "id": "coffee_shop",
    "name": "Coffee Shop",
    "type": "expense",
    "tags": ["dining", "leisure", "convenience"],
    "description": "Coffee Shop discretionary spend.",
    "amount": {"dist": "choice", "options": [4, 6, 8, 10]},
    "base_daily_prob": 0.22,
    "deterministic": false,
    "schedule": null,
    "cooldown_days": 0,
    "triggers": [
      {"spawn": "late_fee_generic", "after_days": 5, "prob": 0.9,
       "data": {"override_amount": -25, "extra_desc": "Late fee"}}
    ],
    "pledge_days": 90
  }

  A file holds one scenario object or an array of them. YAML files use the
  same keys.

DEFAULTS:
  - id:                  derived from name ("Bar / Night Out" → "bar_night_out")
  - triggers[].after_days: 1
  - triggers[].prob:     1.0
  - schedule.n:          30 (applied by the engine)

SEE ALSO:
  - defaults.go: Built-in catalog
  - load.go: Folder loading
  - engine/catalog.go: Validation rules
*/
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/warp/scenario-engine/engine"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// ScenarioJSON is the file representation of a scenario.
type ScenarioJSON struct {
	ID            string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name          string            `json:"name" yaml:"name"`
	Type          string            `json:"type" yaml:"type"`
	Tags          []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description   string            `json:"description,omitempty" yaml:"description,omitempty"`
	Amount        engine.AmountSpec `json:"amount" yaml:"amount"`
	BaseDailyProb float64           `json:"base_daily_prob,omitempty" yaml:"base_daily_prob,omitempty"`
	Deterministic bool              `json:"deterministic,omitempty" yaml:"deterministic,omitempty"`
	Schedule      *engine.Schedule  `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	CooldownDays  int               `json:"cooldown_days,omitempty" yaml:"cooldown_days,omitempty"`
	Triggers      []TriggerJSON     `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	PledgeDays    int               `json:"pledge_days,omitempty" yaml:"pledge_days,omitempty"`
}

// TriggerJSON leaves after_days and prob optional so that an omitted value
// can be told apart from an explicit zero.
type TriggerJSON struct {
	Spawn     string             `json:"spawn" yaml:"spawn"`
	AfterDays *int               `json:"after_days,omitempty" yaml:"after_days,omitempty"`
	Prob      *float64           `json:"prob,omitempty" yaml:"prob,omitempty"`
	Data      engine.TriggerData `json:"data,omitempty" yaml:"data,omitempty"`
}

// =============================================================================
// CONVERSION
// =============================================================================

// FromJSON converts a file entry into an engine scenario, applying defaults.
// Validation is left to engine.NewCatalog.
func FromJSON(sj ScenarioJSON) engine.Scenario {
	id := sj.ID
	if id == "" {
		id = Slug(sj.Name)
	}

	s := engine.Scenario{
		ID:            engine.ScenarioID(id),
		Name:          sj.Name,
		Category:      engine.Category(sj.Type),
		Tags:          sj.Tags,
		Description:   sj.Description,
		Amount:        sj.Amount,
		BaseDailyProb: sj.BaseDailyProb,
		Deterministic: sj.Deterministic,
		Schedule:      sj.Schedule,
		CooldownDays:  sj.CooldownDays,
		PledgeDays:    sj.PledgeDays,
	}
	for _, tj := range sj.Triggers {
		t := engine.TriggerTemplate{Spawn: engine.ScenarioID(tj.Spawn), AfterDays: 1, Prob: 1, Data: tj.Data}
		if tj.AfterDays != nil {
			t.AfterDays = *tj.AfterDays
		}
		if tj.Prob != nil {
			t.Prob = *tj.Prob
		}
		s.Triggers = append(s.Triggers, t)
	}
	return s
}

// ToJSON converts an engine scenario into its file representation.
func ToJSON(s engine.Scenario) ScenarioJSON {
	sj := ScenarioJSON{
		ID:            string(s.ID),
		Name:          s.Name,
		Type:          string(s.Category),
		Tags:          s.Tags,
		Description:   s.Description,
		Amount:        s.Amount,
		BaseDailyProb: s.BaseDailyProb,
		Deterministic: s.Deterministic,
		Schedule:      s.Schedule,
		CooldownDays:  s.CooldownDays,
		PledgeDays:    s.PledgeDays,
	}
	for _, t := range s.Triggers {
		after, prob := t.AfterDays, t.Prob
		sj.Triggers = append(sj.Triggers, TriggerJSON{
			Spawn:     string(t.Spawn),
			AfterDays: &after,
			Prob:      &prob,
			Data:      t.Data,
		})
	}
	return sj
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes a JSON document holding one scenario or an array of them.
func Parse(data []byte) ([]engine.Scenario, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var entries []ScenarioJSON
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
		}
	} else {
		var one ScenarioJSON
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("failed to parse scenario JSON: %w", err)
		}
		entries = []ScenarioJSON{one}
	}
	return convert(entries), nil
}

// ParseYAML decodes a YAML document holding one scenario or a list of them.
func ParseYAML(data []byte) ([]engine.Scenario, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	var entries []ScenarioJSON
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
		}
	case yaml.MappingNode:
		var one ScenarioJSON
		if err := root.Decode(&one); err != nil {
			return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
		}
		entries = []ScenarioJSON{one}
	default:
		return nil, fmt.Errorf("failed to parse scenario YAML: expected a mapping or a list at line %d", root.Line)
	}
	return convert(entries), nil
}

// Marshal encodes scenarios as an indented JSON array that Parse accepts.
func Marshal(scenarios []engine.Scenario) ([]byte, error) {
	out := make([]ScenarioJSON, len(scenarios))
	for i, s := range scenarios {
		out[i] = ToJSON(s)
	}
	return json.MarshalIndent(out, "", "  ")
}

func convert(entries []ScenarioJSON) []engine.Scenario {
	out := make([]engine.Scenario, len(entries))
	for i, e := range entries {
		out[i] = FromJSON(e)
	}
	return out
}

// Slug lowercases name and joins its alphanumeric runs with underscores.
func Slug(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pending = false
			continue
		}
		pending = true
	}
	return b.String()
}
