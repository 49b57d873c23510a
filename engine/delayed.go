package engine

import "sort"

// =============================================================================
// DELAYED SPAWNS - Day-indexed queue of pending triggers
// =============================================================================

// Spawn is a trigger that passed its Bernoulli trial and waits for its day.
type Spawn struct {
	Target        ScenarioID
	Data          TriggerData
	SourceEventID string
	DueDay        int
}

// DelayQueue holds spawns keyed by due day. Each spawn is consumed exactly
// once by PopDue.
type DelayQueue struct {
	byDay map[int][]Spawn
}

func NewDelayQueue() *DelayQueue {
	return &DelayQueue{byDay: make(map[int][]Spawn)}
}

// Push enqueues a spawn, preserving insertion order within a day.
func (q *DelayQueue) Push(s Spawn) {
	q.byDay[s.DueDay] = append(q.byDay[s.DueDay], s)
}

// PopDue removes and returns every spawn due on day.
func (q *DelayQueue) PopDue(day int) []Spawn {
	due := q.byDay[day]
	delete(q.byDay, day)
	return due
}

// Len counts queued spawns across all days.
func (q *DelayQueue) Len() int {
	n := 0
	for _, s := range q.byDay {
		n += len(s)
	}
	return n
}

// Pending returns a copy of all queued spawns ordered by due day.
func (q *DelayQueue) Pending() []Spawn {
	days := make([]int, 0, len(q.byDay))
	for d := range q.byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	var out []Spawn
	for _, d := range days {
		out = append(out, q.byDay[d]...)
	}
	return out
}
