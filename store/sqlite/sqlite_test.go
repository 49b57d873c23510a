package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/scenario-engine/engine"
	"github.com/warp/scenario-engine/profile"
	"github.com/warp/scenario-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func session(id string) sqlite.SessionRecord {
	return sqlite.SessionRecord{
		ID:      id,
		Profile: profile.Default(),
		Seed:    42,
		Day:     1,
		Balance: engine.Money(1500),
	}
}

func committed(id string, day int, name string, amount float64, tags ...string) engine.CommittedEvent {
	return engine.CommittedEvent{
		ID:             id,
		Day:            day,
		ScenarioID:     engine.ScenarioID(id + "_scenario"),
		Name:           name,
		Category:       engine.CategoryExpense,
		Tags:           tags,
		Description:    name + " description",
		ProposedAmount: engine.Money(amount),
		Amount:         engine.Money(amount),
		Option:         "regular",
		OptionLabel:    "Proceed",
		Probability:    0.25,
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSaveSession_InsertAndAdvance(t *testing.T) {
	// GIVEN: A new session saved on day 1
	// WHEN: The same session is saved again on day 5 with a new balance
	// THEN: One row exists with the new day and balance and the original profile

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, session("s1")))

	rec := session("s1")
	rec.Day = 5
	rec.Balance = engine.Money(1234.56)
	rec.Profile.Name = "Changed"
	require.NoError(t, store.SaveSession(ctx, rec))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Day)
	assert.True(t, engine.Money(1234.56).Equal(got.Balance), "balance %s", got.Balance)
	assert.Equal(t, "Player", got.Profile.Name)
	assert.Equal(t, profile.PayBiweekly, got.Profile.PayCycle.Type)
	assert.Equal(t, int64(42), got.Seed)
	assert.False(t, got.StartedAt.IsZero())
}

func TestGetSession_Missing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetSession(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveSession(ctx, session(id)))
	}

	all, err := store.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := store.ListSessions(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

// =============================================================================
// EVENT TESTS
// =============================================================================

func TestAppendEvents_LoadInCommitOrder(t *testing.T) {
	// GIVEN: Two committed days archived out of name order
	// WHEN: Loading the session's events
	// THEN: Events come back by day, then in their original order

	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, session("s1")))

	day1 := []engine.CommittedEvent{
		committed("evt_z", 1, "Rent", -1200, "rent", "housing"),
		committed("evt_a", 1, "Coffee Shop", -6),
	}
	day2 := []engine.CommittedEvent{committed("evt_m", 2, "Lunch Out", -12.5, "dining")}

	require.NoError(t, store.AppendEvents(ctx, "s1", day1))
	require.NoError(t, store.AppendEvents(ctx, "s1", day2))

	events, err := store.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "evt_z", events[0].ID)
	assert.Equal(t, "evt_a", events[1].ID)
	assert.Equal(t, "evt_m", events[2].ID)

	rent := events[0]
	assert.Equal(t, []string{"rent", "housing"}, rent.Tags)
	assert.Equal(t, engine.CategoryExpense, rent.Category)
	assert.True(t, engine.Money(-1200).Equal(rent.Amount))
	assert.Equal(t, "regular", rent.Option)
	assert.Equal(t, 0.25, rent.Probability)
	assert.Empty(t, events[1].Tags)
}

func TestAppendEvents_DuplicateRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, session("s1")))
	ev := committed("evt_1", 1, "Coffee Shop", -6)
	require.NoError(t, store.AppendEvents(ctx, "s1", []engine.CommittedEvent{ev}))

	err := store.AppendEvents(ctx, "s1", []engine.CommittedEvent{committed("evt_2", 2, "Tea", -3), ev})

	assert.ErrorIs(t, err, sqlite.ErrDuplicateEvent)
	events, err := store.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, events, 1, "failed batch must not be partially applied")
}

func TestAppendEvents_Empty(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.AppendEvents(context.Background(), "s1", nil))
}

func TestDeleteSession_RemovesEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, session("s1")))
	require.NoError(t, store.AppendEvents(ctx, "s1", []engine.CommittedEvent{committed("evt_1", 1, "Tea", -3)}))

	require.NoError(t, store.DeleteSession(ctx, "s1"))

	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
	events, err := store.LoadEvents(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, session("s1")))

	require.NoError(t, store.Reset(ctx))

	all, err := store.ListSessions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}
