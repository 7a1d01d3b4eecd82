package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibare/baden/internal/testing/fixtures"
)

var storeBase = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestEnsureProject(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.EnsureProject("proj-1", "Project One"))
	// Idempotent
	require.NoError(t, st.EnsureProject("proj-1", "Project One"))
	require.NoError(t, st.EnsureProject("proj-2", ""))

	projects, err := st.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)

	byId := map[string]Project{}
	for _, p := range projects {
		byId[p.Id] = p
	}
	assert.Equal(t, "Project One", byId["proj-1"].Name)
	// Empty name defaults to the id
	assert.Equal(t, "proj-2", byId["proj-2"].Name)
}

func TestStoreAndGetEvents(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.EnsureProject("proj-1", "P1"))

	records := fixtures.WorkSession(storeBase)
	for i := range records {
		records[i].ProjectId = "proj-1"
		require.NoError(t, st.StoreEvent(&records[i]))
	}

	t.Run("by_date", func(t *testing.T) {
		got, err := st.GetEvents("proj-1", "2026-03-10")
		require.NoError(t, err)
		require.Len(t, got, len(records))

		// Ascending by timestamp
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Timestamp, got[i].Timestamp)
		}
		assert.Equal(t, "ws-1", got[0].Id)
	})

	t.Run("other_date_is_empty", func(t *testing.T) {
		got, err := st.GetEvents("proj-1", "2026-03-11")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("all_dates", func(t *testing.T) {
		got, err := st.GetEvents("proj-1", "")
		require.NoError(t, err)
		assert.Len(t, got, len(records))
	})

	t.Run("unknown_project", func(t *testing.T) {
		got, err := st.GetEvents("nope", "")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("optional_fields_round_trip", func(t *testing.T) {
		got, err := st.GetEvents("proj-1", "2026-03-10")
		require.NoError(t, err)

		found := false
		for _, rec := range got {
			if rec.Id == "ws-3" {
				found = true
				require.NotNil(t, rec.File)
				require.NotNil(t, rec.DurationMs)
				assert.Equal(t, "internal/client/retry.go", *rec.File)
				assert.Equal(t, int64(45_000), *rec.DurationMs)
				assert.Nil(t, rec.RuleId)
			}
		}
		require.True(t, found)
	})

	t.Run("duplicate_id_is_an_error", func(t *testing.T) {
		dup := records[0]
		assert.Error(t, st.StoreEvent(&dup))
	})
}

func TestGetRecentEvents(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.EnsureProject("proj-1", "P1"))

	records := fixtures.RuleChain(storeBase, "R1", 5)
	for i := range records {
		records[i].ProjectId = "proj-1"
		require.NoError(t, st.StoreEvent(&records[i]))
	}

	got, err := st.GetRecentEvents("proj-1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest three, returned oldest first
	assert.Equal(t, "R1-3", got[0].Id)
	assert.Equal(t, "R1-4", got[1].Id)
	assert.Equal(t, "R1-5", got[2].Id)
}

func TestNowTimestamp(t *testing.T) {
	ts, err := time.Parse(time.RFC3339, NowTimestamp())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}
