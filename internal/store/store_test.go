package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(n int) *int { return &n }

func TestStore_InsertAndListQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := int64(0); i < 5; i++ {
		err := s.InsertRecord(ctx, QueryInsert{
			ID: i, Timestamp: float64(i), Type: "A", Status: "FORWARDED",
			Domain: "example.com", Client: "10.0.0.1", RegexID: -1,
		})
		require.NoError(t, err)
	}

	page, err := s.ListQueries(ctx, s.mem, QueryFilter{Length: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.RecordsTotal)
	assert.Equal(t, int64(5), page.RecordsFiltered)
	require.Len(t, page.Queries, 2)
	// newest first
	assert.Equal(t, int64(4), page.Queries[0].ID)
	assert.Equal(t, int64(3), page.Queries[1].ID)
	assert.Equal(t, int64(4), page.Cursor, "no cursor supplied: response echoes firstID")
}

func TestStore_ListQueries_CursorPinsThePage(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, s.InsertRecord(ctx, QueryInsert{
			ID: i, Timestamp: float64(i), Type: "A", Status: "FORWARDED",
			Domain: "example.com", Client: "10.0.0.1", RegexID: -1,
		}))
	}

	cursor := int64(2)
	page, err := s.ListQueries(ctx, s.mem, QueryFilter{Cursor: &cursor, Length: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Cursor, "an explicit cursor is echoed back unchanged")
	require.Len(t, page.Queries, 3) // ids 0,1,2
	assert.Equal(t, int64(2), page.Queries[0].ID)
}

func TestStore_ListQueries_FilterByDomain(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.InsertRecord(ctx, QueryInsert{ID: 0, Type: "A", Status: "FORWARDED", Domain: "a.com", Client: "10.0.0.1", RegexID: -1}))
	require.NoError(t, s.InsertRecord(ctx, QueryInsert{ID: 1, Type: "A", Status: "FORWARDED", Domain: "b.com", Client: "10.0.0.1", RegexID: -1}))

	page, err := s.ListQueries(ctx, s.mem, QueryFilter{Domain: "a.com", Length: intPtr(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.RecordsTotal)
	assert.Equal(t, int64(1), page.RecordsFiltered)
	require.Len(t, page.Queries, 1)
	assert.Equal(t, "a.com", page.Queries[0].Domain)
}

func TestStore_ListQueries_LengthNegativeStreamsAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, s.InsertRecord(ctx, QueryInsert{
			ID: i, Timestamp: float64(i), Type: "A", Status: "FORWARDED",
			Domain: "example.com", Client: "10.0.0.1", RegexID: -1,
		}))
	}

	page, err := s.ListQueries(ctx, s.mem, QueryFilter{Length: intPtr(-1)})
	require.NoError(t, err)
	assert.Len(t, page.Queries, 5)
}

func TestStore_ListQueries_LengthZeroReturnsNone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.InsertRecord(ctx, QueryInsert{ID: 0, Type: "A", Status: "FORWARDED", Domain: "a.com", Client: "10.0.0.1", RegexID: -1}))

	page, err := s.ListQueries(ctx, s.mem, QueryFilter{Length: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, page.Queries)
	assert.Equal(t, int64(1), page.RecordsFiltered, "length=0 still counts matching rows")
}

func TestStore_ListQueries_CursorPastLargestIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.InsertRecord(ctx, QueryInsert{ID: 0, Type: "A", Status: "FORWARDED", Domain: "a.com", Client: "10.0.0.1", RegexID: -1}))

	cursor := int64(1)
	_, err := s.ListQueries(ctx, s.mem, QueryFilter{Cursor: &cursor})
	assert.ErrorIs(t, err, ErrCursorTooHigh)
}

func TestStore_Suggestions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.UpsertDictionaries(ctx, "example.com", "10.0.0.1", "laptop", "1.1.1.1"))
	require.NoError(t, s.UpsertDictionaries(ctx, "other.com", "10.0.0.2", "", "9.9.9.9"))

	sug, err := s.QuerySuggestions(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"example.com", "other.com"}, sug.Domains)
	assert.Contains(t, sug.Clients, "10.0.0.1")
	assert.Contains(t, sug.Clients, "laptop")
	assert.ElementsMatch(t, []string{"1.1.1.1", "9.9.9.9"}, sug.Upstreams)
}

func TestStore_Version(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v, err := s.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}
