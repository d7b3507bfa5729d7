package dashboard

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryLogRoundTrip(t *testing.T) {
	q, err := OpenQueryLog(filepath.Join(t.TempDir(), "queries.db"))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()

	total, recent, err := q.Recent(ctx, recentQueries)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, recent)

	id, err := q.Record(ctx, QueryEntry{
		SessionID: "s1",
		Degree:    "bachelor",
		Exp:       "1-3y",
		City:      "北京",
		Direction: "机器学习",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	_, err = q.Record(ctx, QueryEntry{SessionID: "s2", City: "上海"})
	require.NoError(t, err)

	total, recent, err = q.Recent(ctx, recentQueries)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, recent, 2)

	// Newest first.
	assert.Equal(t, "s2", recent[0].SessionID)
	assert.Equal(t, "上海", recent[0].City)
	assert.Empty(t, recent[0].Degree)
	assert.Equal(t, "s1", recent[1].SessionID)
	assert.Equal(t, "机器学习", recent[1].Direction)
	assert.NotEmpty(t, recent[1].CreatedAt)
}

func TestQueryLogRecentLimit(t *testing.T) {
	q, err := OpenQueryLog(filepath.Join(t.TempDir(), "queries.db"))
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := q.Record(ctx, QueryEntry{SessionID: fmt.Sprintf("s%d", i)})
		require.NoError(t, err)
	}

	total, recent, err := q.Recent(ctx, recentQueries)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, recent, recentQueries)
	assert.Equal(t, "s24", recent[0].SessionID)
}
