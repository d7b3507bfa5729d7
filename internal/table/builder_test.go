package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsight/internal/llm"
	"jobsight/internal/normalize"
	"jobsight/internal/posting"
)

// echoClient fabricates a minimal valid record from the prompt-independent
// template below, one per call.
type echoClient struct{ calls int }

func (c *echoClient) Complete(context.Context, string, string) (string, error) {
	c.calls++
	return fmt.Sprintf(`{
		"title": "岗位%d", "company": "公司", "city": "北京",
		"salary_min": 8000, "salary_max": 12000,
		"experience_band": "1-3y", "degree_level": "bachelor",
		"ai_tags": ["机器学习"], "primary_direction": "机器学习",
		"summary": "s", "core_skills": ["Python", "SQL"]
	}`, c.calls), nil
}

func (c *echoClient) Stream(context.Context, []llm.Message, func(string) error) error {
	return errors.New("not implemented")
}

type failingClient struct{}

func (failingClient) Complete(context.Context, string, string) (string, error) {
	return "", errors.New("model down")
}
func (failingClient) Stream(context.Context, []llm.Message, func(string) error) error {
	return errors.New("not implemented")
}

func newBuilder(t *testing.T, client llm.Client, sink string) *Builder {
	t.Helper()
	n := normalize.New(normalize.Config{Client: client, Attempts: 2, RetryWait: time.Millisecond})
	return NewBuilder(Config{Normalizer: n, SinkPath: sink, RowDelay: time.Millisecond})
}

func rawRows(n int) []posting.RawPosting {
	rows := make([]posting.RawPosting, n)
	for i := range rows {
		rows[i] = posting.RawPosting{Index: i, Title: fmt.Sprintf("岗位%d", i), City: "北京", PublishDate: "2024-03-05"}
	}
	return rows
}

func readSink(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestBuildWritesHeaderAndRows(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")
	b := newBuilder(t, &echoClient{}, sink)

	written, err := b.Build(context.Background(), rawRows(3))
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	recs := readSink(t, sink)
	require.Len(t, recs, 4)
	assert.Equal(t, Header, recs[0])

	row := recs[1]
	idx := func(name string) int {
		for i, h := range Header {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %s", name)
		return -1
	}
	assert.Equal(t, "10000", row[idx(ColSalaryMedian)])
	assert.Equal(t, "2024-03", row[idx(ColPublishMonth)])
	assert.Equal(t, "Python、SQL", row[idx(ColCoreSkills)])
	assert.Equal(t, "1-3y", row[idx(ColExperienceBand)])
}

func TestBuildResumesWithoutDuplicates(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")
	rows := rawRows(5)

	// First partial run covers the first two rows.
	b := newBuilder(t, &echoClient{}, sink)
	written, err := b.Build(context.Background(), rows[:2])
	require.NoError(t, err)
	require.Equal(t, 2, written)

	// Second run over the full input resumes after the existing rows.
	client := &echoClient{}
	b = newBuilder(t, client, sink)
	written, err = b.Build(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 3, written)
	assert.Equal(t, 3, client.calls, "already-persisted rows must not hit the model")

	recs := readSink(t, sink)
	assert.Len(t, recs, 6, "one header plus five data rows, no duplicates")
}

func TestBuildSurvivesModelOutage(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")
	b := newBuilder(t, failingClient{}, sink)

	written, err := b.Build(context.Background(), rawRows(2))
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	recs := readSink(t, sink)
	require.Len(t, recs, 3)
	// Fallback rows carry the none/unspecified enum values and empty numerics.
	assert.Equal(t, string(posting.ExpNoneRequired), recs[1][7])
	assert.Equal(t, string(posting.DegreeNone), recs[1][10])
	assert.Equal(t, "", recs[1][4])
	assert.Equal(t, "", recs[1][6])
}

// cancellingClient cancels the run context from inside the model call,
// the way an interrupt signal lands mid-row.
type cancellingClient struct{ cancel context.CancelFunc }

func (c *cancellingClient) Complete(context.Context, string, string) (string, error) {
	c.cancel()
	return "", context.Canceled
}
func (c *cancellingClient) Stream(context.Context, []llm.Message, func(string) error) error {
	return errors.New("not implemented")
}

func TestBuildInterruptedRowIsNotPersisted(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := newBuilder(t, &cancellingClient{cancel: cancel}, sink)

	written, err := b.Build(ctx, rawRows(2))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, written)

	recs := readSink(t, sink)
	assert.Len(t, recs, 1, "header only; the interrupted row must not land as a fallback")

	// The next run still gets to normalize every row for real.
	client := &echoClient{}
	b = newBuilder(t, client, sink)
	written, err = b.Build(context.Background(), rawRows(2))
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, client.calls)
}

func TestBuildRepairsTornTail(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")

	b := newBuilder(t, &echoClient{}, sink)
	written, err := b.Build(context.Background(), rawRows(1))
	require.NoError(t, err)
	require.Equal(t, 1, written)

	// Simulate a hard crash mid-write: a partial record with no trailing
	// newline at the end of the sink.
	f, err := os.OpenFile(sink, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("岗位2,公司,北京")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Resume over three rows: the torn record does not count as done, so
	// its raw row is re-processed and rewritten whole.
	client := &echoClient{}
	b = newBuilder(t, client, sink)
	written, err = b.Build(context.Background(), rawRows(3))
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Equal(t, 2, client.calls)

	recs := readSink(t, sink)
	require.Len(t, recs, 4)
	for _, rec := range recs {
		assert.Len(t, rec, len(Header))
	}
}

func TestBuildCancelledContext(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "clean.csv")
	b := newBuilder(t, &echoClient{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, rawRows(2))
	assert.Error(t, err)
}
