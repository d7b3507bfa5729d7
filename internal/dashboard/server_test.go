package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobsight/internal/aggregate"
	"jobsight/internal/llm"
)

// stubClient streams canned chunks and records the conversation it saw.
type stubClient struct {
	chunks []string
	err    error
	seen   []llm.Message
}

func (c *stubClient) Complete(context.Context, string, string) (string, error) {
	return strings.Join(c.chunks, ""), c.err
}

func (c *stubClient) Stream(_ context.Context, msgs []llm.Message, fn func(string) error) error {
	c.seen = msgs
	if c.err != nil {
		return c.err
	}
	for _, chunk := range c.chunks {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// newTestServer generates real artifacts into a temp dir and wires a Server
// around them.
func newTestServer(t *testing.T, client llm.Client) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	salary := 12000.0
	tab := &aggregate.Table{Rows: []aggregate.Row{
		{City: "北京", PrimaryDirection: "机器学习", PublishMonth: "2024-01",
			SalaryMedian: &salary, ExperienceBand: "1-3y", DegreeLevel: "bachelor",
			CoreSkills: []string{"Python"}},
		{City: "上海", PrimaryDirection: "后端开发", PublishMonth: "2024-02",
			ExperienceBand: "3-5y", DegreeLevel: "masters", CoreSkills: []string{"Go"}},
	}}
	dir := filepath.Join(t.TempDir(), "charts")
	require.NoError(t, aggregate.RunAll(context.Background(), tab, dir, false))

	q, err := OpenQueryLog(filepath.Join(t.TempDir(), "queries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })

	srv := New(Config{ArtifactDir: dir, Client: client, Log: q})
	r := gin.New()
	srv.Routes(r)
	return srv, r
}

func TestHandleDataAllowList(t *testing.T) {
	_, r := newTestServer(t, &stubClient{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data/trend", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var trend aggregate.TrendPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trend))
	assert.Equal(t, []string{"2024-01", "2024-02"}, trend.Months)

	// .json suffix is tolerated.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data/geo.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Anything outside the registry is a 404, path tricks included.
	for _, name := range []string{"nope", "..%2Fqueries.db", "trend.csv"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data/"+name, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestHandleCockpitLog(t *testing.T) {
	_, r := newTestServer(t, &stubClient{})

	body := bytes.NewBufferString(`{"degree":"bachelor","exp":"1-3y","city":"北京","direction":"机器学习"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cockpit/log", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/queries/insight", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total  int          `json:"total_queries"`
		Recent []QueryEntry `json:"recent_queries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Recent, 1)
	assert.Equal(t, "北京", resp.Recent[0].City)
	assert.NotEmpty(t, resp.Recent[0].SessionID)
}

func TestHandleInsightStreamsSSE(t *testing.T) {
	client := &stubClient{chunks: []string{"【趋势洞察】", "岗位数量上升"}}
	_, r := newTestServer(t, client)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/insight/main_dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	frames := sseFrames(t, w.Body.String())
	require.GreaterOrEqual(t, len(frames), 4)
	assert.Equal(t, "start", frames[0]["type"])
	assert.Equal(t, "chunk", frames[1]["type"])
	assert.Equal(t, "【趋势洞察】", frames[1]["content"])
	assert.Equal(t, "end", frames[len(frames)-1]["type"])

	// The model got the narrative instructions plus the data context.
	require.Len(t, client.seen, 2)
	assert.Equal(t, "system", client.seen[0].Role)
	assert.Contains(t, client.seen[1].Content, "[时间趋势]")
	assert.Contains(t, client.seen[1].Content, "skills_top10")
}

func TestHandleChat(t *testing.T) {
	client := &stubClient{chunks: []string{"北京的岗位最多。"}}
	_, r := newTestServer(t, client)

	body := bytes.NewBufferString(`{"message":"哪个城市岗位最多？","history":[{"role":"user","content":"你好"},{"role":"assistant","content":"你好，请提问"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "北京的岗位最多。", resp.Reply)

	// system + data context + 2 history turns + question.
	require.Len(t, client.seen, 5)
	assert.Equal(t, "哪个城市岗位最多？", client.seen[4].Content)
}

func TestHandleChatEmptyMessage(t *testing.T) {
	_, r := newTestServer(t, &stubClient{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(`{"message":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatStreamHistoryTruncated(t *testing.T) {
	client := &stubClient{chunks: []string{"好的"}}
	_, r := newTestServer(t, client)

	history := make([]llm.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, llm.Message{Role: "user", Content: "旧消息"})
	}
	raw, err := json.Marshal(history)
	require.NoError(t, err)

	target := "/api/chat/stream?q=" + url.QueryEscape("继续") + "&history=" + url.QueryEscape(string(raw))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, w.Code)

	// system + context + 6 kept turns + question.
	assert.Len(t, client.seen, 9)

	frames := sseFrames(t, w.Body.String())
	assert.Equal(t, "start", frames[0]["type"])
	assert.Equal(t, "end", frames[len(frames)-1]["type"])
}

func TestHandleChatStreamModelError(t *testing.T) {
	_, r := newTestServer(t, &stubClient{err: errors.New("upstream down")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/stream?q=hi", nil))
	require.Equal(t, http.StatusOK, w.Code)

	frames := sseFrames(t, w.Body.String())
	last := frames[len(frames)-1]
	assert.Equal(t, "error", last["type"])
	assert.Contains(t, last["content"], "upstream down")
}

// sseFrames decodes every "data: {...}" frame in an SSE body.
func sseFrames(t *testing.T, body string) []map[string]string {
	t.Helper()
	var frames []map[string]string
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var frame map[string]string
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &frame))
		frames = append(frames, frame)
	}
	return frames
}
