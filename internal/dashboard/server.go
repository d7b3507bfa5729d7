// Package dashboard serves the chart artifacts and the model-backed
// insight/chat API over HTTP. It reads the artifact directory the
// aggregation passes wrote and never recomputes anything itself.
package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"jobsight/internal/aggregate"
	"jobsight/internal/llm"
	"jobsight/internal/metrics"
)

const (
	sessionCookie = "sid"
	recentQueries = 20
	historyLimit  = 6
)

// Config holds server dependencies.
type Config struct {
	ArtifactDir string
	Client      llm.Client
	Log         *QueryLog
}

// Server is the dashboard HTTP API.
type Server struct {
	cfg       Config
	artifacts map[string]struct{}
}

// New builds a Server. The artifact allow-list is derived from the pass
// registry, so a new pass is servable without touching this package.
func New(cfg Config) *Server {
	allowed := make(map[string]struct{}, len(aggregate.Passes))
	for _, p := range aggregate.Passes {
		allowed[p.Name] = struct{}{}
	}
	return &Server{cfg: cfg, artifacts: allowed}
}

// Routes registers all endpoints on r.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/api/data/:name", s.handleData)
	r.POST("/api/cockpit/log", s.handleCockpitLog)
	r.GET("/api/queries/insight", s.handleQueryInsight)
	r.GET("/api/insight/:page", s.handleInsight)
	r.POST("/api/chat", s.handleChat)
	r.GET("/api/chat/stream", s.handleChatStream)
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, metrics.Format())
	})
}

// handleData serves one artifact JSON file. Only names produced by the
// aggregation passes are reachable; everything else is a 404, never a
// filesystem probe.
func (s *Server) handleData(c *gin.Context) {
	name := c.Param("name")
	name = strings.TrimSuffix(name, ".json")
	if _, ok := s.artifacts[name]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown dataset"})
		return
	}
	path := filepath.Join(s.cfg.ArtifactDir, name+".json")
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not generated yet"})
		return
	}
	c.File(path)
}

type cockpitLogRequest struct {
	Degree    string `json:"degree"`
	Exp       string `json:"exp"`
	City      string `json:"city"`
	Direction string `json:"direction"`
}

func (s *Server) handleCockpitLog(c *gin.Context) {
	var req cockpitLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if s.cfg.Log == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	id, err := s.cfg.Log.Record(c.Request.Context(), QueryEntry{
		SessionID: s.sessionID(c),
		Degree:    req.Degree,
		Exp:       req.Exp,
		City:      req.City,
		Direction: req.Direction,
	})
	if err != nil {
		slog.Error("cockpit log insert failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "log failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

// sessionID reads the session cookie, falling back to the remote address
// and setting the cookie for subsequent requests.
func (s *Server) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(sessionCookie); err == nil && sid != "" {
		return sid
	}
	sid := c.ClientIP()
	if sid == "" {
		sid = "anon"
	}
	c.SetCookie(sessionCookie, sid, 0, "/", "", false, true)
	return sid
}

func (s *Server) handleQueryInsight(c *gin.Context) {
	if s.cfg.Log == nil {
		c.JSON(http.StatusOK, gin.H{"total_queries": 0, "recent_queries": []QueryEntry{}})
		return
	}
	total, recent, err := s.cfg.Log.Recent(c.Request.Context(), recentQueries)
	if err != nil {
		slog.Error("query insight read failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query log unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_queries": total, "recent_queries": recent})
}

// handleInsight streams a model-written narrative for one dashboard page
// over SSE. The page name only labels logging for now: every page reads
// the same overview summary.
func (s *Server) handleInsight(c *gin.Context) {
	metrics.IncrInsightRequests()
	page := c.Param("page")
	s.sseHeaders(c)

	summary, err := buildSummary(s.cfg.ArtifactDir)
	if err != nil {
		slog.Error("insight summary failed", slog.String("page", page), slog.Any("err", err))
		s.sseEvent(c, gin.H{"type": "error", "content": "生成洞察时后端出现错误：" + err.Error()})
		return
	}

	msgs := []llm.Message{
		{Role: "system", Content: insightSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(insightUserTemplate, summary.Text())},
	}
	s.streamToSSE(c, msgs)
}

type chatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

// handleChat is the non-streaming Q&A endpoint.
func (s *Server) handleChat(c *gin.Context) {
	metrics.IncrChatRequests()
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"reply": chatEmptyQuestionHint})
		return
	}

	summary, err := buildSummary(s.cfg.ArtifactDir)
	if err != nil {
		slog.Error("chat summary failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"reply": "后端生成回答时出错了，可以稍后再试。", "error": err.Error()})
		return
	}

	msgs := chatMessages(summary, req.History, strings.TrimSpace(req.Message))
	var reply strings.Builder
	if err := s.cfg.Client.Stream(c.Request.Context(), msgs, func(delta string) error {
		reply.WriteString(delta)
		return nil
	}); err != nil {
		slog.Error("chat completion failed", slog.Any("err", err))
		c.JSON(http.StatusInternalServerError, gin.H{"reply": "后端生成回答时出错了，可以稍后再试。", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": strings.TrimSpace(reply.String())})
}

// handleChatStream is the SSE Q&A endpoint. The question and history come
// in the query string so EventSource can reach it.
func (s *Server) handleChatStream(c *gin.Context) {
	metrics.IncrChatRequests()
	s.sseHeaders(c)

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		s.sseEvent(c, gin.H{"type": "error", "content": "问题为空，请重新输入。"})
		return
	}
	history := parseHistory(c.Query("history"))

	summary, err := buildSummary(s.cfg.ArtifactDir)
	if err != nil {
		slog.Error("chat stream summary failed", slog.Any("err", err))
		s.sseEvent(c, gin.H{"type": "error", "content": "后端出错：" + err.Error()})
		return
	}
	s.streamToSSE(c, chatMessages(summary, history, q))
}

// chatMessages assembles the conversation: prompts, data context, at most
// the last historyLimit prior turns, then the current question.
func chatMessages(summary *dataSummary, history []llm.Message, question string) []llm.Message {
	msgs := []llm.Message{
		{Role: "system", Content: chatSystemPrompt},
		{Role: "assistant", Content: chatContextPrefix + summary.Text()},
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if (m.Role == "user" || m.Role == "assistant") && content != "" {
			msgs = append(msgs, llm.Message{Role: m.Role, Content: content})
		}
	}
	return append(msgs, llm.Message{Role: "user", Content: question})
}

func parseHistory(raw string) []llm.Message {
	if raw == "" {
		return nil
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	var history []llm.Message
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

func (s *Server) sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
}

// sseEvent writes one SSE data frame and flushes it.
func (s *Server) sseEvent(c *gin.Context, payload gin.H) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

// streamToSSE runs a model stream and forwards it as start/chunk/end
// frames, with an error frame on failure.
func (s *Server) streamToSSE(c *gin.Context, msgs []llm.Message) {
	s.sseEvent(c, gin.H{"type": "start"})
	err := s.cfg.Client.Stream(c.Request.Context(), msgs, func(delta string) error {
		s.sseEvent(c, gin.H{"type": "chunk", "content": delta})
		return nil
	})
	if err != nil {
		slog.Error("model stream failed", slog.Any("err", err))
		s.sseEvent(c, gin.H{"type": "error", "content": "后端出错：" + err.Error()})
		return
	}
	s.sseEvent(c, gin.H{"type": "end"})
}
