// jobsight dashboard — HTTP API over the chart artifacts: artifact JSON,
// cockpit query logging, and model-backed insight/chat streaming.
package main

import (
	"log/slog"
	"os"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"jobsight/internal/dashboard"
	"jobsight/internal/llm"
)

func main() {
	_ = godotenv.Load()

	addr := ":" + env.Str("DASHBOARD_PORT", "5000")
	artifactDir := env.Str("OUT_DIR", "static/data")

	queryLog, err := dashboard.OpenQueryLog(env.Str("QUERY_DB", "data/queries.db"))
	if err != nil {
		slog.Error("query log open failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer queryLog.Close()

	client := llm.New(llm.Config{
		BaseURL:     env.Str("LLM_API_BASE", "https://api.deepseek.com/v1"),
		APIKey:      env.Str("LLM_API_KEY", ""),
		Model:       env.Str("LLM_MODEL", "deepseek-chat"),
		Temperature: float32(env.Float("LLM_TEMPERATURE", 0.7)),
	})

	if env.Str("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	srv := dashboard.New(dashboard.Config{
		ArtifactDir: artifactDir,
		Client:      client,
		Log:         queryLog,
	})
	srv.Routes(r)

	slog.Info("dashboard listening",
		slog.String("addr", addr),
		slog.String("artifacts", artifactDir),
	)
	if err := r.Run(addr); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}
