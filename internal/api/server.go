// Package api exposes the one-shot completion surface over HTTP. It is a
// thin binding around session.Service; the interactive session loop stays
// CLI-only.
package api

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/parley/internal/config"
	"github.com/samcharles93/parley/internal/engine"
	"github.com/samcharles93/parley/internal/session"
)

// Server binds the completion service to HTTP routes.
type Server struct {
	eng engine.Engine
	cfg config.Config
}

// NewServer serves completions from the given engine with cfg as the
// per-request fallback configuration.
func NewServer(eng engine.Engine, cfg config.Config) *Server {
	return &Server{eng: eng, cfg: cfg}
}

// Register attaches the API routes.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/completions", s.handleCompletion)
	e.GET("/healthz", s.handleHealth)
}

func (s *Server) handleCompletion(c *echo.Context) error {
	var req CompletionRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "malformed JSON body: "+err.Error())
	}
	if req.Prompt == "" {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "prompt is required")
	}

	cfg := s.cfg
	if req.MaxTokens != nil {
		cfg.MaxTokens = *req.MaxTokens
	}
	if req.Deterministic != nil {
		cfg.Deterministic = *req.Deterministic
	}
	if err := cfg.Validate(); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
	}

	svc := &session.Service{Engine: s.eng, Config: cfg}
	res, err := svc.Complete(c.Request().Context(), req.Prompt)
	if err != nil {
		return writeError(c, http.StatusBadGateway, "engine_error", err.Error())
	}

	return c.JSON(http.StatusOK, CompletionResponse{
		ID:        "cmpl-" + uuid.NewString(),
		Object:    "completion",
		CreatedAt: time.Now().Unix(),
		Text:      res.Text,
		Usage: Usage{
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			TotalTokens:      res.PromptTokens + res.CompletionTokens,
		},
		TPS: res.TPS(),
	})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, ErrorBody{Error: ErrorDetail{Message: msg, Type: errType}})
}
