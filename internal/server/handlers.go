package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/askai"
)

// Response texts shared with the browser front-end.
const (
	healthStatus      = "Server is running!"
	msgPromptRequired = "Prompt is required"
	msgAIFailed       = "AI failed to respond"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, askai.HealthResponse{Status: healthStatus})
}

func (s *Server) handleAskAI(c echo.Context) error {
	var req askai.AskRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		s.metrics.generations.WithLabelValues(outcomeRejected).Inc()
		return c.JSON(http.StatusBadRequest, askai.AskResponse{Error: msgPromptRequired})
	}

	start := time.Now()
	answer, err := s.generator.Generate(c.Request().Context(), req.Prompt)
	s.metrics.genDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.generations.WithLabelValues(outcomeFailure).Inc()
		s.log.Error().Err(err).Int("prompt_len", len(req.Prompt)).Msg("generation failed")
		return c.JSON(http.StatusInternalServerError, askai.AskResponse{
			Error:   msgAIFailed,
			Details: err.Error(),
		})
	}

	s.metrics.generations.WithLabelValues(outcomeSuccess).Inc()
	return c.JSON(http.StatusOK, askai.AskResponse{Answer: answer})
}
