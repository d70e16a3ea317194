package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	apperrors "github.com/bertygi/HibiLog-EmotionScore/internal/platform/errors"
)

// maxEmojiRunes bounds the emoji field. Long ZWJ sequences stay well below it.
const maxEmojiRunes = 16

type emotionRequest struct {
	Emoji  string `json:"emoji"`
	Sample string `json:"sample"`
}

type emotionResponse struct {
	Combined100 float64              `json:"combined_score_100"`
	Detail      *domain.FusionResult `json:"detail,omitempty"`
}

type priorsResponse struct {
	Priors []domain.PriorEntry `json:"priors"`
}

func (s *Server) registerEmotionRoutes() {
	var limiter []echo.MiddlewareFunc
	if s.config.RateLimitRPS > 0 {
		limiter = append(limiter, newRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	s.echo.POST("/emotion", s.handleEmotion, limiter...)
	s.echo.GET("/emoji-priors", s.handleEmojiPriors)
}

func (s *Server) handleEmotion(c echo.Context) error {
	var req emotionRequest
	if err := c.Bind(&req); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code != http.StatusBadRequest {
			return err
		}
		return apperrors.ValidationError("invalid request body")
	}

	detail, err := parseDetail(c.QueryParam("detail"))
	if err != nil {
		return err
	}

	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		return apperrors.ValidationError("emoji must not be empty")
	}
	if n := utf8.RuneCountInString(emoji); n > maxEmojiRunes {
		return apperrors.ValidationError(fmt.Sprintf("emoji must be at most %d characters", maxEmojiRunes)).
			WithField("runes", n)
	}

	result, err := s.app.Score(c.Request().Context(), emoji, req.Sample)
	if err != nil {
		return scoreError(err)
	}

	rounded := result.Rounded()
	resp := emotionResponse{Combined100: rounded.Combined100}
	if detail {
		resp.Detail = &rounded
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write emotion response: %w", err)
	}
	return nil
}

func (s *Server) handleEmojiPriors(c echo.Context) error {
	if err := c.JSON(http.StatusOK, priorsResponse{Priors: s.app.Priors()}); err != nil {
		return fmt.Errorf("failed to write priors response: %w", err)
	}
	return nil
}

func parseDetail(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.ValidationError("detail must be a boolean").WithField("detail", raw)
	}
	return v, nil
}

// scoreError maps a scoring failure to its HTTP-facing error.
func scoreError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidModelOutput):
		return apperrors.InternalError("emotion model returned an unexpected output", err)
	case errors.Is(err, domain.ErrClassifierUnavailable):
		return apperrors.UnavailableError("emotion classifier is temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.UnavailableError("emotion classifier did not answer in time", err)
	default:
		return apperrors.ExternalError("emotion classifier request failed", err)
	}
}
