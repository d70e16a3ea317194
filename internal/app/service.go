package app

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
)

// PriorCatalog is a prior table that can also list its entries.
type PriorCatalog interface {
	domain.PriorTable
	Entries() []domain.PriorEntry
}

// Fuser combines an emotion vector with an emoji prior.
type Fuser interface {
	Fuse(vec domain.EmotionVector, emoji string) domain.FusionResult
}

// ScoreObserver receives per-request measurements, typically for metrics.
type ScoreObserver interface {
	ObserveInference(d time.Duration, kind string)
	ObserveScore(combined100, confidence float64, knownPrior bool)
}

// Inference error kinds reported to the ScoreObserver.
const (
	KindInvalidOutput = "invalid_output"
	KindUnavailable   = "unavailable"
	KindCancelled     = "cancelled"
	KindModelServer   = "model_server"
)

type noopObserver struct{}

func (noopObserver) ObserveInference(time.Duration, string) {}
func (noopObserver) ObserveScore(float64, float64, bool) {}

// Service is the application layer. It is stateless per request and safe for
// concurrent use.
type Service struct {
	inferer  domain.EmotionInferer
	engine   Fuser
	priors   PriorCatalog
	clock    clockwork.Clock
	observer ScoreObserver
}

// NewService wires the scoring use case. observer may be nil.
func NewService(inferer domain.EmotionInferer, engine Fuser, priors PriorCatalog, clock clockwork.Clock, observer ScoreObserver) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		inferer:  inferer,
		engine:   engine,
		priors:   priors,
		clock:    clock,
		observer: observer,
	}
}

// Score runs one inference on text and fuses it with the prior for emoji.
// The result is unrounded. Inference errors are returned unchanged.
func (s *Service) Score(ctx context.Context, emoji, text string) (domain.FusionResult, error) {
	start := s.clock.Now()
	vec, err := s.inferer.Infer(ctx, text)
	s.observer.ObserveInference(s.clock.Since(start), inferenceErrorKind(err))
	if err != nil {
		return domain.FusionResult{}, err
	}

	result := s.engine.Fuse(vec, emoji)
	result.Text = text

	_, known := s.priors.Lookup(emoji)
	s.observer.ObserveScore(result.Combined100, result.Confidence, known)

	return result, nil
}

// Priors lists the effective emoji prior table.
func (s *Service) Priors() []domain.PriorEntry {
	return s.priors.Entries()
}

func inferenceErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidModelOutput):
		return KindInvalidOutput
	case errors.Is(err, domain.ErrClassifierUnavailable):
		return KindUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindModelServer
	}
}
