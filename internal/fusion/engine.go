package fusion

import (
	"errors"
	"fmt"
	"math"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultAlpha              = 0.5
	DefaultBeta               = 0.2
	DefaultAnticipationWeight = 0.5
	DefaultEpsilon            = 1e-6
)

// Params controls the fusion. w2 = clamp(Alpha*c + Beta, 0, 1).
type Params struct {
	Alpha              float64
	Beta               float64
	AnticipationWeight float64
	Epsilon            float64
}

func DefaultParams() Params {
	return Params{
		Alpha:              DefaultAlpha,
		Beta:               DefaultBeta,
		AnticipationWeight: DefaultAnticipationWeight,
		Epsilon:            DefaultEpsilon,
	}
}

func (p Params) Validate() error {
	if !isFinite(p.Alpha) || !isFinite(p.Beta) {
		return errors.New("alpha and beta must be finite")
	}
	if !isFinite(p.AnticipationWeight) || p.AnticipationWeight <= 0 {
		return fmt.Errorf("anticipation weight must be positive, got %v", p.AnticipationWeight)
	}
	if !(p.Epsilon > 0 && p.Epsilon < 0.5) {
		return fmt.Errorf("epsilon must be within (0, 0.5), got %v", p.Epsilon)
	}
	return nil
}

// Engine fuses emotion vectors with emoji priors. Immutable after construction.
type Engine struct {
	params          Params
	priors          domain.PriorTable
	logAnticipation float64
}

func NewEngine(priors domain.PriorTable, params Params) (*Engine, error) {
	if priors == nil {
		return nil, errors.New("prior table is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fusion params: %w", err)
	}
	return &Engine{
		params:          params,
		priors:          priors,
		logAnticipation: math.Log(params.AnticipationWeight),
	}, nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Fuse computes the full FusionResult for one emotion vector and emoji.
// Values are unrounded; see domain.FusionResult.Rounded.
func (e *Engine) Fuse(vec domain.EmotionVector, emoji string) domain.FusionResult {
	lPos, lNeg := GroupLogits(vec, e.logAnticipation)
	textScore, c := Sentiment(lPos-lNeg, e.params.Epsilon)
	w1, w2 := Weights(c, e.params.Alpha, e.params.Beta)

	emojiScore, _ := e.priors.Lookup(emoji)
	if math.IsNaN(emojiScore) {
		emojiScore = 0
	}
	emojiScore = clamp(emojiScore, -1, 1)

	combined := w1*emojiScore + w2*textScore

	return domain.FusionResult{
		Emoji:         emoji,
		EmojiScore:    emojiScore,
		TextSentScore: textScore,
		Confidence:    c,
		W1:            w1,
		W2:            w2,
		Combined:      combined,
		Combined100:   Rescale(combined),
		Emotions:      vec,
	}
}

// FuseRaw applies the 8/16 output convention before fusing. An output of any
// other width fails with *domain.InvalidModelOutputError and no result.
func (e *Engine) FuseRaw(raw []float64, emoji string) (domain.FusionResult, error) {
	vec, err := domain.FromLogits(raw)
	if err != nil {
		return domain.FusionResult{}, err
	}
	return e.Fuse(vec, emoji), nil
}

// GroupLogits reduces the vector to a positive and a negative representative
// logit with log-sum-exp. Anticipation is down-weighted by adding logWeight
// (ln of its linear weight); surprise belongs to neither group.
func GroupLogits(vec domain.EmotionVector, logWeight float64) (lPos, lNeg float64) {
	pos := []float64{
		vec.Get(domain.Joy),
		vec.Get(domain.Trust),
		vec.Get(domain.Anticipation) + logWeight,
	}
	neg := []float64{
		vec.Get(domain.Sadness),
		vec.Get(domain.Anger),
		vec.Get(domain.Fear),
		vec.Get(domain.Disgust),
	}
	return floats.LogSumExp(pos), floats.LogSumExp(neg)
}

// Sentiment maps the positive/negative logit gap to a polarity in [-1, 1]
// and a confidence in [0, 1] from the binary entropy of sigmoid(delta).
// An undefined delta (NaN, e.g. both groups +Inf) is maximal uncertainty.
func Sentiment(delta, eps float64) (score, confidence float64) {
	pPos := 0.5
	if !math.IsNaN(delta) {
		pPos = sigmoid(delta)
	}
	score = 2*pPos - 1

	p := clamp(pPos, eps, 1-eps)
	h := stat.Entropy([]float64{p, 1 - p})
	confidence = clamp(1-h/math.Ln2, 0, 1)
	return score, confidence
}

// Weights returns (w1, w2) with w2 = clamp(alpha*c + beta, 0, 1) and w1 = 1 - w2.
func Weights(c, alpha, beta float64) (w1, w2 float64) {
	w2 = alpha*c + beta
	if math.IsNaN(w2) {
		w2 = beta
	}
	w2 = clamp(w2, 0, 1)
	return 1 - w2, w2
}

// Rescale maps combined from [-1, 1] to [0, 100], clamping anything outside.
// NaN maps to the neutral midpoint.
func Rescale(combined float64) float64 {
	if math.IsNaN(combined) {
		return 50
	}
	return clamp((combined+1)/2*100, 0, 100)
}

// sigmoid is the logistic function, evaluated so exp never overflows.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
