package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/bertygi/HibiLog-EmotionScore/internal/domain"
)

// DefaultMaxTokens matches the classifier's maximum input length.
const DefaultMaxTokens = 256

type Adapter struct {
	classifier domain.Classifier
	tokenizer  domain.Tokenizer
	maxTokens  int
	cache      *Cache
}

type Option func(*Adapter)

// WithMaxTokens overrides DefaultMaxTokens. Values below 1 are ignored.
func WithMaxTokens(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithCache enables result memoization. A nil cache leaves it disabled.
func WithCache(c *Cache) Option {
	return func(a *Adapter) { a.cache = c }
}

func NewAdapter(classifier domain.Classifier, tokenizer domain.Tokenizer, opts ...Option) (*Adapter, error) {
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if tokenizer == nil {
		return nil, errors.New("tokenizer is required")
	}

	a := &Adapter{
		classifier: classifier,
		tokenizer:  tokenizer,
		maxTokens:  DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Infer truncates text to the token limit, classifies it and returns the
// emotion vector. Empty text is classified like any other input.
// Classifier errors are returned wrapped; an output of unexpected width is a
// *domain.InvalidModelOutputError.
func (a *Adapter) Infer(ctx context.Context, text string) (domain.EmotionVector, error) {
	truncated := a.tokenizer.Truncate(text, a.maxTokens)

	if vec, ok := a.cache.Get(truncated); ok {
		return vec, nil
	}

	raw, err := a.classifier.Classify(ctx, truncated)
	if err != nil {
		return domain.EmotionVector{}, fmt.Errorf("classify: %w", err)
	}

	vec, err := Split(raw)
	if err != nil {
		return domain.EmotionVector{}, err
	}

	a.cache.Set(truncated, vec)
	return vec, nil
}

// Split applies the output convention to raw logits: 16 values keep the
// Reader half [8:16], 8 values are used as-is, anything else fails.
func Split(raw []float64) (domain.EmotionVector, error) {
	return domain.FromLogits(raw)
}
