package domain

import "context"

// Classifier is the black-box text model. It returns raw logits in the
// model's own output order, 8 or 16 values wide for WRIME-style models.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]float64, error)
}

// Tokenizer bounds classifier input by token count.
type Tokenizer interface {
	Truncate(text string, maxTokens int) string
}

// EmotionInferer turns raw text into an EmotionVector.
type EmotionInferer interface {
	Infer(ctx context.Context, text string) (EmotionVector, error)
}

// PriorTable maps an emoji to its sentiment polarity in [-1, 1].
// Lookup is total: unknown emoji report (0, false).
type PriorTable interface {
	Lookup(emoji string) (score float64, known bool)
}

// PriorEntry is one row of a PriorTable listing.
type PriorEntry struct {
	Emoji string  `json:"emoji"`
	Score float64 `json:"score"`
}
