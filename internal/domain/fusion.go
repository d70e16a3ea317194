package domain

import "math"

// FusionResult carries every intermediate value of one fusion alongside the
// final percentage. Created fresh per request and never stored.
type FusionResult struct {
	Emoji         string        `json:"emoji"`
	Text          string        `json:"text"`
	EmojiScore    float64       `json:"emoji_score"`
	TextSentScore float64       `json:"text_sent_score"`
	Confidence    float64       `json:"confidence"`
	W1            float64       `json:"w1"`
	W2            float64       `json:"w2"`
	Combined      float64       `json:"combined_score"`
	Combined100   float64       `json:"combined_score_100"`
	Emotions      EmotionVector `json:"emotion_values"`
}

// Rounded returns the API view of the result: three decimals for internal
// values and two for the percentage. W1 is derived from the rounded W2 so the
// weights still sum to exactly one.
func (r FusionResult) Rounded() FusionResult {
	out := r
	out.EmojiScore = Round(r.EmojiScore, 3)
	out.TextSentScore = Round(r.TextSentScore, 3)
	out.Confidence = Round(r.Confidence, 3)
	out.W2 = Round(r.W2, 3)
	out.W1 = Round(1-out.W2, 3)
	out.Combined = Round(r.Combined, 3)
	out.Combined100 = Round(r.Combined100, 2)
	for i := range out.Emotions {
		out.Emotions[i] = Round(r.Emotions[i], 3)
	}
	return out
}

// Round rounds x half away from zero to the given number of decimals.
func Round(x float64, decimals int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}
