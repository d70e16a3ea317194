package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmotion_String(t *testing.T) {
	assert.Equal(t, "joy", Joy.String())
	assert.Equal(t, "trust", Trust.String())
	assert.Equal(t, "emotion(9)", Emotion(9).String())
	assert.Len(t, Emotions(), EmotionCount)
}

func TestFromLogits_Widths(t *testing.T) {
	eight := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	vec, err := FromLogits(eight)
	require.NoError(t, err)
	assert.Equal(t, EmotionVector{1, 2, 3, 4, 5, 6, 7, 8}, vec)

	sixteen := []float64{-1, -2, -3, -4, -5, -6, -7, -8, 1, 2, 3, 4, 5, 6, 7, 8}
	vec, err = FromLogits(sixteen)
	require.NoError(t, err)
	assert.Equal(t, EmotionVector{1, 2, 3, 4, 5, 6, 7, 8}, vec)

	_, err = FromLogits(make([]float64, 12))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModelOutput))
	assert.Contains(t, err.Error(), "got 12 values")
}

func TestFromLogits_CopiesInput(t *testing.T) {
	raw := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	vec, err := FromLogits(raw)
	require.NoError(t, err)

	raw[0] = 99
	assert.Equal(t, 1.0, vec.Get(Joy))
}

func TestEmotionVector_MarshalJSONKeepsLabelOrder(t *testing.T) {
	vec := EmotionVector{0.5, -1, 2, 0, 3.25, -0.125, 1, 7}

	data, err := json.Marshal(vec)
	require.NoError(t, err)

	assert.Equal(t,
		`{"joy":0.5,"sadness":-1,"anticipation":2,"surprise":0,"anger":3.25,"fear":-0.125,"disgust":1,"trust":7}`,
		string(data))
}

func TestEmotionVector_UnmarshalJSON(t *testing.T) {
	var vec EmotionVector
	require.NoError(t, json.Unmarshal([]byte(`{"trust":2,"joy":1}`), &vec))
	assert.Equal(t, 1.0, vec.Get(Joy))
	assert.Equal(t, 2.0, vec.Get(Trust))
	assert.Equal(t, 0.0, vec.Get(Fear))

	err := json.Unmarshal([]byte(`{"calm":1}`), &vec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown emotion label")
}

func TestEmotionVector_Map(t *testing.T) {
	m := EmotionVector{1, 2, 3, 4, 5, 6, 7, 8}.Map()
	assert.Len(t, m, EmotionCount)
	assert.Equal(t, 3.0, m["anticipation"])
	assert.Equal(t, 8.0, m["trust"])
}

func TestFusionResult_Rounded(t *testing.T) {
	res := FusionResult{
		EmojiScore:    0.3,
		TextSentScore: 0.123456,
		Confidence:    0.98765,
		W1:            0.3061,
		W2:            0.6939,
		Combined:      -0.00049,
		Combined100:   49.97551,
		Emotions:      EmotionVector{1.23456, 0, 0, 0, 0, 0, 0, -2.0006},
	}

	got := res.Rounded()

	assert.Equal(t, 0.123, got.TextSentScore)
	assert.Equal(t, 0.988, got.Confidence)
	assert.Equal(t, 0.694, got.W2)
	assert.Equal(t, 0.306, got.W1)
	assert.Equal(t, -0.0, got.Combined)
	assert.Equal(t, 49.98, got.Combined100)
	assert.Equal(t, 1.235, got.Emotions.Get(Joy))
	assert.Equal(t, -2.001, got.Emotions.Get(Trust))

	assert.Equal(t, 0.12345600, res.TextSentScore, "original is untouched")
}

func TestFusionResult_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(FusionResult{Emoji: "🙂", Combined100: 62})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{
		"emoji", "text", "emoji_score", "text_sent_score", "confidence",
		"w1", "w2", "combined_score", "combined_score_100", "emotion_values",
	} {
		assert.Contains(t, m, key)
	}
}

func TestModelLoadError(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(&ModelLoadError{Component: "classifier", Err: cause})

	assert.True(t, errors.Is(err, ErrModelLoad))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "failed to load classifier: connection refused", err.Error())
}

func TestInvalidModelOutputError_Reason(t *testing.T) {
	err := &InvalidModelOutputError{Width: 8, Reason: `unknown label "LABEL_99"`}
	assert.Equal(t, `invalid model output: unknown label "LABEL_99"`, err.Error())
}
