package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Emotion is one of the eight WRIME emotion labels.
type Emotion int

// Label order is fixed by the classifier's output layout. Do not reorder.
const (
	Joy Emotion = iota
	Sadness
	Anticipation
	Surprise
	Anger
	Fear
	Disgust
	Trust
)

// EmotionCount is the width of an EmotionVector.
const EmotionCount = 8

var emotionNames = [EmotionCount]string{
	"joy", "sadness", "anticipation", "surprise", "anger", "fear", "disgust", "trust",
}

// Emotions returns all labels in output order.
func Emotions() []Emotion {
	out := make([]Emotion, EmotionCount)
	for i := range out {
		out[i] = Emotion(i)
	}
	return out
}

func (e Emotion) String() string {
	if e < 0 || int(e) >= EmotionCount {
		return fmt.Sprintf("emotion(%d)", int(e))
	}
	return emotionNames[e]
}

// EmotionVector holds one logit per emotion in label order. It is a value
// type: copies never share state with the vector they came from.
type EmotionVector [EmotionCount]float64

// NewEmotionVector copies exactly EmotionCount values into a vector.
func NewEmotionVector(values []float64) (EmotionVector, error) {
	var v EmotionVector
	if len(values) != EmotionCount {
		return v, &InvalidModelOutputError{Width: len(values)}
	}
	copy(v[:], values)
	return v, nil
}

// FromLogits applies the WRIME output convention to a raw classifier output:
// 8 values are used as-is, 16 values are a Writer half followed by a Reader
// half and only the Reader half [8:16] is kept. Any other width is an
// InvalidModelOutputError.
func FromLogits(raw []float64) (EmotionVector, error) {
	switch len(raw) {
	case EmotionCount:
		return NewEmotionVector(raw)
	case 2 * EmotionCount:
		return NewEmotionVector(raw[EmotionCount:])
	default:
		return EmotionVector{}, &InvalidModelOutputError{Width: len(raw)}
	}
}

// Get returns the logit for the given label.
func (v EmotionVector) Get(e Emotion) float64 {
	return v[e]
}

// Map returns the vector keyed by label name.
func (v EmotionVector) Map() map[string]float64 {
	m := make(map[string]float64, EmotionCount)
	for i, name := range emotionNames {
		m[name] = v[i]
	}
	return m
}

// MarshalJSON writes the vector as an object whose keys follow label order.
func (v EmotionVector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range emotionNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.Marshal(v[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		fmt.Fprintf(&buf, "%q:%s", name, val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object form written by MarshalJSON. Missing labels
// are left at zero; unknown labels are rejected.
func (v *EmotionVector) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to decode emotion vector: %w", err)
	}
	var out EmotionVector
	for name, val := range m {
		idx := -1
		for i, n := range emotionNames {
			if n == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown emotion label %q", name)
		}
		out[idx] = val
	}
	*v = out
	return nil
}
