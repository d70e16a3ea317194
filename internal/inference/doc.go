// Package inference turns raw text into an EmotionVector.
//
// The Adapter bounds the input by token count, calls the classifier and
// applies the 8/16-wide output convention. An optional Cache memoizes results
// per truncated text for a short TTL; it holds nothing durable.
package inference
