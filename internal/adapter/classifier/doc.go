// Package classifier talks to the emotion model served by a
// Text-Embeddings-Inference compatible server.
//
// Load reads the label layout from GET /info once at startup. Classify posts
// to /predict with raw_scores and reassembles the returned (label, score)
// pairs into the model's index order, so the caller sees plain logits.
// Transient failures are retried and a circuit breaker stops calling a
// server that keeps failing.
package classifier
