// Package fusion implements the score fusion engine.
//
// The Engine blends an emoji prior with a text sentiment signal derived from emotion logits:
// log-sum-exp grouping into positive/negative logits, a binary sigmoid, entropy-based
// confidence, confidence-adaptive weights and a clamped [0,100] rescale.
// Pure computation: no I/O, no logging, safe for concurrent use.
package fusion
