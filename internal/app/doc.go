// Package app provides the application service layer.
//
// Orchestrates the scoring use case: inference on the text sample, fusion with
// the emoji prior, and score metrics. Sits between the HTTP handlers and the
// domain components and depends on interfaces, not concrete adapters.
package app
