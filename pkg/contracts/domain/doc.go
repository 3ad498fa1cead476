// Package domain holds the canonical value types shared across the pipeline
// and its consumers: night records, event records, monthly summaries, event
// deltas, and the configuration surface for filtering and sorting.
//
// Everything in this package is a plain value. Entities are produced by pure
// transformation stages and are never shared mutably across stage boundaries.
package domain
