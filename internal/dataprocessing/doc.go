// Package dataprocessing implements the normalization-and-aggregation
// pipeline: heterogeneous sleep-tracker exports and medication logs in,
// derived analytical views out.
//
// The pipeline is permissive by default. Individual rows with missing or
// unparseable dates are dropped silently, numeric fields that fail to parse
// coerce to 0, and empty-window statistics yield NaN rather than errors.
// The single loud failure mode is structurally unrecognizable input, which
// surfaces as errors.ErrUnrecognizedInput.
//
// Stages are pure functions over immutable inputs. Callers re-invoke the
// affected stages with the full dataset whenever a parameter changes; there
// is no incremental state.
package dataprocessing
