// Package engine drives the semantic transform pipeline.
//
// A pipeline is an ordered list of Transform values applied by a single
// fixed driver:
//
//  1. Each stage receives the Program returned by the previous stage
//  2. A stage returns either a new Program or diagnostics, never both
//  3. The first stage that returns diagnostics aborts the pipeline, and its
//     diagnostics are the pipeline result
//
// Stages are pure functions of (Program, FeatureFlags). The engine holds no
// per-run state, so one Engine may run many programs concurrently.
package engine
