// Package batch orchestrates a full icon generation run: it discovers the
// models of a pack, resolves their texture variants, drives a render
// session through every variant, writes the icons and registers them in the
// pack's item texture manifest.
//
// A run is split in two phases. NewPlan performs every check that can fail
// on user input (missing folder, no models) before anything is written.
// Runner.Run then executes the plan, isolating per-variant and per-model
// failures into the returned Summary.
package batch
