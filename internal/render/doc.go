// Package render defines the port between the batch orchestrator and
// whatever actually draws a model: scene loading, camera control, texture
// swapping and frame capture.
//
// A Renderer owns the table of camera presets it supports and hands out
// Sessions. A Session is the single mutable scene of a run: the orchestrator
// loads one model into it at a time and swaps textures in place for every
// variant of that model.
//
// Ordering contract: every mutating Session call returns only after the
// change has been applied, so a following Render always observes it. Hosts
// that update asynchronously must block inside the call (or implement
// Settler) instead of relying on the caller to sleep.
package render
