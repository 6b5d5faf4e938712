// Package canvas implements the interactive topology map: a retained scene
// store with hit-testing, selection, a pointer gesture state machine and a
// dirty-flag redraw onto an abstract drawing Surface.
//
// # Ownership
//
// Each Canvas is an independent instance. Nothing is global, so several
// maps can be open at once and tests can build isolated canvases.
//
// # Threading
//
// A Canvas is driven from a single goroutine: input handlers, Load and Tick
// must not run concurrently. Asset fetches run in their own goroutines but
// only hand results back over a channel; the results are applied by the next
// Tick (or WaitAssets) on the owning goroutine. Each result carries the load
// generation it was started for, and results from a superseded load are
// dropped.
//
// # Host Protocol
//
// The host drives the canvas through the Map interface and receives
// domain.Command values through its Emitter. The canvas never persists or
// deletes anything itself; the host acts on the command and calls Load with
// a fresh scene.
package canvas
