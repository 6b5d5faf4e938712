// Package domain defines the core types of the netcanvas topology map.
//
// This package contains the entities that make up a map scene and the
// commands the interactive canvas sends back to its host.
//
// # Scene Types
//
// Node represents a monitored network entity drawn as an icon with a name
// label. Its position is the only field the canvas ever changes.
//
// Link connects two nodes. Each endpoint carries its own status so the two
// halves of the line can be tinted independently.
//
// Item is a decoration placed on the map: shapes, text, images and gauges.
// The concrete visual is held in Kind, a closed set of variants that each
// carry only the fields they need and report their own size.
//
// Scene is the snapshot the host pushes into the canvas; it replaces the
// previous scene wholesale.
//
// # Commands
//
// Command is the closed set of requests the canvas emits when an operator
// completes a gesture (move, delete, connect, open, context menu, refresh).
// The host decides what to do with each one and pushes a fresh Scene back.
//
// # Design Principles
//
// - Plain value types, safe to copy
// - No database or external dependencies
// - Geometry in scene units; screen conversion belongs to the canvas
package domain
