// Package repository defines the data access interfaces for netcanvas.
//
// This package provides the repository abstraction layer for persisting
// and retrieving maps. The actual implementation is in the sqlite
// subpackage.
//
// # Repository Interface
//
// The Repository interface covers map metadata, whole-scene replacement
// and the narrow updates produced by canvas commands: committed positions,
// node deletion and link toggling. The status poller uses the addressed
// node listing and bulk state updates.
//
// # SQLite Implementation
//
// The sqlite implementation stores each map's nodes, links and items in
// their own tables keyed by map ID. Collection order is kept in a sequence
// column because the canvas resolves overlapping entities by order.
//
// - Foreign key constraints and cascade deletes
// - Transactional scene replacement
// - Item variants stored as JSON records
//
// # Testing
//
// The sqlite repository is tested with in-memory databases.
package repository
