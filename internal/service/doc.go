// Package service implements business logic for the netcanvas server.
//
// This package sits between the HTTP handlers and the repository layer,
// applying validation, performing the storage effect of canvas commands and
// publishing events.
//
// # Services
//
// MapService manages maps and their scenes, imports and exports documents
// through the codec package, and applies canvas commands. Listeners
// registered with OnSceneChanged run synchronously after every stored change.
//
// SessionManager owns one canvas per operator session. Input events run
// under the session lock, the commands they emit are applied afterwards,
// and every session on the affected map is reloaded from storage.
//
// ReconcileService applies status reports from the status poller.
//
// # Event System
//
// All services publish events via EventBus for real-time updates to
// connected clients via Server-Sent Events (SSE): map changes, emitted
// commands, status changes and session lifecycle.
package service
