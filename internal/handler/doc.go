// Package handler implements the HTTP API of the netcanvas server.
//
// MapHandler exposes map storage (list, get, save, delete, import, export)
// and canvas sessions. A session is one server-side canvas; the browser posts
// pointer and key events to it and fetches rendered frames as PNG. Commands
// produced by an event are applied before the response is written and are
// returned in the response body.
//
// Errors are returned as JSON with {error, details} and a status derived from
// the error: unknown maps or sessions give 404, mutations of read-only maps
// give 409.
package handler
