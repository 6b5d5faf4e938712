// Package adapter observes the live state of map nodes.
//
// Adapters probe an external source and return a domain.StatusReport keyed
// by node address. The Registry runs polling adapters on their interval,
// with optional jitter, and hands each non-empty report to a ReconcileFunc,
// normally the reconcile service, which writes changed states to storage.
//
// NmapAdapter pings the addresses of every addressed node in batches, or
// probes a TCP port list when one is configured, and reports each address
// as up or down.
package adapter
