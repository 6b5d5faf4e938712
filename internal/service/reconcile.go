package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"netcanvas/internal/domain"
)

// ReconcileService merges status poller reports into stored node states
type ReconcileService struct {
	maps *MapService
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(maps *MapService) *ReconcileService {
	return &ReconcileService{maps: maps}
}

// Reconcile stores the states of a report. Only nodes whose state differs
// are written, so maps that did not change are not reloaded.
func (r *ReconcileService) Reconcile(ctx context.Context, source string, report *domain.StatusReport) error {
	if report.Empty() {
		return nil
	}

	states := make(map[string]string, len(report.States))
	for address, state := range report.States {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		if !knownState(state) {
			log.Printf("Ignoring state %q for %s from %s", state, address, source)
			continue
		}
		states[address] = state
	}

	mapIDs, err := r.maps.ApplyStatus(ctx, states)
	if err != nil {
		return fmt.Errorf("apply status: %w", err)
	}

	if len(mapIDs) > 0 {
		log.Printf("Reconciled %d addresses from %s, %d maps changed", len(states), source, len(mapIDs))
	}

	return nil
}

func knownState(state string) bool {
	switch state {
	case domain.StateUp, domain.StateDown, domain.StateWarning, domain.StateUnknown:
		return true
	}
	return false
}
