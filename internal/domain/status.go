package domain

import "time"

// StatusReport is the outcome of one status probe round: node state keyed by address
type StatusReport struct {
	Source     string            `json:"source"`
	States     map[string]string `json:"states"`
	ObservedAt time.Time         `json:"observed_at"`
}

// NewStatusReport creates an empty report stamped with the current time
func NewStatusReport(source string) *StatusReport {
	return &StatusReport{
		Source:     source,
		States:     make(map[string]string),
		ObservedAt: time.Now(),
	}
}

// Set records the state of one address
func (r *StatusReport) Set(address, state string) {
	r.States[address] = state
}

// Empty reports whether no address was observed
func (r *StatusReport) Empty() bool {
	return r == nil || len(r.States) == 0
}
