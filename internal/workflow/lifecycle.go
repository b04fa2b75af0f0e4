// Package workflow decides whether a requested action is currently permitted
// given the driver's lifecycle status and the completion state of prior
// stages. It reads state; it never mutates the store.
package workflow

import (
	"fmt"

	"github.com/driveops/driveops/internal/model"
)

// allowedTransitions is the driver lifecycle as a directed graph. Transitions
// are triggered by administrative actions only. TERMINATED, CANCELLED and
// REJECTED are terminal.
var allowedTransitions = map[model.DriverStatus][]model.DriverStatus{
	model.DriverStatusInvited:    {model.DriverStatusPending, model.DriverStatusCancelled},
	model.DriverStatusPending:    {model.DriverStatusActive, model.DriverStatusRejected},
	model.DriverStatusActive:     {model.DriverStatusInactive, model.DriverStatusSuspended},
	model.DriverStatusInactive:   {model.DriverStatusActive},
	model.DriverStatusSuspended:  {model.DriverStatusActive, model.DriverStatusTerminated},
	model.DriverStatusTerminated: {},
	model.DriverStatusCancelled:  {},
	model.DriverStatusRejected:   {},
}

func CanTransition(from, to model.DriverStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition moves the driver to the target status. Call only after the
// administrative action itself has been authorized.
func ApplyTransition(d *model.Driver, to model.DriverStatus) error {
	if d == nil {
		return fmt.Errorf("driver is nil")
	}
	if !CanTransition(d.Status, to) {
		return fmt.Errorf("invalid driver status transition: %s -> %s", d.Status, to)
	}
	d.Status = to
	return nil
}
