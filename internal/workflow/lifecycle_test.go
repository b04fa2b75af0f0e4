package workflow

import (
	"testing"

	"github.com/driveops/driveops/internal/model"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to model.DriverStatus }{
		{model.DriverStatusInvited, model.DriverStatusPending},
		{model.DriverStatusInvited, model.DriverStatusCancelled},
		{model.DriverStatusPending, model.DriverStatusActive},
		{model.DriverStatusPending, model.DriverStatusRejected},
		{model.DriverStatusActive, model.DriverStatusInactive},
		{model.DriverStatusActive, model.DriverStatusSuspended},
		{model.DriverStatusInactive, model.DriverStatusActive},
		{model.DriverStatusSuspended, model.DriverStatusActive},
		{model.DriverStatusSuspended, model.DriverStatusTerminated},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to model.DriverStatus }{
		{model.DriverStatusInvited, model.DriverStatusActive},
		{model.DriverStatusActive, model.DriverStatusTerminated},
		{model.DriverStatusTerminated, model.DriverStatusActive},
		{model.DriverStatusCancelled, model.DriverStatusPending},
		{model.DriverStatusRejected, model.DriverStatusActive},
		{model.DriverStatusActive, model.DriverStatusActive},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s denied", tc.from, tc.to)
		}
	}
}

func TestApplyTransition(t *testing.T) {
	d := &model.Driver{Status: model.DriverStatusInvited}
	if err := ApplyTransition(d, model.DriverStatusPending); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if d.Status != model.DriverStatusPending {
		t.Fatalf("expected PENDING, got %s", d.Status)
	}

	if err := ApplyTransition(d, model.DriverStatusSuspended); err == nil {
		t.Fatalf("expected shortcut transition to fail")
	}
	if d.Status != model.DriverStatusPending {
		t.Fatalf("status must not change on a rejected transition")
	}

	if err := ApplyTransition(nil, model.DriverStatusActive); err == nil {
		t.Fatalf("expected nil driver to fail")
	}
}
