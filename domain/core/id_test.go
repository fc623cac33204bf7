package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestTypedIDs tests that typed identifiers are distinct and printable
func TestTypedIDs(t *testing.T) {
	a, b := NewSweepID(), NewSweepID()
	if a == b {
		t.Errorf("Expected distinct sweep IDs, got %s twice", a)
	}
	if NewSelfCheckID().String() == "" {
		t.Error("Expected non-empty self-check ID")
	}
}

// TestHashParamsOrderIndependent tests that key order does not change the fingerprint
func TestHashParamsOrderIndependent(t *testing.T) {
	a := HashParams(map[string]interface{}{"pulses": 3, "pfa": 1e-6, "variant": "marcum"})
	b := HashParams(map[string]interface{}{"variant": "marcum", "pfa": 1e-6, "pulses": 3})
	if a != b {
		t.Errorf("Expected equal hashes, got %s and %s", a, b)
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-character short hash, got %q", a.Short())
	}

	c := HashParams(map[string]interface{}{"pulses": 4, "pfa": 1e-6, "variant": "marcum"})
	if a == c {
		t.Error("Expected different parameters to hash differently")
	}
}

// TestErrorClassification tests the sentinel error helpers
func TestErrorClassification(t *testing.T) {
	if !IsDomainError(NewDomainError(3.0)) {
		t.Error("Expected domain error to be classified as domain error")
	}
	if !IsValidationError(ErrInvalidPulses) {
		t.Error("Expected invalid pulses to be a validation error")
	}
	if !errors.Is(ErrInvalidSNR, ErrInvalidModel) {
		t.Error("Expected invalid SNR to wrap ErrInvalidModel")
	}
	if !IsConvergenceError(NewNoBracketError(0.5, 1)) {
		t.Error("Expected no-bracket error to be a convergence error")
	}
	if IsConvergenceError(ErrDomain) {
		t.Error("Expected domain error not to be a convergence error")
	}
}
