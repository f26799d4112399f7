package taskengine

import (
	"context"
	"testing"
)

func TestNewOptions_InvalidOptions_Panics(t *testing.T) {
	t.Parallel()

	// Conflicting pool options make NewOptions panic.
	var w Workers[int]
	recovered := func() (r any) {
		defer func() { r = recover() }()
		w = NewOptions[int](
			context.Background(),
			WithFixedPool(1),
			WithDynamicPool(),
		)
		return nil
	}()
	if recovered == nil {
		t.Fatalf("expected NewOptions to panic with conflicting options, got none (w=%v)", w)
	}
	if w != nil {
		t.Fatalf("expected no workers instance after the panic, got: %v", w)
	}
}

func TestNewOptions_ValidOptions_Succeeds(t *testing.T) {
	t.Parallel()

	var w Workers[int]
	recovered := func() (r any) {
		defer func() { r = recover() }()
		w = NewOptions[int](
			context.Background(),
			WithFixedPool(1),
			WithStartImmediately(),
			WithTasksBuffer(4),
			WithResultsBuffer(8),
			WithErrorsBuffer(8),
		)
		return nil
	}()
	if recovered != nil {
		t.Fatalf("unexpected panic from NewOptions with valid options: %v", recovered)
	}
	if w == nil {
		t.Fatalf("expected non-nil workers instance")
	}
}
