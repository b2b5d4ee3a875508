package domain

import (
	"errors"
	"testing"
)

func TestConfigurationError_Is(t *testing.T) {
	err := NewConfigurationError("distance", "center point is required")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatal("expected errors.Is(err, ErrConfiguration)")
	}
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatal("expected *ConfigurationError")
	}
	if ce.Key != "distance" {
		t.Errorf("expected key distance, got %q", ce.Key)
	}
	want := "invalid search configuration: distance: center point is required"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestConfigurationError_NoKey(t *testing.T) {
	err := &ConfigurationError{Reason: "boom"}
	if err.Error() != "invalid search configuration: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIndexExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&IndexExecutionError{Query: []byte(`{}`), Err: cause})
	if !errors.Is(err, ErrIndexExecution) {
		t.Error("expected ErrIndexExecution")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
}

func TestReconciliationError_Unwrap(t *testing.T) {
	cause := errors.New("bulk rejected")
	err := error(&ReconciliationError{IDs: []string{"1", "2"}, Err: cause})
	if !errors.Is(err, ErrReconciliation) {
		t.Error("expected ErrReconciliation")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
}
