package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	cause := errors.New("login failed for user 'sa'")

	tests := []struct {
		name  string
		err   error
		kind  error
		fatal bool
	}{
		{"config", Configf("config.Load", "missing field %s", "database"), ErrConfig, true},
		{"connection", Connection("database.Open", cause), ErrConnection, true},
		{"validation", Validation("id", "El ID debe ser un número"), ErrValidation, false},
		{"integrity", Integrity("insert", cause), ErrIntegrity, false},
		{"command", Command("update", cause), ErrCommand, false},
		{"query", Query("list", cause), ErrQuery, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("expected %v to match kind %v", tt.err, tt.kind)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestCauseIsReachable(t *testing.T) {
	cause := errors.New("deadlock victim")
	err := fmt.Errorf("delete student: %w", Command("delete", cause))

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable")
	}
	if !errors.Is(err, ErrCommand) {
		t.Error("expected command kind to be reachable")
	}
	if errors.Is(err, ErrIntegrity) {
		t.Error("command error must not match integrity kind")
	}
}

func TestMessage(t *testing.T) {
	if got := Message(Validation("id", "El ID debe ser un número")); got != "El ID debe ser un número" {
		t.Errorf("unexpected validation message %q", got)
	}

	err := Query("list", errors.New("timeout"))
	if got := Message(err); got != "list: query failed: timeout" {
		t.Errorf("unexpected query message %q", got)
	}
}
