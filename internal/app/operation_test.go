package app

import (
	"errors"
	"testing"
)

func TestNewOperation(t *testing.T) {
	op := NewOperation("update", "full=true")

	if op.Operation != "update" || op.Parameters != "full=true" {
		t.Errorf("NewOperation() = %+v", op)
	}
	if op.Status != OpSuccess {
		t.Errorf("Status = %q, want %q", op.Status, OpSuccess)
	}
	if op.Persisted() {
		t.Error("new operation reports Persisted() = true")
	}
}

func TestOperation_Fail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error keeps success", err: nil, want: OpSuccess},
		{name: "error marks failure", err: errors.New("boom"), want: OpError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation("mv", "")
			op.Fail(tt.err)
			if op.Status != tt.want {
				t.Errorf("Status = %q, want %q", op.Status, tt.want)
			}
		})
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		id   int64
		want bool
	}{
		{0, false},
		{1, true},
		{99999, true},
	}
	for _, tt := range tests {
		op := &Operation{ID: tt.id}
		if got := op.Persisted(); got != tt.want {
			t.Errorf("Persisted() with ID %d = %v, want %v", tt.id, got, tt.want)
		}
	}
}
