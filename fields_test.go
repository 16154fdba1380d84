package axon

import (
	"testing"
	"time"
)

func TestKeyState(t *testing.T) {
	field := KeyState.Field("{Count:1}")
	if field.Key().Name() != "state" {
		t.Errorf("expected key 'state', got %q", field.Key().Name())
	}
}

func TestKeyError(t *testing.T) {
	field := KeyError.Field("something went wrong")
	if field.Key().Name() != "error" {
		t.Errorf("expected key 'error', got %q", field.Key().Name())
	}
}

func TestKeyOperation(t *testing.T) {
	field := KeyOperation.Field("fetch")
	if field.Key().Name() != "operation" {
		t.Errorf("expected key 'operation', got %q", field.Key().Name())
	}
}

func TestKeyDuration(t *testing.T) {
	field := KeyDuration.Field(100 * time.Millisecond)
	if field.Key().Name() != "duration" {
		t.Errorf("expected key 'duration', got %q", field.Key().Name())
	}
}

func TestKeySubscribers(t *testing.T) {
	field := KeySubscribers.Field(2)
	if field.Key().Name() != "subscribers" {
		t.Errorf("expected key 'subscribers', got %q", field.Key().Name())
	}
}
