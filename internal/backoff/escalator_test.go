package backoff

import (
	"testing"
	"time"
)

func TestEscalateSequence(t *testing.T) {
	e := New(time.Second, 60*time.Second)

	if got := e.Current(); got != 0 {
		t.Fatalf("initial backoff = %v, want 0", got)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, w := range want {
		if got := e.Escalate(); got != w {
			t.Errorf("escalation %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestEscalateCapped(t *testing.T) {
	e := New(time.Second, 3*time.Second)
	for i := 0; i < 10; i++ {
		e.Escalate()
	}
	if got := e.Current(); got != 3*time.Second {
		t.Errorf("capped backoff = %v, want 3s", got)
	}
}

func TestReset(t *testing.T) {
	e := New(time.Second, 60*time.Second)
	e.Escalate()
	e.Escalate()
	e.Reset()
	if got := e.Current(); got != 0 {
		t.Errorf("backoff after reset = %v, want 0", got)
	}
}

func TestDefaultsApplied(t *testing.T) {
	e := New(0, 0)
	if got := e.Escalate(); got != DefaultInitial {
		t.Errorf("first escalation = %v, want %v", got, DefaultInitial)
	}
}
