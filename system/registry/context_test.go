package registry

import (
	"testing"
	"time"

	"github.com/timewave-computer/causality/system/zk"
)

func TestDomainBackendsFallsBackToMock(t *testing.T) {
	d := NewDomainBackends(nil)
	b := d.Get("ethereum")
	if b.Name() != "mock" {
		t.Fatalf("expected mock fallback, got %s", b.Name())
	}
}

func TestDomainBackendsRegisteredOverridesFallback(t *testing.T) {
	d := NewDomainBackends(nil)
	custom := zk.NewMockBackend(nil)
	d.Register("solana", custom)
	if d.Get("solana") != zk.ZkBackend(custom) {
		t.Fatal("expected the registered backend to be returned for its domain")
	}
}

func TestDomainBackendsRequiredErrorsWhenUnregistered(t *testing.T) {
	d := NewDomainBackends(nil)
	if _, err := d.Required("ethereum"); err == nil {
		t.Fatal("expected Required to error for an unregistered domain")
	}
}

func TestDomainBackendsRequiredSucceedsWhenRegistered(t *testing.T) {
	d := NewDomainBackends(nil)
	custom := zk.NewMockBackend(nil)
	d.Register("ethereum", custom)
	got, err := d.Required("ethereum")
	if err != nil {
		t.Fatalf("required: %v", err)
	}
	if got != zk.ZkBackend(custom) {
		t.Fatal("expected the registered backend instance")
	}
}

func TestNewSystemContextWiresDefaults(t *testing.T) {
	sc := New(nil)
	if sc.Hash == nil || sc.Backends == nil || sc.Handlers == nil || sc.Circuits == nil {
		t.Fatal("expected New to populate every table")
	}
}

func TestScheduleMaintenanceRunsSweep(t *testing.T) {
	sc := New(nil)
	done := make(chan struct{}, 1)
	if _, err := sc.ScheduleMaintenance("@every 10ms", func() { done <- struct{}{} }); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	defer sc.StopMaintenance()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the scheduled sweep to run")
	}
}
