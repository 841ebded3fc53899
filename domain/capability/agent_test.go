package capability

import "testing"

func TestAuthorizeRequiresSubsetOfGrants(t *testing.T) {
	a := NewAgent("agent-1", nil, SendTransaction, ZkProve)
	required := NewSet(SendTransaction)
	if !a.Authorize(required, "") {
		t.Fatal("expected authorization to succeed")
	}
	required = NewSet(SendTransaction, ExecuteContract)
	if a.Authorize(required, "") {
		t.Fatal("expected authorization to fail on missing capability")
	}
}

func TestAuthorizeChecksDomainScope(t *testing.T) {
	d := "ethereum"
	a := NewAgent("agent-1", &d, SendTransaction)
	if !a.Authorize(NewSet(SendTransaction), "ethereum") {
		t.Fatal("expected matching domain to authorize")
	}
	if a.Authorize(NewSet(SendTransaction), "solana") {
		t.Fatal("expected mismatched domain to deny")
	}
}

func TestAuthorizeUnscopedAgentAllowsAnyDomain(t *testing.T) {
	a := NewAgent("agent-1", nil, SendTransaction)
	if !a.Authorize(NewSet(SendTransaction), "solana") {
		t.Fatal("expected unscoped agent to authorize any domain")
	}
}

func TestGrantAndRevoke(t *testing.T) {
	a := NewAgent("agent-1", nil)
	a.Grant(ZkProve)
	if !a.Capabilities.Has(ZkProve) {
		t.Fatal("expected grant to add capability")
	}
	a.Revoke(ZkProve)
	if a.Capabilities.Has(ZkProve) {
		t.Fatal("expected revoke to remove capability")
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	r := NewRegistry()
	a := NewAgent("agent-1", nil, SendTransaction)
	r.Put(a)

	got, err := r.Get("agent-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "agent-1" {
		t.Fatal("unexpected agent returned")
	}

	r.Remove("agent-1")
	if _, err := r.Get("agent-1"); err == nil {
		t.Fatal("expected not-found after remove")
	}
}

func TestCustomCapabilitySerialization(t *testing.T) {
	c := Custom("approve_withdrawal")
	if c != "custom_approve_withdrawal" {
		t.Fatalf("unexpected custom capability string: %s", c)
	}
}
