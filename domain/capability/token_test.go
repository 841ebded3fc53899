package capability

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"
)

func mustKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key, &key.PublicKey
}

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	priv, pub := mustKeyPair(t)
	issuer := NewTokenIssuer(priv, "causality", time.Hour)
	verifier := NewTokenVerifier(pub)

	domain := "ethereum"
	agent := NewAgent("agent-1", &domain, SendTransaction, ZkProve)

	token, err := issuer.Issue(agent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != "agent-1" {
		t.Fatalf("unexpected agent id: %s", got.ID)
	}
	if got.Domain == nil || *got.Domain != "ethereum" {
		t.Fatal("expected domain scope to round-trip")
	}
	if !got.Capabilities.Has(SendTransaction) || !got.Capabilities.Has(ZkProve) {
		t.Fatal("expected capabilities to round-trip")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	priv, pub := mustKeyPair(t)
	issuer := NewTokenIssuer(priv, "causality", -time.Hour)
	verifier := NewTokenVerifier(pub)

	token, err := issuer.Issue(NewAgent("agent-1", nil, SendTransaction))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv, _ := mustKeyPair(t)
	_, otherPub := mustKeyPair(t)
	issuer := NewTokenIssuer(priv, "causality", time.Hour)
	verifier := NewTokenVerifier(otherPub)

	token, err := issuer.Issue(NewAgent("agent-1", nil, SendTransaction))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification with the wrong public key to fail")
	}
}
