package executor

import "testing"

func TestHandlerRegistryRegisterAndLookup(t *testing.T) {
	r := NewHandlerRegistry()
	r.Register("transfer", EffectHandlerFunc(func(tag string, args []byte) ([]byte, error) {
		return append([]byte("handled:"), args...), nil
	}))

	h, ok := r.Lookup("transfer")
	if !ok {
		t.Fatal("expected handler to be registered")
	}
	out, err := h.Invoke("transfer", []byte("payload"))
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if string(out) != "handled:payload" {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestHandlerRegistryLookupMissing(t *testing.T) {
	r := NewHandlerRegistry()
	if _, ok := r.Lookup("unknown"); ok {
		t.Fatal("expected lookup of an unregistered tag to fail")
	}
}
