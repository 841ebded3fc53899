package resource

import "github.com/timewave-computer/causality/infrastructure/hash"

// DeriveNullifier computes nullifier := H(nullifier_key || id.bytes) using
// reg's default hash algorithm. This is the only path used in production;
// see hash.XORMock for the test-only substitute.
func DeriveNullifier(reg *hash.Registry, nullifierKey *[32]byte, id hash.ContentId) (hash.Hash, error) {
	payload := make([]byte, 0, 32+33)
	payload = append(payload, nullifierKey[:]...)
	payload = append(payload, hash.Hash(id).EncodeBinary()...)
	return reg.ContentHashDefault(payload)
}
