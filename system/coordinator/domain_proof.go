package coordinator

import (
	"github.com/timewave-computer/causality/system/zk"
)

// DomainProof is one domain's share of a composite proof: the proof
// itself plus the interface constraints and public outputs other
// domains' global-constraint checks may reference, and the ids of
// domains it depends on.
type DomainProof struct {
	Domain               string
	Proof                *zk.Proof
	InterfaceConstraints []string
	PublicOutputs        *zk.PublicInputs
	Dependencies         []string
}

// DomainBackendLookup resolves the ZkBackend registered for a domain.
// Absence of a backend for a required domain is a fatal error per §4.5.
type DomainBackendLookup func(domain string) (zk.ZkBackend, bool)

// DomainWitnessBuilder builds a domain-scoped witness from the
// coordinator's shared global witness and the instructions routed to
// that domain.
type DomainWitnessBuilder func(domain string, instructions []Instruction, global *zk.Witness) (*zk.Witness, error)
