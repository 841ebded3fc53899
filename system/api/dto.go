package api

import (
	"encoding/base64"
	"fmt"

	"github.com/timewave-computer/causality/domain/effect"
	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/system/coordinator"
	"github.com/timewave-computer/causality/system/executor"
)

// PerformSpec is the wire shape of one KindPerform leaf in a submitted
// program. Resource ids are the hex-encoded hash.Hash.String() form;
// args is base64 per encoding/json's default []byte handling.
type PerformSpec struct {
	Tag         string   `json:"tag" binding:"required"`
	Args        []byte   `json:"args"`
	Reads       []string `json:"reads"`
	Writes      []string `json:"writes"`
	Productions []string `json:"productions"`
	Cost        int64    `json:"cost"`
}

// SubmitRequest is the body of POST /v1/programs: an ordered sequence of
// perform effects to lower into a TEG and execute.
type SubmitRequest struct {
	ID      string        `json:"id" binding:"required"`
	Effects []PerformSpec `json:"effects" binding:"required,min=1"`
}

func parseContentIds(ss []string) ([]hash.ContentId, error) {
	out := make([]hash.ContentId, 0, len(ss))
	for _, s := range ss {
		h, err := hash.ParseHash(s)
		if err != nil {
			return nil, fmt.Errorf("parsing resource id %q: %w", s, err)
		}
		out = append(out, hash.ContentId(h))
	}
	return out, nil
}

// toEffects lowers the request's perform specs into effect.Effect leaves.
func (req SubmitRequest) toEffects() ([]*effect.Effect, error) {
	effects := make([]*effect.Effect, 0, len(req.Effects))
	for _, spec := range req.Effects {
		reads, err := parseContentIds(spec.Reads)
		if err != nil {
			return nil, err
		}
		writes, err := parseContentIds(spec.Writes)
		if err != nil {
			return nil, err
		}
		productions, err := parseContentIds(spec.Productions)
		if err != nil {
			return nil, err
		}
		fp := effect.Footprint{Reads: reads, Writes: writes, Productions: productions, Cost: spec.Cost}
		effects = append(effects, effect.Perform(spec.Tag, spec.Args, nil, nil, fp))
	}
	return effects, nil
}

// SubmitResponse acknowledges a submitted program.
type SubmitResponse struct {
	ID        string `json:"id"`
	NodeCount int    `json:"node_count"`
}

// NodeResultDTO is one node's outcome in a result response.
type NodeResultDTO struct {
	Value []byte `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// ResultResponse is the wire shape of GET /v1/programs/:id/result.
type ResultResponse struct {
	ID                     string                   `json:"id"`
	Results                map[string]NodeResultDTO `json:"results"`
	TotalTimeMs            int64                    `json:"total_time_ms"`
	NodesCompletedParallel int                      `json:"nodes_completed_parallel"`
	CriticalPathLength     int64                    `json:"critical_path_length"`
	Errors                 []string                 `json:"errors,omitempty"`
}

func toResultResponse(id string, result *executor.TegResult) ResultResponse {
	resp := ResultResponse{
		ID:                     id,
		Results:                make(map[string]NodeResultDTO, len(result.Results)),
		TotalTimeMs:            result.Stats.TotalTime.Milliseconds(),
		NodesCompletedParallel: result.Stats.NodesCompletedParallel,
		CriticalPathLength:     result.Stats.CriticalPathLength,
	}
	for id, r := range result.Results {
		dto := NodeResultDTO{Value: r.Value}
		if r.Err != nil {
			dto.Error = r.Err.Error()
		}
		resp.Results[id.String()] = dto
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}
	return resp
}

// ProveRequest is the body of POST /v1/programs/:id/proof: which
// partition strategy to route the program's instructions through.
type ProveRequest struct {
	Strategy  string `json:"strategy"`
	Timestamp int64  `json:"timestamp"`
}

// DomainProofDTO is one domain's share of a composite proof response.
type DomainProofDTO struct {
	Domain  string `json:"domain"`
	Backend string `json:"backend"`
	Data    string `json:"data"`
}

// ProofResponse is the wire shape of a composite proof.
type ProofResponse struct {
	ID               string           `json:"id"`
	ConsistencyProof string           `json:"consistency_proof"`
	DomainProofs     []DomainProofDTO `json:"domain_proofs"`
	Timestamp        int64            `json:"timestamp"`
}

func toProofResponse(id string, proof *coordinator.CompositeProof) ProofResponse {
	resp := ProofResponse{
		ID:               id,
		ConsistencyProof: base64.StdEncoding.EncodeToString(proof.ConsistencyProof[:]),
		Timestamp:        proof.Timestamp,
	}
	for domain, dp := range proof.DomainProofs {
		resp.DomainProofs = append(resp.DomainProofs, DomainProofDTO{
			Domain:  domain,
			Backend: dp.Proof.Backend,
			Data:    base64.StdEncoding.EncodeToString(dp.Proof.Data),
		})
	}
	return resp
}

func instructionsFromEffects(effects []*effect.Effect) []coordinator.Instruction {
	out := make([]coordinator.Instruction, len(effects))
	for i, e := range effects {
		out[i] = coordinator.Instruction{Index: i, Kind: e.Kind, Bytes: e.CanonicalEncode()}
	}
	return out
}

func partitionStrategyByName(name string) coordinator.PartitionStrategy {
	switch name {
	case "complexity":
		return coordinator.ByComplexity{}
	case "dataflow":
		return coordinator.ByDataFlow{}
	case "circuit_size":
		return coordinator.ByCircuitSize{Threshold: 256}
	default:
		return coordinator.ByEffectType{}
	}
}
