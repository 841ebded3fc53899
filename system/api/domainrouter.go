package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timewave-computer/causality/infrastructure/hash"
	"github.com/timewave-computer/causality/system/zk"
)

// proveWireRequest is the wire shape a DomainRouter's /prove endpoint
// accepts: the raw instruction stream, the optimization level to compile
// with, and an encoded witness.
type proveWireRequest struct {
	Instructions [][]byte `json:"instructions"`
	Level        uint8    `json:"level"`
	Witness      []byte   `json:"witness"`
}

type proveWireResponse struct {
	CircuitID    string           `json:"circuit_id"`
	Backend      string           `json:"backend"`
	Data         string           `json:"data"`
	PublicInputs *zk.PublicInputs `json:"public_inputs"`
}

type verifyWireRequest struct {
	Proof        proveWireResponse `json:"proof"`
	PublicInputs *zk.PublicInputs  `json:"public_inputs"`
}

type verifyWireResponse struct {
	Valid bool `json:"valid"`
}

// DomainRouter is a chi-routed stand-in for a remote domain's proving
// service: it compiles circuits and drives a ZkBackend the same way
// system/coordinator does in-process, but over HTTP, simulating the
// network boundary a real cross-chain domain backend would sit behind.
// Grounded on the teacher's chi-routed marble services
// (services/*/marble/api.go), whose go.mod declares go-chi/chi/v5
// without the teacher itself ever mounting a chi.Router.
type DomainRouter struct {
	router   chi.Router
	compiler zk.CircuitCompiler
	backend  zk.ZkBackend
}

// NewDomainRouter builds a DomainRouter that compiles and proves through
// backend.
func NewDomainRouter(compiler zk.CircuitCompiler, backend zk.ZkBackend) *DomainRouter {
	d := &DomainRouter{router: chi.NewRouter(), compiler: compiler, backend: backend}
	d.router.Post("/prove", d.handleProve)
	d.router.Post("/verify", d.handleVerify)
	return d
}

// Handler returns the router's http.Handler.
func (d *DomainRouter) Handler() http.Handler { return d.router }

func (d *DomainRouter) handleProve(w http.ResponseWriter, r *http.Request) {
	var req proveWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	circuit, err := d.compiler.Compile(req.Instructions, zk.OptimizationLevel(req.Level))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	witness, err := zk.DecodeWitness(req.Witness)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	proof, err := d.backend.GenerateProof(r.Context(), circuit, witness)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, proveWireResponse{
		CircuitID:    hash.Hash(proof.CircuitID).String(),
		Backend:      proof.Backend,
		Data:         base64.StdEncoding.EncodeToString(proof.Data),
		PublicInputs: proof.PublicInputs,
	})
}

func (d *DomainRouter) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyWireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	circuitHash, err := hash.ParseHash(req.Proof.CircuitID)
	if err != nil {
		http.Error(w, fmt.Sprintf("decoding circuit id: %v", err), http.StatusBadRequest)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Proof.Data)
	if err != nil {
		http.Error(w, fmt.Sprintf("decoding proof data: %v", err), http.StatusBadRequest)
		return
	}
	proof := &zk.Proof{
		CircuitID:    zk.CircuitId(hash.ContentId(circuitHash)),
		Backend:      req.Proof.Backend,
		Data:         data,
		PublicInputs: req.Proof.PublicInputs,
	}

	valid, err := d.backend.VerifyProof(r.Context(), proof, req.PublicInputs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, verifyWireResponse{Valid: valid})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
