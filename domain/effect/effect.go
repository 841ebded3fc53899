// Package effect implements the effect AST and the Temporal Effect Graph
// (TEG) builder: effects are lowered to a dependency DAG consumed by
// system/executor's scheduler. Grounded on the teacher's domain model
// style (plain exported structs, tagged-union fields guarded by a Kind
// byte, constructor funcs that fill in derived fields) already used by
// domain/resource's ResourceRegister, extended here to a recursive AST.
package effect

import (
	"sort"

	"github.com/timewave-computer/causality/infrastructure/codec"
	"github.com/timewave-computer/causality/infrastructure/hash"
)

// Kind tags which variant of the effect AST a node is.
type Kind uint8

const (
	KindPure Kind = iota
	KindPerform
	KindBind
	KindHandle
	KindSequence
	KindParallel
)

func (k Kind) String() string {
	switch k {
	case KindPure:
		return "pure"
	case KindPerform:
		return "perform"
	case KindBind:
		return "bind"
	case KindHandle:
		return "handle"
	case KindSequence:
		return "sequence"
	case KindParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// Footprint is the static metadata the TEG builder reads to compute
// dependency edges and scheduling priority.
type Footprint struct {
	Reads       []hash.ContentId
	Writes      []hash.ContentId
	Productions []hash.ContentId
	Cost        int64
	Location    *string
}

func (f Footprint) encode(w *codec.Writer) {
	encodeIDSet(w, f.Reads)
	encodeIDSet(w, f.Writes)
	encodeIDSet(w, f.Productions)
	w.Uint64(uint64(f.Cost))
	w.Presence(f.Location != nil)
	if f.Location != nil {
		w.String(*f.Location)
	}
}

func encodeIDSet(w *codec.Writer, ids []hash.ContentId) {
	sorted := append([]hash.ContentId(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool {
		return hash.Hash(sorted[i]).String() < hash.Hash(sorted[j]).String()
	})
	w.Uint32(uint32(len(sorted)))
	for _, id := range sorted {
		w.RawBytes(hash.Hash(id).EncodeBinary())
	}
}

// Handler pairs a Handle clause's effect tag with the body that handles
// it.
type Handler struct {
	Tag  string
	Body *Effect
}

// Effect is one node of the effect AST: a tagged union selected by Kind.
// Only the fields relevant to Kind are meaningful, mirroring
// domain/resource.Storage's convention.
type Effect struct {
	Kind      Kind
	Footprint Footprint

	// KindPure: an opaque canonical term.
	Term []byte

	// KindPerform: a named operation with arguments and gval boolean
	// pre/post-condition expressions.
	Tag  string
	Args []byte
	Pre  []string
	Post []string

	// KindBind: run First, feed its result to Continuation.
	First        *Effect
	Continuation *Effect

	// KindHandle: run Body, intercepting effects matched by Handlers.
	Body     *Effect
	Handlers []Handler

	// KindSequence, KindParallel.
	Children []*Effect
}

// Pure builds a KindPure leaf carrying an opaque canonical term.
func Pure(term []byte, fp Footprint) *Effect {
	return &Effect{Kind: KindPure, Term: term, Footprint: fp}
}

// Perform builds a KindPerform leaf: a named operation with declared
// pre/post conditions.
func Perform(tag string, args []byte, pre, post []string, fp Footprint) *Effect {
	return &Effect{Kind: KindPerform, Tag: tag, Args: args, Pre: pre, Post: post, Footprint: fp}
}

// Bind sequences first then continuation, threading first's result.
func Bind(first, continuation *Effect, fp Footprint) *Effect {
	return &Effect{Kind: KindBind, First: first, Continuation: continuation, Footprint: fp}
}

// Handle wraps body, intercepting the effect tags named in handlers.
func Handle(body *Effect, handlers []Handler, fp Footprint) *Effect {
	return &Effect{Kind: KindHandle, Body: body, Handlers: handlers, Footprint: fp}
}

// Sequence composes children to run one after another.
func Sequence(children []*Effect, fp Footprint) *Effect {
	return &Effect{Kind: KindSequence, Children: children, Footprint: fp}
}

// Parallel composes children to run concurrently.
func Parallel(children []*Effect, fp Footprint) *Effect {
	return &Effect{Kind: KindParallel, Children: children, Footprint: fp}
}

// encode writes e's canonical tagged-union encoding (§6) into w.
func (e *Effect) encode(w *codec.Writer) {
	w.Uint8(uint8(e.Kind))
	e.Footprint.encode(w)
	switch e.Kind {
	case KindPure:
		w.Bytes_(e.Term)
	case KindPerform:
		w.String(e.Tag)
		w.Bytes_(e.Args)
		w.Uint32(uint32(len(e.Pre)))
		for _, p := range e.Pre {
			w.String(p)
		}
		w.Uint32(uint32(len(e.Post)))
		for _, p := range e.Post {
			w.String(p)
		}
	case KindBind:
		encodeChild(w, e.First)
		encodeChild(w, e.Continuation)
	case KindHandle:
		encodeChild(w, e.Body)
		handlers := append([]Handler(nil), e.Handlers...)
		sort.Slice(handlers, func(i, j int) bool { return handlers[i].Tag < handlers[j].Tag })
		w.Uint32(uint32(len(handlers)))
		for _, h := range handlers {
			w.String(h.Tag)
			encodeChild(w, h.Body)
		}
	case KindSequence, KindParallel:
		w.Uint32(uint32(len(e.Children)))
		for _, c := range e.Children {
			encodeChild(w, c)
		}
	}
}

func encodeChild(w *codec.Writer, e *Effect) {
	inner := codec.NewWriter(64)
	if e != nil {
		e.encode(inner)
	}
	w.Bytes_(inner.Bytes())
}

// CanonicalEncode returns e's full canonical byte encoding.
func (e *Effect) CanonicalEncode() []byte {
	w := codec.NewWriter(128 + len(e.Term) + len(e.Args))
	e.encode(w)
	return w.Bytes()
}
