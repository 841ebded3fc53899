package zk

import (
	"crypto/sha256"

	"github.com/timewave-computer/causality/infrastructure/codec"
	causalityerrors "github.com/timewave-computer/causality/infrastructure/errors"
)

// TraceStep is one step of an execution trace: the machine state before
// the step ran, the opcode executed, and the register ids it operated on.
type TraceStep struct {
	PreState []byte
	Opcode   uint8
	Operands []uint32
}

// checksum returns the SHA-256 digest of a pre-state block, appended to
// that block for integrity per §4.4.
func checksum(preState []byte) [sha256.Size]byte {
	return sha256.Sum256(preState)
}

// Witness is the private execution trace a Backend consumes to produce a
// Proof: a header, the per-step trace (each step's pre-state block
// carrying a SHA-256 checksum), a final-result block, and the final
// register-state block.
type Witness struct {
	InstructionCount uint32
	Timestamp        int64
	Trace            []TraceStep
	FinalResult      []byte
	Registers        map[uint32][]byte
}

// NewWitness builds a Witness from a completed execution trace.
func NewWitness(instructionCount uint32, timestamp int64, trace []TraceStep, finalResult []byte, registers map[uint32][]byte) *Witness {
	return &Witness{
		InstructionCount: instructionCount,
		Timestamp:        timestamp,
		Trace:            trace,
		FinalResult:      finalResult,
		Registers:        registers,
	}
}

// Encode serializes the witness to its canonical length-prefixed wire
// form: header, trace (each step's pre-state block followed by its
// SHA-256 checksum, then opcode and operand register ids), a
// length-prefixed final-result block, and a length-prefixed
// register-state block sorted by register id.
func (w *Witness) Encode() []byte {
	out := codec.NewWriter(256)

	out.Uint32(w.InstructionCount)
	out.Uint64(uint64(w.Timestamp))

	out.Uint32(uint32(len(w.Trace)))
	for _, step := range w.Trace {
		out.Bytes_(step.PreState)
		sum := checksum(step.PreState)
		out.RawBytes(sum[:])
		out.Uint8(step.Opcode)
		out.Uint32(uint32(len(step.Operands)))
		for _, op := range step.Operands {
			out.Uint32(op)
		}
	}

	out.Bytes_(w.FinalResult)

	regIDs := make([]uint32, 0, len(w.Registers))
	for id := range w.Registers {
		regIDs = append(regIDs, id)
	}
	sortUint32s(regIDs)
	out.Uint32(uint32(len(regIDs)))
	for _, id := range regIDs {
		out.Uint32(id)
		out.Bytes_(w.Registers[id])
	}

	return out.Bytes()
}

// DecodeWitness parses the wire form produced by Encode, verifying every
// trace step's pre-state checksum.
func DecodeWitness(data []byte) (*Witness, error) {
	r := codec.NewReader(data)

	instructionCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	ts, err := r.Uint64()
	if err != nil {
		return nil, err
	}

	traceLen, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	trace := make([]TraceStep, 0, traceLen)
	for i := uint32(0); i < traceLen; i++ {
		preState, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		storedSum, err := r.RawBytes(sha256.Size)
		if err != nil {
			return nil, err
		}
		want := checksum(preState)
		if string(storedSum) != string(want[:]) {
			return nil, causalityerrors.Consistency("witness pre-state checksum mismatch")
		}
		opcode, err := r.Uint8()
		if err != nil {
			return nil, err
		}
		operandCount, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		operands := make([]uint32, 0, operandCount)
		for j := uint32(0); j < operandCount; j++ {
			op, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			operands = append(operands, op)
		}
		trace = append(trace, TraceStep{PreState: preState, Opcode: opcode, Operands: operands})
	}

	finalResult, err := r.Bytes()
	if err != nil {
		return nil, err
	}

	regCount, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	registers := make(map[uint32][]byte, regCount)
	for i := uint32(0); i < regCount; i++ {
		id, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		val, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		registers[id] = val
	}

	return &Witness{
		InstructionCount: instructionCount,
		Timestamp:        int64(ts),
		Trace:            trace,
		FinalResult:      finalResult,
		Registers:        registers,
	}, nil
}

func sortUint32s(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
