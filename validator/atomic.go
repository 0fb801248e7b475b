package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// atomicOpKind distinguishes the stack-effect shape of a generated atomic
// sub-opcode; width/alignment is carried separately since it drives the
// alignment check rather than the signature.
type atomicOpKind int

const (
	atomicLoad atomicOpKind = iota
	atomicStore
	atomicRMW
	atomicCmpxchg
)

type atomicSig struct {
	kind      atomicOpKind
	resultTyp wasm.ValType // i32 or i64: the base type this op operates on
	widthBits uint32       // narrow width in bits (8/16/32), or resultTyp's own width for the non-narrow form
}

// atomicSignatures and atomicNames are generated once at package init from
// (base type, width) tuples rather than transcribed per op, mirroring
// numeric.go/simd.go's approach (SPEC_FULL.md §4.8): every 8/16/32/64-bit
// atomic load/store/RMW/cmpxchg combination the threads proposal defines is
// covered by one generator pass per base type.
var atomicSignatures = map[wasm.OpcodeAtomic]atomicSig{}
var atomicNames = map[wasm.OpcodeAtomic]string{}

func init() {
	next := wasm.OpcodeAtomicRMWBase

	assign := func(name string, sig atomicSig) {
		atomicSignatures[next] = sig
		atomicNames[next] = name
		next++
	}

	rmwOps := []string{"add", "sub", "and", "or", "xor", "xchg"}

	type baseType struct {
		typ          wasm.ValType
		name         string
		width        uint32
		narrowWidths []uint32
	}
	bases := []baseType{
		{wasm.I32, "i32", 32, []uint32{8, 16}},
		{wasm.I64, "i64", 64, []uint32{8, 16, 32}},
	}

	for _, b := range bases {
		assign(b.name+".atomic.load", atomicSig{kind: atomicLoad, resultTyp: b.typ, widthBits: b.width})
		assign(b.name+".atomic.store", atomicSig{kind: atomicStore, resultTyp: b.typ, widthBits: b.width})
		for _, op := range rmwOps {
			assign(b.name+".atomic.rmw."+op, atomicSig{kind: atomicRMW, resultTyp: b.typ, widthBits: b.width})
		}
		assign(b.name+".atomic.rmw.cmpxchg", atomicSig{kind: atomicCmpxchg, resultTyp: b.typ, widthBits: b.width})

		for _, w := range b.narrowWidths {
			suffix := narrowSuffix(w)
			assign(b.name+".atomic.load"+suffix+"_u", atomicSig{kind: atomicLoad, resultTyp: b.typ, widthBits: w})
			assign(b.name+".atomic.store"+suffix, atomicSig{kind: atomicStore, resultTyp: b.typ, widthBits: w})
			for _, op := range rmwOps {
				assign(b.name+".atomic.rmw"+suffix+"."+op+"_u", atomicSig{kind: atomicRMW, resultTyp: b.typ, widthBits: w})
			}
			assign(b.name+".atomic.rmw"+suffix+".cmpxchg_u", atomicSig{kind: atomicCmpxchg, resultTyp: b.typ, widthBits: w})
		}
	}
}

func narrowSuffix(widthBits uint32) string {
	switch widthBits {
	case 8:
		return "8"
	case 16:
		return "16"
	case 32:
		return "32"
	}
	return ""
}

// checkAtomic implements the OpcodeAtomicPrefix (0xFE) sub-opcode space:
// memory.atomic.notify/wait, atomic.fence, and the generated per-width
// load/store/RMW/cmpxchg table above.
func (c *Checker) checkAtomic(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	switch instr.Sub {
	case wasm.OpcodeAtomicFence:
		return nil
	case wasm.OpcodeAtomicNotify:
		return c.checkAtomicMemOp(instr, 32, func() error {
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(wasm.I32)
			return nil
		})
	case wasm.OpcodeAtomicWait32:
		return c.checkAtomicMemOp(instr, 32, func() error {
			if _, err := c.popExpect(wasm.I64, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(wasm.I32)
			return nil
		})
	case wasm.OpcodeAtomicWait64:
		return c.checkAtomicMemOp(instr, 64, func() error {
			if _, err := c.popExpect(wasm.I64, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I64, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(wasm.I32)
			return nil
		})
	}

	sig, ok := atomicSignatures[instr.Sub]
	if !ok {
		return newErr(KindTypeCheckFailed, oc, offset, "unrecognized atomic sub-opcode %d", instr.Sub)
	}
	return c.checkAtomicMemOp(instr, sig.widthBits, func() error {
		switch sig.kind {
		case atomicLoad:
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(sig.resultTyp)
		case atomicStore:
			if _, err := c.popExpect(sig.resultTyp, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
		case atomicRMW:
			if _, err := c.popExpect(sig.resultTyp, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(sig.resultTyp)
		case atomicCmpxchg:
			if _, err := c.popExpect(sig.resultTyp, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(sig.resultTyp, oc, offset); err != nil {
				return err
			}
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
			c.push(sig.resultTyp)
		}
		return nil
	})
}

func (c *Checker) checkAtomicMemOp(instr *wasm.Instruction, widthBits uint32, effect func() error) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.MemoryAt(instr.MemArg.MemoryIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.MemArg.MemoryIndex)
	}
	if err := checkAlignment(instr.MemArg.Align, widthBits, oc, offset); err != nil {
		return err
	}
	return effect()
}

// AtomicOpcodeName returns the mnemonic assigned to a generated atomic
// sub-opcode.
func AtomicOpcodeName(sub wasm.OpcodeAtomic) string {
	switch sub {
	case wasm.OpcodeAtomicNotify:
		return "memory.atomic.notify"
	case wasm.OpcodeAtomicWait32:
		return "memory.atomic.wait32"
	case wasm.OpcodeAtomicWait64:
		return "memory.atomic.wait64"
	case wasm.OpcodeAtomicFence:
		return "atomic.fence"
	}
	if n, ok := atomicNames[sub]; ok {
		return n
	}
	return wasm.InstructionName(wasm.OpcodeAtomicPrefix)
}
