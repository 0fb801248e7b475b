package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// simdLaneShape names one of the six SIMD lane interpretations of v128, used
// to generate splat/extract/replace/unary/binary/compare/shift signatures
// mechanically instead of transcribing each one by hand (SPEC_FULL.md §4.8).
type simdLaneShape struct {
	name     string
	laneType wasm.ValType // the scalar type splat takes / extract_lane produces
	lanes    int          // number of lanes, used for the lane-index bound
}

var (
	shapeI8x16 = simdLaneShape{"i8x16", wasm.I32, 16}
	shapeI16x8 = simdLaneShape{"i16x8", wasm.I32, 8}
	shapeI32x4 = simdLaneShape{"i32x4", wasm.I32, 4}
	shapeI64x2 = simdLaneShape{"i64x2", wasm.I64, 2}
	shapeF32x4 = simdLaneShape{"f32x4", wasm.F32, 4}
	shapeF64x2 = simdLaneShape{"f64x2", wasm.F64, 2}
)

type simdSig struct {
	take []wasm.ValType
	put  []wasm.ValType
	// lanesForIndex is > 0 when this opcode carries a lane-index immediate
	// (extract_lane/replace_lane) that must be checked against it.
	lanesForIndex int
}

// simdSignatures is built once at package init, assigning sequential
// sub-opcode numbers to the mechanically-generated lane ops above the
// decoder-contract named constants in wasm.OpcodeSIMD* (memory forms and
// i8x16.shuffle, which keep their proposal-numbered values). Since opcode
// parsing is an external decoder's job (spec §1), internal self-consistency
// of these assigned numbers is what matters here, not bit-exact alignment
// with the binary encoding.
var simdSignatures = buildSIMDSignatures()
var simdNames = map[wasm.OpcodeSIMD]string{}

const simdGeneratedBase wasm.OpcodeSIMD = wasm.OpcodeSIMDV128Load64Zero + 1

func buildSIMDSignatures() map[wasm.OpcodeSIMD]simdSig {
	t := make(map[wasm.OpcodeSIMD]simdSig)
	next := simdGeneratedBase

	assign := func(name string, sig simdSig) wasm.OpcodeSIMD {
		op := next
		t[op] = sig
		simdNames[op] = name
		next++
		return op
	}

	v128 := wasm.V128
	shapes := []simdLaneShape{shapeI8x16, shapeI16x8, shapeI32x4, shapeI64x2, shapeF32x4, shapeF64x2}

	assign("v128.not", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{v128}})
	for _, op := range []string{"v128.and", "v128.andnot", "v128.or", "v128.xor"} {
		assign(op, simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
	}
	assign("v128.bitselect", simdSig{take: []wasm.ValType{v128, v128, v128}, put: []wasm.ValType{v128}})
	assign("v128.any_true", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{wasm.I32}})

	for _, shape := range shapes {
		assign(shape.name+".splat", simdSig{take: []wasm.ValType{shape.laneType}, put: []wasm.ValType{v128}})
		assign(shape.name+".extract_lane", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{shape.laneType}, lanesForIndex: shape.lanes})
		assign(shape.name+".replace_lane", simdSig{take: []wasm.ValType{v128, shape.laneType}, put: []wasm.ValType{v128}, lanesForIndex: shape.lanes})
		assign(shape.name+".eq", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".ne", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".add", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".sub", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".neg", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".all_true", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{wasm.I32}})
		assign(shape.name+".bitmask", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{wasm.I32}})
	}
	// mul is generated for i16x8, i32x4, f32x4 and f64x2; min/max/abs/sqrt/div
	// for the two float shapes only; shl/shr_s/shr_u for i8x16, i16x8 and
	// i32x4. The table has no i8x16.mul, i64x2.mul, integer min/max, or
	// i64x2 shifts.
	for _, shape := range []simdLaneShape{shapeI16x8, shapeI32x4, shapeF32x4, shapeF64x2} {
		assign(shape.name+".mul", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
	}
	for _, shape := range []simdLaneShape{shapeF32x4, shapeF64x2} {
		assign(shape.name+".min", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".max", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".abs", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".sqrt", simdSig{take: []wasm.ValType{v128}, put: []wasm.ValType{v128}})
		assign(shape.name+".div", simdSig{take: []wasm.ValType{v128, v128}, put: []wasm.ValType{v128}})
	}
	for _, shape := range []simdLaneShape{shapeI8x16, shapeI16x8, shapeI32x4} {
		assign(shape.name+".shl", simdSig{take: []wasm.ValType{v128, wasm.I32}, put: []wasm.ValType{v128}})
		assign(shape.name+".shr_s", simdSig{take: []wasm.ValType{v128, wasm.I32}, put: []wasm.ValType{v128}})
		assign(shape.name+".shr_u", simdSig{take: []wasm.ValType{v128, wasm.I32}, put: []wasm.ValType{v128}})
	}

	return t
}

func isSIMDMemOpcode(sub wasm.OpcodeSIMD) bool {
	switch sub {
	case wasm.OpcodeSIMDV128Load, wasm.OpcodeSIMDV128Load8x8S, wasm.OpcodeSIMDV128Load8x8U,
		wasm.OpcodeSIMDV128Load16x4S, wasm.OpcodeSIMDV128Load16x4U, wasm.OpcodeSIMDV128Load32x2S, wasm.OpcodeSIMDV128Load32x2U,
		wasm.OpcodeSIMDV128Load8Splat, wasm.OpcodeSIMDV128Load16Splat, wasm.OpcodeSIMDV128Load32Splat, wasm.OpcodeSIMDV128Load64Splat,
		wasm.OpcodeSIMDV128Store,
		wasm.OpcodeSIMDV128Load32Zero, wasm.OpcodeSIMDV128Load64Zero,
		wasm.OpcodeSIMDV128Load8Lane, wasm.OpcodeSIMDV128Load16Lane, wasm.OpcodeSIMDV128Load32Lane, wasm.OpcodeSIMDV128Load64Lane,
		wasm.OpcodeSIMDV128Store8Lane, wasm.OpcodeSIMDV128Store16Lane, wasm.OpcodeSIMDV128Store32Lane, wasm.OpcodeSIMDV128Store64Lane:
		return true
	}
	return false
}

// simdMemLanes returns the number of lanes a *_lane load/store opcode
// addresses a single lane of (128 / the lane's own bit width), or 0 for a
// memory form that carries no lane-index immediate at all.
func simdMemLanes(sub wasm.OpcodeSIMD) int {
	switch sub {
	case wasm.OpcodeSIMDV128Load8Lane, wasm.OpcodeSIMDV128Store8Lane:
		return 16
	case wasm.OpcodeSIMDV128Load16Lane, wasm.OpcodeSIMDV128Store16Lane:
		return 8
	case wasm.OpcodeSIMDV128Load32Lane, wasm.OpcodeSIMDV128Store32Lane:
		return 4
	case wasm.OpcodeSIMDV128Load64Lane, wasm.OpcodeSIMDV128Store64Lane:
		return 2
	}
	return 0
}

func simdMemWidthBits(sub wasm.OpcodeSIMD) uint32 {
	switch sub {
	case wasm.OpcodeSIMDV128Load8x8S, wasm.OpcodeSIMDV128Load8x8U:
		return 64
	case wasm.OpcodeSIMDV128Load16x4S, wasm.OpcodeSIMDV128Load16x4U:
		return 64
	case wasm.OpcodeSIMDV128Load32x2S, wasm.OpcodeSIMDV128Load32x2U, wasm.OpcodeSIMDV128Load32Zero,
		wasm.OpcodeSIMDV128Load32Lane, wasm.OpcodeSIMDV128Store32Lane:
		return 32
	case wasm.OpcodeSIMDV128Load64Zero, wasm.OpcodeSIMDV128Load64Lane, wasm.OpcodeSIMDV128Store64Lane, wasm.OpcodeSIMDV128Load64Splat:
		return 64
	case wasm.OpcodeSIMDV128Load8Splat, wasm.OpcodeSIMDV128Load8Lane, wasm.OpcodeSIMDV128Store8Lane:
		return 8
	case wasm.OpcodeSIMDV128Load16Splat, wasm.OpcodeSIMDV128Load16Lane, wasm.OpcodeSIMDV128Store16Lane:
		return 16
	case wasm.OpcodeSIMDV128Load32Splat:
		return 32
	}
	return 128
}

// checkSIMD implements the OpcodeSIMDPrefix (0xFD) sub-opcode space.
func (c *Checker) checkSIMD(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	sub := instr.Sub

	switch {
	case sub == wasm.OpcodeSIMDV128Const:
		c.push(wasm.V128)
		return nil

	case sub == wasm.OpcodeSIMDI8x16Shuffle:
		return c.checkShuffle(instr)

	case isSIMDMemOpcode(sub):
		return c.checkSIMDMemOp(instr)
	}

	sig, ok := simdSignatures[sub]
	if !ok {
		return newErr(KindTypeCheckFailed, oc, offset, "unrecognized SIMD sub-opcode %d", sub)
	}
	if sig.lanesForIndex > 0 && int(instr.Lane) >= sig.lanesForIndex {
		return newErr(KindInvalidLaneIdx, oc, offset, "lane index %d out of range for %d lanes", instr.Lane, sig.lanesForIndex)
	}
	if err := c.popMany(sig.take, oc, offset); err != nil {
		return err
	}
	c.pushMany(sig.put)
	return nil
}

// checkShuffle implements spec §4.5's i8x16.shuffle constraint: every lane
// byte of the 128-bit immediate must be < 32, checked by masking each byte
// with 0xE0 (any nonzero result means a lane byte used bit 5 or above).
func (c *Checker) checkShuffle(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	for _, b := range instr.V128 {
		if b&0xE0 != 0 {
			return newErr(KindInvalidLaneIdx, oc, offset, "i8x16.shuffle lane byte %d is >= 32", b)
		}
	}
	if _, err := c.popExpect(wasm.V128, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(wasm.V128, oc, offset); err != nil {
		return err
	}
	c.push(wasm.V128)
	return nil
}

func (c *Checker) checkSIMDMemOp(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.MemoryAt(instr.MemArg.MemoryIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.MemArg.MemoryIndex)
	}
	if err := checkAlignment(instr.MemArg.Align, simdMemWidthBits(instr.Sub), oc, offset); err != nil {
		return err
	}
	if lanes := simdMemLanes(instr.Sub); lanes > 0 && int(instr.Lane) >= lanes {
		return newErr(KindInvalidLaneIdx, oc, offset, "lane index %d out of range for %d lanes", instr.Lane, lanes)
	}
	switch instr.Sub {
	case wasm.OpcodeSIMDV128Store, wasm.OpcodeSIMDV128Store8Lane, wasm.OpcodeSIMDV128Store16Lane,
		wasm.OpcodeSIMDV128Store32Lane, wasm.OpcodeSIMDV128Store64Lane:
		if _, err := c.popExpect(wasm.V128, oc, offset); err != nil {
			return err
		}
		_, err := c.popExpect(wasm.I32, oc, offset)
		return err
	case wasm.OpcodeSIMDV128Load8Lane, wasm.OpcodeSIMDV128Load16Lane, wasm.OpcodeSIMDV128Load32Lane, wasm.OpcodeSIMDV128Load64Lane:
		if _, err := c.popExpect(wasm.V128, oc, offset); err != nil {
			return err
		}
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
		c.push(wasm.V128)
		return nil
	default:
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
		c.push(wasm.V128)
		return nil
	}
}

// SIMDOpcodeName returns the mnemonic assigned to a mechanically-generated
// SIMD sub-opcode, or the prefix mnemonic ("simd-prefixed") for the
// memory/const/shuffle forms already named in wasm.OpcodeSIMD*.
func SIMDOpcodeName(sub wasm.OpcodeSIMD) string {
	if n, ok := simdNames[sub]; ok {
		return n
	}
	return wasm.InstructionName(wasm.OpcodeSIMDPrefix)
}
