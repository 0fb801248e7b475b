package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// numSig is a numeric instruction's fixed operand/result signature.
type numSig struct {
	take []wasm.ValType
	put  []wasm.ValType
}

// numericSignatures is generated once at package init from small per-shape
// generators (unary/binary/comparison over a value type) rather than
// hand-transcribed one opcode at a time — see SPEC_FULL.md §4.8. Every
// signature spec.md's §4.5 requires "verbatim" is present in this table;
// the generation is mechanical, the coverage is exhaustive.
var numericSignatures = buildNumericSignatures()

func buildNumericSignatures() map[wasm.Opcode]numSig {
	t := make(map[wasm.Opcode]numSig)

	addUnary := func(opcodes []wasm.Opcode, from, to wasm.ValType) {
		for _, op := range opcodes {
			t[op] = numSig{take: []wasm.ValType{from}, put: []wasm.ValType{to}}
		}
	}
	addBinary := func(opcodes []wasm.Opcode, operand, result wasm.ValType) {
		for _, op := range opcodes {
			t[op] = numSig{take: []wasm.ValType{operand, operand}, put: []wasm.ValType{result}}
		}
	}

	// comparisons: eqz is unary i32 result; the rest are binary i32 result.
	addUnary([]wasm.Opcode{wasm.OpcodeI32Eqz}, wasm.I32, wasm.I32)
	addBinary([]wasm.Opcode{
		wasm.OpcodeI32Eq, wasm.OpcodeI32Ne, wasm.OpcodeI32LtS, wasm.OpcodeI32LtU, wasm.OpcodeI32GtS, wasm.OpcodeI32GtU,
		wasm.OpcodeI32LeS, wasm.OpcodeI32LeU, wasm.OpcodeI32GeS, wasm.OpcodeI32GeU,
	}, wasm.I32, wasm.I32)

	addUnary([]wasm.Opcode{wasm.OpcodeI64Eqz}, wasm.I64, wasm.I32)
	addBinary([]wasm.Opcode{
		wasm.OpcodeI64Eq, wasm.OpcodeI64Ne, wasm.OpcodeI64LtS, wasm.OpcodeI64LtU, wasm.OpcodeI64GtS, wasm.OpcodeI64GtU,
		wasm.OpcodeI64LeS, wasm.OpcodeI64LeU, wasm.OpcodeI64GeS, wasm.OpcodeI64GeU,
	}, wasm.I64, wasm.I32)

	addBinary([]wasm.Opcode{
		wasm.OpcodeF32Eq, wasm.OpcodeF32Ne, wasm.OpcodeF32Lt, wasm.OpcodeF32Gt, wasm.OpcodeF32Le, wasm.OpcodeF32Ge,
	}, wasm.F32, wasm.I32)
	addBinary([]wasm.Opcode{
		wasm.OpcodeF64Eq, wasm.OpcodeF64Ne, wasm.OpcodeF64Lt, wasm.OpcodeF64Gt, wasm.OpcodeF64Le, wasm.OpcodeF64Ge,
	}, wasm.F64, wasm.I32)

	// arithmetic / bitwise / shift / rotate: unary ops result in the same
	// type, binary ops take two and result in one of the same type.
	addUnary([]wasm.Opcode{wasm.OpcodeI32Clz, wasm.OpcodeI32Ctz, wasm.OpcodeI32Popcnt}, wasm.I32, wasm.I32)
	addBinary([]wasm.Opcode{
		wasm.OpcodeI32Add, wasm.OpcodeI32Sub, wasm.OpcodeI32Mul, wasm.OpcodeI32DivS, wasm.OpcodeI32DivU,
		wasm.OpcodeI32RemS, wasm.OpcodeI32RemU, wasm.OpcodeI32And, wasm.OpcodeI32Or, wasm.OpcodeI32Xor,
		wasm.OpcodeI32Shl, wasm.OpcodeI32ShrS, wasm.OpcodeI32ShrU, wasm.OpcodeI32Rotl, wasm.OpcodeI32Rotr,
	}, wasm.I32, wasm.I32)

	addUnary([]wasm.Opcode{wasm.OpcodeI64Clz, wasm.OpcodeI64Ctz, wasm.OpcodeI64Popcnt}, wasm.I64, wasm.I64)
	addBinary([]wasm.Opcode{
		wasm.OpcodeI64Add, wasm.OpcodeI64Sub, wasm.OpcodeI64Mul, wasm.OpcodeI64DivS, wasm.OpcodeI64DivU,
		wasm.OpcodeI64RemS, wasm.OpcodeI64RemU, wasm.OpcodeI64And, wasm.OpcodeI64Or, wasm.OpcodeI64Xor,
		wasm.OpcodeI64Shl, wasm.OpcodeI64ShrS, wasm.OpcodeI64ShrU, wasm.OpcodeI64Rotl, wasm.OpcodeI64Rotr,
	}, wasm.I64, wasm.I64)

	addUnary([]wasm.Opcode{
		wasm.OpcodeF32Abs, wasm.OpcodeF32Neg, wasm.OpcodeF32Ceil, wasm.OpcodeF32Floor,
		wasm.OpcodeF32Trunc, wasm.OpcodeF32Nearest, wasm.OpcodeF32Sqrt,
	}, wasm.F32, wasm.F32)
	addBinary([]wasm.Opcode{
		wasm.OpcodeF32Add, wasm.OpcodeF32Sub, wasm.OpcodeF32Mul, wasm.OpcodeF32Div,
		wasm.OpcodeF32Min, wasm.OpcodeF32Max, wasm.OpcodeF32Copysign,
	}, wasm.F32, wasm.F32)

	addUnary([]wasm.Opcode{
		wasm.OpcodeF64Abs, wasm.OpcodeF64Neg, wasm.OpcodeF64Ceil, wasm.OpcodeF64Floor,
		wasm.OpcodeF64Trunc, wasm.OpcodeF64Nearest, wasm.OpcodeF64Sqrt,
	}, wasm.F64, wasm.F64)
	addBinary([]wasm.Opcode{
		wasm.OpcodeF64Add, wasm.OpcodeF64Sub, wasm.OpcodeF64Mul, wasm.OpcodeF64Div,
		wasm.OpcodeF64Min, wasm.OpcodeF64Max, wasm.OpcodeF64Copysign,
	}, wasm.F64, wasm.F64)

	// sign-extension proposal: same-width self-conversions.
	addUnary([]wasm.Opcode{wasm.OpcodeI32Extend8S, wasm.OpcodeI32Extend16S}, wasm.I32, wasm.I32)
	addUnary([]wasm.Opcode{wasm.OpcodeI64Extend8S, wasm.OpcodeI64Extend16S, wasm.OpcodeI64Extend32S}, wasm.I64, wasm.I64)

	// conversions: each is its own (from, to) pair, not a repeating shape.
	conversions := map[wasm.Opcode][2]wasm.ValType{
		wasm.OpcodeI32WrapI64:         {wasm.I64, wasm.I32},
		wasm.OpcodeI32TruncF32S:       {wasm.F32, wasm.I32},
		wasm.OpcodeI32TruncF32U:       {wasm.F32, wasm.I32},
		wasm.OpcodeI32TruncF64S:       {wasm.F64, wasm.I32},
		wasm.OpcodeI32TruncF64U:       {wasm.F64, wasm.I32},
		wasm.OpcodeI64ExtendI32S:      {wasm.I32, wasm.I64},
		wasm.OpcodeI64ExtendI32U:      {wasm.I32, wasm.I64},
		wasm.OpcodeI64TruncF32S:       {wasm.F32, wasm.I64},
		wasm.OpcodeI64TruncF32U:       {wasm.F32, wasm.I64},
		wasm.OpcodeI64TruncF64S:       {wasm.F64, wasm.I64},
		wasm.OpcodeI64TruncF64U:       {wasm.F64, wasm.I64},
		wasm.OpcodeF32ConvertI32S:     {wasm.I32, wasm.F32},
		wasm.OpcodeF32ConvertI32U:     {wasm.I32, wasm.F32},
		wasm.OpcodeF32ConvertI64S:     {wasm.I64, wasm.F32},
		wasm.OpcodeF32ConvertI64U:     {wasm.I64, wasm.F32},
		wasm.OpcodeF32DemoteF64:       {wasm.F64, wasm.F32},
		wasm.OpcodeF64ConvertI32S:     {wasm.I32, wasm.F64},
		wasm.OpcodeF64ConvertI32U:     {wasm.I32, wasm.F64},
		wasm.OpcodeF64ConvertI64S:     {wasm.I64, wasm.F64},
		wasm.OpcodeF64ConvertI64U:     {wasm.I64, wasm.F64},
		wasm.OpcodeF64PromoteF32:      {wasm.F32, wasm.F64},
		wasm.OpcodeI32ReinterpretF32:  {wasm.F32, wasm.I32},
		wasm.OpcodeI64ReinterpretF64:  {wasm.F64, wasm.I64},
		wasm.OpcodeF32ReinterpretI32:  {wasm.I32, wasm.F32},
		wasm.OpcodeF64ReinterpretI64:  {wasm.I64, wasm.F64},
	}
	for op, pair := range conversions {
		t[op] = numSig{take: []wasm.ValType{pair[0]}, put: []wasm.ValType{pair[1]}}
	}

	return t
}

// checkNumeric implements spec §4.5's numeric instruction rule: a fixed
// per-opcode (take, put) signature, looked up in the mechanically-generated
// numericSignatures table built above.
func (c *Checker) checkNumeric(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if oc == wasm.OpcodeI32Const {
		c.push(wasm.I32)
		return nil
	}
	if oc == wasm.OpcodeI64Const {
		c.push(wasm.I64)
		return nil
	}
	if oc == wasm.OpcodeF32Const {
		c.push(wasm.F32)
		return nil
	}
	if oc == wasm.OpcodeF64Const {
		c.push(wasm.F64)
		return nil
	}
	sig, ok := numericSignatures[oc]
	if !ok {
		return newErr(KindTypeCheckFailed, oc, offset, "unrecognized numeric opcode")
	}
	if err := c.popMany(sig.take, oc, offset); err != nil {
		return err
	}
	c.pushMany(sig.put)
	return nil
}
