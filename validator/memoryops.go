package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// loadStoreWidth is the access width in bits for every primary-space
// load/store opcode, used for the alignment check in spec §4.5: the
// encoded alignment exponent a must satisfy 2^a <= N/8.
var loadStoreWidth = map[wasm.Opcode]uint32{
	wasm.OpcodeI32Load: 32, wasm.OpcodeI64Load: 64, wasm.OpcodeF32Load: 32, wasm.OpcodeF64Load: 64,
	wasm.OpcodeI32Load8S: 8, wasm.OpcodeI32Load8U: 8, wasm.OpcodeI32Load16S: 16, wasm.OpcodeI32Load16U: 16,
	wasm.OpcodeI64Load8S: 8, wasm.OpcodeI64Load8U: 8, wasm.OpcodeI64Load16S: 16, wasm.OpcodeI64Load16U: 16,
	wasm.OpcodeI64Load32S: 32, wasm.OpcodeI64Load32U: 32,
	wasm.OpcodeI32Store: 32, wasm.OpcodeI64Store: 64, wasm.OpcodeF32Store: 32, wasm.OpcodeF64Store: 64,
	wasm.OpcodeI32Store8: 8, wasm.OpcodeI32Store16: 16,
	wasm.OpcodeI64Store8: 8, wasm.OpcodeI64Store16: 16, wasm.OpcodeI64Store32: 32,
}

// loadResultType is the value type a load instruction pushes.
var loadResultType = map[wasm.Opcode]wasm.ValType{
	wasm.OpcodeI32Load: wasm.I32, wasm.OpcodeI32Load8S: wasm.I32, wasm.OpcodeI32Load8U: wasm.I32,
	wasm.OpcodeI32Load16S: wasm.I32, wasm.OpcodeI32Load16U: wasm.I32,
	wasm.OpcodeI64Load: wasm.I64, wasm.OpcodeI64Load8S: wasm.I64, wasm.OpcodeI64Load8U: wasm.I64,
	wasm.OpcodeI64Load16S: wasm.I64, wasm.OpcodeI64Load16U: wasm.I64,
	wasm.OpcodeI64Load32S: wasm.I64, wasm.OpcodeI64Load32U: wasm.I64,
	wasm.OpcodeF32Load: wasm.F32, wasm.OpcodeF64Load: wasm.F64,
}

// storeOperandType is the value type a store instruction pops as its data
// operand (alongside the i32 address).
var storeOperandType = map[wasm.Opcode]wasm.ValType{
	wasm.OpcodeI32Store: wasm.I32, wasm.OpcodeI32Store8: wasm.I32, wasm.OpcodeI32Store16: wasm.I32,
	wasm.OpcodeI64Store: wasm.I64, wasm.OpcodeI64Store8: wasm.I64, wasm.OpcodeI64Store16: wasm.I64, wasm.OpcodeI64Store32: wasm.I64,
	wasm.OpcodeF32Store: wasm.F32, wasm.OpcodeF64Store: wasm.F64,
}

// checkAlignment implements spec §4.5's alignment check: a <= 31 and
// 2^a <= N/8, where N is the access width in bits.
func checkAlignment(a uint32, widthBits uint32, oc wasm.Opcode, offset int) error {
	if a > 31 {
		return newErr(KindInvalidAlignment, oc, offset, "alignment exponent %d exceeds 31", a)
	}
	if (uint32(1) << a) > widthBits/8 {
		return newErr(KindInvalidAlignment, oc, offset, "alignment 2^%d exceeds access width %d bytes", a, widthBits/8)
	}
	return nil
}

// checkMemoryOp implements the primary-space memory instructions: all
// load/store forms (including sign-extending) plus memory.size/memory.grow.
func (c *Checker) checkMemoryOp(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset

	if oc == wasm.OpcodeMemorySize || oc == wasm.OpcodeMemoryGrow {
		if _, ok := c.env.MemoryAt(instr.MemArg.MemoryIndex); !ok {
			return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.MemArg.MemoryIndex)
		}
		if oc == wasm.OpcodeMemoryGrow {
			if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
				return err
			}
		}
		c.push(wasm.I32)
		return nil
	}

	if _, ok := c.env.MemoryAt(instr.MemArg.MemoryIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.MemArg.MemoryIndex)
	}
	width, ok := loadStoreWidth[oc]
	if !ok {
		return newErr(KindTypeCheckFailed, oc, offset, "unhandled memory opcode")
	}
	if err := checkAlignment(instr.MemArg.Align, width, oc, offset); err != nil {
		return err
	}

	if resultType, isLoad := loadResultType[oc]; isLoad {
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
		c.push(resultType)
		return nil
	}
	operandType := storeOperandType[oc]
	if _, err := c.popExpect(operandType, oc, offset); err != nil {
		return err
	}
	_, err := c.popExpect(wasm.I32, oc, offset)
	return err
}

// checkMisc dispatches the OpcodeMiscPrefix (0xFC) sub-opcode space:
// saturating truncation, bulk memory, and bulk table operations.
func (c *Checker) checkMisc(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	switch instr.Sub {
	case wasm.OpcodeMiscI32TruncSatF32S, wasm.OpcodeMiscI32TruncSatF32U:
		return c.miscConvert(wasm.F32, wasm.I32, oc, offset)
	case wasm.OpcodeMiscI32TruncSatF64S, wasm.OpcodeMiscI32TruncSatF64U:
		return c.miscConvert(wasm.F64, wasm.I32, oc, offset)
	case wasm.OpcodeMiscI64TruncSatF32S, wasm.OpcodeMiscI64TruncSatF32U:
		return c.miscConvert(wasm.F32, wasm.I64, oc, offset)
	case wasm.OpcodeMiscI64TruncSatF64S, wasm.OpcodeMiscI64TruncSatF64U:
		return c.miscConvert(wasm.F64, wasm.I64, oc, offset)

	case wasm.OpcodeMiscMemoryInit:
		return c.checkMemoryInit(instr)
	case wasm.OpcodeMiscDataDrop:
		return c.checkDataDrop(instr)
	case wasm.OpcodeMiscMemoryCopy:
		return c.checkMemoryCopy(instr)
	case wasm.OpcodeMiscMemoryFill:
		return c.checkMemoryFill(instr)

	case wasm.OpcodeMiscTableInit:
		return c.checkTableInit(instr)
	case wasm.OpcodeMiscElemDrop:
		return c.checkElemDrop(instr)
	case wasm.OpcodeMiscTableCopy:
		return c.checkTableCopy(instr)
	case wasm.OpcodeMiscTableGrow:
		return c.checkTableGrow(instr)
	case wasm.OpcodeMiscTableSize:
		return c.checkTableSize(instr)
	case wasm.OpcodeMiscTableFill:
		return c.checkTableFill(instr)
	}
	return newErr(KindTypeCheckFailed, oc, offset, "unhandled misc sub-opcode %d", instr.Sub)
}

func (c *Checker) miscConvert(from, to wasm.ValType, oc wasm.Opcode, offset int) error {
	if _, err := c.popExpect(from, oc, offset); err != nil {
		return err
	}
	c.push(to)
	return nil
}

func (c *Checker) checkMemoryInit(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.MemoryAt(instr.TargetIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.TargetIndex)
	}
	if !c.env.DataIdxInBounds(instr.SourceIndex) {
		return newErr(KindInvalidDataIdx, oc, offset, "data segment index %d out of range", instr.SourceIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	_, err := c.popExpect(wasm.I32, oc, offset)
	return err
}

func (c *Checker) checkDataDrop(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if !c.env.DataIdxInBounds(instr.TargetIndex) {
		return newErr(KindInvalidDataIdx, oc, offset, "data segment index %d out of range", instr.TargetIndex)
	}
	return nil
}

func (c *Checker) checkMemoryCopy(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.MemoryAt(instr.TargetIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "destination memory index %d out of range", instr.TargetIndex)
	}
	if _, ok := c.env.MemoryAt(instr.SourceIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "source memory index %d out of range", instr.SourceIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	_, err := c.popExpect(wasm.I32, oc, offset)
	return err
}

func (c *Checker) checkMemoryFill(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.MemoryAt(instr.TargetIndex); !ok {
		return newErr(KindInvalidMemoryIdx, oc, offset, "memory index %d out of range", instr.TargetIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	_, err := c.popExpect(wasm.I32, oc, offset)
	return err
}
