package validator

import "github.com/tetratelabs/wazero-validate/wasm"

func isTableOpcode(oc wasm.Opcode) bool {
	return oc == wasm.OpcodeTableGet || oc == wasm.OpcodeTableSet
}

// checkTableOp implements the MVP table.get/table.set primary-space
// instructions; the bulk-memory table operations (grow/size/fill/init/copy,
// elem.drop) live in the misc (0xFC) opcode space and are handled by
// checkMisc in memoryops.go.
func (c *Checker) checkTableOp(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.TargetIndex)
	}
	switch oc {
	case wasm.OpcodeTableGet:
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
		c.push(table.ElemType)
		return nil
	case wasm.OpcodeTableSet:
		if _, err := c.popExpect(table.ElemType, oc, offset); err != nil {
			return err
		}
		_, err := c.popExpect(wasm.I32, oc, offset)
		return err
	}
	return newErr(KindTypeCheckFailed, oc, offset, "unhandled table opcode")
}

// checkTableGrow, checkTableFill, checkTableInit, checkTableCopy, and
// checkElemDrop are dispatched from checkMisc (memoryops.go) since their
// opcodes live in the OpcodeMisc sub-opcode space.

func (c *Checker) checkTableGrow(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.TargetIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(table.ElemType, oc, offset); err != nil {
		return err
	}
	c.push(wasm.I32)
	return nil
}

func (c *Checker) checkTableSize(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.TableAt(instr.TargetIndex); !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.TargetIndex)
	}
	c.push(wasm.I32)
	return nil
}

func (c *Checker) checkTableFill(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.TargetIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if _, err := c.popExpect(table.ElemType, oc, offset); err != nil {
		return err
	}
	_, err := c.popExpect(wasm.I32, oc, offset)
	return err
}

func (c *Checker) checkTableInit(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.TargetIndex)
	}
	elem, ok := c.env.ElemAt(instr.SourceIndex)
	if !ok {
		return newErr(KindInvalidElemIdx, oc, offset, "element segment index %d out of range", instr.SourceIndex)
	}
	if !c.env.MatchType(table.ElemType, elem.ElemType) {
		return newErr(KindTypeCheckFailed, oc, offset, "table.init element type %s does not match table type %s", elem.ElemType, table.ElemType)
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

func (c *Checker) checkTableCopy(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	dst, ok := c.env.TableAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "destination table index %d out of range", instr.TargetIndex)
	}
	src, ok := c.env.TableAt(instr.SourceIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "source table index %d out of range", instr.SourceIndex)
	}
	if !c.env.MatchType(dst.ElemType, src.ElemType) {
		return newErr(KindTypeCheckFailed, oc, offset, "table.copy element types do not match: %s vs %s", dst.ElemType, src.ElemType)
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

func (c *Checker) checkElemDrop(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, ok := c.env.ElemAt(instr.TargetIndex); !ok {
		return newErr(KindInvalidElemIdx, oc, offset, "element segment index %d out of range", instr.TargetIndex)
	}
	return nil
}
