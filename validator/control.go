package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// checkControl implements spec §4.5's control-instruction rules.
func (c *Checker) checkControl(instrs wasm.InstructionView, i int, instr *wasm.Instruction) error {
	oc := instr.Opcode
	offset := instr.Offset

	switch oc {
	case wasm.OpcodeNop:
		return nil

	case wasm.OpcodeUnreachable:
		c.markUnreachable()
		return nil

	case wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf:
		return c.checkBlockLikeOpen(i, instr)

	case wasm.OpcodeElse:
		return c.checkElse(i, instr)

	case wasm.OpcodeEnd:
		return c.checkEnd(instr)

	case wasm.OpcodeBr:
		return c.checkBr(i, instr, false)
	case wasm.OpcodeBrIf:
		return c.checkBr(i, instr, true)
	case wasm.OpcodeBrTable:
		return c.checkBrTable(i, instr)
	case wasm.OpcodeBrOnNull:
		return c.checkBrOnNull(i, instr)
	case wasm.OpcodeBrOnNonNull:
		return c.checkBrOnNonNull(i, instr)

	case wasm.OpcodeReturn:
		if err := c.popMany(c.returns, oc, offset); err != nil {
			return err
		}
		c.markUnreachable()
		return nil

	case wasm.OpcodeCall:
		return c.checkCall(instr)
	case wasm.OpcodeCallIndirect:
		return c.checkCallIndirect(instr)
	case wasm.OpcodeReturnCall:
		return c.checkReturnCall(instr)
	case wasm.OpcodeReturnCallIndirect:
		return c.checkReturnCallIndirect(instr)
	case wasm.OpcodeCallRef:
		return c.checkCallRef(instr)
	case wasm.OpcodeReturnCallRef:
		return c.checkReturnCallRef(instr)
	}
	return newErr(KindTypeCheckFailed, oc, offset, "unhandled control opcode")
}

// checkBlockLikeOpen handles block/loop/if: resolve the block type, pop the
// condition for if, pop the inputs, then push a new frame whose jump anchor
// is the matching End (block/if) or the instruction itself (loop, since
// branches to a loop label go backwards to its own header).
func (c *Checker) checkBlockLikeOpen(i int, instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	in, out, err := c.resolveBlockType(instr.BlockType, oc, offset)
	if err != nil {
		return err
	}

	var kind ctrlOpcode
	jumpAnchor := instr.MatchIndex
	switch oc {
	case wasm.OpcodeBlock:
		kind = ctrlBlock
	case wasm.OpcodeLoop:
		kind = ctrlLoop
		jumpAnchor = i
	case wasm.OpcodeIf:
		kind = ctrlIf
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
		// An if with no else arm (its else-index equals its matching-end
		// index) must have matching in/out signatures, since the implicit
		// false arm is the identity.
		if instr.ElseIndex == instr.MatchIndex && !c.env.MatchTypes(out, in) {
			return newErr(KindTypeCheckFailed, oc, offset, "if without else requires matching input/output types")
		}
	}
	if err := c.popMany(in, oc, offset); err != nil {
		return err
	}
	c.pushCtrl(in, out, jumpAnchor, kind)
	return nil
}

// checkElse pops the current (if) frame, then reopens a fresh frame with the
// same signature and jump anchor under opcode Else, as spec §4.5 describes:
// "effectively re-opens the false arm."
func (c *Checker) checkElse(i int, instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	f, err := c.popCtrl(oc, offset)
	if err != nil {
		return err
	}
	c.pushCtrl(f.StartTypes, f.EndTypes, f.JumpAnchor, ctrlElse)
	return nil
}

// checkEnd pops the current frame and pushes its outputs.
func (c *Checker) checkEnd(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	f, err := c.popCtrl(oc, offset)
	if err != nil {
		return err
	}
	c.pushMany(f.EndTypes)
	return nil
}

// writeBranchMetadata fills in the mutable fields a decoder/executor needs
// to erase the right number of operand-stack slots and jump to the target,
// per spec §4.5 / §6's bit-exact contract.
func (c *Checker) writeBranchMetadata(instr *wasm.Instruction, i int, target *ControlFrame, arity int) {
	remain := len(c.stack) - target.Height
	instr.StackEraseBegin = uint32(remain + arity)
	instr.StackEraseEnd = uint32(arity)
	instr.PCOffset = int32(target.JumpAnchor - i)
}

// branchTarget computes one br_table label's jump metadata as a standalone
// value, the same way writeBranchMetadata does for every other branch, but
// without writing into the shared single-target fields.
func (c *Checker) branchTarget(i int, target *ControlFrame, arity int) wasm.BranchTarget {
	remain := len(c.stack) - target.Height
	return wasm.BranchTarget{
		StackEraseBegin: uint32(remain + arity),
		StackEraseEnd:   uint32(arity),
		PCOffset:        int32(target.JumpAnchor - i),
	}
}

func (c *Checker) checkBr(i int, instr *wasm.Instruction, conditional bool) error {
	oc, offset := instr.Opcode, instr.Offset
	labelIdx := instr.TargetIndex

	if conditional {
		if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
			return err
		}
	}
	target, ok := c.frameAt(labelIdx)
	if !ok {
		return newErr(KindInvalidLabelIdx, oc, offset, "label index %d exceeds control stack depth", labelIdx)
	}
	labelTypes := target.LabelTypes()
	if err := c.popMany(labelTypes, oc, offset); err != nil {
		return err
	}
	c.writeBranchMetadata(instr, i, target, len(labelTypes))

	if conditional {
		c.pushMany(labelTypes)
	} else {
		c.markUnreachable()
	}
	return nil
}

// checkBrTable implements spec §4.5's br_table: every label (including the
// default) must agree in arity with the default label's, each is typed and
// its branch metadata recorded, and the operands popped for an intermediate
// label are pushed back so the next label sees the same stack.
func (c *Checker) checkBrTable(i int, instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if len(instr.Labels) == 0 {
		return newErr(KindInvalidLabelIdx, oc, offset, "br_table requires at least a default label")
	}
	defaultIdx := instr.Labels[len(instr.Labels)-1]
	defaultFrame, ok := c.frameAt(defaultIdx)
	if !ok {
		return newErr(KindInvalidLabelIdx, oc, offset, "default label index %d exceeds control stack depth", defaultIdx)
	}
	defaultTypes := defaultFrame.LabelTypes()

	instr.LabelTable = make([]wasm.BranchTarget, len(instr.Labels))
	for k := 0; k < len(instr.Labels)-1; k++ {
		frame, ok := c.frameAt(instr.Labels[k])
		if !ok {
			return newErr(KindInvalidLabelIdx, oc, offset, "label index %d exceeds control stack depth", instr.Labels[k])
		}
		labelTypes := frame.LabelTypes()
		if len(labelTypes) != len(defaultTypes) {
			return newErr(KindTypeCheckFailed, oc, offset,
				"br_table label %d arity %d does not match default label arity %d", k, len(labelTypes), len(defaultTypes))
		}
		popped, err := c.popLabelTypesPreservingPolymorphism(labelTypes, oc, offset)
		if err != nil {
			return err
		}
		// Each label gets its own LabelTable entry: labels can target different
		// control-stack depths/anchors even when their arities agree.
		instr.LabelTable[k] = c.branchTarget(i, frame, len(labelTypes))
		c.pushKnownOrUnknown(popped)
	}

	if _, err := c.popLabelTypesPreservingPolymorphism(defaultTypes, oc, offset); err != nil {
		return err
	}
	instr.LabelTable[len(instr.Labels)-1] = c.branchTarget(i, defaultFrame, len(defaultTypes))
	c.markUnreachable()
	return nil
}

// popLabelTypesPreservingPolymorphism pops labelTypes in reverse, recording
// for each slot whether the popped value was Unknown (so it can be pushed
// back verbatim), per spec §4.5's "carefully preserving polymorphism" note.
func (c *Checker) popLabelTypesPreservingPolymorphism(labelTypes []wasm.ValType, oc wasm.Opcode, offset int) ([]VType, error) {
	popped := make([]VType, len(labelTypes))
	for k := len(labelTypes) - 1; k >= 0; k-- {
		v, err := c.pop(oc, offset)
		if err != nil {
			return nil, err
		}
		if v.Known && !c.env.MatchType(labelTypes[k], v.Concrete) {
			return nil, newErr(KindTypeCheckFailed, oc, offset, "expected type %s, got %s", labelTypes[k], v.Concrete)
		}
		if v.Known {
			popped[k] = v
		} else {
			popped[k] = Unknown
		}
	}
	return popped, nil
}

func (c *Checker) pushKnownOrUnknown(vs []VType) {
	c.stack = append(c.stack, vs...)
}

// checkBrOnNull implements spec §4.5's br_on_null: pop the reference (an
// Unknown pop vacuously succeeds, since the frame is already polymorphic);
// on a concrete reference, branch metadata targets the label as usual, and
// the non-null variant of the popped reference is pushed for fallthrough.
func (c *Checker) checkBrOnNull(i int, instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	popped, err := c.pop(oc, offset)
	if err != nil {
		return err
	}
	target, ok := c.frameAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidLabelIdx, oc, offset, "label index %d exceeds control stack depth", instr.TargetIndex)
	}
	labelTypes := target.LabelTypes()
	if !popped.Known {
		if err := c.popMany(labelTypes, oc, offset); err != nil {
			return err
		}
		c.writeBranchMetadata(instr, i, target, len(labelTypes))
		c.pushMany(labelTypes)
		c.pushUnknown()
		return nil
	}
	if !popped.Concrete.IsRefType() {
		return newErr(KindInvalidBrRefType, oc, offset, "br_on_null requires a reference type, got %s", popped.Concrete)
	}
	if err := c.popMany(labelTypes, oc, offset); err != nil {
		return err
	}
	c.writeBranchMetadata(instr, i, target, len(labelTypes))
	c.pushMany(labelTypes)
	c.push(popped.Concrete.AsNonNull())
	return nil
}

// checkBrOnNonNull implements spec §4.5's br_on_non_null: the label's types
// must end in a non-nullable reference; the nullable form of that reference
// is popped alongside the label's other operands, and the branch forwards
// the non-null reference to the target.
func (c *Checker) checkBrOnNonNull(i int, instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	target, ok := c.frameAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidLabelIdx, oc, offset, "label index %d exceeds control stack depth", instr.TargetIndex)
	}
	labelTypes := target.LabelTypes()
	if len(labelTypes) == 0 || !labelTypes[len(labelTypes)-1].IsRefType() || labelTypes[len(labelTypes)-1].Ref.Nullable {
		return newErr(KindInvalidBrRefType, oc, offset, "br_on_non_null target label must end in a non-nullable reference")
	}
	last := labelTypes[len(labelTypes)-1]
	if _, err := c.popExpect(last.AsNullable(), oc, offset); err != nil {
		return err
	}
	if err := c.popMany(labelTypes[:len(labelTypes)-1], oc, offset); err != nil {
		return err
	}
	c.writeBranchMetadata(instr, i, target, len(labelTypes))
	c.pushMany(labelTypes[:len(labelTypes)-1])
	return nil
}

func (c *Checker) checkCall(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	ft, ok := c.env.FuncType(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncIdx, oc, offset, "function index %d out of range", instr.TargetIndex)
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.pushMany(ft.Results)
	return nil
}

func (c *Checker) checkCallIndirect(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.SourceIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.SourceIndex)
	}
	if !table.ElemType.IsRefType() || table.ElemType.Ref.Heap.Code != wasm.HeapTypeFunc {
		return newErr(KindTypeCheckFailed, oc, offset, "call_indirect requires a funcref table")
	}
	ft, ok := c.env.TypeAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncTypeIdx, oc, offset, "type index %d out of range", instr.TargetIndex)
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.pushMany(ft.Results)
	return nil
}

func (c *Checker) checkReturnCall(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	ft, ok := c.env.FuncType(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncIdx, oc, offset, "function index %d out of range", instr.TargetIndex)
	}
	if !c.env.MatchTypes(c.returns, ft.Results) {
		return newErr(KindTypeCheckFailed, oc, offset, "return_call target results do not match function returns")
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.markUnreachable()
	return nil
}

func (c *Checker) checkReturnCallIndirect(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	table, ok := c.env.TableAt(instr.SourceIndex)
	if !ok {
		return newErr(KindInvalidTableIdx, oc, offset, "table index %d out of range", instr.SourceIndex)
	}
	if !table.ElemType.IsRefType() || table.ElemType.Ref.Heap.Code != wasm.HeapTypeFunc {
		return newErr(KindTypeCheckFailed, oc, offset, "return_call_indirect requires a funcref table")
	}
	ft, ok := c.env.TypeAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncTypeIdx, oc, offset, "type index %d out of range", instr.TargetIndex)
	}
	if !c.env.MatchTypes(c.returns, ft.Results) {
		return newErr(KindTypeCheckFailed, oc, offset, "return_call_indirect target results do not match function returns")
	}
	if _, err := c.popExpect(wasm.I32, oc, offset); err != nil {
		return err
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.markUnreachable()
	return nil
}

func (c *Checker) checkCallRef(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	ft, ok := c.env.TypeAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncTypeIdx, oc, offset, "type index %d out of range", instr.TargetIndex)
	}
	refType := wasm.NewRefValType(true, wasm.ConcreteHeapType(instr.TargetIndex))
	if _, err := c.popExpect(refType, oc, offset); err != nil {
		return err
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.pushMany(ft.Results)
	return nil
}

func (c *Checker) checkReturnCallRef(instr *wasm.Instruction) error {
	oc, offset := instr.Opcode, instr.Offset
	ft, ok := c.env.TypeAt(instr.TargetIndex)
	if !ok {
		return newErr(KindInvalidFuncTypeIdx, oc, offset, "type index %d out of range", instr.TargetIndex)
	}
	if !c.env.MatchTypes(c.returns, ft.Results) {
		return newErr(KindTypeCheckFailed, oc, offset, "return_call_ref target results do not match function returns")
	}
	refType := wasm.NewRefValType(true, wasm.ConcreteHeapType(instr.TargetIndex))
	if _, err := c.popExpect(refType, oc, offset); err != nil {
		return err
	}
	if err := c.popMany(ft.Params, oc, offset); err != nil {
		return err
	}
	c.markUnreachable()
	return nil
}
