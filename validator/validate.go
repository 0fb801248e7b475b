// Package validator implements the WebAssembly function-body form checker:
// given a pre-parsed instruction view, a declared result signature, and a
// populated ModuleEnvironment, it decides whether the body is well-typed,
// covering the MVP, reference-types, tail-call, function-references, SIMD,
// and atomics/threads proposals. As a side effect it resolves branch
// targets, writing stack-erase and PC-offset metadata back into the
// instructions it walks.
//
// Decoding and opcode parsing are not this package's job: see wasm.Instruction
// for the contract a decoder is expected to populate before handing a body to
// Validate.
package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// Checker holds all per-function-body validation state: the operand stack,
// control stack, local-initialization log, and declared locals/returns. A
// Checker is not safe for concurrent use on the same instance; create one
// per concurrent validation (they may all share one read-only
// ModuleEnvironment once its population phase has finished).
type Checker struct {
	env *ModuleEnvironment

	stack []VType
	ctrl  []*ControlFrame

	locals       []Local
	localInitLog []wasm.Index

	returns []wasm.ValType
}

// New returns a Checker bound to env. Call Reset before each Validate call.
func New(env *ModuleEnvironment) *Checker {
	return &Checker{env: env}
}

// Reset prepares the checker for a fresh function body: params and locals
// become the function's local slots (params always begin initialized;
// additional locals are initialized only if their type is defaultable, per
// spec §3), and returns becomes the body's declared result signature. The
// operand stack, control stack, and local-init log are cleared. Module-level
// state in the environment is untouched — it persists across bodies.
func (c *Checker) Reset(params, locals, returns []wasm.ValType) {
	c.stack = c.stack[:0]
	c.ctrl = c.ctrl[:0]
	c.localInitLog = c.localInitLog[:0]
	c.locals = make([]Local, 0, len(params)+len(locals))
	for _, p := range params {
		c.locals = append(c.locals, Local{Type: p, IsInit: true})
	}
	for _, l := range locals {
		c.AddLocal(l)
	}
	c.returns = returns
}

// Validate implements spec §4.6's driver: if instrs is empty, validation
// trivially succeeds (no frame is opened, so no end instruction is
// required). Otherwise it opens a synthetic outer frame ([] -> returns)
// whose jump anchor is the last instruction, then dispatches every
// instruction in order. The first failure aborts and is returned as a
// *CheckError annotated with the offending opcode and offset; branch
// metadata already written for earlier, successfully-checked instructions
// is not rolled back.
func (c *Checker) Validate(instrs wasm.InstructionView) error {
	if len(instrs) == 0 {
		return nil
	}
	c.pushCtrl(nil, c.returns, len(instrs)-1, ctrlOuter)

	for i := range instrs {
		instr := &instrs[i]
		if err := c.checkInstr(instrs, i, instr); err != nil {
			Logger().Sugar().Debugw("validation failed",
				"opcode", wasm.InstructionName(instr.Opcode), "offset", instr.Offset, "error", err)
			return err
		}
		Logger().Sugar().Debugw("instruction checked",
			"opcode", wasm.InstructionName(instr.Opcode), "stackDepth", len(c.stack))
	}
	return nil
}

// checkInstr dispatches one instruction to its typing rule. instrs and i
// give control-flow rules (block/loop/if/br*/call*) access to neighboring
// instructions for PC-offset arithmetic; most categories only need instr
// itself.
func (c *Checker) checkInstr(instrs wasm.InstructionView, i int, instr *wasm.Instruction) error {
	oc := instr.Opcode
	switch {
	case isControlOpcode(oc):
		return c.checkControl(instrs, i, instr)
	case isRefParamVarOpcode(oc):
		return c.checkRefParamVar(instr)
	case isTableOpcode(oc):
		return c.checkTableOp(instr)
	case oc == wasm.OpcodeMiscPrefix:
		return c.checkMisc(instr)
	case oc == wasm.OpcodeSIMDPrefix:
		return c.checkSIMD(instr)
	case oc == wasm.OpcodeAtomicPrefix:
		return c.checkAtomic(instr)
	case isMemoryOpcode(oc):
		return c.checkMemoryOp(instr)
	default:
		return c.checkNumeric(instr)
	}
}

func isControlOpcode(oc wasm.Opcode) bool {
	switch oc {
	case wasm.OpcodeUnreachable, wasm.OpcodeNop, wasm.OpcodeBlock, wasm.OpcodeLoop, wasm.OpcodeIf,
		wasm.OpcodeElse, wasm.OpcodeEnd, wasm.OpcodeBr, wasm.OpcodeBrIf, wasm.OpcodeBrTable,
		wasm.OpcodeReturn, wasm.OpcodeCall, wasm.OpcodeCallIndirect, wasm.OpcodeReturnCall,
		wasm.OpcodeReturnCallIndirect, wasm.OpcodeCallRef, wasm.OpcodeReturnCallRef,
		wasm.OpcodeBrOnNull, wasm.OpcodeBrOnNonNull:
		return true
	}
	return false
}

func isMemoryOpcode(oc wasm.Opcode) bool {
	return (oc >= wasm.OpcodeI32Load && oc <= wasm.OpcodeMemoryGrow)
}
