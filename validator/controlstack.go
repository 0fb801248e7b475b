package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// ctrlOpcode distinguishes a control frame's originating construct, used to
// pick label_types (loop labels re-enter with their inputs) and to render
// diagnostics.
type ctrlOpcode byte

const (
	ctrlOuter ctrlOpcode = iota
	ctrlBlock
	ctrlLoop
	ctrlIf
	ctrlElse
)

// ControlFrame is one entry of the control stack: a live block/loop/if/else,
// or the synthetic outer frame the driver opens for the function body
// itself. See spec §3.
type ControlFrame struct {
	StartTypes []wasm.ValType
	EndTypes   []wasm.ValType
	Opcode     ctrlOpcode

	// JumpAnchor is the instruction index branches targeting this frame use
	// as the origin for PC-offset arithmetic: the matching End for every
	// non-loop frame, the Loop instruction itself for a loop (branches go
	// backwards).
	JumpAnchor int

	// Height is the operand-stack size at frame entry: the stack floor
	// while this frame is live.
	Height int
	// InitWatermark is the size of the local-init log at frame entry.
	InitWatermark int
	// Unreachable is set once the frame becomes polymorphic.
	Unreachable bool
}

// LabelTypes implements spec §4.3's label_types: a loop's label re-enters
// with its inputs, every other structured block's label exits with its
// outputs.
func (f *ControlFrame) LabelTypes() []wasm.ValType {
	if f.Opcode == ctrlLoop {
		return f.StartTypes
	}
	return f.EndTypes
}

// pushCtrl implements spec §4.3's push_ctrl: record height/watermark, clear
// unreachable, push the frame, then push its inputs back onto the operand
// stack (a block's parameters are visible inside it).
func (c *Checker) pushCtrl(in, out []wasm.ValType, jumpAnchor int, opcode ctrlOpcode) {
	f := &ControlFrame{
		StartTypes:    in,
		EndTypes:      out,
		Opcode:        opcode,
		JumpAnchor:    jumpAnchor,
		Height:        len(c.stack),
		InitWatermark: len(c.localInitLog),
	}
	c.ctrl = append(c.ctrl, f)
	c.pushMany(in)
}

// popCtrl implements spec §4.3's pop_ctrl: pop end_types, require the
// operand stack has returned exactly to the frame's floor, revert any local
// initializations logged since the frame opened, then pop and return the
// frame.
func (c *Checker) popCtrl(oc wasm.Opcode, offset int) (*ControlFrame, error) {
	f := c.ctrl[len(c.ctrl)-1]
	if err := c.popMany(f.EndTypes, oc, offset); err != nil {
		return nil, err
	}
	if len(c.stack) != f.Height {
		return nil, newErr(KindTypeCheckFailed, oc, offset,
			"operand stack height %d does not match frame floor %d at end of block", len(c.stack), f.Height)
	}
	c.revertLocalInit(f.InitWatermark)
	c.ctrl = c.ctrl[:len(c.ctrl)-1]
	return f, nil
}

// markUnreachable implements spec §4.3's unreachable(): truncate the
// operand stack to the current frame's floor and mark it polymorphic.
func (c *Checker) markUnreachable() {
	f := c.ctrl[len(c.ctrl)-1]
	c.stack = c.stack[:f.Height]
	f.Unreachable = true
}

func (c *Checker) curFrame() *ControlFrame { return c.ctrl[len(c.ctrl)-1] }

// frameAt returns the control frame at depth labelIdx from the top (0 is
// the innermost), and false if labelIdx is out of range.
func (c *Checker) frameAt(labelIdx uint32) (*ControlFrame, bool) {
	idx := len(c.ctrl) - 1 - int(labelIdx)
	if idx < 0 {
		return nil, false
	}
	return c.ctrl[idx], true
}
