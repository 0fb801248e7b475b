package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func TestControlStack_LabelTypesLoopVsBlock(t *testing.T) {
	c := newFramedChecker()
	c.pushCtrl([]wasm.ValType{wasm.I32}, []wasm.ValType{wasm.I64}, 0, ctrlLoop)
	loopFrame := c.curFrame()
	require.Equal(t, []wasm.ValType{wasm.I32}, loopFrame.LabelTypes())

	// the loop body consumes its I32 input and leaves its declared I64 output.
	c.stack = c.stack[:len(c.stack)-1]
	c.push(wasm.I64)
	_, err := c.popCtrl(wasm.OpcodeEnd, 0)
	require.NoError(t, err)

	c.pushCtrl([]wasm.ValType{wasm.I32}, []wasm.ValType{wasm.I64}, 0, ctrlBlock)
	blockFrame := c.curFrame()
	require.Equal(t, []wasm.ValType{wasm.I64}, blockFrame.LabelTypes())
}

func TestControlStack_PushCtrlMakesInputsVisible(t *testing.T) {
	c := newFramedChecker()
	c.pushCtrl([]wasm.ValType{wasm.I32, wasm.F64}, nil, 0, ctrlBlock)
	require.Equal(t, 2, len(c.stack))
	require.Equal(t, wasm.F64, c.stack[1].Concrete)
}

func TestControlStack_PopCtrlRequiresFrameFloor(t *testing.T) {
	c := newFramedChecker()
	c.pushCtrl(nil, []wasm.ValType{wasm.I32}, 0, ctrlBlock)
	// never pushing the declared I32 result before popCtrl: popping it underflows the frame floor.
	_, err := c.popCtrl(wasm.OpcodeEnd, 0)
	require.Error(t, err)
}

func TestControlStack_PopCtrlRevertsLocalInit(t *testing.T) {
	c := newFramedChecker()
	c.locals = []Local{{Type: wasm.I32, IsInit: false}}
	c.pushCtrl(nil, nil, 0, ctrlBlock)
	c.markLocalInit(0)
	require.True(t, c.locals[0].IsInit)

	_, err := c.popCtrl(wasm.OpcodeEnd, 0)
	require.NoError(t, err)
	require.False(t, c.locals[0].IsInit)
}

func TestControlStack_FrameAtDepth(t *testing.T) {
	c := newFramedChecker()
	c.pushCtrl(nil, nil, 0, ctrlBlock)
	c.pushCtrl(nil, nil, 1, ctrlLoop)

	innermost, ok := c.frameAt(0)
	require.True(t, ok)
	require.Equal(t, ctrlLoop, innermost.Opcode)

	next, ok := c.frameAt(1)
	require.True(t, ok)
	require.Equal(t, ctrlBlock, next.Opcode)

	_, ok = c.frameAt(5)
	require.False(t, ok)
}

func TestControlStack_MarkUnreachableTruncatesToFloor(t *testing.T) {
	c := newFramedChecker()
	c.pushCtrl(nil, nil, 0, ctrlBlock)
	c.push(wasm.I32)
	c.push(wasm.I64)
	c.markUnreachable()
	require.Equal(t, c.curFrame().Height, len(c.stack))
	require.True(t, c.curFrame().Unreachable)
}
