package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func newLocalsChecker() *Checker {
	c := New(NewModuleEnvironment())
	c.Reset(nil, []wasm.ValType{wasm.I32, wasm.I32}, nil)
	c.pushCtrl(nil, nil, 0, ctrlOuter)
	return c
}

func TestCheckLocalGet_StackOffsetCountsValueOnStack(t *testing.T) {
	c := newLocalsChecker()
	c.markLocalInit(0)
	instr := &wasm.Instruction{Opcode: wasm.OpcodeLocalGet, TargetIndex: 0}
	require.NoError(t, c.checkRefParamVar(instr))
	require.Equal(t, uint32(2), instr.StackOffset)
}

func TestCheckLocalSet_StackOffsetComputedBeforePop(t *testing.T) {
	c := newLocalsChecker()
	c.push(wasm.I32)
	instr := &wasm.Instruction{Opcode: wasm.OpcodeLocalSet, TargetIndex: 0}
	require.NoError(t, c.checkRefParamVar(instr))
	// The value being stored was still on the operand stack when StackOffset
	// was computed: len(stack)=1 at that point, plus (locals=2 - idx=0) = 3.
	require.Equal(t, uint32(3), instr.StackOffset)
	require.Equal(t, 0, len(c.stack))
}

func TestCheckLocalTee_StackOffsetMatchesLocalSet(t *testing.T) {
	c := newLocalsChecker()
	c.push(wasm.I32)
	instr := &wasm.Instruction{Opcode: wasm.OpcodeLocalTee, TargetIndex: 1}
	require.NoError(t, c.checkRefParamVar(instr))
	require.Equal(t, uint32(2), instr.StackOffset) // len(stack)=1 + (locals=2 - idx=1)
	require.Equal(t, 1, len(c.stack))              // tee pushes the value back
}
