package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func newFramedCheckerWithEnv(env *ModuleEnvironment) *Checker {
	c := New(env)
	c.Reset(nil, nil, nil)
	c.pushCtrl(nil, nil, 0, ctrlOuter)
	return c
}

func TestCheckAlignment_WithinWidth(t *testing.T) {
	require.NoError(t, checkAlignment(2, 32, wasm.OpcodeI32Load, 0))
}

func TestCheckAlignment_ExceedsWidth(t *testing.T) {
	err := checkAlignment(3, 32, wasm.OpcodeI32Load, 0)
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidAlignment, ce.Kind)
}

func TestCheckAlignment_ExceedsExponentCeiling(t *testing.T) {
	err := checkAlignment(32, 64, wasm.OpcodeI64Load, 0)
	require.Error(t, err)
}

func TestCheckMemoryOp_LoadPushesResultType(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.push(wasm.I32)

	err := c.checkMemoryOp(&wasm.Instruction{Opcode: wasm.OpcodeI32Load, MemArg: wasm.MemArg{Align: 2}})
	require.NoError(t, err)
	require.Equal(t, 1, len(c.stack))
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckMemoryOp_NoMemoryDeclared(t *testing.T) {
	c := newFramedCheckerWithEnv(NewModuleEnvironment())
	c.push(wasm.I32)
	err := c.checkMemoryOp(&wasm.Instruction{Opcode: wasm.OpcodeI32Load, MemArg: wasm.MemArg{Align: 2}})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidMemoryIdx, ce.Kind)
}

func TestCheckMemoryOp_GrowPopsAndPushesI32(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.push(wasm.I32)

	err := c.checkMemoryOp(&wasm.Instruction{Opcode: wasm.OpcodeMemoryGrow})
	require.NoError(t, err)
	require.Equal(t, 1, len(c.stack))
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckMisc_BulkMemory(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	env.AddData(wasm.DataSegmentType{})
	c := newFramedCheckerWithEnv(env)
	c.pushMany([]wasm.ValType{wasm.I32, wasm.I32, wasm.I32})

	err := c.checkMisc(&wasm.Instruction{Opcode: wasm.OpcodeMiscPrefix, Sub: wasm.OpcodeMiscMemoryInit, TargetIndex: 0, SourceIndex: 0})
	require.NoError(t, err)
	require.Equal(t, 0, len(c.stack))
}

func TestCheckMisc_DataDropBadIndex(t *testing.T) {
	env := NewModuleEnvironment()
	c := newFramedCheckerWithEnv(env)
	err := c.checkMisc(&wasm.Instruction{Opcode: wasm.OpcodeMiscPrefix, Sub: wasm.OpcodeMiscDataDrop, TargetIndex: 0})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidDataIdx, ce.Kind)
}

func TestCheckMisc_TruncSatConversion(t *testing.T) {
	c := newFramedCheckerWithEnv(NewModuleEnvironment())
	c.push(wasm.F64)
	err := c.checkMisc(&wasm.Instruction{Opcode: wasm.OpcodeMiscPrefix, Sub: wasm.OpcodeMiscI32TruncSatF64S})
	require.NoError(t, err)
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}
