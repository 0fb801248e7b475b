package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func findSIMDOpcode(name string) (wasm.OpcodeSIMD, bool) {
	for op, n := range simdNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

func TestCheckSIMD_SplatAndSignature(t *testing.T) {
	sub, ok := findSIMDOpcode("i32x4.splat")
	require.True(t, ok)

	c := newFramedChecker()
	c.push(wasm.I32)
	err := c.checkSIMD(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: sub})
	require.NoError(t, err)
	require.Equal(t, wasm.V128, c.stack[0].Concrete)
}

func TestCheckSIMD_ExtractLaneBoundsCheck(t *testing.T) {
	sub, ok := findSIMDOpcode("i16x8.extract_lane")
	require.True(t, ok)

	c := newFramedChecker()
	c.push(wasm.V128)
	err := c.checkSIMD(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: sub, Lane: 8})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidLaneIdx, ce.Kind)
}

func TestCheckSIMD_ExtractLaneInBounds(t *testing.T) {
	sub, ok := findSIMDOpcode("i16x8.extract_lane")
	require.True(t, ok)

	c := newFramedChecker()
	c.push(wasm.V128)
	err := c.checkSIMD(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: sub, Lane: 7})
	require.NoError(t, err)
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckShuffle_RejectsOutOfRangeLane(t *testing.T) {
	c := newFramedChecker()
	c.pushMany([]wasm.ValType{wasm.V128, wasm.V128})
	var mask [16]byte
	mask[5] = 40
	err := c.checkShuffle(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, V128: mask})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidLaneIdx, ce.Kind)
}

func TestCheckSIMDMemOp_V128LoadAlignment(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.push(wasm.I32)

	err := c.checkSIMDMemOp(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: wasm.OpcodeSIMDV128Load, MemArg: wasm.MemArg{Align: 5}})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidAlignment, ce.Kind)
}

func TestCheckSIMDMemOp_LoadLaneRejectsOutOfRangeLane(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.pushMany([]wasm.ValType{wasm.I32, wasm.V128})

	// v128.load8_lane addresses 16 lanes (128/8); 16 is out of range.
	err := c.checkSIMDMemOp(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: wasm.OpcodeSIMDV128Load8Lane, Lane: 16})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidLaneIdx, ce.Kind)
}

func TestCheckSIMDMemOp_LoadLaneAcceptsInRangeLane(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.pushMany([]wasm.ValType{wasm.I32, wasm.V128})

	err := c.checkSIMDMemOp(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: wasm.OpcodeSIMDV128Load8Lane, Lane: 15})
	require.NoError(t, err)
	require.Equal(t, wasm.V128, c.stack[0].Concrete)
}

func TestCheckSIMDMemOp_StoreLaneRejectsOutOfRangeLane(t *testing.T) {
	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.pushMany([]wasm.ValType{wasm.I32, wasm.V128})

	// v128.store32_lane addresses 4 lanes (128/32); 4 is out of range.
	err := c.checkSIMDMemOp(&wasm.Instruction{Opcode: wasm.OpcodeSIMDPrefix, Sub: wasm.OpcodeSIMDV128Store32Lane, Lane: 4})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidLaneIdx, ce.Kind)
}
