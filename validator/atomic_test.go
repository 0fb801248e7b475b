package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func TestCheckAtomic_LoadPushesBaseType(t *testing.T) {
	sub, ok := findAtomicOpcode("i32.atomic.load")
	require.True(t, ok)

	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.push(wasm.I32)

	err := c.checkAtomic(&wasm.Instruction{Opcode: wasm.OpcodeAtomicPrefix, Sub: sub, MemArg: wasm.MemArg{Align: 2}})
	require.NoError(t, err)
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckAtomic_CmpxchgNarrowWidth(t *testing.T) {
	sub, ok := findAtomicOpcode("i64.atomic.rmw16.cmpxchg_u")
	require.True(t, ok)

	env := NewModuleEnvironment()
	env.AddMemory(wasm.MemoryType{Min: 1})
	c := newFramedCheckerWithEnv(env)
	c.pushMany([]wasm.ValType{wasm.I32, wasm.I64, wasm.I64})

	err := c.checkAtomic(&wasm.Instruction{Opcode: wasm.OpcodeAtomicPrefix, Sub: sub, MemArg: wasm.MemArg{Align: 1}})
	require.NoError(t, err)
	require.Equal(t, wasm.I64, c.stack[0].Concrete)
}

func TestCheckAtomic_NotifyRequiresMemory(t *testing.T) {
	c := newFramedCheckerWithEnv(NewModuleEnvironment())
	c.pushMany([]wasm.ValType{wasm.I32, wasm.I32})
	err := c.checkAtomic(&wasm.Instruction{Opcode: wasm.OpcodeAtomicPrefix, Sub: wasm.OpcodeAtomicNotify})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindInvalidMemoryIdx, ce.Kind)
}

func TestCheckAtomic_FenceIsStackNeutral(t *testing.T) {
	c := newFramedChecker()
	err := c.checkAtomic(&wasm.Instruction{Opcode: wasm.OpcodeAtomicPrefix, Sub: wasm.OpcodeAtomicFence})
	require.NoError(t, err)
	require.Equal(t, 0, len(c.stack))
}
