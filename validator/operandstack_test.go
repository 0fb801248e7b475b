package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

// newFramedChecker returns a Checker with a single outer frame already
// pushed, so push/pop can be exercised without going through Validate.
func newFramedChecker() *Checker {
	c := New(NewModuleEnvironment())
	c.Reset(nil, nil, nil)
	c.pushCtrl(nil, nil, 0, ctrlOuter)
	return c
}

func TestOperandStack_PushPop(t *testing.T) {
	c := newFramedChecker()
	c.push(wasm.I32)
	c.push(wasm.F64)

	v, err := c.pop(wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.True(t, v.Known)
	require.Equal(t, wasm.F64, v.Concrete)

	v, err = c.pop(wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.Equal(t, wasm.I32, v.Concrete)
}

func TestOperandStack_UnderflowAtReachableFloor(t *testing.T) {
	c := newFramedChecker()
	_, err := c.pop(wasm.OpcodeNop, 0)
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindTypeCheckFailed, ce.Kind)
}

func TestOperandStack_UnreachableFloorPopsUnknownWithoutMutation(t *testing.T) {
	c := newFramedChecker()
	c.markUnreachable()

	v, err := c.pop(wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.False(t, v.Known)
	require.Equal(t, 0, len(c.stack))

	// a second pop at the same floor must behave identically, proving the
	// first pop did not consume anything.
	v, err = c.pop(wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.False(t, v.Known)
}

func TestOperandStack_PopExpectAcceptsUnknownVacuously(t *testing.T) {
	c := newFramedChecker()
	c.markUnreachable()
	got, err := c.popExpect(wasm.F32, wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.Equal(t, wasm.F32, got)
}

func TestOperandStack_PopExpectMismatch(t *testing.T) {
	c := newFramedChecker()
	c.push(wasm.I32)
	_, err := c.popExpect(wasm.I64, wasm.OpcodeNop, 0)
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindTypeCheckFailed, ce.Kind)
}

func TestOperandStack_PopManyReverseOrder(t *testing.T) {
	c := newFramedChecker()
	c.pushMany([]wasm.ValType{wasm.I32, wasm.I64})
	err := c.popMany([]wasm.ValType{wasm.I32, wasm.I64}, wasm.OpcodeNop, 0)
	require.NoError(t, err)
	require.Equal(t, 0, len(c.stack))
}
