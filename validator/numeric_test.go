package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func TestCheckNumeric_ConstPushesOwnType(t *testing.T) {
	tests := []struct {
		name string
		oc   wasm.Opcode
		want wasm.ValType
	}{
		{"i32.const", wasm.OpcodeI32Const, wasm.I32},
		{"i64.const", wasm.OpcodeI64Const, wasm.I64},
		{"f32.const", wasm.OpcodeF32Const, wasm.F32},
		{"f64.const", wasm.OpcodeF64Const, wasm.F64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFramedChecker()
			err := c.checkNumeric(&wasm.Instruction{Opcode: tt.oc})
			require.NoError(t, err)
			require.Equal(t, 1, len(c.stack))
			require.Equal(t, tt.want, c.stack[0].Concrete)
		})
	}
}

func TestCheckNumeric_BinaryArithmetic(t *testing.T) {
	c := newFramedChecker()
	c.pushMany([]wasm.ValType{wasm.I32, wasm.I32})
	err := c.checkNumeric(&wasm.Instruction{Opcode: wasm.OpcodeI32Add})
	require.NoError(t, err)
	require.Equal(t, 1, len(c.stack))
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckNumeric_ComparisonProducesI32(t *testing.T) {
	c := newFramedChecker()
	c.pushMany([]wasm.ValType{wasm.F64, wasm.F64})
	err := c.checkNumeric(&wasm.Instruction{Opcode: wasm.OpcodeF64Lt})
	require.NoError(t, err)
	require.Equal(t, wasm.I32, c.stack[0].Concrete)
}

func TestCheckNumeric_ConversionSignature(t *testing.T) {
	c := newFramedChecker()
	c.push(wasm.I64)
	err := c.checkNumeric(&wasm.Instruction{Opcode: wasm.OpcodeF32ConvertI64S})
	require.NoError(t, err)
	require.Equal(t, wasm.F32, c.stack[0].Concrete)
}

func TestCheckNumeric_OperandMismatch(t *testing.T) {
	c := newFramedChecker()
	c.pushMany([]wasm.ValType{wasm.I32, wasm.F64})
	err := c.checkNumeric(&wasm.Instruction{Opcode: wasm.OpcodeI32Add})
	require.Error(t, err)
	var ce *CheckError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindTypeCheckFailed, ce.Kind)
}

func TestCheckNumeric_UnderflowOnEmptyStack(t *testing.T) {
	c := newFramedChecker()
	err := c.checkNumeric(&wasm.Instruction{Opcode: wasm.OpcodeI32Clz})
	require.Error(t, err)
}
