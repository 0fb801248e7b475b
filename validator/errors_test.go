package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func TestCheckError_ErrorsIsMatchesSentinel(t *testing.T) {
	err := newErr(KindInvalidLocalIdx, wasm.OpcodeLocalGet, 12, "local index %d out of range", 3)
	require.True(t, errors.Is(err, ErrInvalidLocalIdx))
	require.False(t, errors.Is(err, ErrInvalidGlobalIdx))
}

func TestCheckError_MessageIncludesOpcodeAndOffset(t *testing.T) {
	err := newErr(KindTypeCheckFailed, wasm.OpcodeI32Add, 7, "operand mismatch")
	require.Contains(t, err.Error(), "i32.add")
	require.Contains(t, err.Error(), "7")
	require.Contains(t, err.Error(), "operand mismatch")
}

func TestKind_StringCoversEveryConstant(t *testing.T) {
	kinds := []Kind{
		KindInvalidFuncTypeIdx, KindInvalidFuncIdx, KindInvalidTableIdx, KindInvalidMemoryIdx,
		KindInvalidGlobalIdx, KindInvalidLocalIdx, KindInvalidLabelIdx, KindInvalidDataIdx,
		KindInvalidElemIdx, KindInvalidLaneIdx, KindInvalidRefIdx, KindInvalidAlignment,
		KindInvalidResultArity, KindInvalidBrRefType, KindInvalidUninitLocal, KindImmutableGlobal,
		KindTypeCheckFailed,
	}
	for _, k := range kinds {
		require.NotEqual(t, "Unknown", k.String())
	}
}
