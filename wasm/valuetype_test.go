package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValType_IsDefaultable(t *testing.T) {
	require.True(t, I32.IsDefaultable())
	require.True(t, NewRefValType(true, FuncHeapType()).IsDefaultable())
	require.False(t, NewRefValType(false, FuncHeapType()).IsDefaultable())
}

func TestValType_IsNumericExcludesV128(t *testing.T) {
	require.True(t, I32.IsNumeric())
	require.False(t, V128.IsNumeric())
	require.False(t, NewRefValType(true, ExternHeapType()).IsNumeric())
}

func TestValType_AsNonNullAndAsNullableRoundTrip(t *testing.T) {
	nullable := NewRefValType(true, ConcreteHeapType(3))
	nonNull := nullable.AsNonNull()
	require.False(t, nonNull.Ref.Nullable)
	require.True(t, nonNull.AsNullable().Equal(nullable))
}

func TestValType_Equal(t *testing.T) {
	a := NewRefValType(true, ConcreteHeapType(1))
	b := NewRefValType(true, ConcreteHeapType(1))
	c := NewRefValType(true, ConcreteHeapType(2))
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(I32))
}

func TestValTypesEqual_LengthMismatch(t *testing.T) {
	require.False(t, ValTypesEqual([]ValType{I32}, nil))
}

func TestNewNumericValType_PanicsOnReferenceCode(t *testing.T) {
	require.Panics(t, func() { NewNumericValType(ValueTypeFuncref) })
}

func TestHeapType_String(t *testing.T) {
	require.Equal(t, "func", FuncHeapType().String())
	require.Equal(t, "extern", ExternHeapType().String())
	require.Equal(t, "type#5", ConcreteHeapType(5).String())
}
