package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wazero-validate/wasm"
)

func TestModuleEnvironment_FuncTypeResolution(t *testing.T) {
	env := NewModuleEnvironment()
	typeIdx := env.AddType(wasm.FunctionType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.I64}})
	funcIdx := env.AddFunc(typeIdx)

	ft, ok := env.FuncType(funcIdx)
	require.True(t, ok)
	require.Equal(t, []wasm.ValType{wasm.I32}, ft.Params)
	require.Equal(t, []wasm.ValType{wasm.I64}, ft.Results)

	_, ok = env.FuncType(funcIdx + 1)
	require.False(t, ok)
}

func TestModuleEnvironment_DeclaredRefs(t *testing.T) {
	env := NewModuleEnvironment()
	typeIdx := env.AddType(wasm.FunctionType{})
	funcIdx := env.AddFunc(typeIdx)

	require.False(t, env.isDeclaredRef(funcIdx))
	env.AddRef(funcIdx)
	require.True(t, env.isDeclaredRef(funcIdx))
}

func TestModuleEnvironment_MatchTypeNumeric(t *testing.T) {
	env := NewModuleEnvironment()
	require.True(t, env.MatchType(wasm.I32, wasm.I32))
	require.False(t, env.MatchType(wasm.I32, wasm.I64))
}

func TestModuleEnvironment_MatchTypeRefNullability(t *testing.T) {
	env := NewModuleEnvironment()
	nullableFunc := wasm.NewRefValType(true, wasm.FuncHeapType())
	nonNullFunc := wasm.NewRefValType(false, wasm.FuncHeapType())

	// a non-nullable value satisfies a nullable expectation, not vice versa.
	require.True(t, env.MatchType(nullableFunc, nonNullFunc))
	require.False(t, env.MatchType(nonNullFunc, nullableFunc))
}

func TestModuleEnvironment_MatchTypeAbstractAcceptsConcrete(t *testing.T) {
	env := NewModuleEnvironment()
	typeIdx := env.AddType(wasm.FunctionType{})
	concreteFunc := wasm.NewRefValType(false, wasm.ConcreteHeapType(typeIdx))
	genericFuncref := wasm.NewRefValType(false, wasm.FuncHeapType())

	require.True(t, env.MatchType(genericFuncref, concreteFunc))
	require.False(t, env.MatchType(concreteFunc, genericFuncref))
}

func TestModuleEnvironment_MatchTypeConcreteStructural(t *testing.T) {
	env := NewModuleEnvironment()
	sig := wasm.FunctionType{Params: []wasm.ValType{wasm.I32}, Results: []wasm.ValType{wasm.F64}}
	typeA := env.AddType(sig)
	typeB := env.AddType(sig)
	diffTypeC := env.AddType(wasm.FunctionType{Params: []wasm.ValType{wasm.I64}})

	refA := wasm.NewRefValType(false, wasm.ConcreteHeapType(typeA))
	refB := wasm.NewRefValType(false, wasm.ConcreteHeapType(typeB))
	refC := wasm.NewRefValType(false, wasm.ConcreteHeapType(diffTypeC))

	require.True(t, env.MatchType(refA, refB))
	require.False(t, env.MatchType(refA, refC))
}

func TestModuleEnvironment_MatchTypesLengthMismatch(t *testing.T) {
	env := NewModuleEnvironment()
	require.False(t, env.MatchTypes([]wasm.ValType{wasm.I32}, nil))
}
