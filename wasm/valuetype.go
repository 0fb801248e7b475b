// Package wasm holds the value-type model and instruction-view contract shared
// between a WebAssembly decoder and the validator package. It deliberately
// excludes anything related to decoding, execution, or instantiation: see
// github.com/tetratelabs/wazero-validate/validator for the form checker.
package wasm

import "fmt"

// ValueType classifies a value on the WebAssembly operand stack.
//
// Note: This is a type alias, not a defined type, for the same reason the
// teacher's api.ValueType is one: it is the binary encoding of the type, so
// aliasing avoids conversions at decode boundaries.
// See https://www.w3.org/TR/wasm-core-2/#value-types%E2%91%A0
type ValueType = byte

const (
	ValueTypeI32 ValueType = 0x7f
	ValueTypeI64 ValueType = 0x7e
	ValueTypeF32 ValueType = 0x7d
	ValueTypeF64 ValueType = 0x7c
	ValueTypeV128 ValueType = 0x7b

	// ValueTypeFuncref and ValueTypeExternref are the Code values NewRefValType stores in a
	// reference ValType (funcref for func and concrete heap types, externref for extern).
	// Prefer NewRefValType over building a reference ValType from these codes by hand.
	ValueTypeFuncref   ValueType = 0x70
	ValueTypeExternref ValueType = 0x6f
)

func isNumericOrVector(code byte) bool {
	switch code {
	case ValueTypeI32, ValueTypeI64, ValueTypeF32, ValueTypeF64, ValueTypeV128:
		return true
	}
	return false
}

// HeapTypeCode classifies the heap a reference type points into.
type HeapTypeCode byte

const (
	// HeapTypeFunc is the abstract heap type for funcref: any function type.
	HeapTypeFunc HeapTypeCode = iota
	// HeapTypeExtern is the abstract heap type for externref: opaque host values.
	HeapTypeExtern
	// HeapTypeConcrete means the reference is to a specific entry in the module's type section.
	HeapTypeConcrete
)

// HeapType is either an abstract code or, when Code == HeapTypeConcrete, a concrete type index.
type HeapType struct {
	Code     HeapTypeCode
	TypeIdx  uint32
}

func FuncHeapType() HeapType   { return HeapType{Code: HeapTypeFunc} }
func ExternHeapType() HeapType { return HeapType{Code: HeapTypeExtern} }
func ConcreteHeapType(typeIdx uint32) HeapType {
	return HeapType{Code: HeapTypeConcrete, TypeIdx: typeIdx}
}

func (h HeapType) String() string {
	switch h.Code {
	case HeapTypeFunc:
		return "func"
	case HeapTypeExtern:
		return "extern"
	case HeapTypeConcrete:
		return fmt.Sprintf("type#%d", h.TypeIdx)
	}
	return "unknown"
}

// ValType is the full value type: a numeric/vector code, or a reference type.
//
// Note: unlike ValueType, ValType is a struct so a reference can carry
// nullability and a heap type alongside the 0x7b..0x7f numeric/vector codes.
type ValType struct {
	// Code is one of the ValueType numeric/vector constants, or a reference
	// marker (ValueTypeFuncref/ValueTypeExternref) when Ref is set.
	Code byte
	// Ref is non-nil when this ValType is a reference type.
	Ref *RefType
}

// RefType carries the nullability and heap type of a reference ValType.
type RefType struct {
	Nullable bool
	Heap     HeapType
}

// NewNumericValType builds a non-reference ValType from a numeric/vector ValueType code.
func NewNumericValType(code byte) ValType {
	if !isNumericOrVector(code) {
		panic(fmt.Sprintf("wasm: %#x is not a numeric or vector value type", code))
	}
	return ValType{Code: code}
}

// NewRefValType builds a reference ValType.
func NewRefValType(nullable bool, heap HeapType) ValType {
	code := ValueTypeExternref
	if heap.Code == HeapTypeFunc || heap.Code == HeapTypeConcrete {
		code = ValueTypeFuncref
	}
	return ValType{Code: code, Ref: &RefType{Nullable: nullable, Heap: heap}}
}

var (
	I32 = NewNumericValType(ValueTypeI32)
	I64 = NewNumericValType(ValueTypeI64)
	F32 = NewNumericValType(ValueTypeF32)
	F64 = NewNumericValType(ValueTypeF64)
	V128 = NewNumericValType(ValueTypeV128)
)

// IsRefType reports whether v is a reference type.
func (v ValType) IsRefType() bool { return v.Ref != nil }

// IsNumeric reports whether v is one of the four scalar numeric types.
func (v ValType) IsNumeric() bool {
	return v.Ref == nil && (v.Code == ValueTypeI32 || v.Code == ValueTypeI64 || v.Code == ValueTypeF32 || v.Code == ValueTypeF64)
}

// IsDefaultable reports whether v has a zero value: every numeric, vector, and
// nullable reference type is defaultable; non-nullable references are not.
func (v ValType) IsDefaultable() bool {
	if v.Ref == nil {
		return true
	}
	return v.Ref.Nullable
}

// AsNonNull returns v with its reference forced non-nullable. Panics if v is not a reference type.
func (v ValType) AsNonNull() ValType {
	if v.Ref == nil {
		panic("wasm: AsNonNull on non-reference ValType")
	}
	return NewRefValType(false, v.Ref.Heap)
}

// AsNullable returns v with its reference forced nullable. Panics if v is not a reference type.
func (v ValType) AsNullable() ValType {
	if v.Ref == nil {
		panic("wasm: AsNullable on non-reference ValType")
	}
	return NewRefValType(true, v.Ref.Heap)
}

func (v ValType) String() string {
	if v.Ref == nil {
		switch v.Code {
		case ValueTypeI32:
			return "i32"
		case ValueTypeI64:
			return "i64"
		case ValueTypeF32:
			return "f32"
		case ValueTypeF64:
			return "f64"
		case ValueTypeV128:
			return "v128"
		}
		return fmt.Sprintf("%#x", v.Code)
	}
	null := ""
	if v.Ref.Nullable {
		null = " null"
	}
	return fmt.Sprintf("(ref%s %s)", null, v.Ref.Heap)
}

// Equal reports structural equality (not subtyping — see validator's ModuleEnvironment.MatchType for that).
func (v ValType) Equal(o ValType) bool {
	if v.Ref == nil || o.Ref == nil {
		return v.Ref == nil && o.Ref == nil && v.Code == o.Code
	}
	return v.Ref.Nullable == o.Ref.Nullable && v.Ref.Heap == o.Ref.Heap
}

// ValTypesEqual is the pointwise Equal check used for FunctionType comparisons.
func ValTypesEqual(a, b []ValType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
