package wasm

import "fmt"

// Index is a position in one of the module's index spaces (types, funcs, tables, ...).
//
// See https://www.w3.org/TR/wasm-core-1/#binary-index
type Index = uint32

// FunctionType is a possibly empty function signature.
//
// See https://www.w3.org/TR/wasm-core-1/#function-types%E2%91%A0
type FunctionType struct {
	Params  []ValType
	Results []ValType
}

func (t *FunctionType) String() (ret string) {
	for _, p := range t.Params {
		ret += p.String()
	}
	if len(t.Params) == 0 {
		ret += "null"
	}
	ret += "_"
	for _, r := range t.Results {
		ret += r.String()
	}
	if len(t.Results) == 0 {
		ret += "null"
	}
	return
}

// Limits bounds a table or memory's size in units specific to the instance (pages for memory,
// elements for tables).
type Limits struct {
	Min uint32
	Max *uint32
}

// TableType describes one table declared, imported, or otherwise visible to the function being checked.
type TableType struct {
	ElemType ValType
	Limits   Limits
}

// MemoryType is a Limits in units of 64KiB pages. WebAssembly 1.0 allows at most one memory, but
// this repository's module environment stores every declared memory; validation only checks a
// memory index against how many were declared and never inspects the limits.
type MemoryType = Limits

// GlobalMutability distinguishes const globals from mutable ones.
type GlobalMutability byte

const (
	GlobalConst GlobalMutability = iota
	GlobalVar
)

// GlobalType describes a global's value type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable GlobalMutability
}

// DataSegmentType is an opaque marker for a data segment: validation only ever needs to know how
// many exist, not what they contain.
type DataSegmentType struct{}

// ElementSegmentType describes the reference type carried by an element segment, used to check
// table.init against the target table's element type (elem.drop only bounds-checks the index).
type ElementSegmentType struct {
	ElemType ValType
}

func (l Limits) String() string {
	if l.Max == nil {
		return fmt.Sprintf("[%d, ?]", l.Min)
	}
	return fmt.Sprintf("[%d, %d]", l.Min, *l.Max)
}
