package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// ModuleEnvironment is the accumulated, module-level state visible to the
// function currently being checked: declared types, functions, tables,
// memories, globals, data/element segments, and declared function
// references. It is populated by the module-level callers (AddType,
// AddFunc, ...) before any Checker.Validate call, and may then be shared
// read-only across concurrent Checkers validating different function
// bodies — see spec §5.
type ModuleEnvironment struct {
	types   []wasm.FunctionType
	funcs   []wasm.Index // funcs[i] is a type index
	tables  []wasm.TableType
	mems    []wasm.MemoryType
	globals []wasm.GlobalType
	datas   []wasm.DataSegmentType
	elems   []wasm.ElementSegmentType

	declaredRefs map[wasm.Index]struct{}
}

// NewModuleEnvironment returns an empty environment ready for AddType etc.
func NewModuleEnvironment() *ModuleEnvironment {
	return &ModuleEnvironment{declaredRefs: make(map[wasm.Index]struct{})}
}

// Reset clears all module-level state. validate.go's Checker.Reset does not
// call this implicitly: module-level state persists across function bodies
// per spec §3's lifecycle rules, so clearing it is always an explicit choice.
func (m *ModuleEnvironment) Reset() {
	m.types = nil
	m.funcs = nil
	m.tables = nil
	m.mems = nil
	m.globals = nil
	m.datas = nil
	m.elems = nil
	m.declaredRefs = make(map[wasm.Index]struct{})
}

func (m *ModuleEnvironment) AddType(t wasm.FunctionType) wasm.Index {
	m.types = append(m.types, t)
	return wasm.Index(len(m.types) - 1)
}

func (m *ModuleEnvironment) AddFunc(typeIdx wasm.Index) wasm.Index {
	m.funcs = append(m.funcs, typeIdx)
	return wasm.Index(len(m.funcs) - 1)
}

func (m *ModuleEnvironment) AddTable(t wasm.TableType) wasm.Index {
	m.tables = append(m.tables, t)
	return wasm.Index(len(m.tables) - 1)
}

func (m *ModuleEnvironment) AddMemory(t wasm.MemoryType) wasm.Index {
	m.mems = append(m.mems, t)
	return wasm.Index(len(m.mems) - 1)
}

func (m *ModuleEnvironment) AddGlobal(t wasm.GlobalType) wasm.Index {
	m.globals = append(m.globals, t)
	return wasm.Index(len(m.globals) - 1)
}

func (m *ModuleEnvironment) AddData(t wasm.DataSegmentType) wasm.Index {
	m.datas = append(m.datas, t)
	return wasm.Index(len(m.datas) - 1)
}

func (m *ModuleEnvironment) AddElem(t wasm.ElementSegmentType) wasm.Index {
	m.elems = append(m.elems, t)
	return wasm.Index(len(m.elems) - 1)
}

// AddRef records funcIdx as a declared function reference: spec §3's
// requirement that ref.func only ever names a function that also appeared
// in a global initializer, element segment, or export.
func (m *ModuleEnvironment) AddRef(funcIdx wasm.Index) {
	m.declaredRefs[funcIdx] = struct{}{}
}

func (m *ModuleEnvironment) isDeclaredRef(funcIdx wasm.Index) bool {
	_, ok := m.declaredRefs[funcIdx]
	return ok
}

func (m *ModuleEnvironment) TypeCount() int   { return len(m.types) }
func (m *ModuleEnvironment) FuncCount() int   { return len(m.funcs) }
func (m *ModuleEnvironment) TableCount() int  { return len(m.tables) }
func (m *ModuleEnvironment) MemoryCount() int { return len(m.mems) }
func (m *ModuleEnvironment) GlobalCount() int { return len(m.globals) }
func (m *ModuleEnvironment) DataCount() int   { return len(m.datas) }
func (m *ModuleEnvironment) ElemCount() int   { return len(m.elems) }

func (m *ModuleEnvironment) TypeAt(i wasm.Index) (wasm.FunctionType, bool) {
	if int(i) >= len(m.types) {
		return wasm.FunctionType{}, false
	}
	return m.types[i], true
}

func (m *ModuleEnvironment) FuncTypeIdx(funcIdx wasm.Index) (wasm.Index, bool) {
	if int(funcIdx) >= len(m.funcs) {
		return 0, false
	}
	return m.funcs[funcIdx], true
}

// FuncType resolves a function index all the way to its FunctionType.
func (m *ModuleEnvironment) FuncType(funcIdx wasm.Index) (wasm.FunctionType, bool) {
	typeIdx, ok := m.FuncTypeIdx(funcIdx)
	if !ok {
		return wasm.FunctionType{}, false
	}
	return m.TypeAt(typeIdx)
}

func (m *ModuleEnvironment) TableAt(i wasm.Index) (wasm.TableType, bool) {
	if int(i) >= len(m.tables) {
		return wasm.TableType{}, false
	}
	return m.tables[i], true
}

func (m *ModuleEnvironment) MemoryAt(i wasm.Index) (wasm.MemoryType, bool) {
	if int(i) >= len(m.mems) {
		return wasm.MemoryType{}, false
	}
	return m.mems[i], true
}

func (m *ModuleEnvironment) GlobalAt(i wasm.Index) (wasm.GlobalType, bool) {
	if int(i) >= len(m.globals) {
		return wasm.GlobalType{}, false
	}
	return m.globals[i], true
}

func (m *ModuleEnvironment) ElemAt(i wasm.Index) (wasm.ElementSegmentType, bool) {
	if int(i) >= len(m.elems) {
		return wasm.ElementSegmentType{}, false
	}
	return m.elems[i], true
}

func (m *ModuleEnvironment) DataIdxInBounds(i wasm.Index) bool { return int(i) < len(m.datas) }

// MatchType implements spec §4.1's match_type: numeric/vector match iff
// codes are equal; reference types match by nullability plus heap-type
// subtyping, where two concrete heap types recurse into their function
// types' params and results. Because the type section is pre-validated and
// acyclic at the structural level relevant here, that recursion terminates.
func (m *ModuleEnvironment) MatchType(expected, got wasm.ValType) bool {
	if expected.IsRefType() != got.IsRefType() {
		return false
	}
	if !expected.IsRefType() {
		return expected.Code == got.Code
	}
	if got.Ref.Nullable && !expected.Ref.Nullable {
		return false
	}
	return m.matchHeapType(expected.Ref.Heap, got.Ref.Heap)
}

func (m *ModuleEnvironment) matchHeapType(expected, got wasm.HeapType) bool {
	if expected.Code != wasm.HeapTypeConcrete && expected.Code == got.Code {
		return true
	}
	if expected.Code == wasm.HeapTypeFunc && got.Code == wasm.HeapTypeConcrete {
		return true
	}
	if expected.Code == wasm.HeapTypeConcrete && got.Code == wasm.HeapTypeConcrete {
		if expected.TypeIdx == got.TypeIdx {
			return true
		}
		et, eok := m.TypeAt(expected.TypeIdx)
		gt, gok := m.TypeAt(got.TypeIdx)
		if !eok || !gok {
			return false
		}
		return m.MatchTypes(et.Params, gt.Params) && m.MatchTypes(et.Results, gt.Results)
	}
	return false
}

// MatchTypes is the pointwise, equal-length form of MatchType used for
// signature and label-type comparisons.
func (m *ModuleEnvironment) MatchTypes(expected, got []wasm.ValType) bool {
	if len(expected) != len(got) {
		return false
	}
	for i := range expected {
		if !m.MatchType(expected[i], got[i]) {
			return false
		}
	}
	return true
}
