package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// VType is an operand-stack entry: either a concrete value type, or the
// distinguished Unknown polymorphic bottom pushed/popped under an
// unreachable control frame. Concrete is meaningless when Known is false.
type VType struct {
	Concrete wasm.ValType
	Known    bool
}

// Unknown is the polymorphic bottom value.
var Unknown = VType{}

// KnownType wraps a concrete value type as a VType.
func KnownType(t wasm.ValType) VType {
	return VType{Concrete: t, Known: true}
}

func (v VType) String() string {
	if !v.Known {
		return "unknown"
	}
	return v.Concrete.String()
}
