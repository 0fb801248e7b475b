package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// resolveBlockType implements spec §4.4: a block type is empty ([] -> []),
// a single value type ([] -> [vt]), or a type index selecting a declared
// function type. An out-of-range type index fails InvalidFuncTypeIdx.
func (c *Checker) resolveBlockType(bt wasm.BlockType, oc wasm.Opcode, offset int) (in, out []wasm.ValType, err error) {
	switch bt.Kind {
	case wasm.BlockTypeEmpty:
		return nil, nil, nil
	case wasm.BlockTypeValue:
		return nil, []wasm.ValType{bt.ValType}, nil
	case wasm.BlockTypeFuncTypeIndex:
		ft, ok := c.env.TypeAt(bt.TypeIdx)
		if !ok {
			return nil, nil, newErr(KindInvalidFuncTypeIdx, oc, offset, "block type index %d out of range", bt.TypeIdx)
		}
		return ft.Params, ft.Results, nil
	}
	return nil, nil, newErr(KindInvalidFuncTypeIdx, oc, offset, "unrecognized block type kind %d", bt.Kind)
}
