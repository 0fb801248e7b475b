package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// push implements spec §4.2's push: append a known value type.
func (c *Checker) push(t wasm.ValType) {
	c.stack = append(c.stack, KnownType(t))
}

// pushUnknown pushes the polymorphic bottom.
func (c *Checker) pushUnknown() {
	c.stack = append(c.stack, Unknown)
}

// pushMany implements push_many: push in order.
func (c *Checker) pushMany(ts []wasm.ValType) {
	for _, t := range ts {
		c.push(t)
	}
}

// pop implements spec §4.2's pop: return the top entry, except when the
// stack is already at the current frame's floor — there it returns Unknown
// if the frame is polymorphic, or fails with a stack-underflow
// TypeCheckFailed otherwise. A pop at the floor of an unreachable frame
// must not mutate the stack, since Unknown is conceptually inexhaustible.
func (c *Checker) pop(oc wasm.Opcode, offset int) (VType, error) {
	f := c.curFrame()
	if len(c.stack) == f.Height {
		if f.Unreachable {
			return Unknown, nil
		}
		return VType{}, newErr(KindTypeCheckFailed, oc, offset, "operand stack underflow")
	}
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return v, nil
}

// popExpect implements spec §4.2's pop_expect: pop and require the result
// to match t, treating a popped Unknown as vacuously matching (and
// returning t rather than Unknown, so callers get a concrete type back).
func (c *Checker) popExpect(t wasm.ValType, oc wasm.Opcode, offset int) (wasm.ValType, error) {
	got, err := c.pop(oc, offset)
	if err != nil {
		return wasm.ValType{}, err
	}
	if !got.Known {
		return t, nil
	}
	if !c.env.MatchType(t, got.Concrete) {
		return wasm.ValType{}, newErr(KindTypeCheckFailed, oc, offset,
			"expected type %s, got %s", t, got.Concrete)
	}
	return t, nil
}

// popMany implements spec §4.2's pop_many: pop in reverse order of ts.
func (c *Checker) popMany(ts []wasm.ValType, oc wasm.Opcode, offset int) error {
	for i := len(ts) - 1; i >= 0; i-- {
		if _, err := c.popExpect(ts[i], oc, offset); err != nil {
			return err
		}
	}
	return nil
}

// popAny pops any single entry regardless of type, used by drop and
// ref.is_null's reference-typed pop.
func (c *Checker) popAny(oc wasm.Opcode, offset int) (VType, error) {
	return c.pop(oc, offset)
}
