package validator

import "github.com/tetratelabs/wazero-validate/wasm"

// Local is one local variable slot (including parameters, which occupy the
// first len(params) indices): its declared type and whether it currently
// holds an initialized value.
type Local struct {
	Type   wasm.ValType
	IsInit bool
}

// AddLocal appends one local of type t after Reset (Reset replaces the whole
// local list, so locals added before it are discarded). A defaultable-typed
// local begins initialized; a non-defaultable reference local begins
// uninitialized and requires local.set/local.tee before its first local.get,
// per spec §3. Parameters are declared through Reset, which marks them
// initialized.
func (c *Checker) AddLocal(t wasm.ValType) {
	c.locals = append(c.locals, Local{Type: t, IsInit: t.IsDefaultable()})
}

// LocalCount reports the number of declared locals (including parameters,
// when the caller declares those as locals too via AddLocal).
func (c *Checker) LocalCount() int { return len(c.locals) }

// markLocalInit flips a local to initialized and appends it to the
// append-only log only on a false -> true transition, so popCtrl's revert
// doesn't double-clear locals that were already initialized when the frame
// opened.
func (c *Checker) markLocalInit(idx wasm.Index) {
	if c.locals[idx].IsInit {
		return
	}
	c.locals[idx].IsInit = true
	c.localInitLog = append(c.localInitLog, idx)
}

// revertLocalInit implements the local-init half of spec §4.3's pop_ctrl:
// every local logged since watermark reverts to uninitialized, then the log
// is truncated back to watermark. The watermark scheme avoids a per-local
// stack of scopes: it matches "the set of locals initialized since this
// block started" directly.
func (c *Checker) revertLocalInit(watermark int) {
	for i := len(c.localInitLog) - 1; i >= watermark; i-- {
		c.locals[c.localInitLog[i]].IsInit = false
	}
	c.localInitLog = c.localInitLog[:watermark]
}
