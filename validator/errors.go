package validator

import (
	"fmt"

	"github.com/tetratelabs/wazero-validate/wasm"
)

// Kind classifies a validation failure so callers can branch on errors.Is/As
// instead of parsing messages.
type Kind int

const (
	KindInvalidFuncTypeIdx Kind = iota
	KindInvalidFuncIdx
	KindInvalidTableIdx
	KindInvalidMemoryIdx
	KindInvalidGlobalIdx
	KindInvalidLocalIdx
	KindInvalidLabelIdx
	KindInvalidDataIdx
	KindInvalidElemIdx
	KindInvalidLaneIdx
	KindInvalidRefIdx
	KindInvalidAlignment
	KindInvalidResultArity
	KindInvalidBrRefType
	KindInvalidUninitLocal
	KindImmutableGlobal
	KindTypeCheckFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidFuncTypeIdx:
		return "InvalidFuncTypeIdx"
	case KindInvalidFuncIdx:
		return "InvalidFuncIdx"
	case KindInvalidTableIdx:
		return "InvalidTableIdx"
	case KindInvalidMemoryIdx:
		return "InvalidMemoryIdx"
	case KindInvalidGlobalIdx:
		return "InvalidGlobalIdx"
	case KindInvalidLocalIdx:
		return "InvalidLocalIdx"
	case KindInvalidLabelIdx:
		return "InvalidLabelIdx"
	case KindInvalidDataIdx:
		return "InvalidDataIdx"
	case KindInvalidElemIdx:
		return "InvalidElemIdx"
	case KindInvalidLaneIdx:
		return "InvalidLaneIdx"
	case KindInvalidRefIdx:
		return "InvalidRefIdx"
	case KindInvalidAlignment:
		return "InvalidAlignment"
	case KindInvalidResultArity:
		return "InvalidResultArity"
	case KindInvalidBrRefType:
		return "InvalidBrRefType"
	case KindInvalidUninitLocal:
		return "InvalidUninitLocal"
	case KindImmutableGlobal:
		return "ImmutableGlobal"
	case KindTypeCheckFailed:
		return "TypeCheckFailed"
	}
	return "Unknown"
}

// CheckError is returned by Checker.Validate on the first failing instruction.
// It carries enough positional context for a caller to build a useful
// diagnostic without re-walking the instruction stream.
type CheckError struct {
	Kind    Kind
	Opcode  wasm.Opcode
	Offset  int
	Message string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s at offset %d (opcode %s): %s", e.Kind, e.Offset, wasm.InstructionName(e.Opcode), e.Message)
}

// Is reports whether target is the sentinel Err* value for e's Kind, so
// callers can write errors.Is(err, validator.ErrTypeCheckFailed).
func (e *CheckError) Is(target error) bool {
	sentinel, ok := target.(*CheckError)
	return ok && sentinel.Opcode == 0 && sentinel.Offset == 0 && sentinel.Message == "" && e.Kind == sentinel.Kind
}

var (
	ErrInvalidFuncTypeIdx  = &CheckError{Kind: KindInvalidFuncTypeIdx}
	ErrInvalidFuncIdx      = &CheckError{Kind: KindInvalidFuncIdx}
	ErrInvalidTableIdx     = &CheckError{Kind: KindInvalidTableIdx}
	ErrInvalidMemoryIdx    = &CheckError{Kind: KindInvalidMemoryIdx}
	ErrInvalidGlobalIdx    = &CheckError{Kind: KindInvalidGlobalIdx}
	ErrInvalidLocalIdx     = &CheckError{Kind: KindInvalidLocalIdx}
	ErrInvalidLabelIdx     = &CheckError{Kind: KindInvalidLabelIdx}
	ErrInvalidDataIdx      = &CheckError{Kind: KindInvalidDataIdx}
	ErrInvalidElemIdx      = &CheckError{Kind: KindInvalidElemIdx}
	ErrInvalidLaneIdx      = &CheckError{Kind: KindInvalidLaneIdx}
	ErrInvalidRefIdx       = &CheckError{Kind: KindInvalidRefIdx}
	ErrInvalidAlignment    = &CheckError{Kind: KindInvalidAlignment}
	ErrInvalidResultArity  = &CheckError{Kind: KindInvalidResultArity}
	ErrInvalidBrRefType    = &CheckError{Kind: KindInvalidBrRefType}
	ErrInvalidUninitLocal  = &CheckError{Kind: KindInvalidUninitLocal}
	ErrImmutableGlobal     = &CheckError{Kind: KindImmutableGlobal}
	ErrTypeCheckFailed     = &CheckError{Kind: KindTypeCheckFailed}
)

func newErr(kind Kind, oc wasm.Opcode, offset int, format string, args ...interface{}) *CheckError {
	return &CheckError{Kind: kind, Opcode: oc, Offset: offset, Message: fmt.Sprintf(format, args...)}
}
