package wasm

// Opcode is the binary opcode of an instruction in the primary (single-byte) opcode space.
// See also InstructionName.
type Opcode = byte

const (
	OpcodeUnreachable Opcode = 0x00
	OpcodeNop         Opcode = 0x01
	OpcodeBlock       Opcode = 0x02
	OpcodeLoop        Opcode = 0x03
	OpcodeIf          Opcode = 0x04
	OpcodeElse        Opcode = 0x05
	OpcodeEnd         Opcode = 0x0b

	OpcodeBr         Opcode = 0x0c
	OpcodeBrIf       Opcode = 0x0d
	OpcodeBrTable    Opcode = 0x0e
	OpcodeReturn     Opcode = 0x0f
	OpcodeCall       Opcode = 0x10
	OpcodeCallIndirect Opcode = 0x11

	// OpcodeReturnCall and OpcodeReturnCallIndirect are the tail-call proposal's opcodes.
	OpcodeReturnCall         Opcode = 0x12
	OpcodeReturnCallIndirect Opcode = 0x13

	// OpcodeCallRef and OpcodeReturnCallRef are from the function-references proposal.
	OpcodeCallRef       Opcode = 0x14
	OpcodeReturnCallRef Opcode = 0x15

	// OpcodeBrOnNull and OpcodeBrOnNonNull are from the function-references proposal.
	OpcodeBrOnNull    Opcode = 0xd5
	OpcodeBrOnNonNull Opcode = 0xd6

	// parametric instructions

	OpcodeDrop    Opcode = 0x1a
	OpcodeSelect  Opcode = 0x1b
	OpcodeSelectT Opcode = 0x1c

	// reference-type instructions

	OpcodeRefNull      Opcode = 0xd0
	OpcodeRefIsNull    Opcode = 0xd1
	OpcodeRefFunc      Opcode = 0xd2
	OpcodeRefAsNonNull Opcode = 0xd4

	// variable instructions

	OpcodeLocalGet  Opcode = 0x20
	OpcodeLocalSet  Opcode = 0x21
	OpcodeLocalTee  Opcode = 0x22
	OpcodeGlobalGet Opcode = 0x23
	OpcodeGlobalSet Opcode = 0x24

	// table instructions (MVP subset; bulk-memory table ops live in the misc space)

	OpcodeTableGet Opcode = 0x25
	OpcodeTableSet Opcode = 0x26

	// memory instructions

	OpcodeI32Load    Opcode = 0x28
	OpcodeI64Load    Opcode = 0x29
	OpcodeF32Load    Opcode = 0x2a
	OpcodeF64Load    Opcode = 0x2b
	OpcodeI32Load8S  Opcode = 0x2c
	OpcodeI32Load8U  Opcode = 0x2d
	OpcodeI32Load16S Opcode = 0x2e
	OpcodeI32Load16U Opcode = 0x2f
	OpcodeI64Load8S  Opcode = 0x30
	OpcodeI64Load8U  Opcode = 0x31
	OpcodeI64Load16S Opcode = 0x32
	OpcodeI64Load16U Opcode = 0x33
	OpcodeI64Load32S Opcode = 0x34
	OpcodeI64Load32U Opcode = 0x35
	OpcodeI32Store   Opcode = 0x36
	OpcodeI64Store   Opcode = 0x37
	OpcodeF32Store   Opcode = 0x38
	OpcodeF64Store   Opcode = 0x39
	OpcodeI32Store8  Opcode = 0x3a
	OpcodeI32Store16 Opcode = 0x3b
	OpcodeI64Store8  Opcode = 0x3c
	OpcodeI64Store16 Opcode = 0x3d
	OpcodeI64Store32 Opcode = 0x3e
	OpcodeMemorySize Opcode = 0x3f
	OpcodeMemoryGrow Opcode = 0x40

	// const instructions

	OpcodeI32Const Opcode = 0x41
	OpcodeI64Const Opcode = 0x42
	OpcodeF32Const Opcode = 0x43
	OpcodeF64Const Opcode = 0x44

	// numeric instructions (comparisons, arithmetic, conversions): the contiguous 0x45..0xbf
	// range is enumerated in numeric_opcodes.go, and validator/numeric.go builds the
	// (take, put) signature table keyed by those constants.

	OpcodeI32Extend8S  Opcode = 0xc0
	OpcodeI32Extend16S Opcode = 0xc1
	OpcodeI64Extend8S  Opcode = 0xc2
	OpcodeI64Extend16S Opcode = 0xc3
	OpcodeI64Extend32S Opcode = 0xc4

	// OpcodeMiscPrefix (0xFC) introduces a LEB128-encoded sub-opcode: saturating truncation,
	// bulk memory, and bulk table operations. See OpcodeMisc below.
	OpcodeMiscPrefix Opcode = 0xfc
	// OpcodeSIMDPrefix (0xFD) introduces a LEB128-encoded sub-opcode: all v128 instructions.
	// See OpcodeSIMD below.
	OpcodeSIMDPrefix Opcode = 0xfd
	// OpcodeAtomicPrefix (0xFE) introduces a LEB128-encoded sub-opcode: the threads proposal.
	// See OpcodeAtomic below.
	OpcodeAtomicPrefix Opcode = 0xfe
)

// OpcodeMisc is the sub-opcode following OpcodeMiscPrefix.
type OpcodeMisc = uint32

const (
	OpcodeMiscI32TruncSatF32S OpcodeMisc = 0
	OpcodeMiscI32TruncSatF32U OpcodeMisc = 1
	OpcodeMiscI32TruncSatF64S OpcodeMisc = 2
	OpcodeMiscI32TruncSatF64U OpcodeMisc = 3
	OpcodeMiscI64TruncSatF32S OpcodeMisc = 4
	OpcodeMiscI64TruncSatF32U OpcodeMisc = 5
	OpcodeMiscI64TruncSatF64S OpcodeMisc = 6
	OpcodeMiscI64TruncSatF64U OpcodeMisc = 7

	OpcodeMiscMemoryInit OpcodeMisc = 8
	OpcodeMiscDataDrop   OpcodeMisc = 9
	OpcodeMiscMemoryCopy OpcodeMisc = 10
	OpcodeMiscMemoryFill OpcodeMisc = 11

	OpcodeMiscTableInit OpcodeMisc = 12
	OpcodeMiscElemDrop  OpcodeMisc = 13
	OpcodeMiscTableCopy OpcodeMisc = 14
	OpcodeMiscTableGrow OpcodeMisc = 15
	OpcodeMiscTableSize OpcodeMisc = 16
	OpcodeMiscTableFill OpcodeMisc = 17
)

// OpcodeSIMD is the sub-opcode following OpcodeSIMDPrefix. Only the memory forms, v128.const and
// i8x16.shuffle are named constants below; validator/simd.go assigns the sub-opcodes of the
// remaining SIMD instructions itself, in a block above those constants, so their values do not
// follow the SIMD proposal's numbering.
type OpcodeSIMD = uint32

// OpcodeAtomic is the sub-opcode following OpcodeAtomicPrefix.
type OpcodeAtomic = uint32

// SIMD sub-opcodes, matching the WebAssembly SIMD proposal's assigned numbering
// (see https://webassembly.github.io/spec/core/appendix/index-instructions.html). Only the
// memory and shuffle forms need named constants here: every other SIMD opcode's signature is
// generated mechanically by validator/simd.go from its lane shape (see buildSIMDSignatures there).
const (
	OpcodeSIMDV128Load       OpcodeSIMD = 0
	OpcodeSIMDV128Load8x8S   OpcodeSIMD = 1
	OpcodeSIMDV128Load8x8U   OpcodeSIMD = 2
	OpcodeSIMDV128Load16x4S  OpcodeSIMD = 3
	OpcodeSIMDV128Load16x4U  OpcodeSIMD = 4
	OpcodeSIMDV128Load32x2S  OpcodeSIMD = 5
	OpcodeSIMDV128Load32x2U  OpcodeSIMD = 6
	OpcodeSIMDV128Load8Splat  OpcodeSIMD = 7
	OpcodeSIMDV128Load16Splat OpcodeSIMD = 8
	OpcodeSIMDV128Load32Splat OpcodeSIMD = 9
	OpcodeSIMDV128Load64Splat OpcodeSIMD = 10
	OpcodeSIMDV128Store       OpcodeSIMD = 11
	OpcodeSIMDV128Const       OpcodeSIMD = 12
	OpcodeSIMDI8x16Shuffle    OpcodeSIMD = 13

	OpcodeSIMDV128Load32Zero OpcodeSIMD = 92
	OpcodeSIMDV128Load64Zero OpcodeSIMD = 93
	OpcodeSIMDV128Load8Lane  OpcodeSIMD = 84
	OpcodeSIMDV128Load16Lane OpcodeSIMD = 85
	OpcodeSIMDV128Load32Lane OpcodeSIMD = 86
	OpcodeSIMDV128Load64Lane OpcodeSIMD = 87
	OpcodeSIMDV128Store8Lane  OpcodeSIMD = 88
	OpcodeSIMDV128Store16Lane OpcodeSIMD = 89
	OpcodeSIMDV128Store32Lane OpcodeSIMD = 90
	OpcodeSIMDV128Store64Lane OpcodeSIMD = 91
)

// Atomic sub-opcodes for the notify/wait/fence forms; per-width load/store/RMW/cmpxchg opcodes
// are generated mechanically by validator/atomic.go from (base type, width, op) tuples rather than
// named one by one here — see the bases and rmwOps lists in its init.
const (
	OpcodeAtomicNotify    OpcodeAtomic = 0
	OpcodeAtomicWait32    OpcodeAtomic = 1
	OpcodeAtomicWait64    OpcodeAtomic = 2
	OpcodeAtomicFence     OpcodeAtomic = 3

	// OpcodeAtomicRMWBase is the first opcode in the per-width load/store/RMW/cmpxchg block;
	// validator/atomic.go assigns every generated opcode a value >= this base.
	OpcodeAtomicRMWBase OpcodeAtomic = 0x10
)

// BlockTypeKind classifies a resolved block type immediate.
type BlockTypeKind byte

const (
	BlockTypeEmpty BlockTypeKind = iota
	BlockTypeValue
	BlockTypeFuncTypeIndex
)

// BlockType is the decoded immediate of block/loop/if.
type BlockType struct {
	Kind     BlockTypeKind
	ValType  ValType // valid when Kind == BlockTypeValue
	TypeIdx  uint32  // valid when Kind == BlockTypeFuncTypeIndex
}

// MemArg is the alignment/offset immediate of a load or store instruction.
type MemArg struct {
	Align uint32 // encoded alignment exponent, i.e. actual alignment is 1<<Align
	Offset uint32
	MemoryIndex uint32
}

// Instruction is the decoded view the checker consumes and partially writes back to. A real
// decoder owns construction; the checker only reads the opcode/immediate fields below and
// writes the StackErase*/PCOffset/StackOffset fields on control-flow and variable instructions.
type Instruction struct {
	Opcode Opcode
	// Sub is the LEB128 sub-opcode when Opcode is one of the *Prefix opcodes, else unused.
	Sub uint32
	// Offset is this instruction's source/byte offset, used only for error reporting.
	Offset int

	// BlockType is valid for Block/Loop/If.
	BlockType BlockType

	// TargetIndex is the primary index operand: label depth for branches, function/global/
	// local/table/memory/data/element index depending on opcode.
	TargetIndex uint32
	// SourceIndex is the secondary index operand, used by call_indirect (table), table.init/
	// table.copy (source table or element segment), and memory.copy (source memory).
	SourceIndex uint32

	// Labels is the full label list for br_table: Labels[len(Labels)-1] is the default label.
	Labels []uint32

	// ValTypeList carries select's type annotation (exactly one entry when valid).
	ValTypeList []ValType

	// MemArg is valid for load/store/atomic instructions.
	MemArg MemArg
	// Lane is the lane index immediate for SIMD extract/replace/*_lane instructions.
	Lane uint32
	// V128 is the 128-bit immediate for v128.const and i8x16.shuffle, big-endian lane order.
	V128 [16]byte

	// RefValType carries ref.null's heap-type immediate.
	RefValType ValType

	// MatchIndex is filled in by the decoder for Block/If: the instruction-
	// view index of the matching End (used as that frame's jump anchor). For
	// Loop, the frame's jump anchor is the loop instruction's own index, so
	// MatchIndex is unused there. Ignored on every other opcode.
	MatchIndex int
	// ElseIndex is filled in by the decoder for If only: the instruction-view
	// index of its Else arm, or equal to MatchIndex when the if has no else
	// (its implicit false arm is the identity, per spec §4.5).
	ElseIndex int

	// --- fields written by the checker ---

	// StackEraseBegin and StackEraseEnd delimit, in operand-stack slots counted down from the
	// top of the stack at the point this branch executes, the region the executor must erase
	// before jumping: the top StackEraseEnd slots (the label's arity) are kept, and the slots
	// from there down to StackEraseBegin, which reaches the target frame's floor, are
	// erased. See spec §6. Valid for every
	// branch opcode except br_table, which records one entry per label in LabelTable instead.
	StackEraseBegin uint32
	StackEraseEnd   uint32
	// PCOffset is jump_anchor_address - this_instruction_address, in instruction units. Same
	// br_table exception as StackEraseBegin/StackEraseEnd above.
	PCOffset int32
	// StackOffset is written for local.get/local.set/local.tee: |operand_stack| + (|locals| - local_index).
	StackOffset uint32

	// LabelTable is written for br_table only: one entry per element of Labels, since each
	// label can target a different control-stack depth and jump anchor. StackEraseBegin/
	// StackEraseEnd/PCOffset above are left zero for br_table; use LabelTable instead.
	LabelTable []BranchTarget
}

// BranchTarget is one br_table label's resolved jump metadata, mirroring the single-target
// fields on Instruction (StackEraseBegin, StackEraseEnd, PCOffset) for opcodes that only ever
// have one target.
type BranchTarget struct {
	StackEraseBegin uint32
	StackEraseEnd   uint32
	PCOffset        int32
}

// InstructionView is a contiguous, indexable sequence of decoded instructions, as handed to the
// checker by a decoder. It is a plain slice because the checker only ever walks it in order and
// writes back into individual elements by index; a decoder is free to back this with whatever
// storage it likes as long as it can produce this view.
type InstructionView = []Instruction
