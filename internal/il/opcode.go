package il

import "fmt"

// Opcode identifies an instruction. Opcodes are grouped into ranges by
// category; the operand kind each opcode carries is fixed (see OperandKindOf).
type Opcode uint8

const (
	// Miscellaneous (0x00-0x0F)

	OpNop Opcode = 0x00
	OpDup Opcode = 0x01
	OpPop Opcode = 0x02

	// Constants (0x10-0x1F)

	OpLdcI   Opcode = 0x10 // push integer literal
	OpLdcR   Opcode = 0x11 // push float literal
	OpLdstr  Opcode = 0x12 // push string literal
	OpLdnull Opcode = 0x13 // push null reference

	// Arguments and locals (0x20-0x2F)

	OpLdarg  Opcode = 0x20 // push argument by index
	OpStarg  Opcode = 0x21 // pop into argument slot
	OpLdloc  Opcode = 0x22 // push local slot
	OpStloc  Opcode = 0x23 // pop into local slot
	OpLdloca Opcode = 0x24 // push address of local slot

	// Fields (0x30-0x3F)

	OpLdfld  Opcode = 0x30 // push instance field
	OpStfld  Opcode = 0x31 // pop into instance field
	OpLdsfld Opcode = 0x32 // push static field
	OpStsfld Opcode = 0x33 // pop into static field

	// Calls and object model (0x40-0x4F)

	OpCall     Opcode = 0x40 // direct call
	OpCallvirt Opcode = 0x41 // virtual call
	OpNewobj   Opcode = 0x42 // allocate and call constructor
	OpRet      Opcode = 0x43 // return from method

	// Branches (0x50-0x5F)

	OpBr      Opcode = 0x50 // unconditional branch
	OpBrtrue  Opcode = 0x51 // branch when truthy
	OpBrfalse Opcode = 0x52 // branch when falsy
	OpBeq     Opcode = 0x53 // branch when equal
	OpBne     Opcode = 0x54 // branch when not equal
	OpBlt     Opcode = 0x55 // branch when less
	OpBgt     Opcode = 0x56 // branch when greater
	OpSwitch  Opcode = 0x57 // jump table

	// Arithmetic and logic (0x60-0x6F)

	OpAdd Opcode = 0x60
	OpSub Opcode = 0x61
	OpMul Opcode = 0x62
	OpDiv Opcode = 0x63
	OpRem Opcode = 0x64
	OpNeg Opcode = 0x65
	OpAnd Opcode = 0x66
	OpOr  Opcode = 0x67
	OpXor Opcode = 0x68
	OpNot Opcode = 0x69
	OpShl Opcode = 0x6A
	OpShr Opcode = 0x6B
	OpCeq Opcode = 0x6C
	OpClt Opcode = 0x6D
	OpCgt Opcode = 0x6E

	// Exception machinery (0x70-0x7F)

	OpThrow      Opcode = 0x70
	OpRethrow    Opcode = 0x71
	OpLeave      Opcode = 0x72 // exit a protected region
	OpEndFinally Opcode = 0x73
	OpEndFilter  Opcode = 0x74

	// Conversions (0x80-0x8F)

	OpConvI Opcode = 0x80
	OpConvR Opcode = 0x81

	// Type references (0x90-0x9F)

	OpNewarr   Opcode = 0x90 // allocate array of element type
	OpCastcls  Opcode = 0x91 // checked cast
	OpIsinst   Opcode = 0x92 // type test
	OpSizeofTy Opcode = 0x93 // size of a value shape
)

var opcodeNames = map[Opcode]string{
	OpNop: "nop", OpDup: "dup", OpPop: "pop",
	OpLdcI: "ldc.i", OpLdcR: "ldc.r", OpLdstr: "ldstr", OpLdnull: "ldnull",
	OpLdarg: "ldarg", OpStarg: "starg", OpLdloc: "ldloc", OpStloc: "stloc", OpLdloca: "ldloca",
	OpLdfld: "ldfld", OpStfld: "stfld", OpLdsfld: "ldsfld", OpStsfld: "stsfld",
	OpCall: "call", OpCallvirt: "callvirt", OpNewobj: "newobj", OpRet: "ret",
	OpBr: "br", OpBrtrue: "brtrue", OpBrfalse: "brfalse",
	OpBeq: "beq", OpBne: "bne", OpBlt: "blt", OpBgt: "bgt", OpSwitch: "switch",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpRem: "rem", OpNeg: "neg",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpNot: "not", OpShl: "shl", OpShr: "shr",
	OpCeq: "ceq", OpClt: "clt", OpCgt: "cgt",
	OpThrow: "throw", OpRethrow: "rethrow", OpLeave: "leave",
	OpEndFinally: "endfinally", OpEndFilter: "endfilter",
	OpConvI: "conv.i", OpConvR: "conv.r",
	OpNewarr: "newarr", OpCastcls: "castclass", OpIsinst: "isinst", OpSizeofTy: "sizeof",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return fmt.Sprintf("op<0x%02X>", uint8(op))
}

// OperandKindOf returns the operand kind an opcode carries.
func OperandKindOf(op Opcode) OperandKind {
	switch op {
	case OpLdcI:
		return OperandInt
	case OpLdcR:
		return OperandFloat
	case OpLdstr:
		return OperandString
	case OpLdarg, OpStarg, OpLdloc, OpStloc, OpLdloca:
		return OperandLocal
	case OpLdfld, OpStfld, OpLdsfld, OpStsfld:
		return OperandField
	case OpCall, OpCallvirt, OpNewobj:
		return OperandMethod
	case OpBr, OpBrtrue, OpBrfalse, OpBeq, OpBne, OpBlt, OpBgt, OpLeave:
		return OperandTarget
	case OpSwitch:
		return OperandTargets
	case OpNewarr, OpCastcls, OpIsinst, OpSizeofTy:
		return OperandType
	default:
		return OperandNone
	}
}

// IsBranch reports whether the opcode carries one or more branch targets.
func (op Opcode) IsBranch() bool {
	k := OperandKindOf(op)
	return k == OperandTarget || k == OperandTargets
}
