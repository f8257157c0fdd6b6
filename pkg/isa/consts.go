package isa

// Register numbering follows the standard MIPS o32 calling convention.
// These are the only names the monitor and function-discovery passes
// need to recognise by role rather than by raw index.
const (
	RZero = 0
	RA0   = 4
	RA1   = 5
	RA2   = 6
	RA3   = 7
	RV0   = 2
	RV1   = 3
	RSP   = 29
	RRA   = 31
)

// Primary opcode field (bits 31:26).
const (
	OpSpecial  = 0x00 // R-type
	OpRegImm   = 0x01 // bltz/bgez family, rt-selected
	OpJ        = 0x02
	OpJal      = 0x03
	OpBeq      = 0x04
	OpBne      = 0x05
	OpBlez     = 0x06
	OpBgtz     = 0x07
	OpAddi     = 0x08
	OpAddiu    = 0x09
	OpSlti     = 0x0a
	OpSltiu    = 0x0b
	OpAndi     = 0x0c
	OpOri      = 0x0d
	OpXori     = 0x0e
	OpLui      = 0x0f
	OpCop0     = 0x10
	OpCop1     = 0x11
	OpCop2     = 0x12
	OpCop1x    = 0x13
	OpBeql     = 0x14
	OpBnel     = 0x15
	OpBlezl    = 0x16
	OpBgtzl    = 0x17
	OpSpecial2 = 0x1c
	OpJalx     = 0x1d
	OpSpecial3 = 0x1f
	OpLb       = 0x20
	OpLh       = 0x21
	OpLwl      = 0x22
	OpLw       = 0x23
	OpLbu      = 0x24
	OpLhu      = 0x25
	OpLwr      = 0x26
	OpSb       = 0x28
	OpSh       = 0x29
	OpSwl      = 0x2a
	OpSw       = 0x2b
	OpSwr      = 0x2e
	OpCache    = 0x2f
	OpLl       = 0x30
	OpLwc1     = 0x31
	OpLdc1     = 0x35
	OpSc       = 0x38
	OpSwc1     = 0x39
	OpSdc1     = 0x3d
)

// R-type funct field (OpSpecial, bits 5:0).
const (
	FnSll     = 0x00
	FnSrl     = 0x02
	FnSra     = 0x03
	FnSllv    = 0x04
	FnSrlv    = 0x06
	FnSrav    = 0x07
	FnJr      = 0x08
	FnJalr    = 0x09
	FnMovz    = 0x0a
	FnMovn    = 0x0b
	FnSyscall = 0x0c
	FnBreak   = 0x0d
	FnSync    = 0x0f
	FnMfhi    = 0x10
	FnMthi    = 0x11
	FnMflo    = 0x12
	FnMtlo    = 0x13
	FnMult    = 0x18
	FnMultu   = 0x19
	FnDiv     = 0x1a
	FnDivu    = 0x1b
	FnAdd     = 0x20
	FnAddu    = 0x21
	FnSub     = 0x22
	FnSubu    = 0x23
	FnAnd     = 0x24
	FnOr      = 0x25
	FnXor     = 0x26
	FnNor     = 0x27
	FnSlt     = 0x2a
	FnSltu    = 0x2b
	FnTeq     = 0x34
)

// rt field when opcode==OpRegImm.
const (
	RtBltz  = 0x00
	RtBgez  = 0x01
	RtBltzl = 0x02
	RtBgezl = 0x03
)

// OpSpecial2 funct field.
const (
	Fn2Madd  = 0x00
	Fn2Maddu = 0x01
	Fn2Mul   = 0x02
	Fn2Msub  = 0x04
	Fn2Clz   = 0x20
)

// OpSpecial3 funct field.
const (
	Fn3Ext = 0x00
	Fn3Ins = 0x04
	Fn3Bshfl = 0x20 // seb/seh selected by shamt
)

const (
	ShamtSeb = 0x10
	ShamtSeh = 0x18
)

// Coprocessor-0 move sub-opcode (rs field of a Cop0 word).
const (
	Cop0Mfc0 = 0x00
	Cop0Mtc0 = 0x04
)

// Coprocessor-1 rs/fmt field selecting the sub-class of a Cop1 word.
const (
	Cop1Mfc1  = 0x00
	Cop1Cfc1  = 0x02
	Cop1Mtc1  = 0x04
	Cop1Ctc1  = 0x06
	Cop1Bc1   = 0x08
	Cop1FmtS  = 0x10
	Cop1FmtD  = 0x11
	Cop1FmtW  = 0x14
)

// Coprocessor-1 funct field for the FmtS/FmtD arithmetic sub-class.
const (
	Fp1Add   = 0x00
	Fp1Sub   = 0x01
	Fp1Mul   = 0x02
	Fp1Div   = 0x03
	Fp1Sqrt  = 0x04
	Fp1Abs   = 0x05
	Fp1Mov   = 0x06
	Fp1Neg   = 0x07
	Fp1RoundW = 0x0c
	Fp1TruncW = 0x0d
	Fp1CeilW  = 0x0e
	Fp1FloorW = 0x0f
	Fp1MovZ  = 0x12
	Fp1MovN  = 0x13
	Fp1Recip = 0x15
	Fp1Rsqrt = 0x16
	Fp1CvtS  = 0x20
	Fp1CvtD  = 0x21
	Fp1CvtW  = 0x24
)

// c.cond.fmt funct is 0x30|cond; the low nibble is the condition
// predicate extracted by Cond().
const Fp1CBase = 0x30

// Coprocessor-1x (OpCop1x) funct field. madd/msub encode their format
// (single vs. double) in the funct field's low bit: 0x20/0x21 are
// madd.s/madd.d, 0x28/0x29 are msub.s/msub.d.
const (
	Fp1xLwxc1 = 0x00
	Fp1xLdxc1 = 0x01
	Fp1xSwxc1 = 0x08
	Fp1xSdxc1 = 0x09
	Fp1xMaddS = 0x20
	Fp1xMaddD = 0x21
	Fp1xMsubS = 0x28
	Fp1xMsubD = 0x29
)
