package isa

import "strings"

// Opcode numbers one of the sixteen supported instructions.
type Opcode int

const (
	Mov Opcode = iota
	Cmp
	Add
	Sub
	Not
	Clr
	Lea
	Inc
	Dec
	Jmp
	Bne
	Red
	Prn
	Jsr
	Rts
	Stop
	NumOpcodes
)

// Instruction describes one catalogue entry: its mnemonic, operand count,
// and the addressing modes each operand slot accepts, as bit masks. A
// single-operand instruction leaves SourceMask at zero.
type Instruction struct {
	Name       string
	Opcode     Opcode
	Operands   int
	SourceMask ModeMask
	DestMask   ModeMask
}

const allModes = MaskImmediate | MaskDirect | MaskMatrix | MaskRegister
const labelModes = MaskDirect | MaskMatrix | MaskRegister
const jumpModes = MaskDirect | MaskMatrix

// Catalogue is the fixed instruction table, indexed by Opcode.
var Catalogue = [NumOpcodes]Instruction{
	Mov:  {Name: "mov", Opcode: Mov, Operands: 2, SourceMask: allModes, DestMask: labelModes},
	Cmp:  {Name: "cmp", Opcode: Cmp, Operands: 2, SourceMask: allModes, DestMask: allModes},
	Add:  {Name: "add", Opcode: Add, Operands: 2, SourceMask: allModes, DestMask: labelModes},
	Sub:  {Name: "sub", Opcode: Sub, Operands: 2, SourceMask: allModes, DestMask: labelModes},
	Not:  {Name: "not", Opcode: Not, Operands: 1, DestMask: labelModes},
	Clr:  {Name: "clr", Opcode: Clr, Operands: 1, DestMask: labelModes},
	Lea:  {Name: "lea", Opcode: Lea, Operands: 2, SourceMask: MaskDirect | MaskMatrix, DestMask: MaskRegister},
	Inc:  {Name: "inc", Opcode: Inc, Operands: 1, DestMask: labelModes},
	Dec:  {Name: "dec", Opcode: Dec, Operands: 1, DestMask: labelModes},
	Jmp:  {Name: "jmp", Opcode: Jmp, Operands: 1, DestMask: jumpModes},
	Bne:  {Name: "bne", Opcode: Bne, Operands: 1, DestMask: jumpModes},
	Red:  {Name: "red", Opcode: Red, Operands: 1, DestMask: labelModes},
	Prn:  {Name: "prn", Opcode: Prn, Operands: 1, DestMask: allModes},
	Jsr:  {Name: "jsr", Opcode: Jsr, Operands: 1, DestMask: jumpModes},
	Rts:  {Name: "rts", Opcode: Rts, Operands: 0},
	Stop: {Name: "stop", Opcode: Stop, Operands: 0},
}

// Lookup finds an instruction by mnemonic, case-sensitive (source mnemonics
// are always lowercase in this language). It reports ok=false if name is
// not one of the sixteen opcodes.
func Lookup(name string) (Instruction, bool) {
	for i := range Catalogue {
		if Catalogue[i].Name == name {
			return Catalogue[i], true
		}
	}
	return Instruction{}, false
}

// IsOpcode reports whether name is a known instruction mnemonic. Used by
// the lexical validators to reject opcodes used as labels or macro names.
func IsOpcode(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// AllowsSource reports whether mode is legal in this instruction's source
// slot.
func (i Instruction) AllowsSource(mode AddressingMode) bool {
	return i.SourceMask&mode.Mask() != 0
}

// AllowsDest reports whether mode is legal in this instruction's
// destination slot.
func (i Instruction) AllowsDest(mode AddressingMode) bool {
	return i.DestMask&mode.Mask() != 0
}

// Directive is one of the five data/linkage pseudo-ops.
type Directive string

const (
	DirData   Directive = ".data"
	DirString Directive = ".string"
	DirMat    Directive = ".mat"
	DirExtern Directive = ".extern"
	DirEntry  Directive = ".entry"
)

var directives = [...]Directive{DirData, DirString, DirMat, DirExtern, DirEntry}

// IsDirective reports whether name is one of the five directive spellings.
func IsDirective(name string) bool {
	for _, d := range directives {
		if string(d) == name {
			return true
		}
	}
	return false
}

// IsDataDirective reports whether d places words in the data segment
// during the second pass's data phase (§4.8).
func IsDataDirective(d string) bool {
	return d == string(DirData) || d == string(DirString) || d == string(DirMat)
}

// HasDotPrefix is a small guard used by the second pass to skip directive
// lines during the instruction phase without a full directive lookup.
func HasDotPrefix(command string) bool {
	return strings.HasPrefix(command, ".")
}
