package assembler

import (
	"strconv"
	"strings"

	"github.com/Urethramancer/asm10/isa"
)

// MaxLabelLength is the longest a label or macro name may be, per
// original_source/utils.h's MAX_LABEL_LENGTH.
const MaxLabelLength = 30

// MaxLineLength is the longest a source line may be, not counting its
// terminator, per original_source/utils.h's MAX_LINE_LENGTH (81 including
// the terminator).
const MaxLineLength = 80

// IsValidLabel reports whether name satisfies the label-naming rules:
// 1..30 characters, starts with a letter, remainder alphanumeric, not an
// opcode, not a register pattern.
func IsValidLabel(name string) bool {
	if len(name) == 0 || len(name) > MaxLabelLength {
		return false
	}
	if !isAlpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAlpha(name[i]) && !isDigit(name[i]) {
			return false
		}
	}
	if isa.IsOpcode(name) {
		return false
	}
	if IsRegister(name) {
		return false
	}
	return true
}

// IsValidMacroName applies the label rules: 1..30 characters, starts
// with a letter (so never with a digit, the check
// original_source/utils.c's is_valid_macro_name makes explicit),
// remainder letters and digits, not an opcode, not a register pattern.
func IsValidMacroName(name string) bool {
	if len(name) == 0 || len(name) > MaxLabelLength {
		return false
	}
	if !isAlpha(name[0]) {
		return false
	}
	if isa.IsOpcode(name) {
		return false
	}
	if IsRegister(name) {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlpha(c) && !isDigit(c) {
			return false
		}
	}
	return true
}

// IsRegister reports whether s is exactly "r" followed by a digit 0..7.
func IsRegister(s string) bool {
	if len(s) != 2 || s[0] != 'r' {
		return false
	}
	return s[1] >= '0' && s[1] <= '7'
}

// RegisterNumber parses a validated register operand into its number,
// or -1 if s is not a valid register.
func RegisterNumber(s string) int {
	if !IsRegister(s) {
		return -1
	}
	return int(s[1] - '0')
}

// IsImmediate reports whether s is a syntactically valid immediate
// operand: '#' followed by an optional sign and one or more digits.
func IsImmediate(s string) bool {
	if len(s) < 2 || s[0] != '#' {
		return false
	}
	rest := s[1:]
	if rest[0] == '+' || rest[0] == '-' {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if !isDigit(rest[i]) {
			return false
		}
	}
	return true
}

// ImmediateValue parses a validated immediate operand's numeric value.
func ImmediateValue(s string) (int, error) {
	v, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, err
	}
	return v, nil
}

// IsString reports whether s is a syntactically valid string operand:
// begins and ends with a double quote, at least two characters long.
func IsString(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

// IsSignedDecimal reports whether s is an optional sign followed by one
// or more decimal digits, the format required by .data and .mat values.
func IsSignedDecimal(s string) bool {
	if len(s) == 0 {
		return false
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// MatrixAccess is the decomposed form of a `LABEL[rX][rY]` operand.
type MatrixAccess struct {
	Label string
	RegA  int
	RegB  int
}

// ParseMatrixAccess walks the bracket structure of a matrix-access
// operand the way original_source/utils.c's parse_matrix_access does:
// locate the four brackets in order, validate the label before them and
// the two two-character register spans inside them. Whitespace inside
// the brackets is not tolerated.
func ParseMatrixAccess(operand string) (MatrixAccess, bool) {
	firstOpen := strings.IndexByte(operand, '[')
	if firstOpen < 0 {
		return MatrixAccess{}, false
	}
	firstClose := strings.IndexByte(operand[firstOpen+1:], ']')
	if firstClose < 0 {
		return MatrixAccess{}, false
	}
	firstClose += firstOpen + 1
	secondOpen := strings.IndexByte(operand[firstClose+1:], '[')
	if secondOpen < 0 {
		return MatrixAccess{}, false
	}
	secondOpen += firstClose + 1
	secondClose := strings.IndexByte(operand[secondOpen+1:], ']')
	if secondClose < 0 {
		return MatrixAccess{}, false
	}
	secondClose += secondOpen + 1

	label := operand[:firstOpen]
	if !IsValidLabel(label) {
		return MatrixAccess{}, false
	}

	reg1 := operand[firstOpen+1 : firstClose]
	reg2 := operand[secondOpen+1 : secondClose]
	if !IsRegister(reg1) || !IsRegister(reg2) {
		return MatrixAccess{}, false
	}

	return MatrixAccess{Label: label, RegA: RegisterNumber(reg1), RegB: RegisterNumber(reg2)}, true
}

// MatrixDims is the decomposed `[rows][cols]` prefix of a .mat directive's
// first operand.
type MatrixDims struct {
	Rows int
	Cols int
}

// ParseMatrixDims walks the bracket structure the way
// original_source/first_pass.c's parse_matrix_dimensions does: both spans
// must be non-empty, all-decimal, and strictly positive once parsed.
func ParseMatrixDims(operand string) (MatrixDims, bool) {
	firstOpen := strings.IndexByte(operand, '[')
	if firstOpen < 0 {
		return MatrixDims{}, false
	}
	firstClose := strings.IndexByte(operand[firstOpen+1:], ']')
	if firstClose < 0 {
		return MatrixDims{}, false
	}
	firstClose += firstOpen + 1
	secondOpen := strings.IndexByte(operand[firstClose+1:], '[')
	if secondOpen < 0 {
		return MatrixDims{}, false
	}
	secondOpen += firstClose + 1
	secondClose := strings.IndexByte(operand[secondOpen+1:], ']')
	if secondClose < 0 {
		return MatrixDims{}, false
	}
	secondClose += secondOpen + 1

	rowsStr := operand[firstOpen+1 : firstClose]
	colsStr := operand[secondOpen+1 : secondClose]
	if len(rowsStr) == 0 || len(colsStr) == 0 {
		return MatrixDims{}, false
	}
	for i := 0; i < len(rowsStr); i++ {
		if !isDigit(rowsStr[i]) {
			return MatrixDims{}, false
		}
	}
	for i := 0; i < len(colsStr); i++ {
		if !isDigit(colsStr[i]) {
			return MatrixDims{}, false
		}
	}

	rows, err := strconv.Atoi(rowsStr)
	if err != nil || rows <= 0 {
		return MatrixDims{}, false
	}
	cols, err := strconv.Atoi(colsStr)
	if err != nil || cols <= 0 {
		return MatrixDims{}, false
	}
	return MatrixDims{Rows: rows, Cols: cols}, true
}

// OperandMode classifies an operand token by its surface syntax. It
// reports ok=false for a token matching none of the four addressing
// modes.
func OperandMode(operand string) (isa.AddressingMode, bool) {
	if len(operand) == 0 {
		return 0, false
	}
	if operand[0] == '"' {
		return isa.Immediate, IsString(operand)
	}
	if IsRegister(operand) {
		return isa.Register, true
	}
	if operand[0] == '#' {
		return isa.Immediate, IsImmediate(operand)
	}
	if strings.ContainsRune(operand, '[') || strings.ContainsRune(operand, ']') {
		_, ok := ParseMatrixAccess(operand)
		return isa.MatrixAccess, ok
	}
	if isAlpha(operand[0]) {
		for i := 1; i < len(operand); i++ {
			if !isAlpha(operand[i]) && !isDigit(operand[i]) {
				return 0, false
			}
		}
		return isa.Direct, true
	}
	return 0, false
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
