package assembler

import (
	"github.com/Urethramancer/asm10/isa"
)

// InitialIC and InitialDC are the starting values of the instruction
// and data counters, matching original_source/utils.h's
// INITIAL_IC/INITIAL_DC.
const (
	InitialIC = 100
	InitialDC = 0
)

// FirstPassResult carries the outputs the second pass needs: the
// completed symbol table and the final counters.
type FirstPassResult struct {
	Symbols *SymbolTable
	FinalIC int
	FinalDC int
}

// RunFirstPass walks the macro-expanded line stream once, sizing every
// instruction, recording labels, and tracking IC/DC, following
// original_source/first_pass.c's process_line dispatch. Diagnostics are
// collected rather than raised immediately: a malformed line skips its
// effect but the pass continues, so multiple problems surface per run.
// The caller aborts before the second pass if diags is non-empty.
func RunFirstPass(lines []string) (*FirstPassResult, []error) {
	table := NewSymbolTable()
	ic := InitialIC
	dc := InitialDC
	var diags []error

	for i, raw := range lines {
		lineNo := i + 1
		line, ok, err := SplitLine(raw, lineNo)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		if !ok {
			continue
		}
		if err := processFirstPassLine(line, table, &ic, &dc); err != nil {
			diags = append(diags, err)
		}
	}

	for _, sym := range table.UndefinedEntries() {
		diags = append(diags, newDiag(StageFirstPass, CategoryReference, 0, sym,
			"entry declared but never defined"))
	}

	if len(diags) == 0 {
		table.RelocateData(ic)
	}

	return &FirstPassResult{Symbols: table, FinalIC: ic, FinalDC: dc}, diags
}

func processFirstPassLine(line *Line, table *SymbolTable, ic, dc *int) error {
	switch line.Command {
	case string(isa.DirData):
		return firstPassData(line, table, dc)
	case string(isa.DirString):
		return firstPassString(line, table, dc)
	case string(isa.DirMat):
		return firstPassMat(line, table, dc)
	case string(isa.DirExtern):
		return firstPassExtern(line, table)
	case string(isa.DirEntry):
		return firstPassEntry(line, table)
	default:
		return firstPassInstruction(line, table, ic)
	}
}

func firstPassData(line *Line, table *SymbolTable, dc *int) error {
	for _, op := range line.Operands {
		if !IsSignedDecimal(op) {
			return newDiag(StageFirstPass, CategoryLexical, line.Number, op,
				"invalid .data value")
		}
	}
	if line.HasLabel() {
		if err := table.Define(line.Label, *dc, KindData); err != nil {
			return err
		}
	}
	*dc += len(line.Operands)
	return nil
}

func firstPassString(line *Line, table *SymbolTable, dc *int) error {
	if len(line.Operands) != 1 || !IsString(line.Operands[0]) {
		return newDiag(StageFirstPass, CategoryStructural, line.Number, "",
			".string requires exactly one quoted operand")
	}
	if line.HasLabel() {
		if err := table.Define(line.Label, *dc, KindData); err != nil {
			return err
		}
	}
	content := line.Operands[0]
	*dc += len(content) - 2 + 1
	return nil
}

func firstPassMat(line *Line, table *SymbolTable, dc *int) error {
	if len(line.Operands) < 1 {
		return newDiag(StageFirstPass, CategoryStructural, line.Number, "",
			".mat requires dimension specification")
	}
	dims, ok := ParseMatrixDims(line.Operands[0])
	if !ok {
		return newDiag(StageFirstPass, CategoryStructural, line.Number, line.Operands[0],
			"invalid matrix dimensions")
	}
	total := dims.Rows * dims.Cols

	values := line.Operands[1:]
	for _, op := range values {
		if !IsSignedDecimal(op) {
			return newDiag(StageFirstPass, CategoryLexical, line.Number, op,
				"invalid .mat value")
		}
	}
	if len(values) != 0 && len(values) != total {
		return newDiag(StageFirstPass, CategoryStructural, line.Number, "",
			"matrix initial-value count mismatch")
	}

	if line.HasLabel() {
		if err := table.Define(line.Label, *dc, KindData); err != nil {
			return err
		}
	}
	*dc += total
	return nil
}

func firstPassExtern(line *Line, table *SymbolTable) error {
	for _, name := range line.Operands {
		if !IsValidLabel(name) {
			return newDiag(StageFirstPass, CategoryNaming, line.Number, name,
				"invalid external name")
		}
		if err := table.DeclareExternal(name); err != nil {
			return err
		}
	}
	return nil
}

func firstPassEntry(line *Line, table *SymbolTable) error {
	for _, name := range line.Operands {
		if !IsValidLabel(name) {
			return newDiag(StageFirstPass, CategoryNaming, line.Number, name,
				"invalid entry name")
		}
		table.DeclareEntry(name)
	}
	return nil
}

func firstPassInstruction(line *Line, table *SymbolTable, ic *int) error {
	words, err := EstimateWords(line)
	if err != nil {
		return err
	}
	if line.HasLabel() {
		if err := table.Define(line.Label, *ic, KindCode); err != nil {
			return err
		}
	}
	*ic += words
	return nil
}

// EstimateWords computes the word length of an instruction line,
// following original_source/first_pass.c's estimate_ic_words: the
// register-register pair shares one extra word, matrix-access operands
// cost two, everything else costs one.
func EstimateWords(line *Line) (int, error) {
	inst, ok := isa.Lookup(line.Command)
	if !ok {
		return 0, newDiag(StageFirstPass, CategoryStructural, line.Number, line.Command,
			"unknown opcode")
	}
	if len(line.Operands) != inst.Operands {
		return 0, newDiag(StageFirstPass, CategoryStructural, line.Number, line.Command,
			"wrong operand count")
	}

	words := 1
	switch inst.Operands {
	case 0:
		return words, nil
	case 1:
		mode, ok := OperandMode(line.Operands[0])
		if !ok {
			return 0, newDiag(StageFirstPass, CategoryLexical, line.Number, line.Operands[0],
				"invalid operand")
		}
		if !inst.AllowsDest(mode) {
			return 0, newDiag(StageFirstPass, CategoryStructural, line.Number, line.Operands[0],
				"illegal addressing mode")
		}
		if mode == isa.MatrixAccess {
			words += 2
		} else {
			words++
		}
		return words, nil
	default:
		srcMode, ok := OperandMode(line.Operands[0])
		if !ok {
			return 0, newDiag(StageFirstPass, CategoryLexical, line.Number, line.Operands[0],
				"invalid operand")
		}
		dstMode, ok := OperandMode(line.Operands[1])
		if !ok {
			return 0, newDiag(StageFirstPass, CategoryLexical, line.Number, line.Operands[1],
				"invalid operand")
		}
		if !inst.AllowsSource(srcMode) {
			return 0, newDiag(StageFirstPass, CategoryStructural, line.Number, line.Operands[0],
				"illegal addressing mode")
		}
		if !inst.AllowsDest(dstMode) {
			return 0, newDiag(StageFirstPass, CategoryStructural, line.Number, line.Operands[1],
				"illegal addressing mode")
		}
		if srcMode == isa.Register && dstMode == isa.Register {
			words++
			return words, nil
		}
		if srcMode == isa.MatrixAccess {
			words += 2
		} else {
			words++
		}
		if dstMode == isa.MatrixAccess {
			words += 2
		} else {
			words++
		}
		return words, nil
	}
}
