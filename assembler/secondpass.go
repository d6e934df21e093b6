package assembler

import (
	"github.com/Urethramancer/asm10/isa"
)

// EncodedWord is one machine word placed at a specific address, ready
// for output emission.
type EncodedWord struct {
	Address int
	Word    isa.Word
}

// MemoryImage is the two ordered word sequences the second pass
// produces: instructions starting at InitialIC, and data immediately
// above them.
type MemoryImage struct {
	Instructions []EncodedWord
	Data         []EncodedWord
}

// ExternalRef is a (symbol, use-address) pair recorded every time an
// external label is resolved during encoding, in encounter order.
type ExternalRef struct {
	Symbol  string
	Address int
}

// SecondPassResult carries everything the output stage needs.
type SecondPassResult struct {
	Image     *MemoryImage
	Externals []ExternalRef
}

// RunSecondPass re-walks the macro-expanded line stream twice: once to
// encode instructions, once to encode data, following
// original_source/second_pass.c's second_pass. The data walk starts its
// counter at finalIC, since data words are placed immediately above the
// instruction segment rather than at address 0. An unresolved label
// referenced by an instruction is a reference error, which ends the pass
// at that line; a file with any
// error produces no output (the caller checks the returned diagnostics
// before calling the output package).
func RunSecondPass(lines []string, table *SymbolTable, finalIC, finalDC int) (*SecondPassResult, []error) {
	image := &MemoryImage{}
	var externals []ExternalRef
	var diags []error

	ic := InitialIC
	for i, raw := range lines {
		lineNo := i + 1
		line, ok, err := SplitLine(raw, lineNo)
		if err != nil || !ok {
			continue
		}
		if isa.HasDotPrefix(line.Command) {
			continue
		}

		words, refs, err := encodeInstruction(line, table, ic)
		if err != nil {
			diags = append(diags, err)
			if d, ok := err.(*Diagnostic); ok && d.Category.Fatal() {
				return &SecondPassResult{Image: image, Externals: externals}, diags
			}
			continue
		}
		for _, w := range words {
			image.Instructions = append(image.Instructions, w)
		}
		externals = append(externals, refs...)
		ic += len(words)
	}

	dc := finalIC
	for i, raw := range lines {
		lineNo := i + 1
		line, ok, err := SplitLine(raw, lineNo)
		if err != nil || !ok {
			continue
		}
		if !isa.IsDataDirective(line.Command) {
			continue
		}
		words, err := encodeDataLine(line, &dc)
		if err != nil {
			diags = append(diags, newDiag(StageSecondPass, CategoryStructural, lineNo, line.Command, err.Error()))
			continue
		}
		image.Data = append(image.Data, words...)
	}
	if len(diags) == 0 && dc != finalIC+finalDC {
		diags = append(diags, newDiag(StageSecondPass, CategoryStructural, 0, "",
			"data segment size disagrees between first and second pass"))
	}

	return &SecondPassResult{Image: image, Externals: externals}, diags
}

// encodeInstruction encodes one instruction line into its header word
// plus operand words, and returns any external references it produced.
func encodeInstruction(line *Line, table *SymbolTable, address int) ([]EncodedWord, []ExternalRef, error) {
	inst, ok := isa.Lookup(line.Command)
	if !ok {
		return nil, nil, nil
	}

	srcMode, dstMode := isa.Immediate, isa.Immediate
	if inst.Operands >= 1 {
		m, _ := OperandMode(line.Operands[inst.Operands-1])
		dstMode = m
	}
	if inst.Operands == 2 {
		m, _ := OperandMode(line.Operands[0])
		srcMode = m
	}

	header := EncodedWord{
		Address: address,
		Word:    isa.EncodeInstructionWord(inst.Opcode, srcMode, dstMode, isa.Absolute),
	}
	words := []EncodedWord{header}
	var externals []ExternalRef
	next := address + 1

	switch inst.Operands {
	case 0:
		// nothing more to encode
	case 1:
		w, refs, err := encodeOperand(line.Operands[0], table, dstMode, next, line.Number)
		if err != nil {
			return nil, nil, err
		}
		words = append(words, w...)
		externals = append(externals, refs...)
	case 2:
		if srcMode == isa.Register && dstMode == isa.Register {
			srcReg := RegisterNumber(line.Operands[0])
			dstReg := RegisterNumber(line.Operands[1])
			words = append(words, EncodedWord{Address: next, Word: isa.EncodeRegisterPair(srcReg, dstReg)})
		} else {
			w, refs, err := encodeOperand(line.Operands[0], table, srcMode, next, line.Number)
			if err != nil {
				return nil, nil, err
			}
			words = append(words, w...)
			externals = append(externals, refs...)
			next += len(w)

			w2, refs2, err := encodeOperand(line.Operands[1], table, dstMode, next, line.Number)
			if err != nil {
				return nil, nil, err
			}
			words = append(words, w2...)
			externals = append(externals, refs2...)
		}
	}

	return words, externals, nil
}

// encodeOperand encodes a single operand at address, returning one word
// for Immediate/Direct/Register and two for MatrixAccess.
func encodeOperand(operand string, table *SymbolTable, mode isa.AddressingMode, address int, lineNo int) ([]EncodedWord, []ExternalRef, error) {
	switch mode {
	case isa.Immediate:
		val, err := ImmediateValue(operand)
		if err != nil {
			return nil, nil, newDiag(StageSecondPass, CategoryLexical, lineNo, operand, "bad immediate")
		}
		return []EncodedWord{{Address: address, Word: isa.EncodeImmediate(val, isa.Absolute)}}, nil, nil

	case isa.Direct:
		w, ref, err := encodeLabelWord(operand, table, address, lineNo)
		if err != nil {
			return nil, nil, err
		}
		var refs []ExternalRef
		if ref != nil {
			refs = []ExternalRef{*ref}
		}
		return []EncodedWord{w}, refs, nil

	case isa.Register:
		reg := RegisterNumber(operand)
		return []EncodedWord{{Address: address, Word: isa.EncodeRegisterDest(reg)}}, nil, nil

	case isa.MatrixAccess:
		m, ok := ParseMatrixAccess(operand)
		if !ok {
			return nil, nil, newDiag(StageSecondPass, CategoryStructural, lineNo, operand, "invalid matrix operand")
		}
		wordA, ref, err := encodeLabelWord(m.Label, table, address, lineNo)
		if err != nil {
			return nil, nil, err
		}
		wordB := EncodedWord{Address: address + 1, Word: isa.EncodeMatrixRegisters(m.RegA, m.RegB)}
		var refs []ExternalRef
		if ref != nil {
			refs = []ExternalRef{*ref}
		}
		return []EncodedWord{wordA, wordB}, refs, nil
	}

	return nil, nil, newDiag(StageSecondPass, CategoryStructural, lineNo, operand, "invalid addressing mode")
}

// encodeLabelWord resolves a label the way Direct and the first word of
// MatrixAccess both do: an External symbol emits a zero payload word
// tagged ARE External and produces an ExternalRef; anything else emits
// the symbol's address tagged ARE Relocatable.
func encodeLabelWord(name string, table *SymbolTable, address int, lineNo int) (EncodedWord, *ExternalRef, error) {
	sym := table.Lookup(name)
	if sym == nil || (!sym.Defined && sym.Kind != KindExternal) {
		return EncodedWord{}, nil, newDiag(StageSecondPass, CategoryReference, lineNo, name, "undefined label")
	}
	if sym.Kind == KindExternal {
		return EncodedWord{Address: address, Word: isa.EncodeDirect(0, isa.External)},
			&ExternalRef{Symbol: name, Address: address}, nil
	}
	return EncodedWord{Address: address, Word: isa.EncodeDirect(sym.Address, isa.Relocatable)}, nil, nil
}

// encodeDataLine encodes one .data/.string/.mat line into its data
// words, advancing *index as it goes so callers can track the running
// address. The caller seeds *index at the data segment's base address
// (finalIC) rather than 0, so each word's Address is already the
// address it will occupy in the finished object file.
func encodeDataLine(line *Line, index *int) ([]EncodedWord, error) {
	var words []EncodedWord

	switch line.Command {
	case string(isa.DirData):
		for _, op := range line.Operands {
			val, err := signedDecimal(op)
			if err != nil {
				return nil, err
			}
			words = append(words, EncodedWord{Address: *index, Word: isa.EncodeData(val)})
			*index++
		}

	case string(isa.DirString):
		content := line.Operands[0]
		chars := content[1 : len(content)-1]
		for i := 0; i < len(chars); i++ {
			words = append(words, EncodedWord{Address: *index, Word: isa.EncodeData(int(chars[i]))})
			*index++
		}
		words = append(words, EncodedWord{Address: *index, Word: isa.EncodeData(0)})
		*index++

	case string(isa.DirMat):
		dims, ok := ParseMatrixDims(line.Operands[0])
		if !ok {
			return nil, newDiag(StageSecondPass, CategoryStructural, line.Number, line.Operands[0], "invalid matrix dimensions")
		}
		total := dims.Rows * dims.Cols
		values := line.Operands[1:]
		for i := 0; i < total; i++ {
			val := 0
			if i < len(values) {
				v, err := signedDecimal(values[i])
				if err != nil {
					return nil, err
				}
				val = v
			}
			words = append(words, EncodedWord{Address: *index, Word: isa.EncodeData(val)})
			*index++
		}
	}

	return words, nil
}

func signedDecimal(s string) (int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	if neg {
		v = -v
	}
	return v, nil
}
