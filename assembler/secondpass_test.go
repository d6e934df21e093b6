package assembler

import (
	"strings"
	"testing"

	"github.com/Urethramancer/asm10/isa"
)

func TestRunSecondPassRegisterPair(t *testing.T) {
	src := []string{"mov r1, r2"}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	if len(result.Image.Instructions) != 2 {
		t.Fatalf("got %d instruction words, want 2", len(result.Image.Instructions))
	}
	header := result.Image.Instructions[0].Word
	op, src2, dst, are := header.Fields()
	if op != isa.Mov || src2 != isa.Register || dst != isa.Register || are != isa.Absolute {
		t.Fatalf("header fields wrong: %v %v %v %v", op, src2, dst, are)
	}
	pair := result.Image.Instructions[1].Word
	if (pair>>6)&0xF != 1 || (pair>>2)&0xF != 2 {
		t.Fatalf("register pair word wrong: %#04x", pair)
	}
}

func TestRunSecondPassImmediateToDirect(t *testing.T) {
	src := []string{
		"add #7, TARGET",
		"TARGET: .data 0",
	}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	if len(result.Image.Instructions) != 3 {
		t.Fatalf("got %d instruction words, want 3", len(result.Image.Instructions))
	}
	immWord := result.Image.Instructions[1].Word
	if immWord != isa.EncodeImmediate(7, isa.Absolute) {
		t.Fatalf("immediate word = %#04x", immWord)
	}
	dirWord := result.Image.Instructions[2].Word
	if dirWord&0x3 != isa.Word(isa.Relocatable) {
		t.Fatalf("direct word ARE wrong: %#04x", dirWord)
	}
}

func TestRunSecondPassExternalReference(t *testing.T) {
	src := []string{
		".extern EXT",
		"jmp EXT",
	}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	if len(result.Externals) != 1 || result.Externals[0].Symbol != "EXT" {
		t.Fatalf("got externals=%v", result.Externals)
	}
	operandWord := result.Image.Instructions[1].Word
	if operandWord != isa.EncodeDirect(0, isa.External) {
		t.Fatalf("external operand word = %#04x, want zero payload tagged External", operandWord)
	}
}

func TestRunSecondPassUndefinedLabelIsReferenceError(t *testing.T) {
	src := []string{"jmp GHOST"}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	_, diags = RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) == 0 {
		t.Fatal("expected a reference error for an undefined label")
	}
}

func TestRunSecondPassDataDirectives(t *testing.T) {
	src := []string{
		"S: .string \"hi\"",
		"D: .data 1, -1",
	}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	// "hi" -> 2 chars + terminator = 3 words, then .data 1,-1 = 2 words.
	if len(result.Image.Data) != 5 {
		t.Fatalf("got %d data words, want 5", len(result.Image.Data))
	}
	if result.Image.Data[2].Word != isa.EncodeData(0) {
		t.Fatalf("string terminator word = %#04x, want 0", result.Image.Data[2].Word)
	}
	if result.Image.Data[4].Word != isa.EncodeData(-1) {
		t.Fatalf("negative data word wrong: %#04x", result.Image.Data[4].Word)
	}
}

func TestRunSecondPassDataAddressesFollowInstructions(t *testing.T) {
	src := []string{
		"stop",
		"D: .data 1, -1, 5",
	}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	if first.FinalIC != 101 {
		t.Fatalf("FinalIC = %d, want 101", first.FinalIC)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	wantAddrs := []int{101, 102, 103}
	for i, word := range result.Image.Data {
		if word.Address != wantAddrs[i] {
			t.Fatalf("Data[%d].Address = %d, want %d", i, word.Address, wantAddrs[i])
		}
	}

	var buf strings.Builder
	if err := WriteObjectFile(&buf, result.Image); err != nil {
		t.Fatalf("WriteObjectFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// header + 1 instruction word + 3 data words.
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5: %v", len(lines), lines)
	}
	for i, want := range wantAddrs {
		line := lines[2+i]
		gotAddr := strings.SplitN(line, " ", 2)[0]
		if gotAddr != isa.EncodeBase4(want, 4) {
			t.Fatalf("data line %d address = %q, want %q (address %d)", i, gotAddr, isa.EncodeBase4(want, 4), want)
		}
	}
}

func TestRunSecondPassMatrixOperand(t *testing.T) {
	src := []string{
		"M: .mat [2][2] 1,2,3,4",
		"lea M[r1][r2], r3",
	}
	first, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("first pass diagnostics: %v", diags)
	}
	result, diags := RunSecondPass(src, first.Symbols, first.FinalIC, first.FinalDC)
	if len(diags) != 0 {
		t.Fatalf("second pass diagnostics: %v", diags)
	}
	// header + matrix (2 words) + register dest (1 word) = 4.
	if len(result.Image.Instructions) != 4 {
		t.Fatalf("got %d instruction words, want 4", len(result.Image.Instructions))
	}
	regsWord := result.Image.Instructions[2].Word
	if (regsWord>>6)&0xF != 1 || (regsWord>>2)&0xF != 2 {
		t.Fatalf("matrix register word wrong: %#04x", regsWord)
	}
}
