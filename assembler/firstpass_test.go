package assembler

import "testing"

func TestEstimateWordsRegisterPair(t *testing.T) {
	line := &Line{Command: "mov", Operands: []string{"r1", "r2"}}
	words, err := EstimateWords(line)
	if err != nil || words != 2 {
		t.Fatalf("EstimateWords(mov r1,r2) = %d, %v; want 2", words, err)
	}
}

func TestEstimateWordsImmediateToRegister(t *testing.T) {
	line := &Line{Command: "add", Operands: []string{"#5", "r2"}}
	words, err := EstimateWords(line)
	if err != nil || words != 3 {
		t.Fatalf("EstimateWords(add #5,r2) = %d, %v; want 3", words, err)
	}
}

func TestEstimateWordsMatrixOperand(t *testing.T) {
	line := &Line{Command: "lea", Operands: []string{"M[r1][r2]", "r3"}}
	words, err := EstimateWords(line)
	if err != nil || words != 4 {
		t.Fatalf("EstimateWords(lea M[r1][r2],r3) = %d, %v; want 4", words, err)
	}
}

func TestEstimateWordsSingleOperand(t *testing.T) {
	line := &Line{Command: "inc", Operands: []string{"LABEL"}}
	words, err := EstimateWords(line)
	if err != nil || words != 2 {
		t.Fatalf("EstimateWords(inc LABEL) = %d, %v; want 2", words, err)
	}
}

func TestEstimateWordsNoOperands(t *testing.T) {
	line := &Line{Command: "stop"}
	words, err := EstimateWords(line)
	if err != nil || words != 1 {
		t.Fatalf("EstimateWords(stop) = %d, %v; want 1", words, err)
	}
}

func TestEstimateWordsIllegalMode(t *testing.T) {
	line := &Line{Command: "lea", Operands: []string{"#5", "r3"}}
	if _, err := EstimateWords(line); err == nil {
		t.Fatal("expected an error: lea does not allow an immediate source")
	}
}

func TestEstimateWordsWrongOperandCount(t *testing.T) {
	line := &Line{Command: "stop", Operands: []string{"r1"}}
	if _, err := EstimateWords(line); err == nil {
		t.Fatal("expected an error for wrong operand count")
	}
}

func TestRunFirstPassBasic(t *testing.T) {
	src := []string{
		"START: mov #5, r1",
		"       add r1, r2",
		"       stop",
		"N: .data 1, 2, 3",
	}
	result, diags := RunFirstPass(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	start := result.Symbols.Lookup("START")
	if start == nil || start.Address != InitialIC || start.Kind != KindCode {
		t.Fatalf("got START=%+v", start)
	}
	// mov #5,r1 (3 words: header + immediate + register) + add r1,r2
	// (2 words: register pair) + stop (1 word) = 6, IC ends at 106.
	if result.FinalIC != 106 {
		t.Fatalf("FinalIC = %d, want 106", result.FinalIC)
	}
	n := result.Symbols.Lookup("N")
	if n == nil || n.Address != 106 {
		t.Fatalf("got N=%+v, want address 106 after relocation", n)
	}
}

func TestRunFirstPassEntryWithoutDefinitionIsReported(t *testing.T) {
	src := []string{
		".entry NEVER",
		"stop",
	}
	_, diags := RunFirstPass(src)
	if len(diags) == 0 {
		t.Fatal("expected an error for an .entry symbol that was never defined")
	}
}

func TestRunFirstPassDuplicateLabelIsReported(t *testing.T) {
	src := []string{
		"X: stop",
		"X: rts",
	}
	_, diags := RunFirstPass(src)
	if len(diags) == 0 {
		t.Fatal("expected a naming error for a duplicate label")
	}
}

func TestRunFirstPassRejectsInvalidExternName(t *testing.T) {
	src := []string{".extern 1bad"}
	_, diags := RunFirstPass(src)
	if len(diags) == 0 {
		t.Fatal("expected a naming error for a malformed .extern operand")
	}
}

func TestRunFirstPassRejectsRegisterAsExternName(t *testing.T) {
	src := []string{".extern r5"}
	_, diags := RunFirstPass(src)
	if len(diags) == 0 {
		t.Fatal("expected a naming error declaring a register name external")
	}
}

func TestRunFirstPassRejectsInvalidEntryName(t *testing.T) {
	src := []string{".entry 1bad", "stop"}
	_, diags := RunFirstPass(src)
	if len(diags) == 0 {
		t.Fatal("expected a naming error for a malformed .entry operand")
	}
}
