package assembler

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// memWriteCloser buffers a fake output file's body in memory (memFiles
// keys each one by suffix), so tests can inspect what the Assembler
// would have written to disk.
type memWriteCloser struct {
	bytes.Buffer
}

func (memWriteCloser) Close() error { return nil }

type memFiles struct {
	files map[string]*memWriteCloser
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string]*memWriteCloser)}
}

func (m *memFiles) factory() WriterFactory {
	return func(suffix string) (io.WriteCloser, error) {
		w := &memWriteCloser{}
		m.files[suffix] = w
		return w, nil
	}
}

func TestAssembleSuccessProducesAmAndOb(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"START: mov #5, r1",
		"       stop",
	}, "\n"))

	mem := newMemFiles()
	a := New()
	diags := a.Assemble(src, mem.factory())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if _, ok := mem.files[".am"]; !ok {
		t.Fatal("expected a .am file to be written")
	}
	if _, ok := mem.files[".ob"]; !ok {
		t.Fatal("expected a .ob file to be written")
	}
	if _, ok := mem.files[".ent"]; ok {
		t.Fatal(".ent should be omitted when there are no entry symbols")
	}
	if _, ok := mem.files[".ext"]; ok {
		t.Fatal(".ext should be omitted when there are no external references")
	}
}

func TestAssembleWithEntryAndExternal(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		".entry START",
		".extern HELPER",
		"START: jmp HELPER",
	}, "\n"))

	mem := newMemFiles()
	a := New()
	diags := a.Assemble(src, mem.factory())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if _, ok := mem.files[".ent"]; !ok {
		t.Fatal("expected a .ent file for the declared entry symbol")
	}
	if _, ok := mem.files[".ext"]; !ok {
		t.Fatal("expected a .ext file for the external reference")
	}
}

func TestAssembleFirstPassErrorSuppressesOutput(t *testing.T) {
	src := strings.NewReader("X: stop\nX: rts\n")

	mem := newMemFiles()
	a := New()
	diags := a.Assemble(src, mem.factory())
	if len(diags) == 0 {
		t.Fatal("expected diagnostics for a duplicate label")
	}
	if _, ok := mem.files[".ob"]; ok {
		t.Fatal(".ob should not be written when the first pass fails")
	}
}

func TestAssembleMacroExpansionRunsBeforePasses(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"mcro GREET",
		"stop",
		"mcroend",
		"GREET",
	}, "\n"))

	mem := newMemFiles()
	a := New()
	diags := a.Assemble(src, mem.factory())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	am := mem.files[".am"].String()
	if strings.Contains(am, "mcro") {
		t.Fatalf(".am should not contain macro definition lines, got %q", am)
	}
	if !strings.Contains(am, "stop") {
		t.Fatalf(".am should contain the expanded macro body, got %q", am)
	}
}
