package assembler

import (
	"bufio"
	"fmt"
	"io"
)

// WriterFactory opens the output file for one suffix (".am", ".ob",
// ".ent", ".ext") of the file currently being assembled. The driver
// supplies this so the core never touches the filesystem directly.
type WriterFactory func(suffix string) (io.WriteCloser, error)

// Assembler runs the three stages over one source file at a time. It
// carries no state between calls to Assemble: each file is processed
// independently, with nothing shared between runs.
type Assembler struct{}

// New returns a ready Assembler.
func New() *Assembler {
	return &Assembler{}
}

// Assemble reads src line by line, expands macros, runs both passes,
// and writes the .am/.ob/.ent/.ext outputs through newWriter. It
// returns the collected diagnostics from whichever stage failed; a nil
// return means every output was written.
func (a *Assembler) Assemble(src io.Reader, newWriter WriterFactory) []error {
	lines, err := readLines(src)
	if err != nil {
		return []error{newDiag(StageFirstPass, CategoryIO, 0, "", fmt.Sprintf("reading source: %v", err))}
	}

	expanded, err := ExpandMacros(lines)
	if err != nil {
		return []error{err}
	}

	if err := writeAmFile(expanded, newWriter); err != nil {
		return []error{err}
	}

	firstResult, diags := RunFirstPass(expanded)
	if len(diags) > 0 {
		return diags
	}

	secondResult, diags := RunSecondPass(expanded, firstResult.Symbols, firstResult.FinalIC, firstResult.FinalDC)
	if len(diags) > 0 {
		return diags
	}

	if err := a.writeOutputs(secondResult, firstResult.Symbols, newWriter); err != nil {
		return []error{err}
	}
	return nil
}

func (a *Assembler) writeOutputs(result *SecondPassResult, table *SymbolTable, newWriter WriterFactory) error {
	ob, err := newWriter(".ob")
	if err != nil {
		return newDiag(StageSecondPass, CategoryIO, 0, "", fmt.Sprintf("creating .ob: %v", err))
	}
	defer ob.Close()
	if err := WriteObjectFile(ob, result.Image); err != nil {
		return err
	}

	if entries := table.Entries(); len(entries) > 0 {
		ent, err := newWriter(".ent")
		if err != nil {
			return newDiag(StageSecondPass, CategoryIO, 0, "", fmt.Sprintf("creating .ent: %v", err))
		}
		defer ent.Close()
		if err := WriteEntriesFile(ent, entries); err != nil {
			return err
		}
	}

	if len(result.Externals) > 0 {
		ext, err := newWriter(".ext")
		if err != nil {
			return newDiag(StageSecondPass, CategoryIO, 0, "", fmt.Sprintf("creating .ext: %v", err))
		}
		defer ext.Close()
		if err := WriteExternalsFile(ext, result.Externals); err != nil {
			return err
		}
	}

	return nil
}

func writeAmFile(expanded []string, newWriter WriterFactory) error {
	am, err := newWriter(".am")
	if err != nil {
		return newDiag(StageMacro, CategoryIO, 0, "", fmt.Sprintf("creating .am: %v", err))
	}
	defer am.Close()
	for _, line := range expanded {
		if _, err := io.WriteString(am, line+"\n"); err != nil {
			return newDiag(StageMacro, CategoryIO, 0, "", fmt.Sprintf("writing .am: %v", err))
		}
	}
	return nil
}

func readLines(src io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
