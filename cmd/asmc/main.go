// Command asmc drives the three-stage assembler over one or more .as
// source files, following original_source/assembler.c's main/process_file
// phase progression.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Urethramancer/asm10/assembler"
	"github.com/grimdork/climate"
)

// Options is the CLI surface, parsed by climate from struct tags. Files
// holds the positional .as source paths.
type Options struct {
	Files []string `arg:"positional" help:"source files to assemble (.as)"`
}

func main() {
	var opts Options
	if err := climate.Parse(&opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input files specified")
		fmt.Fprintf(os.Stderr, "Usage: %s file1.as file2.as ...\n", os.Args[0])
		os.Exit(1)
	}

	fmt.Println("Assembler started")
	fmt.Println("###############")
	fmt.Println()

	total, successful, failed := 0, 0, 0
	for _, path := range opts.Files {
		total++
		if !strings.HasSuffix(path, ".as") {
			fmt.Fprintf(os.Stderr, "Error: invalid filename %q (must end with .as)\n", path)
			failed++
			continue
		}
		if processFile(path) {
			successful++
		} else {
			failed++
		}
		fmt.Println()
	}

	fmt.Println("Assembly Summary")
	fmt.Println("################")
	fmt.Printf("Total files processed: %d\n", total)
	fmt.Printf("Successful: %d\n", successful)
	fmt.Printf("Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\nSome files failed to assemble. Check error messages above.")
		os.Exit(1)
	}
	fmt.Println("\nAll files assembled successfully!")
}

// processFile runs one source file through all three phases, printing
// the same phase banner and outcome line original_source/assembler.c
// prints for each file.
func processFile(path string) bool {
	fmt.Printf("Processing file: %s\n", path)
	base := strings.TrimSuffix(path, ".as")

	src, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Error: cannot open %q: %v\n", path, err)
		return false
	}
	defer src.Close()

	fmt.Println("  Phase 1: Expanding macros...")
	fmt.Println("  Phase 2: First pass analysis...")
	fmt.Println("  Phase 3: Second pass and code generation...")

	a := assembler.New()
	diags := a.Assemble(src, fileWriterFactory(base))
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "  %v\n", d)
		}
		fmt.Printf("  Failed to process %q\n", path)
		return false
	}

	fmt.Printf("  Successfully processed %q\n", path)
	return true
}

// fileWriterFactory returns a WriterFactory that creates base+suffix on
// disk, the concrete filesystem collaborator the assembler core never
// depends on directly.
func fileWriterFactory(base string) assembler.WriterFactory {
	return func(suffix string) (io.WriteCloser, error) {
		return os.Create(base + suffix)
	}
}
