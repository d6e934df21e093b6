package assembler

import (
	"fmt"
	"io"

	"github.com/Urethramancer/asm10/isa"
)

// WriteObjectFile renders the .ob file body: a header line giving the
// instruction and data word counts, base-4-letter-encoded
// with leading 'a' stripped, then one line per word giving its address
// and its 5-letter base-4 code, both base-4-letter-encoded in full
// (no stripping), following original_source/second_pass.c's
// generate_object_file.
func WriteObjectFile(w io.Writer, image *MemoryImage) error {
	header := fmt.Sprintf("%s %s\n",
		isa.StripLeadingA(isa.EncodeBase4(len(image.Instructions), 4)),
		isa.StripLeadingA(isa.EncodeBase4(len(image.Data), 4)))
	if _, err := io.WriteString(w, header); err != nil {
		return newDiag(StageSecondPass, CategoryIO, 0, "", err.Error())
	}

	for _, word := range image.Instructions {
		if err := writeWordLine(w, word); err != nil {
			return err
		}
	}
	for _, word := range image.Data {
		if err := writeWordLine(w, word); err != nil {
			return err
		}
	}
	return nil
}

func writeWordLine(w io.Writer, word EncodedWord) error {
	line := fmt.Sprintf("%s %s\n",
		isa.EncodeBase4(word.Address, 4),
		isa.EncodeBase4(int(word.Word), 5))
	if _, err := io.WriteString(w, line); err != nil {
		return newDiag(StageSecondPass, CategoryIO, 0, "", err.Error())
	}
	return nil
}

// WriteEntriesFile renders the .ent file: one line per symbol declared
// .entry and eventually defined, giving its name and base-4-letter
// address, in the order they were first declared. A symbol earns this
// listing purely through Symbol.IsEntry — a Data symbol that also
// carries IsEntry is listed too, unlike original_source/second_pass.c's
// generate_entries_file, which decided whether a data label was an entry
// by comparing its name against a hardcoded LENGTH/LOOP pair.
func WriteEntriesFile(w io.Writer, entries []*Symbol) error {
	for _, sym := range entries {
		line := fmt.Sprintf("%s %s\n", sym.Name, isa.EncodeBase4(sym.Address, 4))
		if _, err := io.WriteString(w, line); err != nil {
			return newDiag(StageSecondPass, CategoryIO, 0, "", err.Error())
		}
	}
	return nil
}

// WriteExternalsFile renders the .ext file: one line per use of an
// external symbol, in the order it was encountered during encoding,
// giving the symbol's name and the base-4-letter address of the word
// that referenced it, following
// original_source/second_pass.c's generate_externals_file.
func WriteExternalsFile(w io.Writer, refs []ExternalRef) error {
	for _, ref := range refs {
		line := fmt.Sprintf("%s %s\n", ref.Symbol, isa.EncodeBase4(ref.Address, 4))
		if _, err := io.WriteString(w, line); err != nil {
			return newDiag(StageSecondPass, CategoryIO, 0, "", err.Error())
		}
	}
	return nil
}
