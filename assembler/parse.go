package assembler

import (
	"strings"

	"github.com/Urethramancer/asm10/isa"
)

// SplitLine validates a raw physical line and splits it into a Line
// record. It reports ok=false for a blank or comment-only line (callers
// skip these silently) and returns a non-nil error for a malformed one.
// The rejection order — length, then non-printable characters, then
// whitespace-only — follows original_source/parser.c's parse_line. The
// label colon is only looked for up to the first whitespace, so a colon
// inside a quoted operand later on the line never gets mistaken for the
// label separator.
func SplitLine(raw string, lineNo int) (*Line, bool, error) {
	if len(raw) > MaxLineLength {
		return nil, false, newDiag(StageFirstPass, CategoryLexical, lineNo, "",
			"line too long")
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c < 0x20 && c != '\t' && c != '\r' && c != '\n' {
			return nil, false, newDiag(StageFirstPass, CategoryLexical, lineNo, "",
				"line contains non-printable characters")
		}
		if c == 0x7F {
			return nil, false, newDiag(StageFirstPass, CategoryLexical, lineNo, "",
				"line contains non-printable characters")
		}
	}

	trimmed := strings.TrimLeft(raw, " \t")
	if trimmed == "" || trimmed[0] == ';' {
		return nil, false, nil
	}

	line := &Line{Number: lineNo}
	rest := trimmed

	firstSpace := strings.IndexAny(rest, " \t")
	labelSpan := rest
	if firstSpace >= 0 {
		labelSpan = rest[:firstSpace]
	}
	if colon := strings.IndexByte(labelSpan, ':'); colon >= 0 {
		label := rest[:colon]
		if !IsValidLabel(label) {
			return nil, false, newDiag(StageFirstPass, CategoryNaming, lineNo, label,
				"invalid label")
		}
		line.Label = label
		rest = rest[colon+1:]
	}

	rest = strings.TrimLeft(rest, " \t")
	if rest == "" {
		return line, true, nil
	}

	fields := splitFields(rest)
	command := fields[0]
	if !isa.IsOpcode(command) && !isa.IsDirective(command) {
		return nil, false, newDiag(StageFirstPass, CategoryStructural, lineNo, command,
			"unknown opcode or directive")
	}
	line.Command = command

	operands, err := extractOperands(rest, lineNo)
	if err != nil {
		return nil, false, err
	}
	line.Operands = operands
	return line, true, nil
}

// splitFields returns the whitespace-delimited tokens of s; only the
// first is used by callers (the command), mirroring extract_command's
// use of strtok for the leading token only.
func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t'
	})
}

// extractOperands walks past the command token and reads comma-
// separated operands, following original_source/parser.c's
// extract_operands: a quoted operand is read verbatim to its closing
// quote, others run to the next comma or whitespace. A doubled comma, a
// trailing comma, or a comma immediately before end-of-line is a
// syntax error.
func extractOperands(rest string, lineNo int) ([]string, error) {
	i := 0
	for i < len(rest) && rest[i] != ' ' && rest[i] != '\t' {
		i++
	}
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	if i >= len(rest) {
		return nil, nil
	}

	var operands []string
	for i < len(rest) {
		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
			i++
		}
		if i >= len(rest) {
			break
		}

		start := i
		if rest[i] == '"' {
			i++
			for i < len(rest) && rest[i] != '"' {
				i++
			}
			if i < len(rest) {
				i++
			}
		} else {
			for i < len(rest) && rest[i] != ',' && rest[i] != ' ' && rest[i] != '\t' {
				i++
			}
		}
		operands = append(operands, rest[start:i])

		for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
			i++
		}
		if i < len(rest) && rest[i] == ',' {
			i++
			j := i
			for j < len(rest) && (rest[j] == ' ' || rest[j] == '\t') {
				j++
			}
			if j >= len(rest) || rest[j] == ',' {
				return nil, newDiag(StageFirstPass, CategoryLexical, lineNo, "",
					"malformed operand list (stray comma)")
			}
		}
	}
	return operands, nil
}
