// Package splitjoin toggles bracketed argument lists between one line
// and one argument per line.
//
// Operations target the innermost balanced (), [], or {} pair around
// the cursor, skipping brackets inside string literals. Split puts
// every top-level comma-separated argument on an own indented line;
// Join collapses the region back onto the opening line.
package splitjoin

import (
	"strings"
)

// Position addresses a byte in a line slice, zero based.
type Position struct {
	Line int
	Col  int
}

// Options configures split output.
type Options struct {
	// Indent is one indentation level for split arguments. Empty
	// selects a tab.
	Indent string

	// TrailingComma appends a comma to the last split argument.
	TrailingComma bool
}

func (o Options) indent() string {
	if o.Indent == "" {
		return "\t"
	}
	return o.Indent
}

// Region is a balanced bracket pair, both offsets inclusive of the
// bracket characters, in absolute byte offsets of the joined text.
type Region struct {
	Open  int
	Close int
}

// Toggle splits a single-line region and joins a multi-line one.
// The returned bool is false when no balanced pair surrounds the
// cursor or the operation would not change the text.
func Toggle(lines []string, cur Position, opts Options) ([]string, bool) {
	text := strings.Join(lines, "\n")
	region, ok := findRegion(text, offsetOf(lines, cur))
	if !ok {
		return lines, false
	}
	if strings.Contains(text[region.Open:region.Close], "\n") {
		return applyJoin(text, region, lines)
	}
	return applySplit(text, region, lines, opts)
}

// Split rewrites the innermost region around cur with one argument
// per line.
func Split(lines []string, cur Position, opts Options) ([]string, bool) {
	text := strings.Join(lines, "\n")
	region, ok := findRegion(text, offsetOf(lines, cur))
	if !ok {
		return lines, false
	}
	return applySplit(text, region, lines, opts)
}

// Join rewrites the innermost region around cur onto a single line.
func Join(lines []string, cur Position) ([]string, bool) {
	text := strings.Join(lines, "\n")
	region, ok := findRegion(text, offsetOf(lines, cur))
	if !ok {
		return lines, false
	}
	return applyJoin(text, region, lines)
}

func applySplit(text string, region Region, orig []string, opts Options) ([]string, bool) {
	args := splitArgs(text[region.Open+1 : region.Close])

	lineStart := strings.LastIndexByte(text[:region.Open], '\n') + 1
	base := leadingWhitespace(text[lineStart:])

	var b strings.Builder
	b.WriteString(text[:region.Open+1])
	for i, arg := range args {
		b.WriteByte('\n')
		b.WriteString(base)
		b.WriteString(opts.indent())
		b.WriteString(arg)
		if i < len(args)-1 || opts.TrailingComma {
			b.WriteByte(',')
		}
	}
	b.WriteByte('\n')
	b.WriteString(base)
	b.WriteString(text[region.Close:])

	return changed(orig, b.String())
}

func applyJoin(text string, region Region, orig []string) ([]string, bool) {
	args := splitArgs(text[region.Open+1 : region.Close])
	joined := text[:region.Open+1] + strings.Join(args, ", ") + text[region.Close:]
	return changed(orig, joined)
}

func changed(orig []string, text string) ([]string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) == len(orig) {
		same := true
		for i := range lines {
			if lines[i] != orig[i] {
				same = false
				break
			}
		}
		if same {
			return orig, false
		}
	}
	return lines, true
}

// offsetOf converts a line/column position to an absolute offset in
// the newline-joined text, clamping out-of-range input.
func offsetOf(lines []string, p Position) int {
	if p.Line < 0 {
		return 0
	}
	off := 0
	for i := 0; i < p.Line && i < len(lines); i++ {
		off += len(lines[i]) + 1
	}
	if p.Line >= len(lines) {
		return off
	}
	col := p.Col
	if col > len(lines[p.Line]) {
		col = len(lines[p.Line])
	}
	if col < 0 {
		col = 0
	}
	return off + col
}

func isOpen(b byte) bool  { return b == '(' || b == '[' || b == '{' }
func isClose(b byte) bool { return b == ')' || b == ']' || b == '}' }

func match(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// findRegion locates the innermost balanced pair whose brackets
// surround off, ignoring brackets inside quoted strings.
func findRegion(text string, off int) (Region, bool) {
	type open struct {
		pos int
		ch  byte
	}
	var stack []open
	best := Region{Open: -1}

	var quote byte
	for i := 0; i < len(text); i++ {
		b := text[i]
		if quote != 0 {
			if b == '\\' {
				i++
			} else if b == quote {
				quote = 0
			}
			continue
		}
		switch {
		case b == '"' || b == '\'' || b == '`':
			quote = b
		case isOpen(b):
			stack = append(stack, open{pos: i, ch: b})
		case isClose(b):
			if len(stack) == 0 || match(stack[len(stack)-1].ch) != b {
				continue
			}
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if o.pos <= off && off <= i && o.pos > best.Open {
				best = Region{Open: o.pos, Close: i}
			}
		}
	}
	return best, best.Open >= 0
}

// splitArgs splits inner text on top-level commas, trimming
// whitespace and dropping empty tails left by trailing commas.
func splitArgs(inner string) []string {
	var args []string
	depth := 0
	var quote byte
	start := 0
	flush := func(end int) {
		arg := strings.TrimSpace(inner[start:end])
		if arg != "" {
			args = append(args, arg)
		}
		start = end + 1
	}
	for i := 0; i < len(inner); i++ {
		b := inner[i]
		if quote != 0 {
			if b == '\\' {
				i++
			} else if b == quote {
				quote = 0
			}
			continue
		}
		switch {
		case b == '"' || b == '\'' || b == '`':
			quote = b
		case isOpen(b):
			depth++
		case isClose(b):
			depth--
		case b == ',' && depth == 0:
			flush(i)
		}
	}
	flush(len(inner))
	return args
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}
