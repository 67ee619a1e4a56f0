// Package indent computes indent prefixes at buffer positions and
// re-applies relative indentation when multi-line snippet text is
// rendered. The prefix of the insertion line (leading whitespace plus,
// optionally, a recognized comment leader) is what every continuation
// line of an expansion inherits.
package indent

import "strings"

// Options carries the host whitespace settings used when reflowing.
type Options struct {
	// ExpandTab replaces tab characters in re-applied indentation with
	// spaces. When false literal tabs are preserved.
	ExpandTab bool

	// ShiftWidth is the number of spaces one tab expands to. Zero
	// falls back to TabStop, then to 8.
	ShiftWidth int

	// TabStop is the display width of a tab character.
	TabStop int
}

func (o Options) tabWidth() int {
	if o.ShiftWidth > 0 {
		return o.ShiftWidth
	}
	if o.TabStop > 0 {
		return o.TabStop
	}
	return 8
}

// LeaderSpec describes one recognized comment leader.
type LeaderSpec struct {
	// Text is the literal leader, e.g. "//" or "-".
	Text string

	// BlankAfter requires the leader to be followed by whitespace to
	// be recognized.
	BlankAfter bool

	// FirstOnly marks a leader that may only start a comment block and
	// never repeats on continuation lines. Such leaders are not part
	// of an indent prefix.
	FirstOnly bool
}

// Config describes how indent prefixes are recognized for a buffer.
// Leader sources mirror the host's comment definition: a single
// template containing "%s" and/or an explicit leader list.
type Config struct {
	// CommentString is a leader template such as "// %s". The text
	// left of "%s", trimmed of surrounding blanks, is a leader.
	CommentString string

	// Leaders lists additional leader specs.
	Leaders []LeaderSpec

	Options
}

// leaders returns every usable leader, longest first so that e.g.
// "///" wins over "//".
func (c Config) leaders() []LeaderSpec {
	var out []LeaderSpec
	if i := strings.Index(c.CommentString, "%s"); i >= 0 {
		if text := strings.TrimSpace(c.CommentString[:i]); text != "" {
			out = append(out, LeaderSpec{Text: text})
		}
	}
	for _, l := range c.Leaders {
		if l.Text != "" && !l.FirstOnly {
			out = append(out, l)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j].Text) > len(out[j-1].Text); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// PrefixAt returns the indent prefix of line at column col: the
// leading whitespace run, extended through a recognized comment leader
// and its trailing whitespace when the position is strictly after the
// leader. A position inside the whitespace run or inside the leader
// itself yields only the part before the position.
func (c Config) PrefixAt(line string, col int) string {
	if col > len(line) {
		col = len(line)
	}
	text := line[:col]

	ws := 0
	for ws < len(text) && (text[ws] == ' ' || text[ws] == '\t') {
		ws++
	}
	if ws == len(text) {
		return text
	}

	rest := text[ws:]
	for _, l := range c.leaders() {
		if !strings.HasPrefix(rest, l.Text) {
			continue
		}
		end := ws + len(l.Text)
		if l.BlankAfter && (end >= len(line) || (line[end] != ' ' && line[end] != '\t')) {
			continue
		}
		// The leader counts only when the position is strictly after it.
		if col <= end {
			break
		}
		for end < col && (text[end] == ' ' || text[end] == '\t') {
			end++
		}
		return text[:end]
	}
	return text[:ws]
}

// Reflow re-indents multi-line text for insertion behind base: lines
// after the first are dedented by their common leading whitespace and
// prefixed with base. Blank and whitespace-only lines do not take part
// in computing the dedent but are still re-prefixed. Reflowing text
// that already carries base is a no-op.
func Reflow(text, base string, opts Options) string {
	if !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	tail := lines[1:]

	// Strip an existing base prefix first so repeated reflows with the
	// same base converge. Comment leaders in base would otherwise
	// stack up.
	if base != "" && hasBaseEverywhere(tail, base) {
		for i, line := range tail {
			if strings.HasPrefix(line, base) {
				tail[i] = line[len(base):]
			} else {
				tail[i] = trimCommonPrefix(line, base)
			}
		}
	}

	dedent := commonIndent(tail)
	for i, line := range tail {
		line = trimCommonPrefix(line, dedent)
		if opts.ExpandTab {
			line = expandLeadingTabs(line, opts.tabWidth())
		}
		tail[i] = base + line
	}
	return strings.Join(lines, "\n")
}

// hasBaseEverywhere reports whether every non-blank line starts with
// base. Blank lines only need to be a prefix of base themselves.
func hasBaseEverywhere(lines []string, base string) bool {
	any := false
	for _, line := range lines {
		if isBlank(line) {
			if !strings.HasPrefix(line, base) && !strings.HasPrefix(base, line) {
				return false
			}
			continue
		}
		if !strings.HasPrefix(line, base) {
			return false
		}
		any = true
	}
	return any
}

// commonIndent returns the longest whitespace prefix shared by all
// non-blank lines.
func commonIndent(lines []string) string {
	common := ""
	first := true
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		ind := leadingWhitespace(line)
		if first {
			common = ind
			first = false
			continue
		}
		common = commonPrefix(common, ind)
		if common == "" {
			return ""
		}
	}
	return common
}

func leadingWhitespace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[:i]
}

func isBlank(s string) bool { return strings.TrimRight(s, " \t") == "" }

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// trimCommonPrefix removes from s the longest prefix it shares with p.
func trimCommonPrefix(s, p string) string {
	return s[len(commonPrefix(s, p)):]
}

// expandLeadingTabs replaces tabs in the leading whitespace of s with
// width spaces each.
func expandLeadingTabs(s string, width int) string {
	ind := leadingWhitespace(s)
	if !strings.Contains(ind, "\t") {
		return s
	}
	expanded := strings.ReplaceAll(ind, "\t", strings.Repeat(" ", width))
	return expanded + s[len(ind):]
}
