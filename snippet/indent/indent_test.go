package indent

import "testing"

func TestPrefixAt(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		line string
		col  int
		want string
	}{
		{"no indent", Config{}, "text", 2, ""},
		{"spaces", Config{}, "    text", 6, "    "},
		{"tabs", Config{}, "\t\ttext", 4, "\t\t"},
		{"position inside indent", Config{}, "    text", 2, "  "},
		{"position at line start", Config{}, "    text", 0, ""},
		{
			"comment leader from commentstring",
			Config{CommentString: "// %s"},
			"  // text",
			7,
			"  // ",
		},
		{
			"position inside leader excludes it",
			Config{CommentString: "// %s"},
			"  // text",
			3,
			"  ",
		},
		{
			"position right after leader excludes it",
			Config{CommentString: "// %s"},
			"  // text",
			4,
			"  ",
		},
		{
			"leader spec list",
			Config{Leaders: []LeaderSpec{{Text: "--"}, {Text: "---"}}},
			"\t--- x",
			5,
			"\t--- ",
		},
		{
			"blank-after leader requires blank",
			Config{Leaders: []LeaderSpec{{Text: "-", BlankAfter: true}}},
			"-x",
			2,
			"",
		},
		{
			"blank-after leader with blank",
			Config{Leaders: []LeaderSpec{{Text: "-", BlankAfter: true}}},
			"- x",
			3,
			"- ",
		},
		{
			"first-only leader ignored",
			Config{Leaders: []LeaderSpec{{Text: "/*", FirstOnly: true}}},
			"/* x",
			4,
			"",
		},
		{"column past line end", Config{}, "  ab", 99, "  ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.PrefixAt(tt.line, tt.col); got != tt.want {
				t.Errorf("PrefixAt(%q, %d) = %q, want %q", tt.line, tt.col, got, tt.want)
			}
		})
	}
}

func TestReflow(t *testing.T) {
	tests := []struct {
		name string
		text string
		base string
		opts Options
		want string
	}{
		{"single line untouched", "hello", "  ", Options{}, "hello"},
		{
			"continuation lines get base",
			"a\nb\nc",
			"\t",
			Options{},
			"a\n\tb\n\tc",
		},
		{
			"common indent dedented",
			"if {\n    x\n      y\n    }",
			"  ",
			Options{},
			"if {\n  x\n    y\n  }",
		},
		{
			"blank lines reindented but ignored for dedent",
			"a\n  b\n\n  c",
			"\t",
			Options{},
			"a\n\tb\n\t\n\tc",
		},
		{
			"pure indent line shorter than dedent",
			"a\n    b\n  \n    c",
			"",
			Options{},
			"a\nb\n\nc",
		},
		{
			"expand tabs",
			"a\n\tb\n\t\tc",
			" ",
			Options{ExpandTab: true, ShiftWidth: 4},
			"a\n b\n     c",
		},
		{
			"tabs preserved without expandtab",
			"a\n\tb\n\t\tc",
			" ",
			Options{},
			"a\n b\n \tc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reflow(tt.text, tt.base, tt.opts); got != tt.want {
				t.Errorf("Reflow(%q, %q) = %q, want %q", tt.text, tt.base, got, tt.want)
			}
		})
	}
}

func TestReflowIdempotent(t *testing.T) {
	bases := []string{"", "  ", "\t", "  // "}
	texts := []string{
		"a\n  b\n    c",
		"func() {\n\tbody\n}",
		"one\n\ntwo",
	}
	for _, base := range bases {
		for _, text := range texts {
			once := Reflow(text, base, Options{})
			twice := Reflow(once, base, Options{})
			if once != twice {
				t.Errorf("Reflow not idempotent for base %q text %q:\nonce  %q\ntwice %q",
					base, text, once, twice)
			}
		}
	}
}
