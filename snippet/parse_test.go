package snippet

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, body string) NodeList {
	t.Helper()
	list, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", body, err)
	}
	return list
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		name string
		body string
		want NodeList
	}{
		{"plain text", "hello world", NodeList{&Text{Content: "hello world"}}},
		{"empty body", "", nil},
		{"lone dollar", "cost: $", NodeList{&Text{Content: "cost: $"}}},
		{"dollar before space", "a $ b", NodeList{&Text{Content: "a $ b"}}},
		{"unmatched close brace", "a } b", NodeList{&Text{Content: "a } b"}}},
		{"unmatched open brace", "a { b", NodeList{&Text{Content: "a { b"}}},
		{"dollar brace no id", "a ${-} b", NodeList{&Text{Content: "a ${-} b"}}},
		{"escaped dollar", `\$1`, NodeList{&Text{Content: "$1"}}},
		{"escaped close brace", `a\}b`, NodeList{&Text{Content: "a}b"}}},
		{"escaped backslash", `a\\b`, NodeList{&Text{Content: `a\b`}}},
		{"backslash before other", `a\nb`, NodeList{&Text{Content: `a\nb`}}},
		{"trailing backslash", `ab\`, NodeList{&Text{Content: `ab\`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.body)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}

func TestParseTabstops(t *testing.T) {
	tests := []struct {
		name string
		body string
		want NodeList
	}{
		{"bare", "$1", NodeList{&Tabstop{ID: "1"}}},
		{"braced", "${1}", NodeList{&Tabstop{ID: "1"}}},
		{"multi digit", "$10", NodeList{&Tabstop{ID: "10"}}},
		{"leading zero distinct", "${01}", NodeList{&Tabstop{ID: "01"}}},
		{
			"placeholder",
			"${1:aa}",
			NodeList{&Tabstop{ID: "1", Placeholder: NodeList{&Text{Content: "aa"}}}},
		},
		{
			"empty placeholder",
			"${1:}",
			NodeList{&Tabstop{ID: "1", Placeholder: NodeList{}}},
		},
		{
			"nested placeholder",
			"${1:<${2:x}>}",
			NodeList{&Tabstop{ID: "1", Placeholder: NodeList{
				&Text{Content: "<"},
				&Tabstop{ID: "2", Placeholder: NodeList{&Text{Content: "x"}}},
				&Text{Content: ">"},
			}}},
		},
		{
			"placeholder with escapes",
			`${1:a\}b\$c}`,
			NodeList{&Tabstop{ID: "1", Placeholder: NodeList{&Text{Content: "a}b$c"}}}},
		},
		{
			"text around tabstop",
			"T1=$1!",
			NodeList{&Text{Content: "T1="}, &Tabstop{ID: "1"}, &Text{Content: "!"}},
		},
		{
			"digits stop at non-digit",
			"$1x",
			NodeList{&Tabstop{ID: "1"}, &Text{Content: "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.body)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}

func TestParseChoices(t *testing.T) {
	t.Run("two choices", func(t *testing.T) {
		got := mustParse(t, "${1|aa,bb|}")
		want := NodeList{&Tabstop{ID: "1", Choices: []string{"aa", "bb"}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("escaped separators", func(t *testing.T) {
		got := mustParse(t, `${1|a\,b,c\|d,e\\f|}`)
		want := NodeList{&Tabstop{ID: "1", Choices: []string{"a,b", "c|d", `e\f`}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single choice", func(t *testing.T) {
		got := mustParse(t, "${1|only|}")
		want := NodeList{&Tabstop{ID: "1", Choices: []string{"only"}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestParseTransforms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want NodeList
	}{
		{
			"tabstop transform",
			"${1/foo/bar/g}",
			NodeList{&Tabstop{ID: "1", Transform: &Transform{Pattern: "foo", Format: "bar", Flags: "g"}}},
		},
		{
			"empty flags",
			"${1/foo/bar/}",
			NodeList{&Tabstop{ID: "1", Transform: &Transform{Pattern: "foo", Format: "bar"}}},
		},
		{
			"escaped slash in regex",
			`${1/a\/b/c/}`,
			NodeList{&Tabstop{ID: "1", Transform: &Transform{Pattern: "a/b", Format: "c"}}},
		},
		{
			"slash inside nested braces is not a separator",
			"${1/x/${1:?a/b:c}/i}",
			NodeList{&Tabstop{ID: "1", Transform: &Transform{Pattern: "x", Format: "${1:?a/b:c}", Flags: "i"}}},
		},
		{
			"variable transform",
			"${TM_FILENAME/(.*)\\..+$/$1/}",
			NodeList{&Variable{Name: "TM_FILENAME", Transform: &Transform{Pattern: `(.*)\..+$`, Format: "$1"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.body)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}

func TestParseVariables(t *testing.T) {
	tests := []struct {
		name string
		body string
		want NodeList
	}{
		{"bare", "$name", NodeList{&Variable{Name: "name"}}},
		{"braced", "${name}", NodeList{&Variable{Name: "name"}}},
		{"underscore start", "$_x1", NodeList{&Variable{Name: "_x1"}}},
		{
			"with placeholder",
			"${name:default}",
			NodeList{&Variable{Name: "name", Placeholder: NodeList{&Text{Content: "default"}}}},
		},
		{
			"name stops at invalid char",
			"$name-rest",
			NodeList{&Variable{Name: "name"}, &Text{Content: "-rest"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.body)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.body, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"tabstop bad follower", "${1 }", "tabstop id must be followed by one of"},
		{"tabstop unterminated", "${1", "tabstop id must be followed by one of"},
		{"placeholder not closed", "${1:ab", "placeholder not closed with `}`"},
		{"nested placeholder not closed", "${1:${2:x}", "placeholder not closed with `}`"},
		{"choices not closed", "${1|a,b", "choice list must close with `|}`"},
		{"choices bare pipe", "${1|a|b}", "choice list must close with `|}`"},
		{"transform too few slashes", "${1/a/b}", "transform must contain exactly 3 unescaped `/`"},
		{"transform too many slashes", "${1/a/b/c/d}", "transform must contain exactly 3 unescaped `/`"},
		{"transform unterminated", "${1/a/b/c", "transform must contain exactly 3 unescaped `/`"},
		{"variable bad follower", "${name!}", "variable name must be followed by one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.body)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error type %T, want *SyntaxError", tt.body, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse(%q) error %q does not mention %q", tt.body, err, tt.wantMsg)
			}
		})
	}
}

func TestParseLines(t *testing.T) {
	got, err := ParseLines([]string{"if $1 {", "\t$0", "}"})
	if err != nil {
		t.Fatalf("ParseLines failed: %v", err)
	}
	want := NodeList{
		&Text{Content: "if "},
		&Tabstop{ID: "1"},
		&Text{Content: " {\n\t"},
		&Tabstop{ID: "0"},
		&Text{Content: "\n}"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseLines mismatch (-want +got):\n%s", diff)
	}
}
