package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseTOML(t *testing.T) {
	data := []byte(`
[fn]
prefix = "fn"
body = ["func ${1:name}($2) {", "\t$0", "}"]
description = "function definition"

[ret]
body = "return $0"
`)
	snippets, err := Parse("snippets.toml", data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(snippets) != 2 {
		t.Fatalf("len = %d, want 2", len(snippets))
	}
	fn := snippets[0]
	if fn.Name != "fn" || fn.Prefix != "fn" {
		t.Errorf("fn = %+v", fn)
	}
	if fn.Body != "func ${1:name}($2) {\n\t$0\n}" {
		t.Errorf("fn body = %q", fn.Body)
	}
	if fn.Description != "function definition" {
		t.Errorf("fn description = %q", fn.Description)
	}
	ret := snippets[1]
	if ret.Prefix != "ret" {
		t.Errorf("missing prefix did not default to name: %+v", ret)
	}
	if ret.Body != "return $0" {
		t.Errorf("ret body = %q", ret.Body)
	}
}

func TestParseYAMLAndJSON(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{
			name: "yaml",
			path: "snippets.yaml",
			data: "log:\n  prefix: lg\n  body:\n    - \"log.Printf($0)\"\n",
		},
		{
			name: "json",
			path: "snippets.json",
			data: `{"log": {"prefix": "lg", "body": ["log.Printf($0)"]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snippets, err := Parse(tt.path, []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(snippets) != 1 {
				t.Fatalf("len = %d, want 1", len(snippets))
			}
			if snippets[0].Prefix != "lg" || snippets[0].Body != "log.Printf($0)" {
				t.Errorf("snippet = %+v", snippets[0])
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{"missing body", "s.toml", "[a]\nprefix = \"a\"\n"},
		{"body not string", "s.toml", "[a]\nbody = 3\n"},
		{"body line not string", "s.yaml", "a:\n  body: [1, 2]\n"},
		{"definition not table", "s.yaml", "a: hi\n"},
		{"bad toml", "s.toml", "= broken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.path, []byte(tt.data))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
			if perr.Path != tt.path {
				t.Errorf("Path = %q, want %q", perr.Path, tt.path)
			}
		})
	}

	if _, err := Parse("s.ini", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown extension error = %v, want ErrUnknownFormat", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	snippets, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if snippets != nil {
		t.Errorf("snippets = %v, want nil", snippets)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "10-base.toml", "[fn]\nbody = \"base $0\"\n")
	write(t, dir, "20-user.yaml", "fn:\n  body: user $0\nother:\n  body: o\n")
	write(t, dir, "notes.txt", "ignored")

	snippets, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	set := NewSet(snippets...)
	if set.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", set.Len())
	}
	// Later file wins on the shared prefix.
	sn, ok := set.Lookup("fn")
	if !ok || sn.Body != "user $0" {
		t.Errorf("Lookup(fn) = %+v, %v", sn, ok)
	}
}

func TestLoadDirMissing(t *testing.T) {
	snippets, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if snippets != nil {
		t.Errorf("snippets = %v, want nil", snippets)
	}
}

func TestSetComplete(t *testing.T) {
	set := NewSet(
		Snippet{Prefix: "fn", Body: "a"},
		Snippet{Prefix: "fne", Body: "b"},
		Snippet{Prefix: "ret", Body: "c"},
	)
	got := set.Complete("fn")
	if len(got) != 2 || got[0].Prefix != "fn" || got[1].Prefix != "fne" {
		t.Errorf("Complete(fn) = %+v", got)
	}
	if all := set.All(); len(all) != 3 {
		t.Errorf("All() len = %d, want 3", len(all))
	}
}

func TestSetMatchAt(t *testing.T) {
	set := NewSet(
		Snippet{Prefix: "fn", Body: "short"},
		Snippet{Prefix: "ifn", Body: "long"},
	)
	tests := []struct {
		name    string
		line    string
		col     int
		want    string
		matched int
		ok      bool
	}{
		{"at line start", "fn", 2, "short", 2, true},
		{"after space", "x fn", 4, "short", 2, true},
		{"longest wins", "ifn", 3, "long", 3, true},
		{"word char before", "xfn", 3, "", 0, false},
		{"no match", "zz", 2, "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn, n, ok := set.MatchAt(tt.line, tt.col)
			if ok != tt.ok || n != tt.matched {
				t.Fatalf("MatchAt() = %+v, %d, %v", sn, n, ok)
			}
			if ok && sn.Body != tt.want {
				t.Errorf("body = %q, want %q", sn.Body, tt.want)
			}
		})
	}
}

func TestCacheReload(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.toml", "[fn]\nbody = \"one\"\n")

	c, err := NewCache([]string{dir}, false)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	defer c.Close()

	set, err := c.Snippets()
	if err != nil {
		t.Fatalf("Snippets() error = %v", err)
	}
	if sn, _ := set.Lookup("fn"); sn.Body != "one" {
		t.Fatalf("Lookup(fn) = %+v", sn)
	}

	write(t, dir, "a.toml", "[fn]\nbody = \"two\"\n")

	// Fresh content is served only after invalidation.
	set, _ = c.Snippets()
	if sn, _ := set.Lookup("fn"); sn.Body != "one" {
		t.Errorf("cached Lookup(fn) = %+v, want one", sn)
	}
	c.Invalidate()
	set, err = c.Snippets()
	if err != nil {
		t.Fatalf("Snippets() after invalidate error = %v", err)
	}
	if sn, _ := set.Lookup("fn"); sn.Body != "two" {
		t.Errorf("reloaded Lookup(fn) = %+v, want two", sn)
	}
}

func TestCacheClosed(t *testing.T) {
	c, err := NewCache(nil, false)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := c.Snippets(); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Snippets() error = %v, want ErrCacheClosed", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func write(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}
