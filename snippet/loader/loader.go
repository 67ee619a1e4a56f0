package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Snippet is one loaded snippet definition.
type Snippet struct {
	// Name is the table key the snippet was defined under.
	Name string

	// Prefix triggers the snippet. Defaults to Name.
	Prefix string

	// Body is the template text, lines joined with newlines.
	Body string

	// Description is an optional human readable summary.
	Description string

	// Source is the file the definition came from.
	Source string
}

// Parse decodes snippet definitions from data. The format follows the
// file extension of path: .toml is TOML, .yaml/.yml/.json are YAML
// (JSON being a YAML subset).
func Parse(path string, data []byte) ([]Snippet, error) {
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	case ".yaml", ".yml", ".json":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return fromRaw(path, raw)
}

// fromRaw converts the decoded name -> definition map into snippets,
// sorted by name so load order is deterministic.
func fromRaw(path string, raw map[string]any) ([]Snippet, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	snippets := make([]Snippet, 0, len(names))
	for _, name := range names {
		def, ok := raw[name].(map[string]any)
		if !ok {
			return nil, &ParseError{
				Path:    path,
				Message: fmt.Sprintf("snippet %q: definition must be a table", name),
			}
		}
		s := Snippet{Name: name, Prefix: name, Source: path}
		if v, ok := def["prefix"]; ok {
			p, ok := v.(string)
			if !ok {
				return nil, &ParseError{
					Path:    path,
					Message: fmt.Sprintf("snippet %q: prefix must be a string", name),
				}
			}
			s.Prefix = p
		}
		body, ok := def["body"]
		if !ok {
			return nil, &ParseError{
				Path:    path,
				Message: fmt.Sprintf("snippet %q: missing body", name),
			}
		}
		text, err := bodyText(body)
		if err != nil {
			return nil, &ParseError{
				Path:    path,
				Message: fmt.Sprintf("snippet %q: %v", name, err),
			}
		}
		s.Body = text
		if v, ok := def["description"].(string); ok {
			s.Description = v
		}
		snippets = append(snippets, s)
	}
	return snippets, nil
}

// bodyText accepts a body given either as one string or as an array
// of lines.
func bodyText(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []any:
		lines := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return "", fmt.Errorf("body line %d is not a string", i)
			}
			lines[i] = s
		}
		return strings.Join(lines, "\n"), nil
	case []string:
		return strings.Join(v, "\n"), nil
	default:
		return "", fmt.Errorf("body must be a string or an array of strings")
	}
}

// LoadFile reads and parses one snippet file. A missing file is not
// an error and yields no snippets.
func LoadFile(path string) ([]Snippet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snippet file %s: %w", path, err)
	}
	return Parse(path, data)
}

// LoadDir loads every snippet file in dir, shallow, in lexical file
// order. Files with unrecognized extensions are skipped; a missing
// directory yields no snippets.
func LoadDir(dir string) ([]Snippet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snippet dir %s: %w", dir, err)
	}
	var snippets []Snippet
	for _, e := range entries {
		if e.IsDir() || !recognized(e.Name()) {
			continue
		}
		loaded, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		snippets = append(snippets, loaded...)
	}
	return snippets, nil
}

func recognized(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml", ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// DefaultDirs returns the snippet search path: the user config
// directory first, then system config directories. Later directories
// are loaded later and therefore win on duplicate prefixes.
func DefaultDirs() []string {
	dirs := []string{filepath.Join(xdg.ConfigHome, "textkit", "snippets")}
	for _, d := range xdg.ConfigDirs {
		dirs = append(dirs, filepath.Join(d, "textkit", "snippets"))
	}
	// User config last so it overrides system definitions.
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}
