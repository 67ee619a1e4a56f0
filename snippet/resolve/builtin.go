package resolve

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context supplies the editor state the built-in variables compute
// from. Zero values degrade gracefully: file variables stay unresolved
// without a Path, TM_SELECTED_TEXT stays unresolved without a
// selection, and so on.
type Context struct {
	// Path is the absolute path of the current file.
	Path string

	// WorkspaceRoot anchors RELATIVE_FILEPATH and WORKSPACE_FOLDER.
	WorkspaceRoot string

	// Line is the text of the current line.
	Line string

	// LineIndex is the zero-based current line number.
	LineIndex int

	// Word is the word under the cursor.
	Word string

	// Selection is the most recently selected text.
	Selection string

	// Clipboard reads the clipboard; nil leaves CLIPBOARD unresolved.
	// SystemClipboard provides an OS-backed implementation.
	Clipboard func() (string, bool)

	// Now and RandUint exist for tests; nil means time.Now and a
	// shared PRNG.
	Now      func() time.Time
	RandUint func() uint64
}

func (c Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Context) randUint() uint64 {
	if c.RandUint != nil {
		return c.RandUint()
	}
	return rand.Uint64()
}

// Builtin resolves the computed variable set: TM_* editor state, file
// path variants, CURRENT_* date and time fields, RANDOM, RANDOM_HEX,
// UUID and CLIPBOARD.
type Builtin struct {
	ctx Context
}

// NewBuiltin creates a builtin resolver over ctx.
func NewBuiltin(ctx Context) *Builtin {
	return &Builtin{ctx: ctx}
}

// Resolve implements snippet.Resolver.
func (b *Builtin) Resolve(name string) (string, bool) {
	switch name {
	case "TM_SELECTED_TEXT":
		return b.ctx.Selection, b.ctx.Selection != ""
	case "TM_CURRENT_LINE":
		return b.ctx.Line, true
	case "TM_CURRENT_WORD":
		return b.ctx.Word, true
	case "TM_LINE_INDEX":
		return strconv.Itoa(b.ctx.LineIndex), true
	case "TM_LINE_NUMBER":
		return strconv.Itoa(b.ctx.LineIndex + 1), true
	case "CLIPBOARD":
		if b.ctx.Clipboard == nil {
			return "", false
		}
		return b.ctx.Clipboard()
	case "RANDOM":
		return fmt.Sprintf("%06d", b.ctx.randUint()%1000000), true
	case "RANDOM_HEX":
		return fmt.Sprintf("%06x", b.ctx.randUint()%0x1000000), true
	case "UUID":
		return uuid.NewString(), true
	}
	if v, ok := b.file(name); ok {
		return v, true
	}
	return b.clock(name)
}

func (b *Builtin) file(name string) (string, bool) {
	if b.ctx.Path == "" {
		return "", false
	}
	switch name {
	case "TM_FILENAME":
		return filepath.Base(b.ctx.Path), true
	case "TM_FILENAME_BASE":
		base := filepath.Base(b.ctx.Path)
		return strings.TrimSuffix(base, filepath.Ext(base)), true
	case "TM_DIRECTORY":
		return filepath.Dir(b.ctx.Path), true
	case "TM_FILEPATH":
		return b.ctx.Path, true
	case "WORKSPACE_FOLDER":
		return b.ctx.WorkspaceRoot, b.ctx.WorkspaceRoot != ""
	case "RELATIVE_FILEPATH":
		if b.ctx.WorkspaceRoot == "" {
			return "", false
		}
		rel, err := filepath.Rel(b.ctx.WorkspaceRoot, b.ctx.Path)
		if err != nil {
			return "", false
		}
		return rel, true
	}
	return "", false
}

func (b *Builtin) clock(name string) (string, bool) {
	now := b.now(name)
	if now == "" {
		return "", false
	}
	return now, true
}

func (b *Builtin) now(name string) string {
	t := b.ctx.now()
	switch name {
	case "CURRENT_YEAR":
		return t.Format("2006")
	case "CURRENT_YEAR_SHORT":
		return t.Format("06")
	case "CURRENT_MONTH":
		return t.Format("01")
	case "CURRENT_MONTH_NAME":
		return t.Format("January")
	case "CURRENT_MONTH_NAME_SHORT":
		return t.Format("Jan")
	case "CURRENT_DATE":
		return t.Format("02")
	case "CURRENT_DAY_NAME":
		return t.Format("Monday")
	case "CURRENT_DAY_NAME_SHORT":
		return t.Format("Mon")
	case "CURRENT_HOUR":
		return t.Format("15")
	case "CURRENT_MINUTE":
		return t.Format("04")
	case "CURRENT_SECOND":
		return t.Format("05")
	case "CURRENT_SECONDS_UNIX":
		return strconv.FormatInt(t.Unix(), 10)
	case "CURRENT_TIMEZONE_OFFSET":
		return t.Format("-07:00")
	}
	return ""
}
