package resolve

import (
	"os/exec"
	"runtime"
	"strings"
)

// clipboardCommands lists paste commands in preference order per
// platform. The first one present on PATH wins.
var clipboardCommands = map[string][][]string{
	"darwin": {
		{"pbpaste"},
	},
	"linux": {
		{"wl-paste", "--no-newline"},
		{"xclip", "-selection", "clipboard", "-o"},
		{"xsel", "--clipboard", "--output"},
	},
}

// SystemClipboard returns a Context.Clipboard function backed by the
// platform paste utility. Lookup of the utility happens once; reading
// happens on every call. On unsupported platforms or when no utility
// is installed the returned function reports unresolved.
func SystemClipboard() func() (string, bool) {
	var args []string
	for _, candidate := range clipboardCommands[runtime.GOOS] {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			args = candidate
			break
		}
	}
	if args == nil {
		return func() (string, bool) { return "", false }
	}
	return func() (string, bool) {
		out, err := exec.Command(args[0], args[1:]...).Output()
		if err != nil {
			return "", false
		}
		return strings.TrimSuffix(string(out), "\n"), true
	}
}
