// Package loader discovers and loads snippet definition files.
//
// Definitions live in TOML, YAML, or JSON files mapping a snippet name
// to its prefix, body, and description. The body may be one string or
// an array of lines:
//
//	[fn]
//	prefix = "fn"
//	body = ["func ${1:name}($2) {", "\t$0", "}"]
//	description = "function definition"
//
// Files merge into a Set in load order, later definitions replacing
// earlier ones with the same prefix. DefaultDirs returns the XDG
// search path with the user config directory last, so user snippets
// override system ones. Cache keeps the merged set in memory and
// watches the directories for changes.
package loader
