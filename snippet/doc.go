// Package snippet implements the snippet grammar: parsing a tabstop/
// placeholder/variable body into a node tree and normalizing that tree
// into a canonical template.
//
// The pipeline is pure and I/O free:
//
//	tree, err := snippet.Parse("func ${1:name}($2) {\n\t$0\n}")
//	norm, err := snippet.Normalize(tree, resolver)
//
// Parse understands the LSP snippet syntax subset: bare tabstops ($1,
// ${1}), placeholders (${1:text}), choice lists (${1|a,b|}), transforms
// (${1/re/fmt/flags}, stored but never evaluated) and the analogous
// variable forms. Anything else is literal text.
//
// Normalize resolves variables through a Resolver, synchronizes
// duplicate tabstop ids to their first occurrence (the reference node)
// and guarantees the "text or placeholder" invariant on every
// interactive node, appending an implicit final "$0" when absent.
// Live, buffer-bound behavior is layered on top by snippet/session.
package snippet
