// Package resolve provides variable resolvers for snippet
// normalization: static lookup tables, the built-in computed variables
// (file, date/time, random, clipboard), Lua-scripted lookups, and
// combinators for chaining and memoizing them.
//
// The resolution order the engine expects is user table first, then
// builtins, then unresolved:
//
//	r := resolve.Chain(resolve.Map(user), resolve.NewBuiltin(ctx))
//	norm, err := snippet.Normalize(tree, r)
package resolve

import (
	"sync"

	"github.com/dshills/textkit/snippet"
)

// Map is a static lookup table resolver.
type Map map[string]string

// Resolve implements snippet.Resolver.
func (m Map) Resolve(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Chain combines resolvers; the first one to resolve a name wins.
// A nil entry is skipped.
func Chain(resolvers ...snippet.Resolver) snippet.Resolver {
	return snippet.ResolverFunc(func(name string) (string, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if v, ok := r.Resolve(name); ok {
				return v, true
			}
		}
		return "", false
	})
}

// Memoized caches resolution results so the underlying resolver is
// invoked at most once per distinct name, including unresolved names.
// snippet.Normalize already memoizes within one pass; Memoized extends
// that guarantee across passes sharing one resolver, e.g. the nested
// expansions of a session stack.
type Memoized struct {
	mu    sync.Mutex
	inner snippet.Resolver
	seen  map[string]memoEntry
}

type memoEntry struct {
	value string
	ok    bool
}

// NewMemoized wraps inner with a per-name cache.
func NewMemoized(inner snippet.Resolver) *Memoized {
	return &Memoized{inner: inner, seen: make(map[string]memoEntry)}
}

// Resolve implements snippet.Resolver.
func (m *Memoized) Resolve(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.seen[name]; ok {
		return e.value, e.ok
	}
	var e memoEntry
	if m.inner != nil {
		e.value, e.ok = m.inner.Resolve(name)
	}
	m.seen[name] = e
	return e.value, e.ok
}

// Reset drops all cached results.
func (m *Memoized) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = make(map[string]memoEntry)
}
