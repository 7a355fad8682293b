package tlscontext

import "strings"

// ContextSet is the default context plus zero or more named contexts,
// matching spec §4.D's "one context per configured server identity,
// plus the mandatory default built from frontend.*". Select implements
// the local half of component E's SNI resolution (spec §4.E step
// "local selection"): a linear scan of the named contexts, falling back
// to Default when none match or no server name was offered.
type ContextSet struct {
	Default *Context
	Named   []*Context
}

// SelectNamed scans the named contexts for an exact, case-insensitive,
// length-matched server name and reports whether one was found. It
// never consults Default, so callers can distinguish "no local
// configured identity for this name" (candidate for an async lookup)
// from "this is the fallback identity."
func (s *ContextSet) SelectNamed(name string) (*Context, bool) {
	name = strings.ToLower(name)
	for _, c := range s.Named {
		if c.matches(name) {
			return c, true
		}
	}
	return nil, false
}

// Select returns the local context for name, falling back to Default
// when no named context matches — the full local-selection function
// spec §4.E describes as always yielding some context.
func (s *ContextSet) Select(name string) *Context {
	if name == "" {
		return s.Default
	}
	if c, ok := s.SelectNamed(name); ok {
		return c
	}
	return s.Default
}
