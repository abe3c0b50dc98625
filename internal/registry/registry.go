// Package registry holds the read-only mapping of known exchange-controlled
// addresses to their labels. It is loaded once per run and shared by both
// analyzers.
package registry

import (
	"strings"
)

// Entry is one known exchange address and its display label.
type Entry struct {
	Address string
	Label   string
}

// Registry answers case-insensitive membership queries over exchange
// addresses. Immutable after Build.
type Registry struct {
	entries map[string]Entry
}

// Build constructs a Registry from entries. Duplicate addresses are allowed;
// the last entry wins, favoring completeness over strictness.
func Build(entries []Entry) *Registry {
	out := make(map[string]Entry, len(entries))
	for _, entry := range entries {
		addr := strings.ToLower(strings.TrimSpace(entry.Address))
		if addr == "" {
			continue
		}
		label := strings.TrimSpace(entry.Label)
		if label == "" {
			label = addr
		}
		out[addr] = Entry{Address: addr, Label: label}
	}
	return &Registry{entries: out}
}

// Lookup returns the entry for addr, if registered.
func (r *Registry) Lookup(addr string) (Entry, bool) {
	entry, ok := r.entries[strings.ToLower(addr)]
	return entry, ok
}

// Contains reports whether addr is a known exchange address.
func (r *Registry) Contains(addr string) bool {
	_, ok := r.Lookup(addr)
	return ok
}

// Len returns the number of registered addresses.
func (r *Registry) Len() int {
	return len(r.entries)
}
