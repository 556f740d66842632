// Package classify maps visited URLs to interest categories using a
// domain-to-category table.
package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/konomi/internal/interest"
)

// tableVersion is the only table file format version LoadTable accepts.
const tableVersion = 1

// Table is an immutable domain-to-interest lookup. Keys are lowercase exact
// hosts or registrable domains; a replaced Table is swapped wholesale, never
// mutated in place.
type Table struct {
	domains map[string]interest.Interest
}

type tableFile struct {
	Version int               `json:"version"`
	Domains map[string]string `json:"domains"`
}

// NewTable builds a Table from a domain-to-category map. Keys are lowercased.
func NewTable(domains map[string]interest.Interest) *Table {
	t := &Table{domains: make(map[string]interest.Interest, len(domains))}
	for d, c := range domains {
		t.domains[strings.ToLower(d)] = c
	}
	return t
}

// LoadTable reads a table from a JSON file of the form
//
//	{"version": 1, "domains": {"example.com": "tech", ...}}
//
// Any unknown category name fails the whole load, so a half-usable table is
// never installed.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	var f tableFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse table: %w", err)
	}
	if f.Version != tableVersion {
		return nil, fmt.Errorf("unsupported table version %d", f.Version)
	}
	domains := make(map[string]interest.Interest, len(f.Domains))
	for d, name := range f.Domains {
		c, err := interest.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", d, err)
		}
		domains[strings.ToLower(d)] = c
	}
	return &Table{domains: domains}, nil
}

// Lookup returns the category mapped to a lowercase host or registrable
// domain.
func (t *Table) Lookup(host string) (interest.Interest, bool) {
	c, ok := t.domains[host]
	return c, ok
}

// Len returns the number of table entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.domains)
}
