// Package lookup holds the search state of a page: the loaded records, one
// filter string per tracked field, the suggestion panels and the filtered
// result set that is handed to a Renderer.
package lookup

import (
	"strings"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// Query restricts Key to values containing Value. An empty Value matches
// everything.
type Query struct {
	Key   string
	Value string
}

// normalize trims and lowercases user input before comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type prepared struct {
	key    string
	needle string
}

func prepare(queries []Query) []prepared {
	out := make([]prepared, 0, len(queries))
	for _, q := range queries {
		if n := normalize(q.Value); n != "" {
			out = append(out, prepared{key: q.Key, needle: n})
		}
	}
	return out
}

func (p prepared) match(r loader.Record) bool {
	return strings.Contains(strings.ToLower(r.String(p.key)), p.needle)
}

// Filter returns the records that satisfy every query, in their original
// order. The result is never nil.
func Filter(records []loader.Record, queries []Query) []loader.Record {
	active := prepare(queries)
	out := make([]loader.Record, 0, len(records))
	if len(active) == 0 {
		return append(out, records...)
	}
	for _, r := range records {
		if matchAll(r, active) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record satisfies every query.
func Matches(r loader.Record, queries []Query) bool {
	return matchAll(r, prepare(queries))
}

func matchAll(r loader.Record, active []prepared) bool {
	for _, p := range active {
		if !p.match(r) {
			return false
		}
	}
	return true
}
