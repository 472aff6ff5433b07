package lookup

import (
	"strings"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// DefaultSuggestionLimit caps every suggestion list.
const DefaultSuggestionLimit = 12

// Suggest collects up to limit distinct, non-empty values of key whose
// lowercase form contains the trimmed, lowercased query. Values keep the
// order in which they first appear in records. An empty query yields no
// suggestions.
func Suggest(records []loader.Record, key, query string, limit int) []string {
	q := normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, limit)
	var out []string
	for _, r := range records {
		v := r.String(key)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		if !strings.Contains(strings.ToLower(v), q) {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}
