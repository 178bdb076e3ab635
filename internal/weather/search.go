package weather

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// FilterLocations applies the dashboard search to list. The query is trimmed
// and lowercased; an empty query yields the first PreviewCount entries,
// otherwise every entry whose city, state or zip contains the query
// (case-insensitively) is returned in original order.
func FilterLocations(list []Location, query string) []Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Head(list, PreviewCount)
	}

	out := make([]Location, 0)
	for _, l := range list {
		if common.HasAny(q, strings.ToLower(l.City), strings.ToLower(l.State), l.Zip.String()) {
			out = append(out, l)
		}
	}
	return out
}

// Head returns a copy of at most the first n entries of list.
func Head(list []Location, n int) []Location {
	if n > len(list) {
		n = len(list)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Location, n)
	copy(out, list[:n])
	return out
}
