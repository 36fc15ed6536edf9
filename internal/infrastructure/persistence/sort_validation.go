package persistence

import (
	"strings"

	"github.com/jobboard/backend/internal/domain/shared"
)

// sortColumns whitelists the columns a listing may order by. Client input
// never reaches ORDER BY unless it matches a column name exactly.
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

var (
	paymentSort      = newSortColumns("created_at", "updated_at", "amount", "points", "status", "paid_at")
	notificationSort = newSortColumns("created_at", "read_at")
)

// column returns name when it is whitelisted and the fallback otherwise
func (s sortColumns) column(name string) string {
	name = strings.TrimSpace(name)
	if _, ok := s.allowed[name]; ok {
		return name
	}
	return s.fallback
}

// direction is ASC only when asked for; anything else is newest first
func direction(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// clause builds the "column DIR" ORDER BY expression for a filter
func (s sortColumns) clause(filter shared.Filter) string {
	return s.column(filter.OrderBy) + " " + direction(filter.OrderDir)
}
