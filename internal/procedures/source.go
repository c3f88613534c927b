// Package procedures supplies the procedure-name vocabulary that code is
// searched for: either from a directory of definition files or from a live
// PostgreSQL catalog.
package procedures

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultPattern selects definition files under the definitions root.
const DefaultPattern = "**/*.sql"

// Source yields procedure names. Names are unique case-insensitively and keep
// the casing of their first occurrence.
type Source interface {
	Names(ctx context.Context) ([]string, error)
}

// normalize drops empty names, removes case-insensitive duplicates (first
// occurrence wins), and sorts the result.
func normalize(names []string) []string {
	names = lo.Filter(names, func(n string, _ int) bool { return n != "" })
	names = lo.UniqBy(names, strings.ToLower)
	sort.Strings(names)
	return names
}
