package procedures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/ppiankov/procspectre/internal/postgres"
)

// RoutineLister lists routines from a database catalog.
type RoutineLister interface {
	ListRoutines(ctx context.Context) ([]postgres.RoutineInfo, error)
}

// CatalogSource takes procedure names from a live database catalog instead of
// definition files. Overloads and same-named routines in different schemas
// collapse to a single name, since code references are matched by name only.
type CatalogSource struct {
	lister RoutineLister
}

// NewCatalogSource returns a CatalogSource backed by lister.
func NewCatalogSource(lister RoutineLister) *CatalogSource {
	return &CatalogSource{lister: lister}
}

// Names returns the sorted routine names.
func (s *CatalogSource) Names(ctx context.Context) ([]string, error) {
	routines, err := s.lister.ListRoutines(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	names := normalize(lo.Map(routines, func(r postgres.RoutineInfo, _ int) string { return r.Name }))
	slog.Debug("procedure catalog loaded", "routines", len(routines), "procedures", len(names))
	return names, nil
}
