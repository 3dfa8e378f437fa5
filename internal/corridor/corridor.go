// Package corridor turns a route polyline into the set of geohash cells it
// passes through.
package corridor

import (
	"sort"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/mmcloughlin/geohash"
)

// DefaultPrecision gives cells of roughly 1.2 km x 0.6 km.
const DefaultPrecision uint = 6

type Builder struct {
	precision uint
}

func NewBuilder(precision uint) *Builder {
	if precision == 0 || precision > 12 {
		precision = DefaultPrecision
	}
	return &Builder{precision: precision}
}

func (b *Builder) Precision() uint { return b.precision }

// Step is the sampling interval for a route of the given length: every
// point is not needed on long routes, but short ones need dense sampling to
// tell nearby destinations apart.
func Step(distanceKm float64) int {
	switch {
	case distanceKm < 10:
		return 3
	case distanceKm < 50:
		return 5
	case distanceKm < 200:
		return 10
	default:
		return 15
	}
}

// Build encodes every Step-th point and returns the distinct cells, sorted.
// An empty polyline yields an empty corridor.
func (b *Builder) Build(points []domain.Point, distanceKm float64) []string {
	if len(points) == 0 {
		return []string{}
	}
	step := Step(distanceKm)
	seen := make(map[string]struct{}, len(points)/step+1)
	cells := make([]string, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		p := points[i]
		cell := geohash.EncodeWithPrecision(p.Lat, p.Lng, b.precision)
		if _, ok := seen[cell]; ok {
			continue
		}
		seen[cell] = struct{}{}
		cells = append(cells, cell)
	}
	sort.Strings(cells)
	return cells
}

// FromRoute builds the corridor for a resolved route.
func (b *Builder) FromRoute(route *domain.Route) []string {
	if route == nil {
		return []string{}
	}
	return b.Build(route.Points, route.DistanceKm())
}
