// Package routing resolves driving routes between two coordinates.
package routing

import (
	"context"
	"errors"

	"github.com/Domenick1991/carpool/internal/domain"
)

// ErrNoRoute means the provider answered but found no drivable route.
var ErrNoRoute = errors.New("routing: no route found")

type Router interface {
	Route(ctx context.Context, from, to domain.Point) (*domain.Route, error)
}

// Resolve asks the router for a route and reports any failure to produce a
// usable polyline as route_unavailable. Context errors pass through.
func Resolve(ctx context.Context, router Router, from, to domain.Point) (*domain.Route, error) {
	route, err := router.Route(ctx, from, to)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.Error{Kind: domain.KindRouteUnavailable, Msg: domain.ErrRouteUnavailable.Msg, Err: err}
	}
	if route == nil || len(route.Points) == 0 {
		return nil, domain.ErrRouteUnavailable
	}
	return route, nil
}
