package routing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/metrics"
)

// RouteCache stores resolved routes. A miss is (nil, nil).
type RouteCache interface {
	GetRoute(ctx context.Context, key string) (*domain.Route, error)
	SetRoute(ctx context.Context, key string, route *domain.Route) error
}

// CachedRouter serves repeated lookups for the same endpoints from a cache.
// Cache failures fall through to the wrapped router.
type CachedRouter struct {
	next   Router
	cache  RouteCache
	logger *slog.Logger
}

func NewCachedRouter(next Router, cache RouteCache, logger *slog.Logger) *CachedRouter {
	return &CachedRouter{next: next, cache: cache, logger: logging.OrDefault(logger)}
}

func (c *CachedRouter) Route(ctx context.Context, from, to domain.Point) (*domain.Route, error) {
	key := RouteKey(from, to)
	if cached, err := c.cache.GetRoute(ctx, key); err != nil {
		c.logger.Warn("route cache read failed", "key", key, "error", err)
	} else if cached != nil {
		metrics.RouteCache.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.RouteCache.WithLabelValues("miss").Inc()

	route, err := c.next.Route(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetRoute(ctx, key, route); err != nil {
		c.logger.Warn("route cache write failed", "key", key, "error", err)
	}
	return route, nil
}

// RouteKey rounds both endpoints to five decimals, about a metre.
func RouteKey(from, to domain.Point) string {
	return fmt.Sprintf("%.5f,%.5f;%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
}

var _ Router = (*CachedRouter)(nil)
