package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Domenick1991/carpool/internal/corridor"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/matcher"
	"github.com/Domenick1991/carpool/internal/metrics"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/routing"
)

type SearchUseCase interface {
	Search(ctx context.Context, req Request) (*Result, error)
}

type RideFinder interface {
	Search(ctx context.Context, filter repository.RideFilter) ([]domain.Ride, error)
}

type Request struct {
	Origin           domain.Point `json:"origin"`
	Destination      domain.Point `json:"destination"`
	DepartureTime    time.Time    `json:"departure_time"`
	Seats            int          `json:"seats"`
	PetFriendly      bool         `json:"pet_friendly"`
	TrunkSpace       bool         `json:"trunk_space"`
	WheelchairAccess bool         `json:"wheelchair_access"`
	Debug            bool         `json:"debug"`
}

type Candidate struct {
	Ride           domain.Ride `json:"ride"`
	Score          float64     `json:"score"`
	Similarity     float64     `json:"similarity"`
	TimeScore      float64     `json:"time_score"`
	TimeDeltaHours float64     `json:"time_delta_hours"`
}

type RouteInfo struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
}

type Debug struct {
	WindowFrom time.Time `json:"window_from"`
	WindowTo   time.Time `json:"window_to"`
	Corridor   []string  `json:"corridor"`
	Scanned    int       `json:"scanned"`
}

type Result struct {
	Candidates []Candidate `json:"candidates"`
	RouteInfo  RouteInfo   `json:"route_info"`
	Debug      *Debug      `json:"debug,omitempty"`
}

type SearchService struct {
	router   routing.Router
	rides    RideFinder
	corridor *corridor.Builder
	matcher  *matcher.Matcher
	window   time.Duration
	logger   *slog.Logger
}

type SearchServiceOption func(*SearchService)

func WithMatcher(m *matcher.Matcher) SearchServiceOption {
	return func(s *SearchService) {
		s.matcher = m
	}
}

func WithCorridorBuilder(b *corridor.Builder) SearchServiceOption {
	return func(s *SearchService) {
		s.corridor = b
	}
}

// WithWindow sets how far either side of the requested departure a ride may leave.
func WithWindow(d time.Duration) SearchServiceOption {
	return func(s *SearchService) {
		if d > 0 {
			s.window = d
		}
	}
}

func WithLogger(logger *slog.Logger) SearchServiceOption {
	return func(s *SearchService) {
		s.logger = logger
	}
}

const DefaultWindow = 2 * time.Hour

func NewSearchService(router routing.Router, rides RideFinder, opts ...SearchServiceOption) *SearchService {
	service := &SearchService{
		router:   router,
		rides:    rides,
		corridor: corridor.NewBuilder(corridor.DefaultPrecision),
		matcher:  matcher.New(matcher.DefaultPolicy()),
		window:   DefaultWindow,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.logger = logging.OrDefault(service.logger)
	return service
}

func (s *SearchService) Search(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() { metrics.SearchLatency.Observe(time.Since(start).Seconds()) }()

	if err := validate(&req); err != nil {
		return nil, err
	}

	// The route must resolve before any ride is read.
	route, err := routing.Resolve(ctx, s.router, req.Origin, req.Destination)
	if err != nil {
		s.logger.Warn("search route unavailable", "origin", req.Origin, "destination", req.Destination, "error", err)
		return nil, err
	}
	riderCorridor := s.corridor.FromRoute(route)

	filter := repository.RideFilter{
		DepartureFrom:    req.DepartureTime.Add(-s.window),
		DepartureTo:      req.DepartureTime.Add(s.window),
		Statuses:         []domain.RideStatus{domain.RideStatusScheduled, domain.RideStatusActive},
		MinSeats:         req.Seats,
		PetFriendly:      req.PetFriendly,
		TrunkSpace:       req.TrunkSpace,
		WheelchairAccess: req.WheelchairAccess,
	}
	rides, err := s.rides.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	metrics.SearchCandidates.Observe(float64(len(rides)))

	candidates := make([]Candidate, 0, len(rides))
	for _, ride := range rides {
		if len(ride.Corridor) == 0 {
			continue
		}
		dh := math.Abs(ride.DepartureTime.Sub(req.DepartureTime).Hours())
		score := s.matcher.Score(riderCorridor, ride.Corridor, dh, ride.SeatFraction())
		if !score.Admit {
			continue
		}
		ride.Corridor = nil
		candidates = append(candidates, Candidate{
			Ride:           ride,
			Score:          score.Composite,
			Similarity:     score.Similarity,
			TimeScore:      score.TimeScore,
			TimeDeltaHours: dh,
		})
	}
	Rank(candidates)
	metrics.SearchMatches.Observe(float64(len(candidates)))

	result := &Result{
		Candidates: candidates,
		RouteInfo: RouteInfo{
			DistanceKm:      round2(route.DistanceKm()),
			DurationMinutes: round2(route.DurationMinutes()),
		},
	}
	if req.Debug {
		result.Debug = &Debug{
			WindowFrom: filter.DepartureFrom,
			WindowTo:   filter.DepartureTo,
			Corridor:   riderCorridor,
			Scanned:    len(rides),
		}
	}

	s.logger.Debug("ride search finished",
		"scanned", len(rides), "matched", len(candidates), "corridor_cells", len(riderCorridor))
	return result, nil
}

// Rank orders by score, then by closeness in time, then by free seats.
func Rank(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		if c[i].TimeDeltaHours != c[j].TimeDeltaHours {
			return c[i].TimeDeltaHours < c[j].TimeDeltaHours
		}
		return c[i].Ride.AvailableSeats > c[j].Ride.AvailableSeats
	})
}

func validate(req *Request) error {
	if !req.Origin.Valid() || !req.Destination.Valid() {
		return domain.Validation("origin and destination must be valid coordinates")
	}
	if req.DepartureTime.IsZero() {
		return domain.Validation("departure_time is required")
	}
	if req.Seats < 0 {
		return domain.Validation("seats must be positive")
	}
	if req.Seats == 0 {
		req.Seats = 1
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ SearchUseCase = (*SearchService)(nil)
