package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/cimillas/ultimate-stay/internal/clock"
	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/pricing"
)

type OverlapLister interface {
	ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error)
}

type StayValidator interface {
	ValidateStay(rng domain.DateRange, today domain.Date) error
}

type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortPriceLow   SortOrder = "price_low"
	SortPriceHigh  SortOrder = "price_high"
	SortRating     SortOrder = "rating"
)

func (o SortOrder) Valid() bool {
	switch o {
	case SortPopularity, SortPriceLow, SortPriceHigh, SortRating:
		return true
	}
	return false
}

const (
	defaultPerPage           = 20
	maxPerPage               = 100
	defaultSearchConcurrency = 8
)

type SearchFilters struct {
	// Price bounds apply to the dynamic price per night of the requested range.
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinRating     *decimal.Decimal
	Amenities     domain.AmenitySet
	PropertyTypes []domain.PropertyType
	StarRatings   []int
}

type SearchQuery struct {
	DestinationID string
	Range         domain.DateRange
	Guests        int
	Rooms         int
	Filters       SearchFilters
	Sort          SortOrder
	Page          int
	PerPage       int
}

type SearchResult struct {
	Unit     domain.InventoryUnit
	Property domain.Property
	Quote    domain.Quote
	MinFree  int
}

type SearchPage struct {
	Results    []SearchResult
	Total      int
	Page       int
	PerPage    int
	TotalPages int
	// Skipped counts candidates left out because their stored rates cannot be priced.
	Skipped int
}

var errUnpriced = errors.New("unit cannot be priced")

type SearchService struct {
	inventory    InventoryReader
	reservations OverlapLister
	stays        StayValidator
	pricing      *pricing.Calculator
	clock        clock.Clock
	concurrency  int
	log          logrus.FieldLogger
	tracer       trace.Tracer
}

func NewSearchService(inventory InventoryReader, reservations OverlapLister, stays StayValidator, calc *pricing.Calculator, clk clock.Clock, opts ...SearchOption) *SearchService {
	svc := &SearchService{
		inventory:    inventory,
		reservations: reservations,
		stays:        stays,
		pricing:      calc,
		clock:        clk,
		concurrency:  defaultSearchConcurrency,
		log:          logrus.StandardLogger(),
		tracer:       defaultTracer(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type SearchOption func(*SearchService)

// WithSearchConcurrency bounds how many candidates are priced and checked at once.
func WithSearchConcurrency(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithSearchLogger(l logrus.FieldLogger) SearchOption {
	return func(s *SearchService) {
		if l != nil {
			s.log = l
		}
	}
}

func (s *SearchService) Search(ctx context.Context, q SearchQuery) (_ SearchPage, err error) {
	ctx, span := s.tracer.Start(ctx, "SearchService.Search", trace.WithAttributes(
		attribute.String("destination.id", q.DestinationID),
		attribute.String("range", q.Range.String()),
	))
	defer func() { endSpan(span, err) }()

	q, err = s.normalize(q)
	if err != nil {
		return SearchPage{}, err
	}
	today := clock.Today(s.clock)
	if err := s.stays.ValidateStay(q.Range, today); err != nil {
		return SearchPage{}, err
	}

	listings, err := s.inventory.ListUnitsByDestination(ctx, q.DestinationID)
	if err != nil {
		return SearchPage{}, err
	}

	candidates := listings[:0:0]
	for _, l := range listings {
		if matchesStatic(l, q) {
			candidates = append(candidates, l)
		}
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	evaluated := make([]*SearchResult, len(candidates))
	unpriced := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, l := range candidates {
		i, l := i, l
		g.Go(func() error {
			res, ok, err := s.evaluate(gctx, l, q, today)
			if errors.Is(err, errUnpriced) {
				s.log.WithError(err).WithField("unit_id", l.Unit.ID).Warn("search: skipping unit that cannot be priced")
				unpriced[i] = true
				return nil
			}
			if err != nil {
				return err
			}
			if ok {
				evaluated[i] = &res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SearchPage{}, err
	}

	results := make([]SearchResult, 0, len(evaluated))
	for _, r := range evaluated {
		if r != nil {
			results = append(results, *r)
		}
	}
	sortResults(results, q.Sort)
	page := paginate(results, q.Page, q.PerPage)
	for _, skipped := range unpriced {
		if skipped {
			page.Skipped++
		}
	}
	return page, nil
}

func (s *SearchService) normalize(q SearchQuery) (SearchQuery, error) {
	if q.DestinationID == "" {
		return q, fmt.Errorf("%w: destination required", domain.ErrInvalidQuery)
	}
	if q.Guests < 0 || q.Rooms < 0 {
		return q, fmt.Errorf("%w: guests and rooms must not be negative", domain.ErrInvalidQuantity)
	}
	if q.Guests == 0 {
		q.Guests = 1
	}
	if q.Rooms == 0 {
		q.Rooms = 1
	}
	f := q.Filters
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return q, fmt.Errorf("%w: min_price exceeds max_price", domain.ErrInvalidPrice)
	}
	if q.Sort == "" {
		q.Sort = SortPopularity
	}
	if !q.Sort.Valid() {
		return q, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidQuery, q.Sort)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	return q, nil
}

// evaluate prices and checks one candidate. ok is false when the candidate is filtered out. A pricing
// failure is reported wrapped in errUnpriced.
func (s *SearchService) evaluate(ctx context.Context, l domain.Listing, q SearchQuery, today domain.Date) (SearchResult, bool, error) {
	quote, err := s.pricing.Price(l.Unit, q.Range, domain.PricingContext{Today: today})
	if err != nil {
		return SearchResult{}, false, fmt.Errorf("%w: %v", errUnpriced, err)
	}
	if lo := q.Filters.MinPrice; lo != nil && quote.PricePerNight.LessThan(*lo) {
		return SearchResult{}, false, nil
	}
	if hi := q.Filters.MaxPrice; hi != nil && quote.PricePerNight.GreaterThan(*hi) {
		return SearchResult{}, false, nil
	}

	reservations, err := s.reservations.ListOverlapping(ctx, l.Unit.ID, q.Range)
	if err != nil {
		return SearchResult{}, false, err
	}
	avail := availabilityOf(l.Unit, q.Range, q.Rooms, reservations)
	if !avail.Bookable {
		return SearchResult{}, false, nil
	}

	return SearchResult{Unit: l.Unit, Property: l.Property, Quote: quote, MinFree: avail.MinFree}, true, nil
}

func matchesStatic(l domain.Listing, q SearchQuery) bool {
	f := q.Filters
	if l.Unit.TotalCapacity < q.Rooms {
		return false
	}
	if !l.Unit.Accommodates(q.Guests, q.Rooms) {
		return false
	}
	if len(f.StarRatings) > 0 && !containsInt(f.StarRatings, l.Property.StarRating) {
		return false
	}
	if len(f.PropertyTypes) > 0 && !containsType(f.PropertyTypes, l.Property.Type) {
		return false
	}
	if f.MinRating != nil && l.Property.Rating.LessThan(*f.MinRating) {
		return false
	}
	if f.Amenities.Len() > 0 && !combinedAmenities(l).HasAll(f.Amenities) {
		return false
	}
	return true
}

// combinedAmenities merges property-wide and unit amenities.
func combinedAmenities(l domain.Listing) domain.AmenitySet {
	return l.Property.Amenities | l.Unit.Amenities
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsType(xs []domain.PropertyType, v domain.PropertyType) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func sortResults(results []SearchResult, order SortOrder) {
	compare := func(a, b SearchResult) int {
		switch order {
		case SortPriceLow:
			return a.Quote.PricePerNight.Cmp(b.Quote.PricePerNight)
		case SortPriceHigh:
			return b.Quote.PricePerNight.Cmp(a.Quote.PricePerNight)
		case SortRating:
			return b.Property.Rating.Cmp(a.Property.Rating)
		default:
			return b.Property.Popularity - a.Property.Popularity
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if c := compare(results[i], results[j]); c != 0 {
			return c < 0
		}
		return results[i].Unit.ID < results[j].Unit.ID
	})
}

func paginate(results []SearchResult, page, perPage int) SearchPage {
	total := len(results)
	out := SearchPage{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
		Results:    []SearchResult{},
	}
	start := (page - 1) * perPage
	if start >= total {
		return out
	}
	end := start + perPage
	if end > total {
		end = total
	}
	out.Results = results[start:end]
	return out
}
