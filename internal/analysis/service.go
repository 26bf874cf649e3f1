// Package analysis orchestrates one "generate analysis" request: load (or
// reuse) the record set for the year selection, aggregate it to daily
// totals inside the hour window, and derive the calendar-average matrix,
// the yearly series, and the date statistics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/loader"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

// ErrInvalidRequest indicates request parameters that failed validation.
var ErrInvalidRequest = errors.New("invalid request")

// Request carries the user's analysis parameters. Day may be calendar-invalid
// for the month (e.g. Feb 30); it is clamped before reaching the aggregators.
type Request struct {
	Location  string     `validate:"required"`
	YearStart int        `validate:"required,min=1900,max=2100"`
	YearEnd   int        `validate:"required,min=1900,max=2100,gtefield=YearStart"`
	StartHour int        `validate:"min=0,max=23"`
	EndHour   int        `validate:"min=0,max=23,gtefield=StartHour"`
	Month     time.Month `validate:"required,min=1,max=12"`
	Day       int        `validate:"required,min=1,max=31"`
}

// Result is everything one analysis run produces. Request echoes the
// effective parameters after day clamping.
type Result struct {
	Request     Request
	YearsLoaded []int
	FromCache   bool
	Calendar    domain.CalendarMatrix
	Yearly      domain.YearlySeries
	Stats       domain.DateStats
}

// RecordSource loads records for a year selection. *loader.Loader in
// production; stubbed in tests.
type RecordSource interface {
	LoadYears(ctx context.Context, years []int) (domain.RecordSet, error)
}

// Service runs analysis requests against a record source with a per-session
// record cache. A failed request leaves cached data from prior successful
// requests intact.
type Service struct {
	source   RecordSource
	cache    *loader.RecordCache
	dataDir  string
	logger   *slog.Logger
	metrics  *observability.Metrics
	validate *validator.Validate
}

// New creates a Service.
func New(source RecordSource, cache *loader.RecordCache, dataDir string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:   source,
		cache:    cache,
		dataDir:  dataDir,
		logger:   logger,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// Run executes one end-to-end analysis. Partial results are never returned:
// any stage error aborts the request.
func (s *Service) Run(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	defer func() {
		s.metrics.AnalysisRequests.WithLabelValues(outcome(err)).Inc()
		if err == nil {
			s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if verr := s.validate.Struct(req); verr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, verr)
	}
	req.Day = domain.ClampDay(int(req.Month), req.Day)

	rs, fromCache, err := s.recordSet(ctx, req.YearStart, req.YearEnd)
	if err != nil {
		return nil, err
	}

	totals, err := domain.AggregateDailyTotals(rs, req.StartHour, req.EndHour)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	calendar, err := totals.CalendarAverages(req.Location, req.YearStart, req.YearEnd)
	if err != nil {
		return nil, err
	}

	yearly, err := totals.YearlyAverages(req.Location, req.YearStart, req.YearEnd,
		domain.MonthDay{Month: req.Month, Day: req.Day})
	if err != nil {
		return nil, err
	}

	s.logger.Info("analysis complete",
		"location", req.Location,
		"year_start", req.YearStart,
		"year_end", req.YearEnd,
		"window", fmt.Sprintf("[%d,%d]", req.StartHour, req.EndHour),
		"from_cache", fromCache,
		"calendar_cells", len(calendar),
		"series_years", len(yearly),
	)

	return &Result{
		Request:     req,
		YearsLoaded: rs.Years,
		FromCache:   fromCache,
		Calendar:    calendar,
		Yearly:      yearly,
		Stats:       yearly.Stats(),
	}, nil
}

// recordSet returns the records for [yearStart, yearEnd], from cache when a
// fresh entry exists, loading and caching otherwise.
func (s *Service) recordSet(ctx context.Context, yearStart, yearEnd int) (domain.RecordSet, bool, error) {
	years := make([]int, 0, yearEnd-yearStart+1)
	for y := yearStart; y <= yearEnd; y++ {
		years = append(years, y)
	}

	if rs, ok := s.cache.Get(years); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return rs, true, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	rs, err := s.source.LoadYears(ctx, years)
	if err != nil {
		return domain.RecordSet{}, false, err
	}

	s.cache.Put(years, rs)
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	return rs, false, nil
}

// InvalidateCache drops all cached record sets; the next request re-reads
// source files.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate()
	s.metrics.CacheEntries.Set(0)
	s.logger.Info("record cache invalidated")
}

// CheckReadiness reports whether the data directory is reachable.
func (s *Service) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data path %q is not a directory", s.dataDir)
	}
	return nil
}

// outcome buckets an error for the request counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.Is(err, domain.ErrLocationNotFound):
		return "unknown_location"
	default:
		return "error"
	}
}
