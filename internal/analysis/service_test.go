package analysis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/loader"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

// --- stub record source ---

type stubSource struct {
	rs    domain.RecordSet
	err   error
	calls int
}

func (s *stubSource) LoadYears(_ context.Context, years []int) (domain.RecordSet, error) {
	s.calls++
	if s.err != nil {
		return domain.RecordSet{}, s.err
	}
	return s.rs, nil
}

func seoulRecords() domain.RecordSet {
	rec := func(year int, month time.Month, day, hour int, mm float64) domain.Record {
		return domain.Record{
			Location: "서울",
			Time:     time.Date(year, month, day, hour, 0, 0, 0, time.UTC),
			Rainfall: mm,
		}
	}
	return domain.RecordSet{
		Years: []int{2022, 2023, 2024},
		Records: []domain.Record{
			rec(2022, time.May, 26, 12, 2.0),
			rec(2022, time.May, 26, 20, 5.0), // outside [11,19]
			rec(2023, time.May, 26, 13, 4.0),
			rec(2024, time.May, 26, 14, 0.0),
		},
	}
}

func newTestService(source RecordSource) *Service {
	cache := loader.NewRecordCache(4, time.Hour, nil)
	return New(source, cache, ".", slog.Default(), observability.NewMetricsForTesting())
}

func validRequest() Request {
	return Request{
		Location:  "서울",
		YearStart: 2022,
		YearEnd:   2024,
		StartHour: 11,
		EndHour:   19,
		Month:     time.May,
		Day:       26,
	}
}

// --- tests ---

func TestService_Run(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		src := &stubSource{rs: seoulRecords()}
		svc := newTestService(src)

		result, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)

		assert.Equal(t, []int{2022, 2023, 2024}, result.YearsLoaded)
		assert.False(t, result.FromCache)

		// The 20:00 reading is excluded by the window.
		assert.InDelta(t, 2.0, result.Yearly[2022], 1e-9)
		assert.InDelta(t, 4.0, result.Yearly[2023], 1e-9)
		assert.InDelta(t, 0.0, result.Yearly[2024], 1e-9)

		assert.InDelta(t, 2.0, result.Calendar[domain.MonthDay{Month: time.May, Day: 26}], 1e-9)

		assert.Equal(t, 2, result.Stats.RainyYears)
		assert.Equal(t, 1, result.Stats.DryYears)
		assert.InDelta(t, 2.0/3.0, result.Stats.RainProbability, 1e-9)
	})

	t.Run("second run with same years hits the cache", func(t *testing.T) {
		src := &stubSource{rs: seoulRecords()}
		svc := newTestService(src)

		first, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)
		assert.False(t, first.FromCache)

		second, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.Equal(t, 1, src.calls, "source should be read once")
	})

	t.Run("changed window reuses the cached record set", func(t *testing.T) {
		src := &stubSource{rs: seoulRecords()}
		svc := newTestService(src)

		_, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)

		req := validRequest()
		req.StartHour, req.EndHour = 0, 23
		result, err := svc.Run(context.Background(), req)
		require.NoError(t, err)

		assert.True(t, result.FromCache)
		assert.InDelta(t, 7.0, result.Yearly[2022], 1e-9, "wider window includes the 20:00 reading")
	})

	t.Run("changed year range reloads", func(t *testing.T) {
		src := &stubSource{rs: seoulRecords()}
		svc := newTestService(src)

		_, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)

		req := validRequest()
		req.YearStart = 2023
		_, err = svc.Run(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 2, src.calls)
	})

	t.Run("calendar-invalid day is clamped", func(t *testing.T) {
		rs := seoulRecords()
		rs.Records = append(rs.Records, domain.Record{
			Location: "서울",
			Time:     time.Date(2023, time.April, 30, 12, 0, 0, 0, time.UTC),
			Rainfall: 1.5,
		})
		svc := newTestService(&stubSource{rs: rs})

		req := validRequest()
		req.Month, req.Day = time.April, 31

		result, err := svc.Run(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, 30, result.Request.Day)
		assert.InDelta(t, 1.5, result.Yearly[2023], 1e-9)
	})

	t.Run("unknown location", func(t *testing.T) {
		svc := newTestService(&stubSource{rs: seoulRecords()})

		req := validRequest()
		req.Location = "광한루"

		result, err := svc.Run(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrLocationNotFound)
		assert.Contains(t, err.Error(), "광한루")
		assert.Nil(t, result)
	})

	t.Run("no data is propagated", func(t *testing.T) {
		svc := newTestService(&stubSource{err: domain.ErrNoData})

		result, err := svc.Run(context.Background(), validRequest())
		require.ErrorIs(t, err, domain.ErrNoData)
		assert.Nil(t, result)
	})

	t.Run("failed load does not poison the cache", func(t *testing.T) {
		src := &stubSource{err: domain.ErrNoData}
		svc := newTestService(src)

		_, err := svc.Run(context.Background(), validRequest())
		require.Error(t, err)

		src.err = nil
		src.rs = seoulRecords()
		result, err := svc.Run(context.Background(), validRequest())
		require.NoError(t, err)
		assert.False(t, result.FromCache, "error result must not have been cached")
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*Request)
		}{
			{"missing location", func(r *Request) { r.Location = "" }},
			{"year end before start", func(r *Request) { r.YearEnd = r.YearStart - 1 }},
			{"end hour before start", func(r *Request) { r.StartHour, r.EndHour = 15, 11 }},
			{"hour out of range", func(r *Request) { r.EndHour = 24 }},
			{"month out of range", func(r *Request) { r.Month = 13 }},
			{"day out of range", func(r *Request) { r.Day = 32 }},
			{"zero day", func(r *Request) { r.Day = 0 }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				src := &stubSource{rs: seoulRecords()}
				svc := newTestService(src)

				req := validRequest()
				tt.mutate(&req)

				_, err := svc.Run(context.Background(), req)
				require.ErrorIs(t, err, ErrInvalidRequest)
				assert.Zero(t, src.calls, "invalid request must not touch the source")
			})
		}
	})
}

func TestService_InvalidateCache(t *testing.T) {
	src := &stubSource{rs: seoulRecords()}
	svc := newTestService(src)

	_, err := svc.Run(context.Background(), validRequest())
	require.NoError(t, err)

	svc.InvalidateCache()

	result, err := svc.Run(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, src.calls)
}

func TestService_CheckReadiness(t *testing.T) {
	t.Run("ready when data dir exists", func(t *testing.T) {
		svc := New(&stubSource{}, loader.NewRecordCache(1, time.Hour, nil), t.TempDir(),
			slog.Default(), observability.NewMetricsForTesting())
		assert.NoError(t, svc.CheckReadiness(context.Background()))
	})

	t.Run("not ready when data dir is missing", func(t *testing.T) {
		svc := New(&stubSource{}, loader.NewRecordCache(1, time.Hour, nil), "/nonexistent/kma-data",
			slog.Default(), observability.NewMetricsForTesting())
		assert.Error(t, svc.CheckReadiness(context.Background()))
	})
}
