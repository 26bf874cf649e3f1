// Package loader reads per-year KMA precipitation CSV files into a unified
// record set and memoizes the result per year selection.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/config"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

// KMA exports format timestamps to minute precision; older extracts carry seconds.
var timeLayouts = []string{"2006-01-02 15:04", "2006-01-02 15:04:05"}

// Loader reads per-year source files. A missing or unreadable file skips
// that year with a warning; only a selection where every year fails is an
// error (domain.ErrNoData).
type Loader struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{cfg: cfg, logger: logger, metrics: metrics}
}

// LoadYears reads the source file for each requested year and concatenates
// the results. The returned RecordSet's Years field lists the years that
// actually produced data.
func (l *Loader) LoadYears(ctx context.Context, years []int) (domain.RecordSet, error) {
	start := time.Now()

	var rs domain.RecordSet
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return domain.RecordSet{}, err
		}

		path := filepath.Join(l.cfg.DataDir, l.cfg.YearFile(year))
		records, err := l.readYearFile(path)
		if err != nil {
			l.logger.Warn("skipping year, source file unavailable",
				"year", year, "path", path, "error", err)
			l.metrics.YearsSkipped.Inc()
			continue
		}

		rs.Records = append(rs.Records, records...)
		rs.Years = append(rs.Years, year)
		l.metrics.YearsLoaded.Inc()
		l.metrics.RecordsLoaded.Add(float64(len(records)))
		l.logger.Debug("loaded year", "year", year, "records", len(records))
	}

	if len(rs.Years) == 0 {
		return domain.RecordSet{}, fmt.Errorf("%w: requested years %v", domain.ErrNoData, years)
	}

	l.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	l.logger.Info("record set loaded",
		"years_requested", len(years),
		"years_loaded", len(rs.Years),
		"records", len(rs.Records),
	)
	return rs, nil
}

// readYearFile parses one per-year CSV into records. Malformed rows are
// logged and skipped; only an unreadable file or a header missing a
// configured column fails the whole year.
func (l *Loader) readYearFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(l.decodeReader(f))
	reader.FieldsPerRecord = -1 // KMA exports occasionally pad trailing columns

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	stationIdx, timeIdx, rainIdx, err := l.columnIndices(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			l.logger.Warn("skipping malformed row", "path", path, "line", line, "error", err)
			continue
		}

		rec, err := l.parseRow(row, stationIdx, timeIdx, rainIdx)
		if err != nil {
			l.logger.Warn("skipping unparsable row", "path", path, "line", line, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// decodeReader wraps the file in a charset decoder when the source is not UTF-8.
func (l *Loader) decodeReader(r io.Reader) io.Reader {
	if l.cfg.DataEncoding == "euc-kr" {
		return transform.NewReader(r, korean.EUCKR.NewDecoder())
	}
	return r
}

func (l *Loader) columnIndices(header []string) (station, timestamp, rain int, err error) {
	station, timestamp, rain = -1, -1, -1
	for i, label := range header {
		switch strings.TrimSpace(label) {
		case l.cfg.StationColumn:
			station = i
		case l.cfg.TimeColumn:
			timestamp = i
		case l.cfg.RainColumn:
			rain = i
		}
	}
	if station < 0 || timestamp < 0 || rain < 0 {
		return 0, 0, 0, fmt.Errorf("header missing configured columns %q, %q, %q: got %v",
			l.cfg.StationColumn, l.cfg.TimeColumn, l.cfg.RainColumn, header)
	}
	return station, timestamp, rain, nil
}

func (l *Loader) parseRow(row []string, stationIdx, timeIdx, rainIdx int) (domain.Record, error) {
	if n := len(row); stationIdx >= n || timeIdx >= n || rainIdx >= n {
		return domain.Record{}, fmt.Errorf("row has %d fields", len(row))
	}

	location := strings.TrimSpace(row[stationIdx])
	if location == "" {
		return domain.Record{}, fmt.Errorf("empty station name")
	}

	ts, err := parseTimestamp(strings.TrimSpace(row[timeIdx]))
	if err != nil {
		return domain.Record{}, err
	}

	rainfall, err := parseRainfall(row[rainIdx])
	if err != nil {
		return domain.Record{}, err
	}

	return domain.Record{Location: location, Time: ts, Rainfall: rainfall}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// parseRainfall reads the precipitation field. An empty field means the
// station measured no rain that hour and is 0, not missing data.
func parseRainfall(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable rainfall %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative rainfall %v", v)
	}
	return v, nil
}
