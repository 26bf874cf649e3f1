// Command validate loads a year range from the configured data directory
// and reports coverage: which years resolved, how many records and stations
// each carries, and the date span. Useful after downloading a new KMA
// export to confirm the files parse before pointing the service at them.
//
// Usage:
//
//	go run ./cmd/validate --year-start 1994 --year-end 2024
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/config"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/loader"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	yearStart := flag.Int("year-start", 1994, "first year to check")
	yearEnd := flag.Int("year-end", 2024, "last year to check")
	dataDir := flag.String("data-dir", "", "override DATA_DIR from the environment")
	flag.Parse()

	if *yearStart > *yearEnd {
		return fmt.Errorf("year-start %d is after year-end %d", *yearStart, *yearEnd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l := loader.New(cfg, logger, observability.NewMetrics())

	years := make([]int, 0, *yearEnd-*yearStart+1)
	for y := *yearStart; y <= *yearEnd; y++ {
		years = append(years, y)
	}

	rs, err := l.LoadYears(context.Background(), years)
	if err != nil {
		return err
	}

	fmt.Printf("data dir:      %s\n", cfg.DataDir)
	fmt.Printf("years wanted:  %d (%d–%d)\n", len(years), *yearStart, *yearEnd)
	fmt.Printf("years loaded:  %d %v\n", len(rs.Years), rs.Years)
	fmt.Printf("records:       %d\n", len(rs.Records))

	printCoverage(rs)
	return nil
}

func printCoverage(rs domain.RecordSet) {
	stations := make(map[string]struct{})
	perYear := make(map[int]int)
	var first, last domain.Date

	for i, r := range rs.Records {
		stations[r.Location] = struct{}{}
		perYear[r.Time.Year()]++

		d := domain.DateOf(r.Time)
		if i == 0 || d.Before(first) {
			first = d
		}
		if last.Before(d) {
			last = d
		}
	}

	fmt.Printf("stations:      %d\n", len(stations))
	if len(rs.Records) > 0 {
		fmt.Printf("date span:     %s – %s\n", first, last)
	}
	for _, y := range rs.Years {
		fmt.Printf("  %d: %d records\n", y, perYear[y])
	}
}
