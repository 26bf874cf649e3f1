// Command genmock generates synthetic per-year KMA precipitation CSV files
// for local development and testing. Output matches the real archive
// format: EUC-KR encoding, Korean column labels, one row per station-hour.
//
// Usage:
//
//	go run ./cmd/genmock --out-dir dataset --year-start 2022 --year-end 2024
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// A subset of the ~100 KMA synoptic stations.
var stations = []string{
	"서울", "부산", "인천", "대구", "대전", "광주", "수원", "춘천",
	"강릉", "청주", "전주", "목포", "여수", "포항", "울산", "제주",
}

// Wetter in summer (jang-ma), drier in winter. Index by month-1; the value
// is the chance any given hour records rain.
var rainChanceByMonth = [12]float64{
	0.03, 0.04, 0.05, 0.07, 0.08, 0.12, 0.18, 0.16, 0.09, 0.05, 0.05, 0.03,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "dataset", "directory to write rain_<year>.csv files into")
	yearStart := flag.Int("year-start", 2022, "first year to generate")
	yearEnd := flag.Int("year-end", 2024, "last year to generate")
	stationCount := flag.Int("stations", len(stations), "number of stations to include")
	seed := flag.Int64("seed", 1, "random seed for reproducible output")
	flag.Parse()

	if *yearStart > *yearEnd {
		return fmt.Errorf("year-start %d is after year-end %d", *yearStart, *yearEnd)
	}
	if *stationCount < 1 || *stationCount > len(stations) {
		return fmt.Errorf("stations must be in [1, %d]", len(stations))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	for year := *yearStart; year <= *yearEnd; year++ {
		path := filepath.Join(*outDir, fmt.Sprintf("rain_%d.csv", year))
		rows, err := writeYear(path, year, stations[:*stationCount], rng)
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("%s: %d rows", path, rows)
	}

	return nil
}

// writeYear emits one EUC-KR encoded file with an hourly row per station.
func writeYear(path string, year int, names []string, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc := transform.NewWriter(f, korean.EUCKR.NewEncoder())
	w := csv.NewWriter(enc)

	if err := w.Write([]string{"지점", "지점명", "일시", "강수량(mm)"}); err != nil {
		return 0, err
	}

	rows := 0
	ts := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for ts.Year() == year {
		for i, name := range names {
			rain := ""
			if rng.Float64() < rainChanceByMonth[ts.Month()-1] {
				// Exponentially distributed hourly totals, mostly drizzle.
				rain = fmt.Sprintf("%.1f", rng.ExpFloat64()*2.5)
			}
			row := []string{
				fmt.Sprintf("%d", 100+i),
				name,
				ts.Format("2006-01-02 15:04"),
				rain,
			}
			if err := w.Write(row); err != nil {
				return rows, err
			}
			rows++
		}
		ts = ts.Add(time.Hour)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return rows, err
	}
	return rows, enc.Close()
}
