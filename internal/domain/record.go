package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNoData indicates that no source data could be loaded for any of the
// requested years. Nothing downstream can proceed without records.
var ErrNoData = errors.New("no data loaded for any requested year")

// ErrLocationNotFound indicates the requested station does not appear in
// the aggregated data. Wrapped errors carry the offending station name.
var ErrLocationNotFound = errors.New("location not found")

// Record is one hourly precipitation reading from a KMA station.
type Record struct {
	Location string
	Time     time.Time
	Rainfall float64 // millimetres; 0 when the source field is empty
}

// RecordSet holds every record loaded for a year selection together with
// the years that actually produced data, which may be a subset of the
// request when some per-year files are missing.
type RecordSet struct {
	Records []Record
	Years   []int
}

// Date is a calendar date without a time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of a timestamp.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Before reports whether d is chronologically before other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthDay identifies a calendar date independent of year, e.g. May 26
// compared across every year in a range.
type MonthDay struct {
	Month time.Month
	Day   int
}

// DailyTotals is the dense station×date grid of rainfall sums inside the
// hour window it was built with. Every station present in the grid has an
// entry for every date in Dates; days with qualifying readings but no rain
// hold 0.0.
type DailyTotals struct {
	StartHour int
	EndHour   int
	Dates     []Date // ascending
	Totals    map[string]map[Date]float64
}

// Locations returns the station names present in the grid, unordered.
func (dt DailyTotals) Locations() []string {
	locs := make([]string, 0, len(dt.Totals))
	for loc := range dt.Totals {
		locs = append(locs, loc)
	}
	return locs
}

// CalendarMatrix maps (month, day) to the mean daily rainfall for one
// station across a year range. Calendar-invalid combinations are absent.
type CalendarMatrix map[MonthDay]float64

// YearlySeries maps year to the mean rainfall for one station on one
// calendar date. Years without data for that date are absent.
type YearlySeries map[int]float64

// Years returns the years present in the series in ascending order.
func (s YearlySeries) Years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// DateStats summarizes a yearly series for one calendar date.
type DateStats struct {
	MeanRainfall    float64 // mean of the per-year averages, mm
	MaxRainfall     float64 // wettest year's average, mm
	RainyYears      int     // years with any rainfall
	DryYears        int     // years with none
	RainProbability float64 // fraction of years with rainfall, 0–1
}

// Stats derives summary statistics from the series. Returns the zero value
// for an empty series.
func (s YearlySeries) Stats() DateStats {
	if len(s) == 0 {
		return DateStats{}
	}

	var stats DateStats
	var sum float64
	for _, avg := range s {
		sum += avg
		if avg > stats.MaxRainfall {
			stats.MaxRainfall = avg
		}
		if avg > 0 {
			stats.RainyYears++
		} else {
			stats.DryYears++
		}
	}
	stats.MeanRainfall = sum / float64(len(s))
	stats.RainProbability = float64(stats.RainyYears) / float64(len(s))
	return stats
}
