package domain

import (
	"fmt"
	"sort"
)

// AggregateDailyTotals filters records to the inclusive [startHour, endHour]
// hour-of-day window and sums rainfall per (station, date). The output grid
// is dense: every station that has at least one qualifying reading gets an
// entry for every date any station reported on, zero-filled where the
// station itself recorded nothing. Runs in linear time over the record set.
func AggregateDailyTotals(rs RecordSet, startHour, endHour int) (DailyTotals, error) {
	if startHour < 0 || endHour > 23 || startHour > endHour {
		return DailyTotals{}, fmt.Errorf("invalid hour window [%d, %d]: want 0 <= start <= end <= 23", startHour, endHour)
	}

	totals := make(map[string]map[Date]float64)
	dateSet := make(map[Date]struct{})

	for _, r := range rs.Records {
		hour := r.Time.Hour()
		if hour < startHour || hour > endHour {
			continue
		}
		date := DateOf(r.Time)
		dateSet[date] = struct{}{}

		col, ok := totals[r.Location]
		if !ok {
			col = make(map[Date]float64)
			totals[r.Location] = col
		}
		col[date] += r.Rainfall
	}

	dates := make([]Date, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// Zero-fill so downstream averaging sees a complete date axis:
	// "no rain in the window" is data, "no reading at all" is not.
	for _, col := range totals {
		for _, d := range dates {
			if _, ok := col[d]; !ok {
				col[d] = 0
			}
		}
	}

	return DailyTotals{
		StartHour: startHour,
		EndHour:   endHour,
		Dates:     dates,
		Totals:    totals,
	}, nil
}

// CalendarAverages computes the mean daily rainfall per (month, day) for one
// station, restricted to years in [yearStart, yearEnd]. The year restriction
// is applied before averaging so every matching year weighs equally.
func (dt DailyTotals) CalendarAverages(location string, yearStart, yearEnd int) (CalendarMatrix, error) {
	col, ok := dt.Totals[location]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}

	sums := make(map[MonthDay]float64)
	counts := make(map[MonthDay]int)
	for _, d := range dt.Dates {
		if d.Year < yearStart || d.Year > yearEnd {
			continue
		}
		md := MonthDay{Month: d.Month, Day: d.Day}
		sums[md] += col[d]
		counts[md]++
	}

	matrix := make(CalendarMatrix, len(sums))
	for md, sum := range sums {
		matrix[md] = sum / float64(counts[md])
	}
	return matrix, nil
}

// YearlyAverages computes the mean daily rainfall per year for one station
// on one calendar date, restricted to years in [yearStart, yearEnd]. Each
// year normally contributes a single daily total, so the mean is usually a
// pass-through; it keeps the operation well-defined should duplicate dated
// rows ever appear.
func (dt DailyTotals) YearlyAverages(location string, yearStart, yearEnd int, md MonthDay) (YearlySeries, error) {
	col, ok := dt.Totals[location]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, d := range dt.Dates {
		if d.Year < yearStart || d.Year > yearEnd {
			continue
		}
		if d.Month != md.Month || d.Day != md.Day {
			continue
		}
		sums[d.Year] += col[d]
		counts[d.Year]++
	}

	series := make(YearlySeries, len(sums))
	for year, sum := range sums {
		series[year] = sum / float64(counts[year])
	}
	return series, nil
}

// ClampDay corrects a day-of-month that is invalid for the given month:
// day 31 in a 30-day month becomes 30, February days past 29 become 28.
// Mirrors what the UI does before a request reaches the aggregators, which
// may therefore assume calendar-valid (month, day) pairs.
func ClampDay(month, day int) int {
	switch month {
	case 4, 6, 9, 11:
		if day > 30 {
			return 30
		}
	case 2:
		if day > 29 {
			return 28
		}
	}
	return day
}
