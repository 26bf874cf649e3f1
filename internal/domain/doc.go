// Package domain models Korean Meteorological Administration (KMA) hourly
// precipitation data and the aggregations derived from it.
//
// # Data Source
//
// Records originate from the KMA synoptic observation archive, exported as
// one CSV file per calendar year (rain_<year>.csv), EUC-KR encoded. Each row
// is one hourly reading for one station. The column headers are Korean
// labels rather than stable identifiers:
//
//	지점명      station name, e.g. "서울" (Seoul)
//	일시        observation timestamp, "2006-01-02 15:04"
//	강수량(mm)  precipitation in millimetres for that hour
//
// An empty precipitation field means no rain was measured and is read as 0.
// Roughly 100 station names appear across the archive; station coverage
// varies by year.
//
// # Aggregation Model
//
// The pipeline reshapes raw hourly records in three steps:
//
//  1. [AggregateDailyTotals] keeps readings whose hour falls inside an
//     inclusive window (the hours a wedding ceremony would occupy) and sums
//     them per station and date. The result is a dense station×date grid:
//     a date with qualifying readings but no rain holds 0.0, because "no
//     rain" must stay distinguishable from "no data" once daily totals are
//     averaged downstream.
//
//  2. [DailyTotals.CalendarAverages] averages one station's daily totals
//     per (month, day) across a year range. Calendar combinations that
//     never occur (Feb 30) are absent from the matrix, not zero.
//
//  3. [DailyTotals.YearlyAverages] averages one station's totals for a
//     single (month, day) per year, giving one value per year that has
//     data for that date.
//
// Year-range restriction always happens before averaging. Averaging first
// and discarding years afterwards would weight years incorrectly.
//
// All three transforms are pure functions of their inputs; none mutates
// the record set or another transform's output.
package domain
