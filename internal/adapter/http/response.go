package http

import (
	"github.com/yunsj111/wedding-rainfall-analysis/internal/analysis"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
)

// analysisResponse is the wire form of one analysis result, shaped for the
// two charts: a 12×31 heatmap grid and a per-year bar series.
type analysisResponse struct {
	Location  string `json:"location"`
	YearStart int    `json:"year_start"`
	YearEnd   int    `json:"year_end"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Month     int    `json:"month"`
	Day       int    `json:"day"` // after clamping, may differ from the request

	YearsLoaded []int `json:"years_loaded"`
	FromCache   bool  `json:"from_cache"`

	Calendar calendarGrid `json:"calendar"`
	Yearly   []yearPoint  `json:"yearly"`
	Stats    dateStats    `json:"stats"`
}

// calendarGrid holds the month×day heatmap. Values is indexed
// [month-1][day-1]; null marks combinations with no data, including
// calendar-invalid ones like Feb 30.
type calendarGrid struct {
	Months []int        `json:"months"`
	Days   []int        `json:"days"`
	Values [][]*float64 `json:"values"`
}

type yearPoint struct {
	Year    int     `json:"year"`
	AvgRain float64 `json:"avg_rain_mm"`
}

type dateStats struct {
	MeanRainfall    float64 `json:"mean_rain_mm"`
	MaxRainfall     float64 `json:"max_rain_mm"`
	RainyYears      int     `json:"rainy_years"`
	DryYears        int     `json:"dry_years"`
	RainProbability float64 `json:"rain_probability"`
}

func newAnalysisResponse(result *analysis.Result) analysisResponse {
	req := result.Request

	yearly := make([]yearPoint, 0, len(result.Yearly))
	for _, year := range result.Yearly.Years() {
		yearly = append(yearly, yearPoint{Year: year, AvgRain: result.Yearly[year]})
	}

	return analysisResponse{
		Location:    req.Location,
		YearStart:   req.YearStart,
		YearEnd:     req.YearEnd,
		StartHour:   req.StartHour,
		EndHour:     req.EndHour,
		Month:       int(req.Month),
		Day:         req.Day,
		YearsLoaded: result.YearsLoaded,
		FromCache:   result.FromCache,
		Calendar:    newCalendarGrid(result.Calendar),
		Yearly:      yearly,
		Stats: dateStats{
			MeanRainfall:    result.Stats.MeanRainfall,
			MaxRainfall:     result.Stats.MaxRainfall,
			RainyYears:      result.Stats.RainyYears,
			DryYears:        result.Stats.DryYears,
			RainProbability: result.Stats.RainProbability,
		},
	}
}

func newCalendarGrid(matrix domain.CalendarMatrix) calendarGrid {
	grid := calendarGrid{
		Months: make([]int, 12),
		Days:   make([]int, 31),
		Values: make([][]*float64, 12),
	}
	for m := range grid.Months {
		grid.Months[m] = m + 1
		grid.Values[m] = make([]*float64, 31)
	}
	for d := range grid.Days {
		grid.Days[d] = d + 1
	}

	for md, avg := range matrix {
		v := avg
		grid.Values[int(md.Month)-1][md.Day-1] = &v
	}
	return grid
}
