// Package metrics derives the dashboard figures from completed reports:
// elapsed repair time per folio, the overall average and the per-area
// distribution.
package metrics

import (
	"fmt"
	"time"

	"taller/models"
	"taller/reports"
)

// AreaAll is the filter value meaning "no area filter".
const AreaAll = "Todos"

// FolioElapsed is the repair duration of one completed report.
type FolioElapsed struct {
	Folio int     `json:"folio"`
	Hours float64 `json:"hours"`
}

// AreaCount is the share of completed reports belonging to one area.
type AreaCount struct {
	Area       string  `json:"area"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary aggregates the completed-report snapshot for the dashboard.
type Summary struct {
	PerFolio       []FolioElapsed `json:"per_folio"`
	AverageElapsed string         `json:"average_elapsed"` // H:MM
	TotalReports   int            `json:"total_reports"`
	PerArea        []AreaCount    `json:"per_area"`
	// Flagged lists folios whose finish instant precedes their start
	// (clock skew or bad data) or whose timestamps could not be
	// recovered. They are excluded from PerFolio and the average.
	Flagged []int `json:"flagged,omitempty"`
}

// Aggregate filters rs to completed reports (and to areaFilter, unless
// empty or AreaAll) and computes the dashboard summary. An empty match
// yields "0:00" and empty slices, never a division by zero.
func Aggregate(rs []models.Report, areaFilter string) Summary {
	summary := Summary{
		PerFolio: []FolioElapsed{},
		PerArea:  []AreaCount{},
	}

	var included []models.Report
	for _, r := range rs {
		if r.Status != models.StatusCompletado {
			continue
		}
		if areaFilter != "" && areaFilter != AreaAll && r.Area != areaFilter {
			continue
		}
		included = append(included, r)
	}

	totalMinutes := 0
	counted := 0
	areaOrder := []string{}
	areaCounts := map[string]int{}

	for _, r := range included {
		start, finish, ok := repairWindow(&r)
		if !ok || finish.Before(start) {
			summary.Flagged = append(summary.Flagged, r.Folio)
			continue
		}
		minutes := int(finish.Sub(start).Minutes())
		hours := float64(minutes/60) + float64(minutes%60)/60
		summary.PerFolio = append(summary.PerFolio, FolioElapsed{Folio: r.Folio, Hours: hours})
		totalMinutes += minutes
		counted++

		if _, seen := areaCounts[r.Area]; !seen {
			areaOrder = append(areaOrder, r.Area)
		}
		areaCounts[r.Area]++
	}

	summary.TotalReports = counted
	summary.AverageElapsed = formatAverage(totalMinutes, counted)
	for _, area := range areaOrder {
		summary.PerArea = append(summary.PerArea, AreaCount{
			Area:       area,
			Count:      areaCounts[area],
			Percentage: float64(areaCounts[area]) / float64(counted) * 100,
		})
	}
	return summary
}

// repairWindow recovers the start and finish instants of a completed
// report. Canonical instants win; documents written before the timestamp
// migration fall back to the locale date/time strings.
func repairWindow(r *models.Report) (start, finish time.Time, ok bool) {
	if !r.CreatedAt.IsZero() && r.FinishedAt != nil {
		return r.CreatedAt, *r.FinishedAt, true
	}
	start, err := parseLocale(r.Date, r.Time)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	finish, err = parseLocale(r.DateFinish, r.TimeFinish)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, finish, true
}

func parseLocale(date, clock string) (time.Time, error) {
	return time.ParseInLocation(
		reports.DateLayout+" "+reports.TimeLayout,
		fmt.Sprintf("%s %s", date, clock),
		time.UTC,
	)
}

func formatAverage(totalMinutes, count int) string {
	if count == 0 {
		return "0:00"
	}
	avg := (totalMinutes + count/2) / count
	return fmt.Sprintf("%d:%02d", avg/60, avg%60)
}
