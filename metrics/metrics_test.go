package metrics

import (
	"math"
	"testing"
	"time"

	"taller/models"
)

func completed(folio int, area string, start time.Time, elapsed time.Duration) models.Report {
	finish := start.Add(elapsed)
	return models.Report{
		Folio:      folio,
		Area:       area,
		Status:     models.StatusCompletado,
		CreatedAt:  start,
		FinishedAt: &finish,
	}
}

var start = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestAggregate_Empty(t *testing.T) {
	for _, rs := range [][]models.Report{nil, {}} {
		s := Aggregate(rs, "")
		if s.AverageElapsed != "0:00" {
			t.Errorf("average = %q, want 0:00", s.AverageElapsed)
		}
		if len(s.PerArea) != 0 || len(s.PerFolio) != 0 {
			t.Errorf("non-empty aggregates for empty input: %+v", s)
		}
		if s.TotalReports != 0 {
			t.Errorf("total = %d, want 0", s.TotalReports)
		}
	}
}

func TestAggregate_SkipsPendingReports(t *testing.T) {
	rs := []models.Report{
		{Folio: 300, Status: models.StatusPendiente, CreatedAt: start},
		{Folio: 301, Status: models.StatusEnProceso, CreatedAt: start},
		completed(302, "Sistemas", start, 90*time.Minute),
	}
	s := Aggregate(rs, "")
	if s.TotalReports != 1 {
		t.Fatalf("total = %d, want 1", s.TotalReports)
	}
	if s.PerFolio[0].Folio != 302 {
		t.Errorf("folio = %d, want 302", s.PerFolio[0].Folio)
	}
	if s.AverageElapsed != "1:30" {
		t.Errorf("average = %q, want 1:30", s.AverageElapsed)
	}
}

func TestAggregate_AreaFilter(t *testing.T) {
	rs := []models.Report{
		completed(300, "Sistemas", start, time.Hour),
		completed(301, "Almacén", start, 2*time.Hour),
		completed(302, "Sistemas", start, 3*time.Hour),
	}

	s := Aggregate(rs, "Sistemas")
	if s.TotalReports != 2 {
		t.Fatalf("filtered total = %d, want 2", s.TotalReports)
	}
	if s.AverageElapsed != "2:00" {
		t.Errorf("filtered average = %q, want 2:00", s.AverageElapsed)
	}

	for _, all := range []string{"", AreaAll} {
		s := Aggregate(rs, all)
		if s.TotalReports != 3 {
			t.Errorf("filter %q: total = %d, want 3", all, s.TotalReports)
		}
	}
}

func TestAggregate_PerAreaDistribution(t *testing.T) {
	rs := []models.Report{
		completed(300, "Sistemas", start, time.Hour),
		completed(301, "Sistemas", start, time.Hour),
		completed(302, "Almacén", start, time.Hour),
		completed(303, "Dirección", start, time.Hour),
	}
	s := Aggregate(rs, "")
	if len(s.PerArea) != 3 {
		t.Fatalf("areas = %d, want 3", len(s.PerArea))
	}
	if s.PerArea[0].Area != "Sistemas" || s.PerArea[0].Count != 2 {
		t.Errorf("first area = %+v, want Sistemas x2", s.PerArea[0])
	}
	if math.Abs(s.PerArea[0].Percentage-50) > 1e-9 {
		t.Errorf("percentage = %v, want 50", s.PerArea[0].Percentage)
	}
	var total float64
	for _, a := range s.PerArea {
		total += a.Percentage
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", total)
	}
}

// Finish before start means clock skew or bad data: the report is flagged
// and excluded, never reported as a negative duration.
func TestAggregate_FlagsNegativeElapsed(t *testing.T) {
	rs := []models.Report{
		completed(300, "Sistemas", start, time.Hour),
		completed(301, "Sistemas", start, -30*time.Minute),
	}
	s := Aggregate(rs, "")
	if s.TotalReports != 1 {
		t.Fatalf("total = %d, want 1", s.TotalReports)
	}
	if len(s.Flagged) != 1 || s.Flagged[0] != 301 {
		t.Errorf("flagged = %v, want [301]", s.Flagged)
	}
	for _, fe := range s.PerFolio {
		if fe.Hours < 0 {
			t.Errorf("negative duration leaked: %+v", fe)
		}
	}
}

// Documents written before the timestamp migration carry only the locale
// strings; the aggregator recovers the window from those.
func TestAggregate_LegacyLocaleStrings(t *testing.T) {
	rs := []models.Report{
		{
			Folio:      300,
			Area:       "Sistemas",
			Status:     models.StatusCompletado,
			Date:       "01/03/2024",
			Time:       "09:00",
			DateFinish: "01/03/2024",
			TimeFinish: "11:30",
		},
	}
	s := Aggregate(rs, "")
	if s.TotalReports != 1 {
		t.Fatalf("total = %d, want 1 (legacy parse failed)", s.TotalReports)
	}
	if s.AverageElapsed != "2:30" {
		t.Errorf("average = %q, want 2:30", s.AverageElapsed)
	}
}

func TestAggregate_FlagsUnparseableLegacy(t *testing.T) {
	rs := []models.Report{
		{Folio: 300, Area: "Sistemas", Status: models.StatusCompletado, Date: "bad", Time: "date"},
	}
	s := Aggregate(rs, "")
	if s.TotalReports != 0 {
		t.Errorf("total = %d, want 0", s.TotalReports)
	}
	if len(s.Flagged) != 1 || s.Flagged[0] != 300 {
		t.Errorf("flagged = %v, want [300]", s.Flagged)
	}
}
