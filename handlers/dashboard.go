package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"taller/db"
	"taller/metrics"
	"taller/middleware"
	"taller/models"
)

type DashboardHandler struct {
	db *db.FirestoreDB
}

func NewDashboardHandler(firestoreDB *db.FirestoreDB) *DashboardHandler {
	return &DashboardHandler{db: firestoreDB}
}

// Summary returns the completed-report aggregates for the dashboard,
// optionally filtered by area (?area=Sistemas, "Todos" or empty for all).
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rs, err := h.db.GetAllReports(r.Context())
	if err != nil {
		log.Printf("❌ Failed to load reports for dashboard: %v", err)
		writeDomainError(w, err)
		return
	}

	summary := metrics.Aggregate(rs, r.URL.Query().Get("area"))
	writeJSON(w, http.StatusOK, summary)
}

// ExportCSV exports the completed-report snapshot as a CSV download.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	rs, err := h.db.GetAllReports(r.Context())
	if err != nil {
		log.Printf("❌ Failed to load reports for export: %v", err)
		writeDomainError(w, err)
		return
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("taller_reportes_%s.csv", timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"Folio",
		"Status",
		"Area",
		"No. Card",
		"Computer Data",
		"Service Performed",
		"Technician",
		"Created",
		"Finished",
	}
	if err := writer.Write(header); err != nil {
		log.Printf("❌ Failed to write CSV header: %v", err)
		return
	}

	exported := 0
	for _, report := range rs {
		if report.Status != models.StatusCompletado {
			continue
		}
		row := []string{
			strconv.Itoa(report.Folio),
			string(report.Status),
			report.Area,
			report.NoCard,
			report.ComputerData,
			report.ServicePerformed,
			report.TechnicianName,
			fmt.Sprintf("%s %s", report.Date, report.Time),
			fmt.Sprintf("%s %s", report.DateFinish, report.TimeFinish),
		}
		if err := writer.Write(row); err != nil {
			log.Printf("❌ Failed to write CSV row: %v", err)
			return
		}
		exported++
	}

	log.Printf("📊 CSV export by %s: %d reports", user.Email, exported)
}
