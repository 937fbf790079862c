package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taller/db"
	"taller/errs"
	"taller/middleware"
	"taller/models"
	"taller/reports"
	"taller/storage"
)

type ReportsHandler struct {
	db      *db.FirestoreDB
	images  *storage.ImageStore
	watcher *db.Watcher
}

func NewReportsHandler(firestoreDB *db.FirestoreDB, images *storage.ImageStore, watcher *db.Watcher) *ReportsHandler {
	return &ReportsHandler{
		db:      firestoreDB,
		images:  images,
		watcher: watcher,
	}
}

func (h *ReportsHandler) audit(r *http.Request, user *models.User, action, details string) {
	h.db.CreateAuditLog(r.Context(), &models.AuditLog{
		LogID:     uuid.NewString(),
		Timestamp: time.Now(),
		UserID:    user.UserID,
		Action:    action,
		Details:   details,
	})
}

type CreateReportRequest struct {
	Area             string `json:"area"`
	NoCard           string `json:"no_card"`
	ComputerData     string `json:"computerData"`
	ServicePerformed string `json:"servicePerformed"`
	ImageBase64      string `json:"image_base64,omitempty"`
}

// Create files a new report. The folio comes back with the stored record.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := time.Now()
	report, err := reports.NewReport(reports.CreateInput{
		Area:             req.Area,
		NoCard:           req.NoCard,
		ComputerData:     req.ComputerData,
		ServicePerformed: req.ServicePerformed,
		ReporterEmail:    user.Email,
	}, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	report.ReportID = uuid.NewString()

	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, "Invalid image encoding", http.StatusBadRequest)
			return
		}
		key := storage.ObjectKey(report.NoCard, now)
		url, err := h.images.Upload(r.Context(), key, data)
		if err != nil {
			log.Printf("❌ Failed to upload report image: %v", err)
			writeDomainError(w, err)
			return
		}
		report.Imagen = url
	}

	if err := h.db.CreateReport(r.Context(), report); err != nil {
		log.Printf("❌ Failed to create report: %v", err)
		if report.Imagen != "" {
			if derr := h.images.DeleteByURL(r.Context(), report.Imagen); derr != nil {
				log.Printf("Warning: orphaned image not cleaned up: %v", derr)
			}
		}
		writeDomainError(w, err)
		return
	}

	h.audit(r, user, "CREATE_REPORT", fmt.Sprintf("folio %d, area %s", report.Folio, report.Area))
	log.Printf("📋 Report created: folio %d by %s", report.Folio, user.Email)

	writeJSON(w, http.StatusCreated, report)
}

// List returns the report set the caller is entitled to: administrators
// see everything, technicians their assignments, users their own filings.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var (
		rs  []models.Report
		err error
	)
	switch user.UserType {
	case models.RoleAdministrador:
		rs, err = h.db.GetAllReports(r.Context())
	case models.RoleTecnico:
		rs, err = h.db.GetReportsByTechnician(r.Context(), user.Email)
	default:
		rs, err = h.db.GetReportsByReporter(r.Context(), user.Email)
	}
	if err != nil {
		log.Printf("❌ Failed to list reports: %v", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": rs,
		"count":   len(rs),
	})
}

// Get returns one report with its comment thread.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reportID := r.URL.Query().Get("id")
	if reportID == "" {
		writeError(w, "Report id is required", http.StatusBadRequest)
		return
	}

	report, err := h.db.GetReport(r.Context(), reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	thread, err := h.db.GetCommentsByReport(r.Context(), reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report":   report,
		"comments": thread,
	})
}

type SetStatusRequest struct {
	ReportID string              `json:"report_id"`
	Status   models.ReportStatus `json:"status"`
}

// SetStatus transitions a report through the lifecycle state machine.
func (h *ReportsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReportID == "" {
		writeError(w, "Report id is required", http.StatusBadRequest)
		return
	}

	updates, err := reports.StatusUpdate(req.Status, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.db.UpdateReport(r.Context(), req.ReportID, updates); err != nil {
		log.Printf("❌ Failed to set status of %s: %v", req.ReportID, err)
		writeDomainError(w, err)
		return
	}

	h.audit(r, user, "SET_STATUS", fmt.Sprintf("report %s -> %s", req.ReportID, req.Status))
	log.Printf("🔄 Report %s status set to %s by %s", req.ReportID, req.Status, user.Email)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

type AssignRequest struct {
	ReportID        string `json:"report_id"`
	TechnicianEmail string `json:"technician_email"`
}

// Assign binds a technician to a report, lowering the admin badge and
// raising the technician badge in one atomic update.
func (h *ReportsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReportID == "" || req.TechnicianEmail == "" {
		writeError(w, "Report id and technician email are required", http.StatusBadRequest)
		return
	}

	technician, err := h.db.GetUserByEmail(r.Context(), req.TechnicianEmail)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if technician.UserType != models.RoleTecnico {
		// Exists, but not in the technician roster.
		writeDomainError(w, &errs.NotFoundError{Kind: "technician", Key: req.TechnicianEmail})
		return
	}

	updates, err := reports.Assignment(technician)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.db.UpdateReport(r.Context(), req.ReportID, updates); err != nil {
		log.Printf("❌ Failed to assign %s: %v", req.ReportID, err)
		writeDomainError(w, err)
		return
	}

	h.audit(r, user, "ASSIGN_TECHNICIAN", fmt.Sprintf("report %s -> %s", req.ReportID, technician.Email))
	log.Printf("🔧 Report %s assigned to %s by %s", req.ReportID, technician.Email, user.Email)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Technician assigned"})
}

type OpenRequest struct {
	ReportID string `json:"report_id"`
}

// Open marks a report as seen by its assigned technician, lowering the
// technician badge. Idempotent.
func (h *ReportsHandler) Open(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := h.db.GetReport(r.Context(), req.ReportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !reports.CanOpen(user, report) {
		writeError(w, "Report is not assigned to you", http.StatusForbidden)
		return
	}

	if err := h.db.UpdateReport(r.Context(), req.ReportID, reports.Opened()); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Report opened"})
}

type DeleteReportRequest struct {
	ReportID string `json:"report_id"`
}

// Delete removes a report, its comment thread and every stored image.
func (h *ReportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req DeleteReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	blobs, err := h.db.DeleteReport(r.Context(), req.ReportID)
	if err != nil {
		log.Printf("❌ Failed to delete report %s: %v", req.ReportID, err)
		writeDomainError(w, err)
		return
	}
	for _, url := range blobs {
		if err := h.images.DeleteByURL(r.Context(), url); err != nil {
			log.Printf("Warning: failed to delete blob %s: %v", url, err)
		}
	}

	h.audit(r, user, "DELETE_REPORT", fmt.Sprintf("report %s (%d blobs)", req.ReportID, len(blobs)))
	log.Printf("🗑️  Report %s deleted by %s", req.ReportID, user.Email)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Report deleted"})
}

// Badges reports the caller's badge count: for administrators the number
// of unassigned new reports, for technicians their unread assignments,
// for everyone else their completed-and-unseen filings. Admin and
// technician counts come from the session's live subscription, started
// on first use.
func (h *ReportsHandler) Badges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	switch user.UserType {
	case models.RoleAdministrador:
		h.watcher.WatchAdminBadge()
		// The subscription may not have delivered yet; fall back to a
		// one-shot query so the badge is never silently stale-zero.
		if n := h.watcher.Count(db.SubAdminNewReports); n > 0 {
			writeJSON(w, http.StatusOK, map[string]int{"badge": n})
			return
		}
		rs, err := h.db.GetUnassignedNotifications(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"badge": len(rs)})
	case models.RoleTecnico:
		h.watcher.WatchTechnicianBadge(user.Email)
		if n := h.watcher.Count(db.TechnicianBadgeSub(user.Email)); n > 0 {
			writeJSON(w, http.StatusOK, map[string]int{"badge": n})
			return
		}
		rs, err := h.db.GetTechnicianNotifications(r.Context(), user.Email)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"badge": len(rs)})
	default:
		rs, err := h.db.GetReporterNotifications(r.Context(), user.Email)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"badge": len(rs)})
	}
}
