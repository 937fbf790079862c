package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"taller/db"
	"taller/maintenance"
	"taller/middleware"
	"taller/models"
)

type MaintenanceHandler struct {
	db *db.FirestoreDB
}

func NewMaintenanceHandler(firestoreDB *db.FirestoreDB) *MaintenanceHandler {
	return &MaintenanceHandler{db: firestoreDB}
}

type CreateScheduleRequest struct {
	Equipment     string `json:"equipment"`
	StartDate     string `json:"startDate"`
	FrequencyDays int    `json:"frequency_days"`
}

// Create declares a recurring-service schedule owned by the calling
// technician. Schedules are never updated in place; changing the
// frequency is delete + recreate.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Equipment == "" {
		writeError(w, "Equipment name is required", http.StatusBadRequest)
		return
	}

	// Validate the projection inputs up front so a malformed schedule is
	// rejected before it is stored.
	if _, err := maintenance.ProjectOccurrences(req.StartDate, req.FrequencyDays, 1); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	schedule := &models.MaintenanceSchedule{
		ScheduleID:      uuid.NewString(),
		Equipment:       req.Equipment,
		StartDate:       req.StartDate,
		Frequency:       maintenance.FormatFrequency(req.FrequencyDays),
		TechnicianEmail: user.Email,
	}

	if err := h.db.CreateMaintenance(r.Context(), schedule); err != nil {
		log.Printf("❌ Failed to create maintenance schedule: %v", err)
		writeDomainError(w, err)
		return
	}

	log.Printf("🔧 Maintenance schedule created for %s by %s", schedule.Equipment, user.Email)
	writeJSON(w, http.StatusCreated, schedule)
}

// List returns the calling technician's schedules, each with its
// projected calendar dates.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	schedules, err := h.db.GetMaintenanceByTechnician(r.Context(), user.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	type scheduleWithDates struct {
		models.MaintenanceSchedule
		Occurrences []string `json:"occurrences"`
	}

	out := make([]scheduleWithDates, 0, len(schedules))
	for _, s := range schedules {
		days, err := maintenance.ParseFrequency(s.Frequency)
		if err != nil {
			log.Printf("Warning: schedule %s has malformed frequency %q", s.ScheduleID, s.Frequency)
			out = append(out, scheduleWithDates{MaintenanceSchedule: s})
			continue
		}
		dates, err := maintenance.ProjectOccurrences(s.StartDate, days, maintenance.DefaultOccurrences)
		if err != nil {
			log.Printf("Warning: schedule %s has malformed start date %q", s.ScheduleID, s.StartDate)
			out = append(out, scheduleWithDates{MaintenanceSchedule: s})
			continue
		}
		out = append(out, scheduleWithDates{MaintenanceSchedule: s, Occurrences: dates})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"schedules": out,
		"count":     len(out),
	})
}

type DeleteScheduleRequest struct {
	ScheduleID string `json:"schedule_id"`
}

// Delete removes a schedule.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req DeleteScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteMaintenance(r.Context(), req.ScheduleID); err != nil {
		writeDomainError(w, err)
		return
	}

	log.Printf("🗑️  Maintenance schedule %s deleted by %s", req.ScheduleID, user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted"})
}
