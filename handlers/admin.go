package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taller/auth"
	"taller/db"
	"taller/errs"
	"taller/middleware"
	"taller/models"
)

type AdminHandler struct {
	db *db.FirestoreDB
}

func NewAdminHandler(firestoreDB *db.FirestoreDB) *AdminHandler {
	return &AdminHandler{db: firestoreDB}
}

// --- User Management ---

type CreateUserRequest struct {
	Email             string          `json:"email"`
	Password          string          `json:"password"`
	UserType          models.UserType `json:"userType"`
	UserName          string          `json:"userName,omitempty"`
	Area              string          `json:"area,omitempty"`
	TechnicianName    string          `json:"technicianName,omitempty"`
	TechnicianService string          `json:"technicianService,omitempty"`
}

// GetUsers returns all user profiles.
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.db.GetAllUsers(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get users: %v", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetTechnicians returns the assignment roster.
func (h *AdminHandler) GetTechnicians(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	technicians, err := h.db.GetTechnicians(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get technicians: %v", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, technicians)
}

// CreateUser creates a new user profile. The credential is stored as a
// bcrypt hash in the passwords collection; the profile document never
// carries it.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, "Email and password are required", http.StatusBadRequest)
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if existing, _ := h.db.GetUserByEmail(r.Context(), req.Email); existing != nil {
		writeError(w, "Email already registered", http.StatusConflict)
		return
	}

	user := &models.User{
		UserID:            uuid.NewString(),
		Email:             req.Email,
		UserType:          req.UserType,
		UserName:          req.UserName,
		Area:              req.Area,
		TechnicianName:    req.TechnicianName,
		TechnicianService: req.TechnicianService,
		LastLogin:         time.Now(),
	}

	if err := h.db.CreateUser(r.Context(), user); err != nil {
		log.Printf("❌ Failed to create user: %v", err)
		writeDomainError(w, err)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.db.StorePasswordHash(r.Context(), user.UserID, passwordHash); err != nil {
		log.Printf("❌ Failed to store password: %v", err)
		writeDomainError(w, err)
		return
	}

	log.Printf("👤 User created: %s (%s) by %s", user.Email, user.UserType, adminUser.Email)
	writeJSON(w, http.StatusCreated, user)
}

type DeleteUserByEmailRequest struct {
	Email string `json:"email"`
}

// DeleteUserByEmail deletes the authentication identity behind an email
// and the matching profile. The caller must be authenticated (enforced
// by middleware); a missing email is a validation error, an unresolvable
// one a not-found.
func (h *AdminHandler) DeleteUserByEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeDomainError(w, errs.ErrPermission)
		return
	}

	var req DeleteUserByEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		writeDomainError(w, &errs.ValidationError{Missing: []string{"email"}})
		return
	}

	if err := h.db.DeleteAuthUserByEmail(r.Context(), req.Email); err != nil {
		log.Printf("❌ Failed to delete auth identity for %s: %v", req.Email, err)
		writeDomainError(w, err)
		return
	}

	if profile, err := h.db.GetUserByEmail(r.Context(), req.Email); err == nil {
		if err := h.db.DeleteUser(r.Context(), profile.UserID); err != nil {
			log.Printf("Warning: auth identity deleted but profile removal failed for %s: %v", req.Email, err)
		}
	}

	log.Printf("🗑️  User %s deleted by %s", req.Email, adminUser.Email)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

// --- Area Catalog ---

type CreateAreaRequest struct {
	Area string `json:"area"`
}

// GetAreas returns the picklist catalog ordered by name.
func (h *AdminHandler) GetAreas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	areas, err := h.db.GetAllAreas(r.Context())
	if err != nil {
		log.Printf("❌ Failed to get areas: %v", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, areas)
}

// CreateArea adds an area to the catalog.
func (h *AdminHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Area == "" {
		writeDomainError(w, &errs.ValidationError{Missing: []string{"area"}})
		return
	}

	area := &models.Area{
		AreaID: uuid.NewString(),
		Area:   req.Area,
	}
	if err := h.db.CreateArea(r.Context(), area); err != nil {
		log.Printf("❌ Failed to create area: %v", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, area)
}

type DeleteAreaRequest struct {
	AreaID string `json:"area_id"`
}

// DeleteArea removes an area from the catalog.
func (h *AdminHandler) DeleteArea(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DeleteAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.db.DeleteArea(r.Context(), req.AreaID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Area deleted"})
}
