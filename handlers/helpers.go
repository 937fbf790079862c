package handlers

import (
	"encoding/json"
	"net/http"

	"taller/errs"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps the shared error taxonomy onto HTTP statuses.
// Transient failures carry a retry hint so the screen can show its retry
// affordance instead of failing silently.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errs.IsValidation(err):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errs.IsNotFound(err):
		writeError(w, err.Error(), http.StatusNotFound)
	case errs.IsConflict(err):
		writeError(w, err.Error(), http.StatusConflict)
	case errs.IsPermission(err):
		writeError(w, err.Error(), http.StatusForbidden)
	case errs.IsTransient(err):
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error": "The store is temporarily unavailable. Please retry.",
			"retry": true,
		})
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}
