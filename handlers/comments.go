package handlers

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"taller/comments"
	"taller/db"
	"taller/middleware"
	"taller/storage"
)

type CommentsHandler struct {
	db     *db.FirestoreDB
	images *storage.ImageStore
}

func NewCommentsHandler(firestoreDB *db.FirestoreDB, images *storage.ImageStore) *CommentsHandler {
	return &CommentsHandler{
		db:     firestoreDB,
		images: images,
	}
}

type PostCommentRequest struct {
	ReportID    string `json:"report_id"`
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

// Post appends a comment to a report's thread. Empty text with no image
// is a silent no-op, not an error. The record is written before the image
// upload so a failed upload never leaves an orphaned blob; the comment is
// patched with the URL once the upload lands.
func (h *CommentsHandler) Post(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReportID == "" {
		writeError(w, "Report id is required", http.StatusBadRequest)
		return
	}

	var imageData []byte
	if req.ImageBase64 != "" {
		var err error
		imageData, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, "Invalid image encoding", http.StatusBadRequest)
			return
		}
	}

	report, err := h.db.GetReport(r.Context(), req.ReportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	comment, submit := comments.New(report.ReportID, report.Folio, user.UserType, req.Text, len(imageData) > 0)
	if !submit {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Nothing to submit"})
		return
	}

	if err := h.db.CreateComment(r.Context(), comment); err != nil {
		log.Printf("❌ Failed to post comment on %s: %v", req.ReportID, err)
		writeDomainError(w, err)
		return
	}

	if len(imageData) > 0 {
		key := storage.ObjectKey(report.NoCard, time.Now())
		url, err := h.images.Upload(r.Context(), key, imageData)
		if err != nil {
			// The comment stands without its image; surface the failure.
			log.Printf("❌ Failed to upload comment image: %v", err)
			writeDomainError(w, err)
			return
		}
		if err := h.db.AttachCommentImage(r.Context(), comment.CommentID, url); err != nil {
			log.Printf("❌ Failed to attach comment image: %v", err)
			writeDomainError(w, err)
			return
		}
		comment.Image = url
	}

	log.Printf("💬 Comment posted on report %s by %s", req.ReportID, user.Email)
	writeJSON(w, http.StatusCreated, comment)
}

// List returns a report's thread ordered by server timestamp.
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	reportID := r.URL.Query().Get("report_id")
	if reportID == "" {
		writeError(w, "Report id is required", http.StatusBadRequest)
		return
	}

	thread, err := h.db.GetCommentsByReport(r.Context(), reportID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"comments": thread,
		"count":    len(thread),
	})
}

type DeleteCommentRequest struct {
	CommentID string `json:"comment_id"`
}

// Delete removes a comment and its stored image, never touching the
// parent report.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	var req DeleteCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	imageURL, err := h.db.DeleteComment(r.Context(), req.CommentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if imageURL != "" {
		if err := h.images.DeleteByURL(r.Context(), imageURL); err != nil {
			log.Printf("Warning: failed to delete comment image %s: %v", imageURL, err)
		}
	}

	log.Printf("🗑️  Comment %s deleted by %s", req.CommentID, user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
