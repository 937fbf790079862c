// Package comments builds the append-only message records attached to a
// report. Threads are keyed by the report's durable document id; the
// folio travels along only for display.
package comments

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"taller/models"
)

// New builds a comment record for the given report. The boolean result is
// false when there is nothing to submit: empty text after trimming and no
// image attached. That case is a silent no-op, not an error the caller
// should surface.
//
// CreatedAt is left zero; the store stamps the server timestamp on write
// so ordering never depends on client clocks.
func New(reportID string, folio int, authorRole models.UserType, text string, hasImage bool) (*models.Comment, bool) {
	text = strings.TrimSpace(text)
	if text == "" && !hasImage {
		return nil, false
	}
	return &models.Comment{
		CommentID: uuid.NewString(),
		ReportID:  reportID,
		Folio:     folio,
		Comment:   text,
		UserType:  string(authorRole),
	}, true
}

// SortThread orders a thread ascending by server timestamp, the same
// order the live query delivers. Used when a thread is assembled from a
// one-shot read instead of a subscription.
func SortThread(thread []models.Comment) {
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
}
