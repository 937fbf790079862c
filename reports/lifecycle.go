// Package reports implements the report lifecycle: creation validation,
// the status state machine, technician assignment and the badge flags the
// mobile screens key off. Everything here is pure; persistence applies
// the returned field sets as partial updates so concurrent writers on
// unrelated fields never clobber each other.
package reports

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"taller/errs"
	"taller/models"
)

// FolioBase is the folio assigned to the very first report.
const FolioBase = 300

// Presentation formats used by the mobile screens (es-MX day-first date,
// 24-hour clock). Canonical instants are stored alongside; these strings
// are display-only.
const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"
)

// FormatDate renders t in the screen-facing date format.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime renders t in the screen-facing time format.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// CreateInput carries the user-submitted fields of a new report.
type CreateInput struct {
	Area             string
	NoCard           string
	ComputerData     string
	ServicePerformed string
	Imagen           string
	ReporterEmail    string
}

// NewReport validates in and builds the report record to persist.
// On any missing required field it returns a ValidationError enumerating
// all of them and no record; folio and document id are assigned by the
// store layer at write time.
func NewReport(in CreateInput, now time.Time) (*models.Report, error) {
	var missing []string
	if strings.TrimSpace(in.ComputerData) == "" {
		missing = append(missing, "computerData")
	}
	if strings.TrimSpace(in.ServicePerformed) == "" {
		missing = append(missing, "servicePerformed")
	}
	if strings.TrimSpace(in.NoCard) == "" {
		missing = append(missing, "no_card")
	}
	if strings.TrimSpace(in.Area) == "" {
		missing = append(missing, "area")
	}
	if len(missing) > 0 {
		return nil, &errs.ValidationError{Missing: missing}
	}

	return &models.Report{
		Status:           models.StatusPendiente,
		CreatedAt:        now,
		Date:             FormatDate(now),
		Time:             FormatTime(now),
		Area:             in.Area,
		NoCard:           in.NoCard,
		ComputerData:     in.ComputerData,
		ServicePerformed: in.ServicePerformed,
		Imagen:           in.Imagen,
		ReporterEmail:    in.ReporterEmail,
		Notification:     true,
		NotificationTech: false,
	}, nil
}

// StatusUpdate computes the partial field set for a status transition.
// Any state is reachable from any state. Transitioning into Completado
// raises the reporter badge and stamps the finish instant; transitioning
// anywhere else lowers the badge and leaves any previous finish stamp in
// place (the record keeps meaning "last completion").
func StatusUpdate(newStatus models.ReportStatus, now time.Time) ([]firestore.Update, error) {
	if !newStatus.Valid() {
		return nil, &errs.ValidationError{Missing: []string{"status"}}
	}

	updates := []firestore.Update{
		{Path: "status", Value: newStatus},
	}
	if newStatus == models.StatusCompletado {
		updates = append(updates,
			firestore.Update{Path: "notificationStatus", Value: true},
			firestore.Update{Path: "finished_at", Value: now},
			firestore.Update{Path: "dateFinish", Value: FormatDate(now)},
			firestore.Update{Path: "timeFinish", Value: FormatTime(now)},
		)
	} else {
		updates = append(updates,
			firestore.Update{Path: "notificationStatus", Value: false},
		)
	}
	return updates, nil
}

// Assignment computes the single atomic field set that binds a technician
// to a report: it records the assignee, clears the admin badge and raises
// the technician badge. Reassignment overwrites the previous assignee; no
// history is kept.
func Assignment(technician *models.User) ([]firestore.Update, error) {
	if technician.UserType != models.RoleTecnico {
		return nil, fmt.Errorf("user %s is not a technician", technician.Email)
	}
	name := technician.TechnicianName
	if name == "" {
		name = technician.UserName
	}
	return []firestore.Update{
		{Path: "technicianEmail", Value: technician.Email},
		{Path: "technicianName", Value: name},
		{Path: "notification", Value: false},
		{Path: "notificationTech", Value: true},
	}, nil
}

// Opened computes the field set applied when the assigned technician
// opens the report, lowering the technician badge. Idempotent.
func Opened() []firestore.Update {
	return []firestore.Update{
		{Path: "notificationTech", Value: false},
	}
}

// CanOpen reports whether user may mark report as seen. Only the
// assigned technician clears their own badge; administrators may clear
// it on the technician's behalf.
func CanOpen(user *models.User, report *models.Report) bool {
	switch user.UserType {
	case models.RoleAdministrador:
		return true
	case models.RoleTecnico:
		return report.TechnicianEmail == user.Email
	default:
		return false
	}
}
