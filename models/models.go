// models.go
// Defines the core data structures shared by the Taller API (handlers, db layer and seed scripts).

package models

import (
	"time"
)

// ReportStatus is the lifecycle state of a maintenance report.
type ReportStatus string

const (
	StatusPendiente  ReportStatus = "Pendiente"
	StatusEnProceso  ReportStatus = "En Proceso"
	StatusCompletado ReportStatus = "Completado"
)

// Valid reports whether s is one of the three lifecycle states.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPendiente, StatusEnProceso, StatusCompletado:
		return true
	}
	return false
}

// Report is a maintenance ticket. It maps directly to a document in the
// "reports" collection.
//
// CreatedAt/FinishedAt are the canonical instants; Date/Time and
// DateFinish/TimeFinish are the locale-formatted presentation strings the
// mobile screens render. The strings are derived at write time and never
// parsed back except for pre-migration documents (see metrics package).
type Report struct {
	ReportID string       `firestore:"report_id" json:"report_id"` // Server-generated UUID (document key)
	Folio    int          `firestore:"folio" json:"folio"`         // Human-facing sequential ticket number
	Status   ReportStatus `firestore:"status" json:"status"`

	CreatedAt  time.Time  `firestore:"created_at" json:"created_at"`
	FinishedAt *time.Time `firestore:"finished_at,omitempty" json:"finished_at,omitempty"`

	Date       string `firestore:"date" json:"date"` // dd/mm/yyyy
	Time       string `firestore:"time" json:"time"` // HH:MM, 24-hour
	DateFinish string `firestore:"dateFinish,omitempty" json:"dateFinish,omitempty"`
	TimeFinish string `firestore:"timeFinish,omitempty" json:"timeFinish,omitempty"`

	Area             string `firestore:"area" json:"area"`
	NoCard           string `firestore:"no_card" json:"no_card"`
	ComputerData     string `firestore:"computerData" json:"computerData"`
	ServicePerformed string `firestore:"servicePerformed" json:"servicePerformed"`
	Imagen           string `firestore:"imagen,omitempty" json:"imagen,omitempty"`

	ReporterEmail string `firestore:"reporterEmail,omitempty" json:"reporterEmail,omitempty"`

	TechnicianEmail string `firestore:"technicianEmail,omitempty" json:"technicianEmail,omitempty"`
	TechnicianName  string `firestore:"technicianName,omitempty" json:"technicianName,omitempty"`

	// Badge flags. Notification lights the admin "new report" badge,
	// NotificationTech the assigned technician's badge, NotificationStatus
	// the reporter's "completed" badge.
	Notification       bool `firestore:"notification" json:"notification"`
	NotificationTech   bool `firestore:"notificationTech" json:"notificationTech"`
	NotificationStatus bool `firestore:"notificationStatus" json:"notificationStatus"`
}

// Assigned reports whether a technician has been bound to the report.
func (r *Report) Assigned() bool {
	return r.TechnicianEmail != ""
}

// Comment is an append-only message attached to a report. Keyed by the
// report's durable document id; Folio is kept only as a display field.
type Comment struct {
	CommentID string `firestore:"comment_id" json:"comment_id"`
	ReportID  string `firestore:"report_id" json:"report_id"`
	Folio     int    `firestore:"folio" json:"folio"`

	Comment  string `firestore:"comment" json:"comment"`
	UserType string `firestore:"userType" json:"userType"` // author role label, drives bubble styling only
	Image    string `firestore:"image,omitempty" json:"image,omitempty"`

	CreatedAt time.Time `firestore:"created_at,serverTimestamp" json:"created_at"`
}

// MaintenanceSchedule is a technician-owned recurring-service declaration.
// Never updated in place; changing the frequency is delete + recreate.
type MaintenanceSchedule struct {
	ScheduleID      string `firestore:"schedule_id" json:"schedule_id"`
	Equipment       string `firestore:"equipment" json:"equipment"`
	StartDate       string `firestore:"startDate" json:"startDate"` // ISO date, yyyy-mm-dd
	Frequency       string `firestore:"frequency" json:"frequency"` // "<N> día(s)"
	TechnicianEmail string `firestore:"technicianEmail" json:"technicianEmail"`
}

// Area is one entry of the flat area catalog used as a picklist.
type Area struct {
	AreaID string `firestore:"area_id" json:"area_id"`
	Area   string `firestore:"area" json:"area"`
}

// UserType defines the access level of a user.
type UserType string

const (
	RoleUsuario       UserType = "Usuario"
	RoleAdministrador UserType = "Administrador"
	RoleTecnico       UserType = "Tecnico"
)

// User is a profile document in the "users" collection. Credentials are
// never stored here; bcrypt hashes live in the separate "passwords"
// collection keyed by user id.
type User struct {
	UserID            string    `firestore:"user_id" json:"user_id"`
	Email             string    `firestore:"email" json:"email"`
	UserType          UserType  `firestore:"userType" json:"userType"`
	UserName          string    `firestore:"userName,omitempty" json:"userName,omitempty"`
	Area              string    `firestore:"area,omitempty" json:"area,omitempty"`
	TechnicianName    string    `firestore:"technicianName,omitempty" json:"technicianName,omitempty"`
	TechnicianService string    `firestore:"technicianService,omitempty" json:"technicianService,omitempty"`
	LastLogin         time.Time `firestore:"last_login" json:"last_login"`
}

// AuditLog records one lifecycle mutation for traceability.
type AuditLog struct {
	LogID     string    `firestore:"log_id" json:"log_id"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Action    string    `firestore:"action" json:"action"`
	Details   string    `firestore:"details" json:"details"`
}
