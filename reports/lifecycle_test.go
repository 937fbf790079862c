package reports

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"

	"taller/errs"
	"taller/models"
)

var testNow = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

func validInput() CreateInput {
	return CreateInput{
		Area:             "Sistemas",
		NoCard:           "A-104",
		ComputerData:     "Dell OptiPlex 7090",
		ServicePerformed: "No enciende el monitor",
		ReporterEmail:    "usuario@taller.mx",
	}
}

func TestNewReport_Defaults(t *testing.T) {
	r, err := NewReport(validInput(), testNow)
	if err != nil {
		t.Fatalf("NewReport: %v", err)
	}
	if r.Status != models.StatusPendiente {
		t.Errorf("status = %q, want %q", r.Status, models.StatusPendiente)
	}
	if !r.Notification {
		t.Error("notification = false, want true on creation")
	}
	if r.NotificationTech {
		t.Error("notificationTech = true, want false before assignment")
	}
	if r.Assigned() {
		t.Error("new report must not have a technician")
	}
	if r.Date != "05/03/2024" {
		t.Errorf("date = %q, want 05/03/2024", r.Date)
	}
	if r.Time != "14:30" {
		t.Errorf("time = %q, want 14:30", r.Time)
	}
	if !r.CreatedAt.Equal(testNow) {
		t.Errorf("created_at = %v, want %v", r.CreatedAt, testNow)
	}
	if r.FinishedAt != nil {
		t.Error("finished_at set on creation")
	}
}

func TestNewReport_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateInput)
		missing []string
	}{
		{"no computerData", func(in *CreateInput) { in.ComputerData = "" }, []string{"computerData"}},
		{"no servicePerformed", func(in *CreateInput) { in.ServicePerformed = "  " }, []string{"servicePerformed"}},
		{"no card", func(in *CreateInput) { in.NoCard = "" }, []string{"no_card"}},
		{"no area", func(in *CreateInput) { in.Area = "" }, []string{"area"}},
		{
			"everything empty",
			func(in *CreateInput) { *in = CreateInput{} },
			[]string{"computerData", "servicePerformed", "no_card", "area"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewReport(in, testNow)
			var ve *errs.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if len(ve.Missing) != len(tt.missing) {
				t.Fatalf("missing = %v, want %v", ve.Missing, tt.missing)
			}
			for i, f := range tt.missing {
				if ve.Missing[i] != f {
					t.Errorf("missing[%d] = %q, want %q", i, ve.Missing[i], f)
				}
			}
		})
	}
}

func updateValue(t *testing.T, updates []firestore.Update, path string) (interface{}, bool) {
	t.Helper()
	for _, u := range updates {
		if u.Path == path {
			return u.Value, true
		}
	}
	return nil, false
}

func TestStatusUpdate_Completado(t *testing.T) {
	updates, err := StatusUpdate(models.StatusCompletado, testNow)
	if err != nil {
		t.Fatalf("StatusUpdate: %v", err)
	}
	if v, _ := updateValue(t, updates, "status"); v != models.StatusCompletado {
		t.Errorf("status = %v, want Completado", v)
	}
	if v, _ := updateValue(t, updates, "notificationStatus"); v != true {
		t.Errorf("notificationStatus = %v, want true", v)
	}
	if v, ok := updateValue(t, updates, "dateFinish"); !ok || v != "05/03/2024" {
		t.Errorf("dateFinish = %v, want 05/03/2024", v)
	}
	if v, ok := updateValue(t, updates, "timeFinish"); !ok || v != "14:30" {
		t.Errorf("timeFinish = %v, want 14:30", v)
	}
	if _, ok := updateValue(t, updates, "finished_at"); !ok {
		t.Error("finished_at not stamped on completion")
	}
}

func TestStatusUpdate_RegressionKeepsFinishTimestamps(t *testing.T) {
	for _, status := range []models.ReportStatus{models.StatusPendiente, models.StatusEnProceso} {
		updates, err := StatusUpdate(status, testNow)
		if err != nil {
			t.Fatalf("StatusUpdate(%q): %v", status, err)
		}
		if v, _ := updateValue(t, updates, "notificationStatus"); v != false {
			t.Errorf("%q: notificationStatus = %v, want false", status, v)
		}
		// A regression out of Completado must not touch the finish stamps.
		if _, ok := updateValue(t, updates, "dateFinish"); ok {
			t.Errorf("%q: dateFinish present in update set", status)
		}
		if _, ok := updateValue(t, updates, "timeFinish"); ok {
			t.Errorf("%q: timeFinish present in update set", status)
		}
		if _, ok := updateValue(t, updates, "finished_at"); ok {
			t.Errorf("%q: finished_at present in update set", status)
		}
	}
}

func TestStatusUpdate_UnknownStatus(t *testing.T) {
	_, err := StatusUpdate("Cancelado", testNow)
	if !errs.IsValidation(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestAssignment(t *testing.T) {
	tech := &models.User{
		Email:          "tec@taller.mx",
		UserType:       models.RoleTecnico,
		TechnicianName: "Carlos Mendoza",
	}
	updates, err := Assignment(tech)
	if err != nil {
		t.Fatalf("Assignment: %v", err)
	}
	if v, _ := updateValue(t, updates, "technicianEmail"); v != "tec@taller.mx" {
		t.Errorf("technicianEmail = %v", v)
	}
	if v, _ := updateValue(t, updates, "technicianName"); v != "Carlos Mendoza" {
		t.Errorf("technicianName = %v", v)
	}
	if v, _ := updateValue(t, updates, "notification"); v != false {
		t.Errorf("notification = %v, want false (admin badge cleared)", v)
	}
	if v, _ := updateValue(t, updates, "notificationTech"); v != true {
		t.Errorf("notificationTech = %v, want true (tech badge raised)", v)
	}
}

// Reassignment produces the same post-condition shape regardless of any
// prior assignee: the field set is self-contained.
func TestAssignment_ReassignmentPostCondition(t *testing.T) {
	first := &models.User{Email: "a@taller.mx", UserType: models.RoleTecnico, TechnicianName: "A"}
	second := &models.User{Email: "b@taller.mx", UserType: models.RoleTecnico, TechnicianName: "B"}

	u1, err := Assignment(first)
	if err != nil {
		t.Fatal(err)
	}
	u2, err := Assignment(second)
	if err != nil {
		t.Fatal(err)
	}
	if len(u1) != len(u2) {
		t.Fatalf("field sets differ in shape: %d vs %d", len(u1), len(u2))
	}
	if v, _ := updateValue(t, u2, "technicianEmail"); v != "b@taller.mx" {
		t.Errorf("reassignment technicianEmail = %v, want b@taller.mx", v)
	}
	if v, _ := updateValue(t, u2, "notificationTech"); v != true {
		t.Errorf("reassignment notificationTech = %v, want true", v)
	}
}

func TestAssignment_NonTechnician(t *testing.T) {
	admin := &models.User{Email: "admin@taller.mx", UserType: models.RoleAdministrador}
	if _, err := Assignment(admin); err == nil {
		t.Fatal("Assignment accepted a non-technician")
	}
}

func TestCanOpen(t *testing.T) {
	report := &models.Report{TechnicianEmail: "tec@taller.mx"}
	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"assigned technician", &models.User{Email: "tec@taller.mx", UserType: models.RoleTecnico}, true},
		{"other technician", &models.User{Email: "otro@taller.mx", UserType: models.RoleTecnico}, false},
		{"administrator", &models.User{Email: "admin@taller.mx", UserType: models.RoleAdministrador}, true},
		{"plain user", &models.User{Email: "usuario@taller.mx", UserType: models.RoleUsuario}, false},
		{"reporter matching tech email but wrong role", &models.User{Email: "tec@taller.mx", UserType: models.RoleUsuario}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanOpen(tt.user, report); got != tt.want {
				t.Errorf("CanOpen = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpened(t *testing.T) {
	updates := Opened()
	if len(updates) != 1 {
		t.Fatalf("len(updates) = %d, want 1", len(updates))
	}
	if v, _ := updateValue(t, updates, "notificationTech"); v != false {
		t.Errorf("notificationTech = %v, want false", v)
	}
}
