package comments

import (
	"testing"
	"time"

	"taller/models"
)

func TestNew_NothingToSubmit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hasImage bool
		wantOK   bool
	}{
		{"empty text no image", "", false, false},
		{"whitespace only no image", "   \t ", false, false},
		{"image only", "", true, true},
		{"text only", "ya quedó listo", false, true},
		{"text and image", "ver foto", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := New("rep-1", 301, models.RoleTecnico, tt.text, tt.hasImage)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok && c != nil {
				t.Error("no-op returned a record")
			}
		})
	}
}

func TestNew_Record(t *testing.T) {
	c, ok := New("rep-1", 301, models.RoleAdministrador, "  revisado  ", false)
	if !ok {
		t.Fatal("New returned no-op for valid text")
	}
	if c.Comment != "revisado" {
		t.Errorf("comment = %q, want trimmed %q", c.Comment, "revisado")
	}
	if c.ReportID != "rep-1" || c.Folio != 301 {
		t.Errorf("keys = (%q, %d), want (rep-1, 301)", c.ReportID, c.Folio)
	}
	if c.UserType != string(models.RoleAdministrador) {
		t.Errorf("userType = %q", c.UserType)
	}
	if c.CommentID == "" {
		t.Error("comment id not assigned")
	}
	if !c.CreatedAt.IsZero() {
		t.Error("created_at must be zero until the server stamps it")
	}
}

// Posting order under clock skew must not matter: the thread reads back
// ordered by the server timestamp.
func TestSortThread(t *testing.T) {
	base := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	thread := []models.Comment{
		{CommentID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{CommentID: "a", CreatedAt: base},
		{CommentID: "b", CreatedAt: base.Add(time.Minute)},
	}
	SortThread(thread)
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if thread[i].CommentID != id {
			t.Errorf("thread[%d] = %q, want %q", i, thread[i].CommentID, id)
		}
	}
}
