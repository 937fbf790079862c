package auth

import (
	"testing"
	"time"

	"taller/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Hour)
	user := &models.User{
		UserID:   "user-1",
		Email:    "tec@taller.mx",
		UserType: models.RoleTecnico,
	}

	token, err := m.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "tec@taller.mx" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.UserType != models.RoleTecnico {
		t.Errorf("userType = %q, want Tecnico", claims.UserType)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", time.Minute, time.Hour)
	m2 := NewJWTManager("secret-two", time.Minute, time.Hour)

	token, err := m1.GenerateToken(&models.User{UserID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m2.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, err := m.GenerateToken(&models.User{UserID: "user-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc123", "abc123", false},
		{"", "", true},
		{"Basic abc123", "", true},
		{"Bearer", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractToken(tt.header)
		if tt.wantErr != (err != nil) {
			t.Errorf("ExtractToken(%q) err = %v", tt.header, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
