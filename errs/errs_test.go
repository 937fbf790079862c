package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	var err error = &ValidationError{Missing: []string{"area", "no_card"}}
	if !IsValidation(err) {
		t.Error("IsValidation = false")
	}
	if IsNotFound(err) || IsTransient(err) || IsConflict(err) {
		t.Error("validation error matched another kind")
	}
	if !strings.Contains(err.Error(), "area") || !strings.Contains(err.Error(), "no_card") {
		t.Errorf("message does not enumerate fields: %q", err.Error())
	}
}

func TestWrappedClassification(t *testing.T) {
	wrapped := fmt.Errorf("update report: %w", &NotFoundError{Kind: "report", Key: "rep-1"})
	if !IsNotFound(wrapped) {
		t.Error("wrapped NotFoundError not recognized")
	}

	transient := fmt.Errorf("create comment: %w: connection reset", ErrTransient)
	if !IsTransient(transient) {
		t.Error("wrapped ErrTransient not recognized")
	}

	conflict := fmt.Errorf("create report: %w", ErrConflict)
	if !IsConflict(conflict) {
		t.Error("wrapped ErrConflict not recognized")
	}

	denied := fmt.Errorf("delete user: %w", ErrPermission)
	if !IsPermission(denied) {
		t.Error("wrapped ErrPermission not recognized")
	}
}

func TestKindsAreDisjoint(t *testing.T) {
	if IsTransient(errors.New("plain")) || IsValidation(errors.New("plain")) {
		t.Error("plain error classified")
	}
	if IsTransient(ErrConflict) || IsConflict(ErrTransient) {
		t.Error("sentinels overlap")
	}
}
