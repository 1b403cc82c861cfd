package validation

import (
	"testing"

	"github.com/hitoshi/rentafamily/internal/model"
)

type sample struct {
	Name     string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
	Confirm  string `validate:"eqfield=Password"`
}

func TestStruct_Valid_ReturnsNil(t *testing.T) {
	if err := Struct(sample{Name: "Ana", Password: "secret", Confirm: "secret"}, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestStruct_UsesMostSpecificMessage(t *testing.T) {
	msgs := Messages{
		"Confirm.eqfield": "Passwords must match.",
		"*":               "Enter full name, email, and a 6+ character password.",
	}

	err := Struct(sample{Name: "Ana", Password: "secret", Confirm: "other"}, msgs)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Code != model.ErrCodeValidation {
		t.Errorf("Code = %q, want %q", err.Code, model.ErrCodeValidation)
	}
	if err.Message != "Passwords must match." {
		t.Errorf("Message = %q", err.Message)
	}

	err = Struct(sample{Name: "Al", Password: "secret", Confirm: "secret"}, msgs)
	if err == nil || err.Message != "Enter full name, email, and a 6+ character password." {
		t.Errorf("expected fallback message, got %v", err)
	}
}

func TestStruct_NoMessages_UsesFieldName(t *testing.T) {
	err := Struct(sample{Password: "secret", Confirm: "secret"}, nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if err.Message != "name is invalid." {
		t.Errorf("Message = %q, want %q", err.Message, "name is invalid.")
	}
}

func TestIsUUID(t *testing.T) {
	if !IsUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8") {
		t.Error("expected valid UUID")
	}
	if IsUUID("not-a-uuid") {
		t.Error("expected invalid UUID")
	}
	if IsUUID("") {
		t.Error("empty string is not a UUID")
	}
}
