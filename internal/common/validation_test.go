package common

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatorCollectsAllFailures(t *testing.T) {
	name := "   "
	v := NewValidator().
		Field("employee_name", &name, Required).
		Field("agency_name", "A", MinLen(2)).
		Field("gross_pay", "100.00", Required)

	if !v.HasErrors() {
		t.Fatalf("expected validation errors")
	}
	if got := strings.Count(v.ErrorMessage(), "validation failed"); got != 2 {
		t.Fatalf("expected 2 errors, got %d: %s", got, v.ErrorMessage())
	}

	err := ValidateAndReturnError(v)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if ErrorCode(err) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %q", ErrorCode(err))
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := NewValidator().Field("first_name", "Ada", Required, MaxLen(10))
	if err := ValidateAndReturnError(v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsInputError(t *testing.T) {
	if !IsInputError(WrapError(ErrTextTooShort, "doc.pdf")) {
		t.Fatalf("wrapped ErrTextTooShort must be an input error")
	}
	if IsInputError(ErrStoreUnavailable) {
		t.Fatalf("store errors are not input errors")
	}
}
