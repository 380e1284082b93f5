package validator

import (
	"strings"
	"testing"
)

type createRequest struct {
	Title string `validate:"required,min=1,max=255"`
	Email string `validate:"omitempty,email"`
}

func TestValidate_OK(t *testing.T) {
	cv := New()
	if err := cv.Validate(&createRequest{Title: "weekly sync"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReadableMessage(t *testing.T) {
	cv := New()
	err := cv.Validate(&createRequest{Title: "", Email: "not-an-email"})
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Title failed the required rule") {
		t.Fatalf("missing title failure in %q", msg)
	}
	if !strings.Contains(msg, "Email failed the email rule") {
		t.Fatalf("missing email failure in %q", msg)
	}
}
