package common

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("filename", "", Required).
		Field("filename", strings.Repeat("x", 300), MaxLength(255)).
		Field("id", "not-a-uuid", UUID)

	if !v.HasErrors() || len(v.Errors()) != 3 {
		t.Fatalf("Errors() = %+v, want 3", v.Errors())
	}
	if err := v.Error(); !errors.Is(err, ErrInvalidInput) || !IsValidationError(err) {
		t.Errorf("Error() = %v, want ErrInvalidInput", err)
	}
	if st, _ := status.FromError(ValidateAndReturnError(v)); st.Code() != codes.InvalidArgument {
		t.Errorf("status code = %v, want InvalidArgument", st.Code())
	}

	ok := NewValidator().
		Field("filename", "a.json", Required, MaxLength(255)).
		Field("id", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", UUID)
	if ok.HasErrors() {
		t.Errorf("unexpected errors: %s", ok.ErrorMessage())
	}
	if ok.Error() != nil {
		t.Error("Error() should be nil without failures")
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{NewAppError(CodeDuplicate, "seen before", ErrDuplicate), codes.AlreadyExists},
		{WrapError(ErrNotFound, "get invoice"), codes.NotFound},
		{WrapError(ErrInvalidInput, "scan"), codes.InvalidArgument},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		if got := status.Code(ToStatus(tt.err)); got != tt.want {
			t.Errorf("ToStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) != nil")
	}
}

func TestRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background(), "")
	if id == "" || RequestIDFromContext(ctx) != id {
		t.Errorf("minted id %q not stored", id)
	}
	ctx, id = EnsureRequestID(context.Background(), "abc")
	if id != "abc" || RequestIDFromContext(ctx) != "abc" {
		t.Errorf("incoming id not kept: %q", id)
	}
}
