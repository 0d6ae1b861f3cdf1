package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidMetric, "unknown metric: %s", "disk")

	if err.Code != ErrCodeInvalidMetric {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidMetric)
	}
	if err.Message != "unknown metric: disk" {
		t.Errorf("Message = %v, want %v", err.Message, "unknown metric: disk")
	}
	if want := "INVALID_METRIC: unknown metric: disk"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch snapshot")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, should include cause", err.Error())
	}
}

func TestIsThroughWrapping(t *testing.T) {
	inner := New(ErrCodeTimeout, "deadline")
	outer := fmt.Errorf("refresh: %w", inner)

	if !Is(outer, ErrCodeTimeout) {
		t.Error("Is(outer, ErrCodeTimeout) = false, want true")
	}
	if Is(outer, ErrCodeNetwork) {
		t.Error("Is(outer, ErrCodeNetwork) = true, want false")
	}
	if Is(errors.New("plain"), ErrCodeTimeout) {
		t.Error("plain errors carry no code")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNotFound, "no such entity")); got != "no such entity" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{New(ErrCodeNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeNetwork, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(GetCode(tt.err)), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateEntityName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "postgres", false},
		{"kernel thread", "kworker/0:1", false},
		{"spaces inside", "Web Content", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control char", "bad\x00name", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}
