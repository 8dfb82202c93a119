package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		want    string
		message string
	}{
		{
			name:    "new",
			err:     New(ErrCodeInvalidFrame, "startX %v > endX %v", 0.6, 0.4),
			want:    "INVALID_FRAME: startX 0.6 > endX 0.4",
			message: "startX 0.6 > endX 0.4",
		},
		{
			name:    "wrapped",
			err:     Wrap(ErrCodeInvalidProfile, errors.New("unexpected EOF"), "line %d", 3),
			want:    "INVALID_PROFILE: line 3: unexpected EOF",
			message: "line 3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.message {
				t.Errorf("UserMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write artifact")
	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Error("Wrap should expose its cause to the errors package")
	}
}

func TestIs(t *testing.T) {
	weight := New(ErrCodeInvalidWeight, "total weight 0")
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", weight, ErrCodeInvalidWeight, true},
		{"other code", weight, ErrCodeInvalidFrame, false},
		{"outer code", Wrap(ErrCodeInvalidProfile, weight, "flatten"), ErrCodeInvalidProfile, true},
		{"inner code", Wrap(ErrCodeInvalidProfile, weight, "flatten"), ErrCodeInvalidWeight, true},
		{"through fmt wrapping", fmt.Errorf("layout: %w", weight), ErrCodeInvalidWeight, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"error", New(ErrCodeInvalidTheme, "blue"), ErrCodeInvalidTheme},
		{"outermost wins", Wrap(ErrCodeInternal, New(ErrCodeInvalidModel, "empty"), "init"), ErrCodeInternal},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessagePlain(t *testing.T) {
	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidFormat, "bmp"), http.StatusBadRequest},
		{New(ErrCodeInvalidProfile, "line 2"), http.StatusBadRequest},
		{New(ErrCodeSessionNotFound, "abc"), http.StatusNotFound},
		{New(ErrCodeFileNotFound, "cpu.folded"), http.StatusNotFound},
		{New(ErrCodeUnsupported, "pdf"), http.StatusNotImplemented},
		{New(ErrCodeInvalidWeight, "total 0"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(GetCode(tt.err)), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
