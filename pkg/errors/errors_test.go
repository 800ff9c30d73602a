// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code lookup

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/instkit/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "corrupt_volume_error",
			code:    errors.ErrCorruptVolume,
			message: "magic number mismatch",
			wantStr: "[CORRUPT_VOLUME] magic number mismatch",
		},
		{
			name:    "config_error",
			code:    errors.ErrConfigValid,
			message: "max volume size too small",
			wantStr: "[CONFIG_INVALID] max volume size too small",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrConditionType, "unknown condition type %q", "bogus")
	want := `unknown condition type "bogus"`
	if err.Message != want {
		t.Errorf("Newf() message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrIO, "write failed")

		if !errors.IsErrorCode(err, errors.ErrIO) {
			t.Errorf("Wrap() code = %v, want %v", errors.GetErrorCode(err), errors.ErrIO)
		}
		if !stderrors.Is(err, baseErr) {
			t.Error("Wrap() should preserve wrapped error")
		}

		wantStr := "[IO] write failed: base error"
		if got := err.Error(); got != wantStr {
			t.Errorf("Error() = %q, want %q", got, wantStr)
		}
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		if err := errors.Wrap(nil, errors.ErrIO, "write failed"); err != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if err := errors.Wrapf(nil, errors.ErrIO, "write %s", "x"); err != nil {
			t.Error("Wrapf(nil) should return nil")
		}
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrVolumeNotFound, "volume missing").
		WithDetail("path", "/media/disk/data.pak.2").
		WithDetails(map[string]interface{}{"index": 2})

	if err.Details["path"] != "/media/disk/data.pak.2" {
		t.Errorf("WithDetail() path = %v", err.Details["path"])
	}
	if err.Details["index"] != 2 {
		t.Errorf("WithDetails() index = %v", err.Details["index"])
	}
	if got := errors.GetErrorDetails(err); got["index"] != 2 {
		t.Errorf("GetErrorDetails() = %v", got)
	}
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrCorruptVolume, "error 1")
	err2 := errors.New(errors.ErrCorruptVolume, "error 2")
	err3 := errors.New(errors.ErrVolumeNotFound, "error 3")

	if !err1.Is(err2) {
		t.Error("Is() should return true for same code")
	}
	if err1.Is(err3) {
		t.Error("Is() should return false for different codes")
	}
	if !stderrors.Is(errors.Wrap(err1, errors.ErrIO, "read"), err2) {
		t.Error("errors.Is() should find a matching code in the chain")
	}
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{"matching_code", errors.New(errors.ErrConditionCycle, "cycle"), errors.ErrConditionCycle, true},
		{"different_code", errors.New(errors.ErrConditionCycle, "cycle"), errors.ErrInternal, false},
		{"wrapped_error", errors.Wrap(stderrors.New("base"), errors.ErrIO, "denied"), errors.ErrIO, true},
		{"standard_error", stderrors.New("standard error"), errors.ErrNotFound, false},
		{"nil_error", nil, errors.ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsErrorCode(tt.err, tt.code); got != tt.expected {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrPackNotFound, "x")); got != errors.ErrPackNotFound {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v", got)
	}
	if got := errors.GetErrorCode(nil); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode(nil) = %v", got)
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	ioErr := errors.Wrap(rootCause, errors.ErrIO, "cannot read volume")
	volErr := errors.Wrap(ioErr, errors.ErrCorruptVolume, "volume unreadable")

	if !errors.IsErrorCode(volErr, errors.ErrCorruptVolume) {
		t.Error("Top level should have ErrCorruptVolume code")
	}
	if !stderrors.Is(volErr, rootCause) {
		t.Error("Should find root cause with errors.Is")
	}
}
