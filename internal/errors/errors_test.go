package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestBuildError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BuildError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(CategoryConfig, SeverityFatal, "configuration invalid"),
			expected: "config (fatal): configuration invalid",
		},
		{
			name:     "error with cause",
			err:      Wrap(fmt.Errorf("file not found"), CategoryConfig, SeverityFatal, "failed to load config"),
			expected: "config (fatal): failed to load config: file not found",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := test.err.Error()
			if result != test.expected {
				t.Errorf("Error() = %q, want %q", result, test.expected)
			}
		})
	}
}

func TestBuildError_WithContext(t *testing.T) {
	err := New(CategoryCMake, SeverityWarning, "configure failed").
		WithContext("build_dir", "/tmp/build").
		WithContext("target", "doc")

	if err.Context == nil {
		t.Fatal("Context should not be nil")
	}

	if err.Context["build_dir"] != "/tmp/build" {
		t.Errorf("Context[build_dir] = %v, want /tmp/build", err.Context["build_dir"])
	}

	if err.Context["target"] != "doc" {
		t.Errorf("Context[target] = %v, want doc", err.Context["target"])
	}
}

func TestIsCategory(t *testing.T) {
	configErr := New(CategoryConfig, SeverityFatal, "config error")
	cmakeErr := New(CategoryCMake, SeverityWarning, "cmake error")
	standardErr := fmt.Errorf("standard error")
	wrapped := fmt.Errorf("outer: %w", cmakeErr)

	tests := []struct {
		name     string
		err      error
		category ErrorCategory
		expected bool
	}{
		{"config error matches config category", configErr, CategoryConfig, true},
		{"config error doesn't match cmake category", configErr, CategoryCMake, false},
		{"cmake error matches cmake category", cmakeErr, CategoryCMake, true},
		{"standard error doesn't match any category", standardErr, CategoryConfig, false},
		{"wrapped cmake error matches cmake category", wrapped, CategoryCMake, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsCategory(test.err, test.category)
			if result != test.expected {
				t.Errorf("IsCategory() = %v, want %v", result, test.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, CategoryFileSystem, SeverityFatal, "copy failed")

	if !stdErrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := WrapRetryable(fmt.Errorf("timeout"), CategoryDaemon, SeverityWarning, "event publish failed")
	if !IsRetryable(retryable) {
		t.Error("expected retryable error")
	}
	if IsRetryable(New(CategoryBuild, SeverityFatal, "nope")) {
		t.Error("expected non-retryable error")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are never retryable")
	}
}
