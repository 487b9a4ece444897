package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func StageFailed(stage string, cause error) *BuildError {
	be := Wrap(cause, CategoryBuild, SeverityFatal, "build stage failed").
		WithContext("stage", stage)
	be.Retryable = IsRetryable(cause)
	return be
}

func WorkspaceError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

// External tool errors

// CMake invocation failures are retryable: a half-written source tree or a
// transient toolchain hiccup often resolves by the next watch-triggered run.

func CMakeConfigureError(dir string, cause error) *BuildError {
	return WrapRetryable(cause, CategoryCMake, SeverityFatal, "cmake configure failed").
		WithContext("build_dir", dir)
}

func CMakeBuildError(target string, cause error) *BuildError {
	return WrapRetryable(cause, CategoryCMake, SeverityFatal, "cmake build failed").
		WithContext("target", target)
}

func DoxygenOutputMissing(path string) *BuildError {
	return New(CategoryDoxygen, SeverityFatal, "doxygen output directory missing").
		WithContext("path", path)
}

func SphinxConfigError(cause error) *BuildError {
	return Wrap(cause, CategorySphinx, SeverityFatal, "sphinx configuration generation failed")
}

// Filesystem errors

func CopyError(src, dst string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "copy failed").
		WithContext("source", src).
		WithContext("destination", dst)
}

func ReadmeMissing(tool, path string) *BuildError {
	return New(CategoryFileSystem, SeverityFatal, "tool README missing").
		WithContext("tool", tool).
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
