package tools

import "errors"

// Tool errors.
var (
	// ErrToolNotFound is returned when a tool is not in the configuration.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolNameEmpty is returned when a tool definition has no name.
	ErrToolNameEmpty = errors.New("tool name cannot be empty")

	// ErrToolAlreadyRegistered is returned when a configuration defines a name twice.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrMissingRequiredArg is returned when a {{arg}} placeholder has no value.
	ErrMissingRequiredArg = errors.New("missing required argument")

	// ErrMissingEnv is returned when a ${VAR} placeholder names an unset variable.
	ErrMissingEnv = errors.New("missing environment variable")

	// ErrUnsupportedMethod is returned for HTTP methods other than GET, POST, PUT, DELETE and PATCH.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
)
