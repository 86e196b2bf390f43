// Package errors provides structured error handling for service boundaries.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Scene errors
	CodeSceneIDMissing  Code = "SCENE_ID_MISSING"
	CodeSceneNotFound   Code = "SCENE_NOT_FOUND"
	CodeSceneInvalid    Code = "SCENE_INVALID"
	CodeSceneTooLarge   Code = "SCENE_TOO_LARGE"
	CodeTokenNotInScene Code = "TOKEN_NOT_IN_SCENE"

	// Evaluation errors
	CodeModeInvalid      Code = "MODE_INVALID"
	CodeThresholdInvalid Code = "THRESHOLD_INVALID"
	CodeFilterInvalid    Code = "FILTER_INVALID"

	// Grant errors
	CodeGrantRequired Code = "GRANT_REQUIRED"
	CodeGrantInvalid  Code = "GRANT_INVALID"
	CodeGrantExpired  Code = "GRANT_EXPIRED"
	CodeGrantMismatch Code = "GRANT_MISMATCH"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeSceneIDMissing,
		CodeSceneInvalid,
		CodeSceneTooLarge,
		CodeModeInvalid,
		CodeThresholdInvalid,
		CodeFilterInvalid:
		return http.StatusBadRequest

	// Unauthorized - missing or unverifiable grant
	case CodeGrantRequired,
		CodeGrantInvalid,
		CodeGrantExpired:
		return http.StatusUnauthorized

	// Forbidden - a valid grant for the wrong scene
	case CodeGrantMismatch:
		return http.StatusForbidden

	// Not found - resource doesn't exist
	case CodeSceneNotFound,
		CodeTokenNotInScene:
		return http.StatusNotFound

	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
