package exitcodes

import "errors"

// Standard exit codes for client-launcher
const (
	// Success indicates successful command completion
	Success = 0

	// GeneralError indicates a general/unknown error
	GeneralError = 1

	// InvalidArgs indicates invalid command-line arguments or flags
	InvalidArgs = 2

	// PreconditionFailed indicates a precondition was not met
	// (e.g., no install configured, installed version is stale)
	PreconditionFailed = 3

	// NetworkError indicates network/connectivity failure
	// (e.g., update server unreachable, HTTP error status)
	NetworkError = 4

	// ProcessError indicates the client process could not be spawned
	ProcessError = 5

	// ValidationError indicates a malformed response or corrupt archive
	ValidationError = 6

	// NotFound indicates a missing file, executable, or directory
	NotFound = 7
)

// CodeForError returns the appropriate exit code for an error.
// Unwraps ErrorWithCode anywhere in the chain, otherwise returns GeneralError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}

	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}

	return GeneralError
}
