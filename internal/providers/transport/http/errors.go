package http

import "github.com/crmarques/restmodel/faults"

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func conflictError(message string) error {
	return faults.NewTypedError(faults.ConflictError, message, nil)
}

func authError(message string) error {
	return faults.NewTypedError(faults.AuthError, message, nil)
}

func transportError(message string, cause error) error {
	return faults.NewTypedError(faults.TransportError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
