package model

import (
	"errors"

	"github.com/crmarques/restmodel/faults"
)

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string, cause error) error {
	return faults.NewTypedError(faults.NotFoundError, message, cause)
}

func transportError(message string, cause error) error {
	return faults.NewTypedError(faults.TransportError, message, cause)
}

// cleanRejection guarantees a transport failure surfaces as a plain typed
// error value: already-typed errors propagate verbatim, anything else is
// categorized as a transport failure.
func cleanRejection(err error) error {
	if err == nil {
		return nil
	}
	var typed *faults.TypedError
	if errors.As(err, &typed) {
		return err
	}
	return transportError("request failed", err)
}
