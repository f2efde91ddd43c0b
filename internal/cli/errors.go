package cli

import (
	"errors"
	"net/http"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// codedError carries the exit code a failed command should produce.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation (bad flags, unknown ID).
func userError(err error) error {
	return &codedError{code: exitUserError, err: err}
}

// sysError marks err as an environment failure (network, disk, server).
func sysError(err error) error {
	return &codedError{code: exitSysError, err: err}
}

// classify picks the exit code for an error returned by a store action.
// Transport failures and 5xx responses are system errors; everything else
// the server rejects is the user's.
func classify(err error) error {
	var te *types.TransportError
	if errors.As(err, &te) {
		return sysError(err)
	}
	var se *types.ServerError
	if errors.As(err, &se) && se.StatusCode >= http.StatusInternalServerError {
		return sysError(err)
	}
	return userError(err)
}
