package approvals

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned when a successful response lacks the field the
// endpoint is documented to return.
var ErrMissingField = errors.New("response field missing")

// TransferError reports a non-200 response or a transport failure.
// Body holds the raw response text so it can be logged verbatim.
type TransferError struct {
	Purpose    string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Failed to %s: %v", e.Purpose, e.Err)
	}
	return fmt.Sprintf("Failed to %s: %s", e.Purpose, e.Body)
}

func (e *TransferError) Unwrap() error { return e.Err }
