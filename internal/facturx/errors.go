package facturx

import (
	"errors"
	"fmt"
)

// ErrToolUnavailable is returned when xmllint cannot be found
var ErrToolUnavailable = errors.New("xmllint not available")

// ErrNoInvoice is returned when a PDF carries no embedded invoice XML
var ErrNoInvoice = errors.New("no embedded Factur-X invoice found")

// XMLError reports an invoice XML that is malformed or failed validation.
// Any other error returned by this package is a generation failure.
type XMLError struct {
	Profile  Profile
	Problems []string
	Cause    error
}

func (e *XMLError) Error() string {
	msg := "invalid invoice XML"
	if e.Profile != ProfileUnknown {
		msg = fmt.Sprintf("invalid %s invoice XML", e.Profile)
	}
	if len(e.Problems) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, e.Problems[0])
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

func (e *XMLError) Unwrap() error {
	return e.Cause
}
