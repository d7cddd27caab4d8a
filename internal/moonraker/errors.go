package moonraker

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/valgace/acectl/internal/urls"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a network or socket failure
	ErrTypeTransport ErrorType = iota
	// ErrTypeHTTP indicates a non-2xx HTTP response
	ErrTypeHTTP
	// ErrTypeMalformed indicates a body or frame that is not the expected JSON
	ErrTypeMalformed
	// ErrTypeAPI indicates the server answered with an error field
	ErrTypeAPI
	// ErrTypeValidation indicates a parameter rejected before sending
	ErrTypeValidation
	// ErrTypeAggregate indicates a multi-step operation where no step succeeded
	ErrTypeAggregate
	// ErrTypeInvalidStatus indicates a status body without status fields
	ErrTypeInvalidStatus
)

// TransportSubtype narrows down transport failures
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportDNS
	TransportHostUnreachable
	TransportNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeMalformed:
		return "Malformed Message"
	case ErrTypeAPI:
		return "API Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeAggregate:
		return "Aggregate Failure"
	case ErrTypeInvalidStatus:
		return "Invalid Status"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned by every Moonraker operation in this package.
type Error struct {
	Type       ErrorType
	Message    string
	StatusCode int // HTTP status code, if any
	Err        error
	Subtype    TransportSubtype
	Endpoint   string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrInvalidStatus is matched by errors.Is for status bodies that lack
// status, slots and dryer.
var ErrInvalidStatus = &Error{Type: ErrTypeInvalidStatus, Message: "response has no status fields"}

// Is matches errors by type so errors.Is(err, ErrInvalidStatus) works on
// wrapped copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t != ErrInvalidStatus {
		return false
	}
	return e.Type == ErrTypeInvalidStatus
}

// ClassifyTransportError inspects a network error and picks a subtype.
func ClassifyTransportError(err error, endpoint string) *Error {
	if err == nil {
		return nil
	}

	newErr := func(msg string, sub TransportSubtype) *Error {
		return &Error{Type: ErrTypeTransport, Message: msg, Err: err, Subtype: sub, Endpoint: endpoint}
	}

	if os.IsTimeout(err) {
		return newErr("Request timed out", TransportTimeout)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return newErr(fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name), TransportDNS)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return newErr("Connection refused", TransportConnectionRefused)
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH):
			return newErr("Host unreachable", TransportHostUnreachable)
		case errors.Is(opErr.Err, syscall.ENETUNREACH):
			return newErr("Network unreachable", TransportNetworkUnreachable)
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		classified := ClassifyTransportError(urlErr.Err, endpoint)
		classified.Err = err
		return classified
	}

	return newErr("Network error occurred", TransportGeneral)
}

// NewTransportError creates a classified transport error with a custom message
func NewTransportError(message string, err error, endpoint string) *Error {
	classified := ClassifyTransportError(err, endpoint)
	if classified == nil {
		return &Error{Type: ErrTypeTransport, Message: message, Endpoint: endpoint}
	}
	classified.Message = message
	return classified
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

// NewMalformedError creates a decoding error
func NewMalformedError(message string, err error) *Error {
	return &Error{Type: ErrTypeMalformed, Message: message, Err: err}
}

// NewAPIError creates an error for a server-reported error field
func NewAPIError(message string) *Error {
	return &Error{Type: ErrTypeAPI, Message: message}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{Type: ErrTypeValidation, Message: message}
}

// NewAggregateError creates an error for a multi-step operation
func NewAggregateError(message string) *Error {
	return &Error{Type: ErrTypeAggregate, Message: message}
}

func errorType(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// IsTransportError checks if an error is a network or socket error
func IsTransportError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeTransport
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeHTTP
}

// IsMalformedError checks if an error is a decoding error
func IsMalformedError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeMalformed
}

// IsAPIError checks if an error came from the server's error field
func IsAPIError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeAPI
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeValidation
}

// IsAggregateError checks if an error is an aggregate failure
func IsAggregateError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeAggregate
}

// ShortMessage returns a concise, user-facing message for err
func ShortMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}

	switch e.Type {
	case ErrTypeTransport:
		switch e.Subtype {
		case TransportTimeout:
			return "Moonraker not responding (timeout)"
		case TransportConnectionRefused:
			return "Moonraker refused connection - is it running?"
		case TransportDNS:
			return "Cannot resolve Moonraker hostname"
		case TransportHostUnreachable:
			return "Printer unreachable - check network connection"
		case TransportNetworkUnreachable:
			return "Network unreachable"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		return fmt.Sprintf("Moonraker error (HTTP %d)", e.StatusCode)
	case ErrTypeMalformed:
		return "Failed to parse Moonraker response"
	case ErrTypeInvalidStatus:
		return "Invalid status response"
	default:
		return e.Message
	}
}

// TroubleshootingHint returns multi-line advice for connection problems.
func TroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}

	switch e.Type {
	case ErrTypeTransport:
		return strings.Join([]string{
			"Could not reach Moonraker.",
			"Troubleshooting:",
			"  • Check the api_base setting or pass --api",
			"  • Verify Moonraker is running on the printer",
			"  • Try `acectl scan` to find printers on the network",
			"  • See " + urls.Troubleshooting,
		}, "\n")
	case ErrTypeHTTP:
		if e.StatusCode == 404 {
			return strings.Join([]string{
				"Moonraker does not expose the ACE endpoints.",
				"Install the ACE component: " + urls.MoonrakerSetup,
			}, "\n")
		}
		return fmt.Sprintf("Moonraker returned HTTP %d.", e.StatusCode)
	default:
		return ""
	}
}
