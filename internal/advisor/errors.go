package advisor

import (
	"errors"
	"fmt"
)

// errEmptyBody marks a 2xx response that carried no JSON document.
var errEmptyBody = errors.New("empty response body")

// InvalidRequestError means the service rejected the request itself:
// malformed preferences or an unknown model id.
type InvalidRequestError struct {
	StatusCode int
	Message    string
}

func (e *InvalidRequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("advisor rejected request (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("advisor rejected request (status %d): %s", e.StatusCode, e.Message)
}

// ServiceUnavailableError covers transport failures and server-side errors.
// StatusCode is zero when no response was received.
type ServiceUnavailableError struct {
	StatusCode int
	TimedOut   bool
	Err        error
}

func (e *ServiceUnavailableError) Error() string {
	switch {
	case e.TimedOut && e.Err != nil:
		return fmt.Sprintf("advisor timed out: %v", e.Err)
	case e.TimedOut:
		return fmt.Sprintf("advisor timed out (status %d)", e.StatusCode)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("advisor unavailable (status %d): %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("advisor unavailable (status %d)", e.StatusCode)
	default:
		return fmt.Sprintf("advisor unavailable: %v", e.Err)
	}
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

func IsInvalidRequest(err error) bool {
	var target *InvalidRequestError
	return errors.As(err, &target)
}

func IsServiceUnavailable(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a ServiceUnavailableError flagged as a timeout.
func IsTimeout(err error) bool {
	var target *ServiceUnavailableError
	return errors.As(err, &target) && target.TimedOut
}

// UserMessage maps an error to the text shown to an investor.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidRequest(err):
		return "The advisor could not use these preferences. Please adjust your preferences and try again."
	case IsTimeout(err):
		return "The advisor took too long to respond. Please try again later."
	case IsServiceUnavailable(err):
		return "The advisor service is unavailable. Please try again later."
	default:
		return "Something went wrong: " + err.Error()
	}
}
