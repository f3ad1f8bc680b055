package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRequest marks failures that happened before a request left the process:
// invalid paths, payloads that cannot be encoded or credential lookups.
var ErrRequest = errors.New("apiclient: request construction failed")

// ResponseError is returned for every non-2xx backend response.
type ResponseError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsServerError reports whether the backend signalled an internal failure.
func (e *ResponseError) IsServerError() bool {
	return e != nil && e.StatusCode == http.StatusInternalServerError
}

// AsResponseError unwraps err into a *ResponseError when possible.
func AsResponseError(err error) (*ResponseError, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr, true
	}
	return nil, false
}
