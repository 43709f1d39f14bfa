package pageapi

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("response code is %d", e.Code)
	}
	return fmt.Sprintf("response code is %d: %s", e.Code, e.Body)
}

// ApplicationError is an error reported inside an otherwise successful
// JSON response.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return "backend error: " + e.Message
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}
