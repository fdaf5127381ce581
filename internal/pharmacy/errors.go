package pharmacy

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for 401 responses: the session token is
// missing, invalid, or expired and the caller should re-prompt login.
var ErrUnauthorized = errors.New("pharmacy: unauthorized")

// APIError is any non-2xx response other than 401.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pharmacy: status %d: %s", e.Status, e.Body)
}

// IsUnauthorized reports whether err stems from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
