package filters

import "fmt"

// APIError is returned when the Compile API answers with a non-2xx status.
// Code and Message are taken from the server's error body when present.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("filters: compile API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("filters: compile API returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// errorf returns a formatted error prefixed with "filters:".
func errorf(format string, args ...any) error {
	return fmt.Errorf("filters: "+format, args...)
}
