package chessdto

import "fmt"

// APIError describes a non-2xx answer from the chess server.
type APIError struct {
	Status    int
	Detail    string
	Retryable bool
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("chess api error: status=%d detail=%s", e.Status, e.Detail)
	}
	return fmt.Sprintf("chess api error: status=%d", e.Status)
}

// Unauthorized reports a rejected or expired credential.
func (e *APIError) Unauthorized() bool {
	return e != nil && (e.Status == 401 || e.Status == 403)
}
