// Package meeting talks to the external video-meeting provider: a
// client-credentials token exchange with a persisted token cache, and the
// create-meeting call used when a session is provisioned.
package meeting

import "fmt"

// AuthError reports a rejected credential exchange. Auth failures are not
// transient; callers must not retry them automatically.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("meeting: credential exchange rejected (status %d): %s", e.StatusCode, e.Message)
}

// RequestError reports a failed provider API call. The session stays
// un-provisioned, so the next poll cycle retries it naturally.
type RequestError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("meeting: provider request failed (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}
