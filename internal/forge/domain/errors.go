package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfigured  = errors.New("forge_not_configured")
	ErrInvalidSiteID  = errors.New("invalid_site_id")
	ErrInvalidDomain  = errors.New("invalid_domain")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrDecodeResponse = errors.New("forge_decode_failed")
)

// RemoteError is a non-success response from the remote API.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512]
	}
	if body == "" {
		return fmt.Sprintf("forge %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("forge %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, body)
}

func (e *RemoteError) HTTPStatus() int {
	return e.StatusCode
}

// StepError reports the provisioning step that aborted a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("provisioning step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
