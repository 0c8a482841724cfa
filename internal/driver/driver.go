// Package driver defines the contract with the browser automation sidecar.
// The sidecar owns every DOM-level concern; this package only distinguishes
// the three outcomes the orchestrator acts on: success, rejected
// authentication, and transport trouble.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/clementg/consoleback/internal/model"
)

// ErrAuthFailure means the vendor site bounced the saved session to a login
// or MFA page. It invalidates the shared session; it is never retried
// automatically.
var ErrAuthFailure = errors.New("authentication rejected by vendor site")

// TransportError covers everything transient: sidecar unreachable, browser
// hang, download timeout, vendor-side 5xx. Retried only on the next
// scheduled interval.
type TransportError struct {
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %s: %v", e.Detail, e.Err)
	}
	return "transport failure: " + e.Detail
}

func (e *TransportError) Unwrap() error { return e.Err }

// File is a retrieved backup payload with the vendor-assigned name.
type File struct {
	Name string
	Data []byte
}

// Driver performs browser-level interaction with the vendor site.
//
// Login blocks until the operator completes the interactive flow (or the
// context expires) and returns the captured artifacts. Retrieve downloads
// one console's backup. Probe is the lighter connectivity check: it reports
// nil when the saved session still reaches the vendor site.
type Driver interface {
	Login(ctx context.Context) ([]model.Cookie, error)
	Retrieve(ctx context.Context, url string, cookies []model.Cookie) (*File, error)
	Probe(ctx context.Context, url string, cookies []model.Cookie) error
}
