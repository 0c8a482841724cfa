package model

import "time"

// Session state constants. There is a single shared session for the
// automation identity; every console operation reads it, only a completed
// login flow writes it.
const (
	SessionUnauthenticated = "unauthenticated"
	SessionValid           = "valid"
	SessionExpired         = "expired"
)

// Cookie is one saved authentication artifact. The orchestrator treats the
// set as opaque beyond present/absent; only the browser driver interprets it.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type Session struct {
	State      string     `json:"state"`
	Cookies    []Cookie   `json:"cookies,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}
