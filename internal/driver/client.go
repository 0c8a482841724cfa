package driver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/model"
)

// Client talks to the browser automation sidecar over HTTP. The sidecar
// exposes three endpoints mirroring the Driver contract; it answers 401 when
// the vendor site forced the saved session back to a login page.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a sidecar client. Timeouts are carried on the request
// contexts so a hung browser cannot hold an orchestrator lock forever.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "driver-client").Logger(),
	}
}

type loginResponse struct {
	Cookies []model.Cookie `json:"cookies"`
}

type retrieveRequest struct {
	URL     string         `json:"url"`
	Cookies []model.Cookie `json:"cookies"`
}

type retrieveResponse struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64
}

func (c *Client) Login(ctx context.Context) ([]model.Cookie, error) {
	c.logger.Info().Msg("opening interactive login in sidecar browser")

	body, err := c.post(ctx, "/v1/login", nil)
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Detail: "decode login response", Err: err}
	}
	if len(resp.Cookies) == 0 {
		return nil, &TransportError{Detail: "login flow returned no cookies"}
	}
	return resp.Cookies, nil
}

func (c *Client) Retrieve(ctx context.Context, url string, cookies []model.Cookie) (*File, error) {
	body, err := c.post(ctx, "/v1/retrieve", retrieveRequest{URL: url, Cookies: cookies})
	if err != nil {
		return nil, err
	}

	var resp retrieveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Detail: "decode retrieve response", Err: err}
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data)
	if err != nil {
		return nil, &TransportError{Detail: "decode retrieve payload", Err: err}
	}
	if resp.Name == "" || len(data) == 0 {
		return nil, &TransportError{Detail: "retrieve returned an empty file"}
	}
	return &File{Name: resp.Name, Data: data}, nil
}

func (c *Client) Probe(ctx context.Context, url string, cookies []model.Cookie) error {
	_, err := c.post(ctx, "/v1/probe", retrieveRequest{URL: url, Cookies: cookies})
	return err
}

// post sends a JSON request and maps the sidecar's answer onto the driver
// taxonomy: 401/403 is an authentication failure, anything else non-2xx or
// unreachable is transport.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Detail: "sidecar " + path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthFailure
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{Detail: fmt.Sprintf("sidecar %s returned %d: %s", path, resp.StatusCode, string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Detail: "read sidecar response", Err: err}
	}
	return body, nil
}
