package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shindakun/campuslogin/internal/models"
)

// ContentTypeJSON is sent with every request body
const ContentTypeJSON = "application/json; charset=utf-8"

// Request is a fully formed API request, independent of any transport
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// NewLoginRequest builds POST <endpoint> with {"username","password"}
func NewLoginRequest(endpoint string, creds models.Credentials) (Request, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return Request{}, &RequestBuildError{Err: fmt.Errorf("invalid login endpoint: %w", err)}
	}

	body, err := json.Marshal(creds)
	if err != nil {
		return Request{}, &RequestBuildError{Err: err}
	}

	return Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Header: http.Header{
			"Content-Type": {ContentTypeJSON},
			"Accept":       {"application/json"},
		},
		Body: body,
	}, nil
}

// newAuthorizedRequest builds a body-less request carrying a bearer token
func newAuthorizedRequest(method, endpoint, token string) Request {
	return Request{
		Method: method,
		URL:    endpoint,
		Header: http.Header{
			"Accept":        {"application/json"},
			"Authorization": {"Bearer " + token},
		},
	}
}

// HTTPRequest converts r into an *http.Request bound to ctx
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, &RequestBuildError{Err: err}
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return req, nil
}
