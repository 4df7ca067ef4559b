package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/logger"
	"github.com/shindakun/campuslogin/internal/models"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	return NewClient(cfg, logger.Nop())
}

func TestNewLoginRequest(t *testing.T) {
	req, err := NewLoginRequest("http://example.test/api/login", models.Credentials{Username: "a", Password: "b"})
	if err != nil {
		t.Fatalf("NewLoginRequest() error = %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if string(req.Body) != `{"username":"a","password":"b"}` {
		t.Errorf("Body = %s", req.Body)
	}

	if _, err := NewLoginRequest("not a url", models.Credentials{}); err == nil {
		t.Error("NewLoginRequest() with bad endpoint should fail")
	} else {
		var buildErr *RequestBuildError
		if !errors.As(err, &buildErr) {
			t.Errorf("error = %T, want *RequestBuildError", err)
		}
	}
}

// TestLoginRoundTrip verifies the server receives exactly the credentials sent
func TestLoginRoundTrip(t *testing.T) {
	var received models.Credentials
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/login" {
			http.NotFound(w, r)
			return
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"token":"t","user":{"id":1}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	body, err := client.Login(context.Background(), models.Credentials{Username: "a", Password: "b"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if received != (models.Credentials{Username: "a", Password: "b"}) {
		t.Errorf("server received %+v", received)
	}
	if contentType != ContentTypeJSON {
		t.Errorf("Content-Type = %q", contentType)
	}
	if string(body) != `{"token":"t","user":{"id":1}}` {
		t.Errorf("body = %s", body)
	}
}

func TestLoginErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"locked out"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Login(context.Background(), models.Credentials{Username: "a", Password: "b"})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Login() error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
	if string(httpErr.Body) != `{"message":"locked out"}` {
		t.Errorf("Body = %s", httpErr.Body)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Login(context.Background(), models.Credentials{Username: "a", Password: "b"})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Login() error = %v, want *HTTPError", err)
	}
	if httpErr.HasResponse() || httpErr.Body != nil {
		t.Errorf("transport failure should carry no status or body: %+v", httpErr)
	}
}

func TestLogoutAndCurrentUserSendBearer(t *testing.T) {
	var auths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/user":
			w.Write([]byte(`{"id":3,"name":"Ana","username":"ana","email":"ana@example.com"}`))
		case "/api/logout":
			w.Write([]byte(`{"message":"Logged out"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	user, err := client.CurrentUser(ctx, "1|abc")
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.ID != 3 || user.Username != "ana" {
		t.Errorf("CurrentUser() = %+v", user)
	}

	if err := client.Logout(ctx, "1|abc"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	for _, a := range auths {
		if a != "Bearer 1|abc" {
			t.Errorf("Authorization = %q", a)
		}
	}
}
