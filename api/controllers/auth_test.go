package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openlims/lims-backend/internal/auth"
)

type stubAuthService struct {
	result *auth.LoginResult
	err    error
}

func (s stubAuthService) Login(_ context.Context, _ auth.LoginInput) (*auth.LoginResult, error) {
	return s.result, s.err
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubAuthService{result: &auth.LoginResult{
		UserID:   1,
		Username: "admin",
		Role:     "admin",
		Token:    "signed-token",
	}}, nil)

	resp := postJSON(t, handler, "/login", `{"username":"admin","password":"secret"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", resp.Code, resp.Body.String())
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Success || body.Token != "signed-token" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.User.Username != "admin" || body.User.ID != 1 || body.User.Role != "admin" {
		t.Fatalf("unexpected user %+v", body.User)
	}
}

func TestAuthLoginMissingFields(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing password", body: `{"username":"admin"}`},
		{name: "missing username", body: `{"password":"secret"}`},
		{name: "both empty", body: `{"username":"","password":""}`},
		{name: "whitespace username", body: `{"username":"   ","password":"secret"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, handler, "/login", tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body["error"] != "Username and password required" {
				t.Fatalf("unexpected error message %q", body["error"])
			}
		})
	}
}

func TestAuthLoginMalformedBody(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)
	resp := postJSON(t, handler, "/login", `{"username":`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginServiceUnavailable(t *testing.T) {
	handler := AuthLogin(nil, nil)
	resp := postJSON(t, handler, "/login", `{"username":"admin","password":"secret"}`)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}
