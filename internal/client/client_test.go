package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutorsite/internal/entity/common"
	"tutorsite/internal/entity/dto"
)

func TestLoginAndMe(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var req dto.AuthLoginRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || r.Method != http.MethodPost {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(dto.LoginResponse{User: dto.SessionUser{
				UserSummary: dto.UserSummary{ID: 3, Email: req.Email, Role: common.RoleStandard, Status: common.StatusActive},
				Token:       "tok",
				ExpiresAt:   expires,
			}})
		case "/api/auth/me":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"code":"ERR_UNAUTHORIZED","message":"missing authorization header"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(dto.UserDetailResponse{User: dto.UserSummary{ID: 3, Email: "ana@example.com"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", srv.Client())
	ctx := context.Background()

	session, err := c.Login(ctx, "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "tok" || session.ID != 3 || !session.ExpiresAt.Equal(expires) {
		t.Fatalf("unexpected session: %+v", session)
	}

	me, err := c.Me(ctx, session.Token)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Email != "ana@example.com" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	_, err = c.Me(ctx, "")
	if !IsCode(err, "ERR_UNAUTHORIZED") {
		t.Fatalf("expected ERR_UNAUTHORIZED, got %v", err)
	}
}

func TestRegisterDecodesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.AuthRegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Role == nil || *req.Role != common.RoleGuest {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"ERR_EMAIL_EXISTS","message":"email already registered"}`))
	}))
	defer srv.Close()

	guest := common.RoleGuest
	_, err := New(srv.URL, srv.Client()).Register(context.Background(), "Ana", "ana@example.com", "pw", &guest)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Code != "ERR_EMAIL_EXISTS" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, srv.Client()).Me(context.Background(), "tok")
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusBadGateway || apiErr.Message != "upstream unavailable" {
		t.Fatalf("unexpected error: %#v", err)
	}
}

func TestNewDefaultsServer(t *testing.T) {
	if got := New("  ", nil).BaseURL(); got != DefaultServer {
		t.Fatalf("expected default server, got %q", got)
	}
}
