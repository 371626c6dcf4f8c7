package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/http/handlers"
	"github.com/geocoder89/healthmate/internal/service"
)

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*fakeUsers)
		wantStatusCode int
		wantCode       string
	}{
		{
			name:           "success",
			body:           `{"email":"a@x.com","password":"p1"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_password",
			body:           `{"email":"a@x.com"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: `{"email":"a@x.com","password":"p1"}`,
			setup: func(f *fakeUsers) {
				f.registerFn = func(ctx context.Context, email, password string) error {
					return service.ErrConflict
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "password_too_long",
			body: `{"email":"a@x.com","password":"p1"}`,
			setup: func(f *fakeUsers) {
				f.registerFn = func(ctx context.Context, email, password string) error {
					return service.ErrPasswordTooLong
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "password_too_long",
		},
		{
			name: "store_error",
			body: `{"email":"a@x.com","password":"p1"}`,
			setup: func(f *fakeUsers) {
				f.registerFn = func(ctx context.Context, email, password string) error {
					return errors.New("db down")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{}
			if tt.setup != nil {
				tt.setup(users)
			}

			h := handlers.NewAuthHandler(users, users)
			r := setupRouter(http.MethodPost, "/register", nil, h.Register)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				var resp bindErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Error.Code != tt.wantCode {
					t.Fatalf("got code %q, want %q", resp.Error.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	users := &fakeUsers{
		authenticateFn: func(ctx context.Context, email, password string) (string, error) {
			if password != "p1" {
				return "", service.ErrUnauthorized
			}
			return "signed-token", nil
		},
	}
	h := handlers.NewAuthHandler(users, users)
	r := setupRouter(http.MethodPost, "/login", nil, h.Login)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@x.com","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token != "signed-token" {
		t.Fatalf("got token %q", body.Token)
	}

	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"a@x.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "invalid_credentials" || resp.Error.Message != "Invalid credentials" {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
}

func TestMeHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		err            error
		wantStatusCode int
		wantEmail      string
	}{
		{name: "success", url: "/me?token=abc", wantStatusCode: http.StatusOK, wantEmail: alice.Email},
		{name: "missing_token", url: "/me", wantStatusCode: http.StatusUnauthorized},
		{name: "invalid_token", url: "/me?token=abc", err: service.ErrUnauthorized, wantStatusCode: http.StatusUnauthorized},
		{name: "user_gone", url: "/me?token=abc", err: service.ErrNotFound, wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{
				resolveTokenFn: func(ctx context.Context, token string) (user.User, error) {
					if tt.err != nil {
						return user.User{}, tt.err
					}
					return alice, nil
				},
			}
			h := handlers.NewAuthHandler(users, users)
			r := setupRouter(http.MethodGet, "/me", nil, h.Me)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantEmail != "" {
				var body map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body["email"] != tt.wantEmail {
					t.Fatalf("got email %q, want %q", body["email"], tt.wantEmail)
				}
			}
		})
	}
}

func TestProfileHandlers(t *testing.T) {
	users := &fakeUsers{
		updateProfileFn: func(ctx context.Context, u user.User, req user.UpdateProfileRequest) error {
			if req.Email == "taken@x.com" {
				return service.ErrConflict
			}
			return nil
		},
		changePasswordFn: func(ctx context.Context, u user.User, current, next string) error {
			if current != "old" {
				return service.ErrInvalidCredential
			}
			if next == "too-long" {
				return service.ErrPasswordTooLong
			}
			return nil
		},
	}
	h := handlers.NewProfileHandler(users)

	t.Run("get_hides_hash", func(t *testing.T) {
		u := alice
		u.PasswordHash = "secret-hash"
		r := setupRouter(http.MethodGet, "/profile", &u, h.Get)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", w.Code)
		}
		if bytes.Contains(w.Body.Bytes(), []byte("secret-hash")) {
			t.Fatalf("profile leaked the password hash: %s", w.Body.String())
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["email"] != alice.Email {
			t.Fatalf("unexpected profile %v", body)
		}
	})

	t.Run("no_identity", func(t *testing.T) {
		r := setupRouter(http.MethodGet, "/profile", nil, h.Get)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d, want 401", w.Code)
		}
	})

	updates := []struct {
		name string
		body string
		want int
	}{
		{name: "update_ok", body: `{"first_name":"A","last_name":"B","email":"new@x.com"}`, want: http.StatusOK},
		{name: "update_conflict", body: `{"first_name":"A","last_name":"B","email":"taken@x.com"}`, want: http.StatusBadRequest},
		{name: "update_missing_email", body: `{"first_name":"A"}`, want: http.StatusBadRequest},
	}

	for _, tt := range updates {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(http.MethodPut, "/profile/update", &alice, h.Update)

			req := httptest.NewRequest(http.MethodPut, "/profile/update", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	passwords := []struct {
		name string
		body string
		want int
	}{
		{name: "password_ok", body: `{"current_password":"old","new_password":"new"}`, want: http.StatusOK},
		{name: "password_wrong_current", body: `{"current_password":"bad","new_password":"new"}`, want: http.StatusBadRequest},
		{name: "password_too_long", body: `{"current_password":"old","new_password":"too-long"}`, want: http.StatusBadRequest},
	}

	for _, tt := range passwords {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(http.MethodPut, "/profile/change-password", &alice, h.ChangePassword)

			req := httptest.NewRequest(http.MethodPut, "/profile/change-password", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
