package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kattu2003/PRODUCT/internal/services"
	"github.com/Kattu2003/PRODUCT/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccountService struct {
	createFn  func(ctx context.Context, in services.SignupInput) error
	authFn    func(ctx context.Context, in services.LoginInput) (services.Session, error)
	currentFn func(ctx context.Context, token string) (types.Account, error)
	logoutFn  func(ctx context.Context, token string) error
}

func (s *stubAccountService) CreateAccount(ctx context.Context, in services.SignupInput) error {
	return s.createFn(ctx, in)
}

func (s *stubAccountService) Authenticate(ctx context.Context, in services.LoginInput) (services.Session, error) {
	return s.authFn(ctx, in)
}

func (s *stubAccountService) CurrentUser(ctx context.Context, token string) (types.Account, error) {
	return s.currentFn(ctx, token)
}

func (s *stubAccountService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func newTestRouter(svc AccountService) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", Health)
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, svc)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&stubAccountService{}), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"status": "ok", "service": "backend"}, decodeBody(t, rec))
}

func TestSignupSuccess(t *testing.T) {
	var got services.SignupInput
	svc := &stubAccountService{
		createFn: func(_ context.Context, in services.SignupInput) error {
			got = in
			return nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/auth/signup",
		`{"email":" Jane@Example.com ","password":"pw","firstName":"Jane","lastName":"Doe","role":"therapist"}`, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, map[string]any{"ok": true}, decodeBody(t, rec))
	assert.Equal(t, services.SignupInput{
		Email:     "Jane@Example.com",
		Password:  "pw",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "therapist",
	}, got)
}

func TestSignupMissingFields(t *testing.T) {
	svc := &stubAccountService{
		createFn: func(context.Context, services.SignupInput) error {
			t.Fatal("service must not be called")
			return nil
		},
	}
	h := newTestRouter(svc)

	for _, body := range []string{
		`{"password":"pw"}`,
		`{"email":"a@b.com"}`,
		`{"email":"   ","password":"pw"}`,
		`{}`,
		``,
	} {
		rec := do(t, h, http.MethodPost, "/auth/signup", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "Missing email or password", decodeBody(t, rec)["error"])
	}
}

func TestSignupMalformedJSON(t *testing.T) {
	rec := do(t, newTestRouter(&stubAccountService{}), http.MethodPost, "/auth/signup", `{"email":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request", decodeBody(t, rec)["error"])
}

func TestSignupServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{services.ErrConflict, http.StatusConflict, "Account already exists"},
		{services.ErrValidation, http.StatusBadRequest, "Missing email or password"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		svc := &stubAccountService{
			createFn: func(context.Context, services.SignupInput) error { return tc.err },
		}
		rec := do(t, newTestRouter(svc), http.MethodPost, "/auth/signup", `{"email":"a@b.com","password":"pw"}`, nil)
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, map[string]any{"error": tc.msg}, decodeBody(t, rec))
		assert.NotContains(t, rec.Body.String(), "pq:")
	}
}

func TestLoginSuccess(t *testing.T) {
	var got services.LoginInput
	svc := &stubAccountService{
		authFn: func(_ context.Context, in services.LoginInput) (services.Session, error) {
			got = in
			return services.Session{
				Account: types.Account{
					Email:     "jane@example.com",
					FirstName: "Jane",
					LastName:  "Doe",
					Role:      types.RoleTherapist,
					FullName:  "Jane Doe",
				},
				Token: "tok",
			}, nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/auth/login", `{"email":"JANE@example.com","password":"pw","role":"user"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.LoginInput{Email: "JANE@example.com", Password: "pw", Role: "user"}, got)
	assert.Equal(t, map[string]any{
		"user": map[string]any{
			"email":     "jane@example.com",
			"firstName": "Jane",
			"lastName":  "Doe",
			"role":      "therapist",
			"fullName":  "Jane Doe",
		},
		"token": "tok",
	}, decodeBody(t, rec))
}

func TestLoginInvalidCredentialsBody(t *testing.T) {
	svc := &stubAccountService{
		authFn: func(context.Context, services.LoginInput) (services.Session, error) {
			return services.Session{}, services.ErrInvalidCredentials
		},
	}
	h := newTestRouter(svc)

	unknown := do(t, h, http.MethodPost, "/auth/login", `{"email":"nobody@b.com","password":"pw"}`, nil)
	wrong := do(t, h, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"wrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Invalid credentials", decodeBody(t, wrong)["error"])
}

func TestLoginMissingFieldsAndInternalError(t *testing.T) {
	svc := &stubAccountService{
		authFn: func(context.Context, services.LoginInput) (services.Session, error) {
			return services.Session{}, errors.New("db gone")
		},
	}
	h := newTestRouter(svc)

	rec := do(t, h, http.MethodPost, "/auth/login", `{"email":"a@b.com"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"pw"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])
}

func TestMe(t *testing.T) {
	svc := &stubAccountService{
		currentFn: func(_ context.Context, token string) (types.Account, error) {
			if token != "good" {
				return types.Account{}, services.ErrUnauthenticated
			}
			return types.Account{Email: "a@b.com", Role: types.RoleUser, FullName: "Ann"}, nil
		},
	}
	h := newTestRouter(svc)

	rec := do(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, "Ann", user["fullName"])
}

func TestLogoutAlwaysAcknowledges(t *testing.T) {
	var tokens []string
	svc := &stubAccountService{
		logoutFn: func(_ context.Context, token string) error {
			tokens = append(tokens, token)
			return errors.New("redis unavailable")
		},
	}
	h := newTestRouter(svc)

	rec := do(t, h, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"ok": true}, decodeBody(t, rec))

	rec = do(t, h, http.MethodPost, "/auth/logout", "", map[string]string{"Authorization": "Bearer tok"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"tok"}, tokens)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := bearerToken(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "bearer   abc ")
	token, err := bearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	req.Header.Set("Authorization", "Bearer ")
	_, err = bearerToken(req)
	assert.Error(t, err)
}
