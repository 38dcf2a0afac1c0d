package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	obtainFn    func(ctx context.Context, username, password string) (*ports.TokenPair, error)
	refreshFn   func(ctx context.Context, refresh string) (*ports.RefreshResult, error)
	verifyFn    func(ctx context.Context, token string) error
	blacklistFn func(ctx context.Context, refresh string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) ObtainToken(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	return s.obtainFn(ctx, username, password)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refresh string) (*ports.RefreshResult, error) {
	return s.refreshFn(ctx, refresh)
}

func (s *stubAuthService) VerifyToken(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

func (s *stubAuthService) BlacklistToken(ctx context.Context, refresh string) error {
	return s.blacklistFn(ctx, refresh)
}

func (s *stubAuthService) Authenticate(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrInvalidToken
}

func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d", code, he.Code)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Password != "secretpass" || in.Email != "a@example.com" {
				t.Fatalf("unexpected args: %+v", in)
			}
			return &domain.User{ID: 7, Username: in.Username}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/register/", `{"username":"alice","password":"secretpass","email":"a@example.com"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["message"] != "User registered successfully" || resp["user_id"] != float64(7) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/register/", `{"username":"bob","password":"password1"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to reach the error handler, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/register/", "not-json")
	assertHTTPError(t, handler.Register(c), http.StatusBadRequest)
}

func TestAuthHandler_ObtainToken_Success(t *testing.T) {
	stub := &stubAuthService{
		obtainFn: func(ctx context.Context, username, password string) (*ports.TokenPair, error) {
			if username != "alice" || password != "secretpass" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &ports.TokenPair{Access: "acc", Refresh: "ref"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/token/", `{"username":"alice","password":"secretpass"}`)
	if err := handler.ObtainToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Access != "acc" || resp.Refresh != "ref" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
}

func TestAuthHandler_ObtainToken_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		obtainFn: func(ctx context.Context, username, password string) (*ports.TokenPair, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newJSONContext(http.MethodPost, "/api/token/", `{"username":"alice","password":"nope"}`)
	if err := handler.ObtainToken(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(ctx context.Context, refresh string) (*ports.RefreshResult, error) {
			if refresh != "ref" {
				t.Fatalf("unexpected refresh token %q", refresh)
			}
			return &ports.RefreshResult{Access: "new-access"}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/token/refresh/", `{"refresh":"ref"}`)
	if err := handler.RefreshToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"refresh"`) {
		t.Fatalf("refresh must be omitted without rotation: %s", rec.Body.String())
	}
}

func TestAuthHandler_RefreshToken_Missing(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(http.MethodPost, "/api/token/refresh/", `{}`)
	assertHTTPError(t, handler.RefreshToken(c), http.StatusBadRequest)
}

func TestAuthHandler_VerifyAndBlacklist(t *testing.T) {
	var verified, blacklisted string
	stub := &stubAuthService{
		verifyFn:    func(ctx context.Context, token string) error { verified = token; return nil },
		blacklistFn: func(ctx context.Context, refresh string) error { blacklisted = refresh; return nil },
	}
	handler := NewAuthHandler(stub)

	c, rec := newJSONContext(http.MethodPost, "/api/token/verify/", `{"token":"tok"}`)
	if err := handler.VerifyToken(c); err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if rec.Code != http.StatusOK || verified != "tok" {
		t.Fatalf("verify: code=%d token=%q", rec.Code, verified)
	}

	c, rec = newJSONContext(http.MethodPost, "/api/token/blacklist/", `{"refresh":"ref"}`)
	if err := handler.BlacklistToken(c); err != nil {
		t.Fatalf("blacklist error: %v", err)
	}
	if rec.Code != http.StatusOK || blacklisted != "ref" {
		t.Fatalf("blacklist: code=%d token=%q", rec.Code, blacklisted)
	}
}
