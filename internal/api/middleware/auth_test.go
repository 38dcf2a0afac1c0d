package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

type stubAuthenticator struct {
	identity domain.Identity
	err      error
	got      string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	s.got = token
	return s.identity, s.err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer signed.jwt.value")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authn := &stubAuthenticator{identity: domain.Identity{UserID: 4, Username: "alice", Role: domain.RoleUser}}

	called := false
	handler := Auth(authn)(func(c echo.Context) error {
		called = true
		identity, ok := c.Get(IdentityKey).(domain.Identity)
		if !ok {
			t.Fatalf("identity not set")
		}
		if identity.UserID != 4 || identity.Username != "alice" {
			t.Fatalf("unexpected identity: %+v", identity)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if authn.got != "signed.jwt.value" {
		t.Fatalf("token not forwarded, got %q", authn.got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"wrong scheme", "Token abc", nil},
		{"empty bearer", "Bearer ", nil},
		{"invalid token", "Bearer not-a-token", domain.ErrInvalidToken},
		{"inactive user", "Bearer valid", domain.ErrInactiveUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Auth(&stubAuthenticator{err: tt.err})(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})

			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_PassesThroughUnexpectedErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")
	c := e.NewContext(req, httptest.NewRecorder())

	boom := errors.New("store unavailable")
	handler := Auth(&stubAuthenticator{err: boom})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
