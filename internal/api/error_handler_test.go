package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"validation", &domain.ValidationError{Message: "job_title is required", Fields: map[string]string{"job_title": "job_title is required"}},
			http.StatusBadRequest, `{"error":"job_title is required","fields":{"job_title":"job_title is required"}}`},
		{"duplicate user", domain.ErrUserExists, http.StatusBadRequest, `{"error":"Username already exists"}`},
		{"not found", domain.ErrApplicationNotFound, http.StatusNotFound, `{"error":"Not found."}`},
		{"wrapped not found", pkgerrors.Wrap(domain.ErrUserNotFound, "delete user"), http.StatusNotFound, `{"error":"Not found."}`},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, `{"error":"You do not have permission to perform this action."}`},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"No active account found with the given credentials"}`},
		{"blacklisted", domain.ErrTokenBlacklisted, http.StatusUnauthorized, `{"error":"Token is blacklisted"}`},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized, `{"error":"Token is invalid or expired"}`},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, `{"error":"method not allowed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&buf))(pkgerrors.New("connection reset"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "unhandled error")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Body.String())
}
