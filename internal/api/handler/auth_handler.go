package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/register/ [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Success: true,
		Message: "User registered successfully",
		UserID:  user.ID,
	})
}

// ObtainToken exchanges credentials for an access/refresh token pair.
//
// @Summary      Obtain a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenObtainRequest  true  "Credentials"
// @Success      200   {object}  tokenPairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/token/ [post]
func (h *AuthHandler) ObtainToken(c echo.Context) error {
	var req tokenObtainRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	pair, err := h.authService.ObtainToken(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// RefreshToken issues a new access token.
//
// @Summary      Refresh an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRefreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenRefreshResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/token/refresh/ [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req tokenRefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Refresh == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh is required")
	}

	res, err := h.authService.RefreshToken(c.Request().Context(), req.Refresh)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenRefreshResponse{Access: res.Access, Refresh: res.Refresh})
}

// VerifyToken checks that a token is valid and not expired.
//
// @Summary      Verify a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenVerifyRequest  true  "Token"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/token/verify/ [post]
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	var req tokenVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	if err := h.authService.VerifyToken(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{})
}

// BlacklistToken revokes a refresh token (logout).
//
// @Summary      Blacklist a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRefreshRequest  true  "Refresh token"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/token/blacklist/ [post]
func (h *AuthHandler) BlacklistToken(c echo.Context) error {
	var req tokenRefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Refresh == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "refresh is required")
	}

	if err := h.authService.BlacklistToken(c.Request().Context(), req.Refresh); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{})
}
