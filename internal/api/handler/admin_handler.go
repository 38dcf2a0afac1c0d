package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// AdminHandler exposes the staff-only views. Routes must be mounted behind
// the Auth and RBAC(staff) middleware.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListApplications handles GET /api/admin/applications/.
//
// @Summary      List every user's job applications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Exact status"
// @Param        search    query     string  false  "Matches job title, company or owner username"
// @Param        ordering  query     string  false  "date_applied, created_at or company"
// @Success      200       {array}   adminApplicationResponse
// @Failure      401       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Router       /api/admin/applications/ [get]
func (h *AdminHandler) ListApplications(c echo.Context) error {
	var q listApplicationsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	apps, err := h.service.ListApplications(c.Request().Context(), ports.ListApplicationsInput{
		Status:   q.Status,
		Company:  q.Company,
		Search:   q.Search,
		Ordering: q.Ordering,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdminApplicationListResponse(apps))
}

// ListUsers handles GET /api/admin/users/.
//
// @Summary      List user accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/users/ [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(users))
}

// DeleteUser handles DELETE /api/admin/users/:id/.
//
// @Summary      Delete a user and all of their applications
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "User ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id}/ [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, domain.ErrUserNotFound)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
