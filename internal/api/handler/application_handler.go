package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// ApplicationHandler serves the owner-scoped /api/applications/ resource.
type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// List handles GET /api/applications/.
//
// @Summary      List the caller's job applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Exact status"  Enums(Applied, Interview, Offer, Rejected, Ghosted)
// @Param        company   query     string  false  "Exact company name"
// @Param        search    query     string  false  "Matches job title, company or location"
// @Param        ordering  query     string  false  "date_applied, created_at or company, '-' for descending"
// @Success      200       {array}   applicationResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /api/applications/ [get]
func (h *ApplicationHandler) List(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	var q listApplicationsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	apps, err := h.service.List(c.Request().Context(), caller, ports.ListApplicationsInput{
		Status:   q.Status,
		Company:  q.Company,
		Search:   q.Search,
		Ordering: q.Ordering,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toApplicationListResponse(apps))
}

// Get handles GET /api/applications/:id/.
//
// @Summary      Retrieve one of the caller's job applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  applicationResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/applications/{id}/ [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, domain.ErrApplicationNotFound)
	if err != nil {
		return err
	}

	app, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app))
}

// Create handles POST /api/applications/.
//
// @Summary      Create a job application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      applicationRequest  true  "Application"
// @Success      201   {object}  applicationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/applications/ [post]
func (h *ApplicationHandler) Create(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}

	in, err := bindApplication(c)
	if err != nil {
		return err
	}

	app, err := h.service.Create(c.Request().Context(), caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toApplicationResponse(app))
}

// Replace handles PUT /api/applications/:id/.
//
// @Summary      Replace a job application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Application ID"
// @Param        body  body      applicationRequest  true  "Application"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/applications/{id}/ [put]
func (h *ApplicationHandler) Replace(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, domain.ErrApplicationNotFound)
	if err != nil {
		return err
	}

	in, err := bindApplication(c)
	if err != nil {
		return err
	}

	app, err := h.service.Replace(c.Request().Context(), caller, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app))
}

// Patch handles PATCH /api/applications/:id/.
//
// @Summary      Partially update a job application
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Application ID"
// @Param        body  body      applicationPatchRequest  true  "Fields to change"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/applications/{id}/ [patch]
func (h *ApplicationHandler) Patch(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, domain.ErrApplicationNotFound)
	if err != nil {
		return err
	}

	var req applicationPatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	patch, err := toApplicationPatch(req)
	if err != nil {
		return err
	}

	app, err := h.service.Patch(c.Request().Context(), caller, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app))
}

// Delete handles DELETE /api/applications/:id/.
//
// @Summary      Delete a job application
// @Tags         applications
// @Security     BearerAuth
// @Param        id   path  int  true  "Application ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/applications/{id}/ [delete]
func (h *ApplicationHandler) Delete(c echo.Context) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, domain.ErrApplicationNotFound)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), caller, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindApplication(c echo.Context) (ports.ApplicationInput, error) {
	var req applicationRequest
	if err := c.Bind(&req); err != nil {
		return ports.ApplicationInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.ApplicationInput{}, err
	}
	return toApplicationInput(req)
}
