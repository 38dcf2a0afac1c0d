package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jobtracker/jobtracker-api/internal/api/middleware"
	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

// callerIdentity extracts the identity injected by the Auth middleware. A
// missing or zero identity means the route was mounted without the
// middleware, so the request is treated as unauthenticated.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || id.UserID == 0 {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}
	return id, nil
}

// pathID parses the :id route parameter. Anything that is not a positive
// integer cannot name a record, so it reports notFound.
func pathID(c echo.Context, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}
