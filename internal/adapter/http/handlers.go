package http

import (
	"net/http"
	"time"

	"bloodbank-service/internal/adapter/middleware"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

const dateLayout = "2006-01-02"

// queryDay reads an optional YYYY-MM-DD query param. Missing means zero,
// which the usecases read as today.
func queryDay(c echo.Context, name string) (time.Time, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// owns reports whether the caller is an admin or the principal of the given
// kind whose id matches.
func owns(c echo.Context, kind middleware.Kind, id string) bool {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return false
	}
	return p.IsAdmin() || (p.Kind == kind && p.ID == id)
}

func approverID(c echo.Context) string {
	p, _ := middleware.PrincipalFrom(c)
	return p.ID
}
