package http

import (
	"net/http"
	"net/url"
	"strconv"

	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/usecase/inventory"

	"github.com/labstack/echo/v4"
)

type InventoryHandler struct{ uc *inventory.Usecase }

func NewInventoryHandler(uc *inventory.Usecase) *InventoryHandler { return &InventoryHandler{uc: uc} }

// groupParam decodes :blood_group. "+" arrives percent-encoded as %2B.
func groupParam(c echo.Context) blood.Group {
	raw := c.Param("blood_group")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return blood.Group(raw)
}

func (h *InventoryHandler) Available(c echo.Context) error {
	today, ok := queryDay(c, "today")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "today must be a date as YYYY-MM-DD"})
	}
	out, err := h.uc.Available(c.Request().Context(), groupParam(c), today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) CheckAvailability(c echo.Context) error {
	qty, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "quantity must be an integer"})
	}
	today, ok := queryDay(c, "today")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "today must be a date as YYYY-MM-DD"})
	}
	out, err := h.uc.CheckAvailability(c.Request().Context(), groupParam(c), qty, today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) Summary(c echo.Context) error {
	today, ok := queryDay(c, "today")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "today must be a date as YYYY-MM-DD"})
	}
	out, err := h.uc.Summary(c.Request().Context(), today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InventoryHandler) Expire(c echo.Context) error {
	today, ok := queryDay(c, "today")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "today must be a date as YYYY-MM-DD"})
	}
	n, err := h.uc.ExpireStale(c.Request().Context(), today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"expired": n})
}

func (h *InventoryHandler) Discard(c echo.Context) error {
	out, err := h.uc.Discard(c.Request().Context(), c.Param("unit_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
