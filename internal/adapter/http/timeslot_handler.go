package http

import (
	"net/http"
	"strconv"
	"time"

	"bloodbank-service/internal/adapter/middleware"
	domainTimeslot "bloodbank-service/internal/domain/timeslot"
	"bloodbank-service/internal/usecase/timeslot"

	"github.com/labstack/echo/v4"
)

type TimeslotHandler struct{ uc *timeslot.Usecase }

func NewTimeslotHandler(uc *timeslot.Usecase) *TimeslotHandler { return &TimeslotHandler{uc: uc} }

type createTimeslotReq struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
	Capacity  int    `json:"capacity" validate:"gte=1"`
	IsActive  *bool  `json:"is_active"`
}

// Absent fields are left untouched.
type updateTimeslotReq struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
	Capacity  *int    `json:"capacity" validate:"omitempty,gte=1"`
	IsActive  *bool   `json:"is_active"`
}

func (h *TimeslotHandler) Create(c echo.Context) error {
	var req createTimeslotReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	date, _ := time.Parse(dateLayout, req.Date)
	out, err := h.uc.Create(c.Request().Context(), timeslot.CreateInput{
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *TimeslotHandler) Update(c echo.Context) error {
	var req updateTimeslotReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	in := timeslot.UpdateInput{
		TimeslotID: c.Param("timeslot_id"),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Capacity:   req.Capacity,
		IsActive:   req.IsActive,
	}
	if req.Date != nil {
		d, _ := time.Parse(dateLayout, *req.Date)
		in.Date = &d
	}
	out, err := h.uc.Update(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TimeslotHandler) Delete(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), c.Param("timeslot_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TimeslotHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), c.Param("timeslot_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// List accepts ?from=YYYY-MM-DD, ?active=true and ?open=true.
func (h *TimeslotHandler) List(c echo.Context) error {
	from, ok := queryDay(c, "from")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be a date as YYYY-MM-DD"})
	}
	var f domainTimeslot.ListFilter
	if !from.IsZero() {
		f.From = &from
	}
	f.OnlyActive, _ = strconv.ParseBool(c.QueryParam("active"))
	f.OnlyOpen, _ = strconv.ParseBool(c.QueryParam("open"))

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Bookable lists slots the donor can still take a seat on.
func (h *TimeslotHandler) Bookable(c echo.Context) error {
	id := c.Param("donor_id")
	if !owns(c, middleware.KindDonor, id) {
		return forbidden(c)
	}
	today, ok := queryDay(c, "today")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "today must be a date as YYYY-MM-DD"})
	}
	out, err := h.uc.ListBookable(c.Request().Context(), id, today)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
