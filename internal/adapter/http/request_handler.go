package http

import (
	"net/http"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/usecase/request"

	"github.com/labstack/echo/v4"
)

type RequestHandler struct{ uc *request.Usecase }

func NewRequestHandler(uc *request.Usecase) *RequestHandler { return &RequestHandler{uc: uc} }

type submitRequestReq struct {
	PatientID  string `json:"patient_id" validate:"required,hex32"`
	BloodGroup string `json:"blood_group" validate:"omitempty,bloodgroup"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitRequestReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	if !owns(c, middleware.KindPatient, req.PatientID) {
		return forbidden(c)
	}
	out, err := h.uc.Submit(c.Request().Context(), request.SubmitInput{
		PatientID:  req.PatientID,
		BloodGroup: blood.Group(req.BloodGroup),
		Quantity:   req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// Approve fulfills the request from stock or refuses it whole.
func (h *RequestHandler) Approve(c echo.Context) error {
	out, err := h.uc.Approve(c.Request().Context(), request.ApproveInput{
		RequestID:  c.Param("request_id"),
		ApproverID: approverID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RequestHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.uc.Reject(c.Request().Context(), request.RejectInput{
		RequestID: c.Param("request_id"),
		Reason:    req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RequestHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	if !owns(c, middleware.KindPatient, out.PatientID) {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RequestHandler) ListByPatient(c echo.Context) error {
	id := c.Param("patient_id")
	if !owns(c, middleware.KindPatient, id) {
		return forbidden(c)
	}
	out, err := h.uc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
