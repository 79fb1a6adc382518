package http

import (
	"net/http"
	"time"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/usecase/donation"

	"github.com/labstack/echo/v4"
)

type DonationHandler struct{ uc *donation.Usecase }

func NewDonationHandler(uc *donation.Usecase) *DonationHandler { return &DonationHandler{uc: uc} }

type submitDonationReq struct {
	DonorID      string `json:"donor_id" validate:"required,hex32"`
	Quantity     int    `json:"quantity" validate:"gte=1"`
	DonationDate string `json:"donation_date" validate:"omitempty,datetime=2006-01-02"`
}

type bookSlotReq struct {
	TimeslotID string `json:"timeslot_id" validate:"required,hex32"`
}

type rejectReq struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *DonationHandler) Submit(c echo.Context) error {
	var req submitDonationReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	if !owns(c, middleware.KindDonor, req.DonorID) {
		return forbidden(c)
	}
	var date time.Time
	if req.DonationDate != "" {
		date, _ = time.Parse(dateLayout, req.DonationDate)
	}
	out, err := h.uc.Submit(c.Request().Context(), donation.SubmitInput{
		DonorID:      req.DonorID,
		Quantity:     req.Quantity,
		DonationDate: date,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *DonationHandler) ApproveInitial(c echo.Context) error {
	out, err := h.uc.ApproveInitial(c.Request().Context(), donation.ApproveInput{
		DonationID: c.Param("donation_id"),
		ApproverID: approverID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// BookSlot is open to the donor who owns the donation.
func (h *DonationHandler) BookSlot(c echo.Context) error {
	var req bookSlotReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	ctx := c.Request().Context()
	id := c.Param("donation_id")

	current, err := h.uc.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if !owns(c, middleware.KindDonor, current.DonorID) {
		return forbidden(c)
	}

	out, err := h.uc.BookSlot(ctx, donation.BookInput{DonationID: id, TimeslotID: req.TimeslotID})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DonationHandler) ApproveFinal(c echo.Context) error {
	out, err := h.uc.ApproveFinal(c.Request().Context(), donation.ApproveInput{
		DonationID: c.Param("donation_id"),
		ApproverID: approverID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DonationHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.uc.Reject(c.Request().Context(), donation.RejectInput{
		DonationID: c.Param("donation_id"),
		Reason:     req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DonationHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), c.Param("donation_id"))
	if err != nil {
		return writeError(c, err)
	}
	if !owns(c, middleware.KindDonor, out.DonorID) {
		return forbidden(c)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DonationHandler) History(c echo.Context) error {
	id := c.Param("donor_id")
	if !owns(c, middleware.KindDonor, id) {
		return forbidden(c)
	}
	out, err := h.uc.History(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
