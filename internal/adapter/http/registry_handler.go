package http

import (
	"net/http"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/donor"
	"bloodbank-service/internal/usecase/registry"

	"github.com/labstack/echo/v4"
)

type RegistryHandler struct{ uc *registry.Usecase }

func NewRegistryHandler(uc *registry.Usecase) *RegistryHandler { return &RegistryHandler{uc: uc} }

type registerDonorReq struct {
	AccountID     string `json:"account_id" validate:"omitempty,max=64"`
	FullName      string `json:"full_name" validate:"required,max=100"`
	BloodGroup    string `json:"blood_group" validate:"required,bloodgroup"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=15"`
	Age           *int   `json:"age" validate:"omitempty,gte=18,lte=65"`
	Gender        string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address       string `json:"address" validate:"omitempty,max=255"`
}

type registerPatientReq struct {
	AccountID        string `json:"account_id" validate:"omitempty,max=64"`
	FullName         string `json:"full_name" validate:"required,max=100"`
	BloodGroup       string `json:"blood_group" validate:"required,bloodgroup"`
	ContactNumber    string `json:"contact_number" validate:"omitempty,max=15"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,max=15"`
	Age              int    `json:"age" validate:"gte=0,lte=150"`
	Gender           string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address          string `json:"address" validate:"omitempty,max=255"`
}

func (h *RegistryHandler) RegisterDonor(c echo.Context) error {
	var req registerDonorReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.uc.RegisterDonor(c.Request().Context(), registry.RegisterDonorInput{
		AccountID:     req.AccountID,
		FullName:      req.FullName,
		BloodGroup:    blood.Group(req.BloodGroup),
		ContactNumber: req.ContactNumber,
		Age:           req.Age,
		Gender:        donor.Gender(req.Gender),
		Address:       req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *RegistryHandler) GetDonor(c echo.Context) error {
	id := c.Param("donor_id")
	if !owns(c, middleware.KindDonor, id) {
		return forbidden(c)
	}
	out, err := h.uc.GetDonor(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RegistryHandler) DeleteDonor(c echo.Context) error {
	if err := h.uc.DeleteDonor(c.Request().Context(), c.Param("donor_id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RegistryHandler) RegisterPatient(c echo.Context) error {
	var req registerPatientReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidBody(c, err)
	}
	out, err := h.uc.RegisterPatient(c.Request().Context(), registry.RegisterPatientInput{
		AccountID:        req.AccountID,
		FullName:         req.FullName,
		BloodGroup:       blood.Group(req.BloodGroup),
		ContactNumber:    req.ContactNumber,
		EmergencyContact: req.EmergencyContact,
		Age:              req.Age,
		Gender:           donor.Gender(req.Gender),
		Address:          req.Address,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *RegistryHandler) GetPatient(c echo.Context) error {
	id := c.Param("patient_id")
	if !owns(c, middleware.KindPatient, id) {
		return forbidden(c)
	}
	out, err := h.uc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
