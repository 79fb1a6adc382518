package http

import (
	"time"

	"bloodbank-service/internal/adapter/middleware"
	"bloodbank-service/internal/usecase/donation"
	"bloodbank-service/internal/usecase/inventory"
	"bloodbank-service/internal/usecase/registry"
	"bloodbank-service/internal/usecase/request"
	"bloodbank-service/internal/usecase/timeslot"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Registry  *registry.Usecase
	Donations *donation.Usecase
	Timeslots *timeslot.Usecase
	Inventory *inventory.Usecase
	Requests  *request.Usecase

	JWTSecret []byte
	// Nil disables the idempotency guard.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	Log            *zap.Logger
}

// Register mounts every route on e. Everything except /health needs a bearer
// token, and mutations go through the idempotency guard.
func Register(e *echo.Echo, d RouterDeps) {
	e.Validator = NewValidator()

	e.GET("/health", NewHandler().Health)

	mw := []echo.MiddlewareFunc{middleware.Authenticate(d.JWTSecret)}
	if d.Redis != nil {
		mw = append(mw, middleware.IdempotencyMiddleware(d.Redis, d.IdempotencyTTL, d.Log))
	}
	api := e.Group("", mw...)
	admin := middleware.RequireAdmin()

	reg := NewRegistryHandler(d.Registry)
	don := NewDonationHandler(d.Donations)
	slots := NewTimeslotHandler(d.Timeslots)
	inv := NewInventoryHandler(d.Inventory)
	req := NewRequestHandler(d.Requests)

	// donors
	api.POST("/donors", reg.RegisterDonor, admin)
	api.GET("/donors/:donor_id", reg.GetDonor)
	api.DELETE("/donors/:donor_id", reg.DeleteDonor, admin)
	api.GET("/donors/:donor_id/donations", don.History)
	api.GET("/donors/:donor_id/timeslots", slots.Bookable)

	// patients
	api.POST("/patients", reg.RegisterPatient, admin)
	api.GET("/patients/:patient_id", reg.GetPatient)
	api.GET("/patients/:patient_id/requests", req.ListByPatient)

	// donations
	api.POST("/donations", don.Submit)
	api.GET("/donations/:donation_id", don.Get)
	api.POST("/donations/:donation_id/approve-initial", don.ApproveInitial, admin)
	api.POST("/donations/:donation_id/book", don.BookSlot)
	api.POST("/donations/:donation_id/approve-final", don.ApproveFinal, admin)
	api.POST("/donations/:donation_id/reject", don.Reject, admin)

	// requests
	api.POST("/requests", req.Submit)
	api.GET("/requests/:request_id", req.Get)
	api.POST("/requests/:request_id/approve", req.Approve, admin)
	api.POST("/requests/:request_id/reject", req.Reject, admin)

	// timeslots
	api.GET("/timeslots", slots.List)
	api.GET("/timeslots/:timeslot_id", slots.Get)
	api.POST("/timeslots", slots.Create, admin)
	api.PUT("/timeslots/:timeslot_id", slots.Update, admin)
	api.DELETE("/timeslots/:timeslot_id", slots.Delete, admin)

	// inventory
	api.GET("/inventory/summary", inv.Summary, admin)
	api.GET("/inventory/:blood_group", inv.Available, admin)
	api.GET("/inventory/:blood_group/availability", inv.CheckAvailability)
	api.POST("/inventory/expire", inv.Expire, admin)
	api.POST("/inventory/units/:unit_id/discard", inv.Discard, admin)
}
