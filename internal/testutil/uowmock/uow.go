package uowmock

import (
	"context"
	"errors"

	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinDonationTxFn func(ctx context.Context, donationID string, fn func(r uow.Repos, d *donation.Donation) error) error
	WithinRequestTxFn  func(ctx context.Context, requestID string, fn func(r uow.Repos, br *request.BloodRequest) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinDonationTx(fn func(context.Context, string, func(uow.Repos, *donation.Donation) error) error) *UoW {
	m.WithinDonationTxFn = fn
	return m
}
func (m *UoW) WithWithinRequestTx(fn func(context.Context, string, func(uow.Repos, *request.BloodRequest) error) error) *UoW {
	m.WithinRequestTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every callback directly against repos, handing in the
// given donation and request as the locked rows.
func Passthrough(repos uow.Repos, d *donation.Donation, br *request.BloodRequest) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinDonationTxFn: func(_ context.Context, _ string, fn func(uow.Repos, *donation.Donation) error) error {
			return fn(repos, d)
		},
		WithinRequestTxFn: func(_ context.Context, _ string, fn func(uow.Repos, *request.BloodRequest) error) error {
			return fn(repos, br)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinDonationTx(ctx context.Context, donationID string, fn func(r uow.Repos, d *donation.Donation) error) error {
	if m.WithinDonationTxFn != nil {
		return m.WithinDonationTxFn(ctx, donationID, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, br *request.BloodRequest) error) error {
	if m.WithinRequestTxFn != nil {
		return m.WithinRequestTxFn(ctx, requestID, fn)
	}
	return errUnimplemented
}
