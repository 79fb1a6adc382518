package uowmock

import (
	"context"
	"errors"
	"testing"

	"bloodbank-service/internal/domain/donation"
	"bloodbank-service/internal/domain/request"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/internal/testutil/donationmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	dons := &donationmock.Repo{}
	repos := uow.Repos{Donations: dons}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			// simulate transaction body
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Donations != dons {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinDonationTx(ctx, "D", func(uow.Repos, *donation.Donation) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinDonationTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinRequestTx(ctx, "R", func(uow.Repos, *request.BloodRequest) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinRequestTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_Passthrough(t *testing.T) {
	ctx := context.Background()
	dons := &donationmock.Repo{}
	lockedDonation := &donation.Donation{ID: 7, DonationID: "DN-7"}
	lockedRequest := &request.BloodRequest{ID: 8, RequestID: "RQ-8"}
	m := Passthrough(uow.Repos{Donations: dons}, lockedDonation, lockedRequest)

	err := m.WithinDonationTx(ctx, "DN-7", func(r uow.Repos, d *donation.Donation) error {
		if r.Donations != dons || d != lockedDonation {
			t.Fatalf("WithinDonationTx: arguments not forwarded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinDonationTx: %v", err)
	}
	err = m.WithinRequestTx(ctx, "RQ-8", func(_ uow.Repos, br *request.BloodRequest) error {
		if br != lockedRequest {
			t.Fatalf("WithinRequestTx: request not forwarded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinRequestTx: %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinDonationTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinDonationTx(func(context.Context, string, func(uow.Repos, *donation.Donation) error) error { return nil }).
		WithWithinRequestTx(func(context.Context, string, func(uow.Repos, *request.BloodRequest) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinDonationTxFn == nil || m.WithinRequestTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinDonationTxFn != nil || m.WithinRequestTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
