package gormrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"bloodbank-service/internal/domain"
	"bloodbank-service/internal/domain/blood"
	"bloodbank-service/internal/domain/inventory"
	"bloodbank-service/internal/domain/uow"
	"bloodbank-service/internal/testutil/dbtest"
	"bloodbank-service/pkg/id"

	"gorm.io/gorm"
)

func seedUnit(t *testing.T, db *gorm.DB, g blood.Group, qty int, expiry time.Time, status inventory.UnitStatus) *inventory.BloodUnit {
	t.Helper()
	u := &inventory.BloodUnit{UnitID: id.NewID32(), BloodGroup: g, Quantity: qty, ExpiryDate: expiry, Status: status}
	if err := NewUnitRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed unit: %v", err)
	}
	return u
}

func TestUnit_ListAvailableOrdering(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()
	today := day(2024, 1, 15)

	late := seedUnit(t, db, blood.OPos, 2, day(2024, 3, 1), inventory.StatusAvailable)
	early := seedUnit(t, db, blood.OPos, 3, day(2024, 2, 1), inventory.StatusAvailable)
	tie := seedUnit(t, db, blood.OPos, 1, day(2024, 2, 1), inventory.StatusAvailable)
	seedUnit(t, db, blood.OPos, 0, day(2024, 2, 1), inventory.StatusAvailable)
	seedUnit(t, db, blood.OPos, 4, today, inventory.StatusAvailable)
	seedUnit(t, db, blood.OPos, 4, day(2024, 4, 1), inventory.StatusUsed)
	seedUnit(t, db, blood.ONeg, 4, day(2024, 4, 1), inventory.StatusAvailable)

	got, err := repo.ListAvailableForUpdate(ctx, blood.OPos, today)
	if err != nil {
		t.Fatalf("ListAvailableForUpdate: %v", err)
	}
	want := []string{early.UnitID, tie.UnitID, late.UnitID}
	if len(got) != len(want) {
		t.Fatalf("got %d units, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].UnitID != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i].UnitID, want[i])
		}
	}

	sums, err := repo.SumAvailableByGroup(ctx, today)
	if err != nil {
		t.Fatalf("SumAvailableByGroup: %v", err)
	}
	if sums[blood.OPos] != 6 || sums[blood.ONeg] != 4 {
		t.Fatalf("sums = %v", sums)
	}
}

func TestUnit_UpdateIfVersion(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()
	u := seedUnit(t, db, blood.APos, 2, day(2024, 2, 1), inventory.StatusAvailable)

	u.Status = inventory.StatusUsed
	ok, err := repo.UpdateIfVersion(ctx, u, 0)
	if err != nil || !ok {
		t.Fatalf("first update = %v, %v", ok, err)
	}
	ok, err = repo.UpdateIfVersion(ctx, u, 0)
	if err != nil || ok {
		t.Fatalf("stale version must not apply: %v, %v", ok, err)
	}
	got, _ := repo.GetByUnitID(ctx, u.UnitID)
	if got.Version != 1 || got.Status != inventory.StatusUsed {
		t.Fatalf("unexpected unit: %+v", got)
	}
}

func TestUnit_GetByDonationIDAndExpire(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewUnitRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByDonationID(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	donationID := uint64(42)
	u := &inventory.BloodUnit{UnitID: id.NewID32(), BloodGroup: blood.APos, Quantity: 1, ExpiryDate: day(2024, 1, 5), Status: inventory.StatusAvailable, DonationID: &donationID}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	dup := &inventory.BloodUnit{UnitID: id.NewID32(), BloodGroup: blood.APos, Quantity: 1, ExpiryDate: day(2024, 1, 5), Status: inventory.StatusAvailable, DonationID: &donationID}
	if err := repo.Create(ctx, dup); err == nil {
		t.Fatalf("a donation must map to at most one unit")
	}
	if got, err := repo.GetByDonationID(ctx, 42); err != nil || got.UnitID != u.UnitID {
		t.Fatalf("GetByDonationID = %+v, %v", got, err)
	}

	seedUnit(t, db, blood.APos, 1, day(2024, 2, 5), inventory.StatusAvailable)
	n, err := repo.ExpireThrough(ctx, day(2024, 1, 5))
	if err != nil || n != 1 {
		t.Fatalf("ExpireThrough = %d, %v", n, err)
	}
	got, _ := repo.GetByUnitID(ctx, u.UnitID)
	if got.Status != inventory.StatusExpired {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestUnit_LedgerOnSQLite(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	today := day(2024, 1, 15)
	late := seedUnit(t, db, blood.OPos, 2, day(2024, 3, 1), inventory.StatusAvailable)
	seedUnit(t, db, blood.OPos, 3, day(2024, 2, 1), inventory.StatusAvailable)

	var alloc *inventory.Allocation
	err := NewGormUoW(db).WithinTx(ctx, func(r uow.Repos) error {
		var err error
		alloc, err = inventory.NewLedger(r.Units).Allocate(ctx, blood.OPos, 4, today)
		return err
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if alloc.Allocated != 4 {
		t.Fatalf("allocated = %d", alloc.Allocated)
	}

	repo := NewUnitRepository(db)
	orig, _ := repo.GetByUnitID(ctx, late.UnitID)
	if orig.Status != inventory.StatusUsed || orig.Quantity != 1 {
		t.Fatalf("split original = %+v", orig)
	}
	left, err := repo.ListAvailable(ctx, blood.OPos, today)
	if err != nil || len(left) != 1 || left[0].Quantity != 1 || !left[0].ExpiryDate.Equal(day(2024, 3, 1)) {
		t.Fatalf("remaining stock = %+v, %v", left, err)
	}
	if left[0].ParentUnitID == nil || *left[0].ParentUnitID != late.ID {
		t.Fatalf("split child lost parent link")
	}
}
