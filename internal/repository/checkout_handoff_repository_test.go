package repository

import (
	"fmt"
	"testing"

	"github.com/dujiao-next/storefront-cart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCheckoutHandoffRepositoryTest(t *testing.T) *GormCheckoutHandoffRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("migrate schema failed: %v", err)
	}
	return NewCheckoutHandoffRepository(db)
}

func newHandoff(no, sessionID string) *models.CheckoutHandoff {
	return &models.CheckoutHandoff{
		HandoffNo:   no,
		SessionID:   sessionID,
		Items:       `[{"productId":"p1","quantity":1}]`,
		ItemCount:   1,
		TotalAmount: models.NewMoneyFromMinor(1999, 2),
		Status:      "received",
	}
}

func TestCheckoutHandoffCreateIfAbsentIsIdempotent(t *testing.T) {
	repo := setupCheckoutHandoffRepositoryTest(t)

	created, err := repo.CreateIfAbsent(newHandoff("H-1", "s1"))
	if err != nil || !created {
		t.Fatalf("first create want created, got %v (%v)", created, err)
	}
	created, err = repo.CreateIfAbsent(newHandoff("H-1", "s1"))
	if err != nil {
		t.Fatalf("duplicate create failed: %v", err)
	}
	if created {
		t.Fatalf("duplicate handoff should not be created twice")
	}

	_, total, err := repo.List(CheckoutHandoffListFilter{SessionID: "s1"})
	if err != nil || total != 1 {
		t.Fatalf("want exactly one record, got %d (%v)", total, err)
	}

	if _, err := repo.CreateIfAbsent(newHandoff(" ", "s1")); err == nil {
		t.Fatalf("blank handoff no should be rejected")
	}
}

func TestCheckoutHandoffGetByHandoffNo(t *testing.T) {
	repo := setupCheckoutHandoffRepositoryTest(t)
	if _, err := repo.CreateIfAbsent(newHandoff("H-2", "s2")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := repo.GetByHandoffNo("H-2")
	if err != nil || got == nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SessionID != "s2" || got.TotalAmount.String() != "19.99" {
		t.Fatalf("unexpected record %+v (total %s)", got, got.TotalAmount.String())
	}

	missing, err := repo.GetByHandoffNo("nope")
	if err != nil || missing != nil {
		t.Fatalf("missing handoff want nil,nil got %v,%v", missing, err)
	}
}

func TestCheckoutHandoffListPagination(t *testing.T) {
	repo := setupCheckoutHandoffRepositoryTest(t)
	for i := 0; i < 5; i++ {
		if _, err := repo.CreateIfAbsent(newHandoff(fmt.Sprintf("H-%d", i), "s1")); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := repo.CreateIfAbsent(newHandoff("H-other", "s2")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, total, err := repo.List(CheckoutHandoffListFilter{SessionID: "s1", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("want total 5 and page size 2, got %d/%d", total, len(page))
	}
	if page[0].HandoffNo != "H-2" {
		t.Fatalf("page 2 should start at H-2 in id desc order, got %s", page[0].HandoffNo)
	}

	all, total, err := repo.List(CheckoutHandoffListFilter{})
	if err != nil || total != 6 || len(all) != 6 {
		t.Fatalf("unfiltered list want 6 got %d/%d (%v)", total, len(all), err)
	}
}
