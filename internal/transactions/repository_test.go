package transaction

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Component{}, &models.User{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	t.Cleanup(func() {
		conn.Exec("DELETE FROM transactions")
		conn.Exec("DELETE FROM components")
		conn.Exec("DELETE FROM users")
	})
	return conn
}

func TestListByComponentNewestFirst(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	comp := models.Component{Name: "LED Red 5mm", PartNumber: "LED-RED-5MM", Category: "LEDs", Quantity: 3, LowThreshold: 10}
	if err := conn.Create(&comp).Error; err != nil {
		t.Fatalf("creating component: %v", err)
	}
	actor := models.User{Username: "admin", Email: "admin@lab.local", PasswordHash: "hash", Role: "admin", IsActive: true}
	if err := conn.Create(&actor).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}

	quantities := []struct {
		kind     string
		change   int
		previous int
		next     int
	}{
		{kind: models.TransactionTypeAdd, change: 10, previous: 3, next: 13},
		{kind: models.TransactionTypeRemove, change: -5, previous: 13, next: 8},
		{kind: models.TransactionTypeSet, change: -3, previous: 8, next: 5},
	}
	for _, q := range quantities {
		if err := repo.Create(ctx, &models.Transaction{
			ComponentID:      comp.ID,
			UserID:           actor.ID,
			TransactionType:  q.kind,
			QuantityChange:   q.change,
			PreviousQuantity: q.previous,
			NewQuantity:      q.next,
		}); err != nil {
			t.Fatalf("creating %s entry: %v", q.kind, err)
		}
	}

	entries, total, err := repo.ListByComponent(ctx, comp.ID, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].TransactionType != models.TransactionTypeSet {
		t.Fatalf("expected newest entry first, got %s", entries[0].TransactionType)
	}
	if entries[2].TransactionType != models.TransactionTypeAdd {
		t.Fatalf("expected oldest entry last, got %s", entries[2].TransactionType)
	}
}

func TestListByComponentPaginates(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	repo := NewRepository(conn)

	comp := models.Component{Name: "Resistor", PartNumber: "RES-220-1/4W", Category: "Passive Components", Quantity: 100, LowThreshold: 20}
	if err := conn.Create(&comp).Error; err != nil {
		t.Fatalf("creating component: %v", err)
	}
	actor := models.User{Username: "tech", Email: "tech@lab.local", PasswordHash: "hash", Role: "user", IsActive: true}
	if err := conn.Create(&actor).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, &models.Transaction{
			ComponentID:      comp.ID,
			UserID:           actor.ID,
			TransactionType:  models.TransactionTypeAdd,
			QuantityChange:   1,
			PreviousQuantity: 100 + i,
			NewQuantity:      101 + i,
		}); err != nil {
			t.Fatalf("creating entry %d: %v", i, err)
		}
	}

	entries, total, err := repo.ListByComponent(ctx, comp.ID, pagination.Params{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries on page 2, got %d", len(entries))
	}
}
