package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"prepkit-store/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	// a single connection keeps the :memory: database alive and shared
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.Order{}, &model.PaymentEvent{}, &model.FulfillmentJob{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, o *model.Order) {
	t.Helper()
	if o.Status == "" {
		o.Status = model.OrderProcessing
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestUpsertPurchaseIsIdempotentPerOrderID(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first := &model.Order{OrderID: "order_1", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderProcessing}
	if err := repo.UpsertPurchase(ctx, db, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &model.Order{OrderID: "order_1", PaymentID: "pay_1", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderEmailSent}
	if err := repo.UpsertPurchase(ctx, db, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 order row, got %d", count)
	}

	got, err := repo.FindByOrderID(ctx, "order_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != model.OrderEmailSent || got.PaymentID != "pay_1" {
		t.Fatalf("upsert did not update: %+v", got)
	}
}

func TestListFilterPlanCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, &model.Order{OrderID: "order_1", Email: "a@b.com", PlanName: "JavaScript Interview Preparation Kit", Amount: 4900})
	seedOrder(t, db, &model.Order{OrderID: "order_2", Email: "c@d.com", PlanName: "DSA Interview Preparation Kit", Amount: 9900})

	orders, err := repo.List(ctx, OrderFilter{Plan: "js"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderID != "order_1" {
		t.Fatalf("expected the JavaScript order only, got %d rows", len(orders))
	}
}

func TestListSearchEmailCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, &model.Order{OrderID: "order_1", Email: "Alice@Example.com", PlanName: "JS Kit", Amount: 4900})
	seedOrder(t, db, &model.Order{OrderID: "order_2", Email: "bob@example.com", PlanName: "JS Kit", Amount: 4900})

	orders, err := repo.List(ctx, OrderFilter{Search: "ALICE"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderID != "order_1" {
		t.Fatalf("expected alice's order, got %d rows", len(orders))
	}
}

func TestListSortDeterministicTieBreak(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		seedOrder(t, db, &model.Order{
			OrderID:   fmt.Sprintf("order_%d", i),
			Email:     "a@b.com",
			PlanName:  "JS Kit",
			Amount:    4900,
			CreatedAt: created,
		})
	}

	orders, err := repo.List(ctx, OrderFilter{SortBy: "createdAt", SortOrder: "asc"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, o := range orders {
		want := fmt.Sprintf("order_%d", i+1)
		if o.OrderID != want {
			t.Fatalf("ties must break by insertion order: pos %d got %s", i, o.OrderID)
		}
	}
}

func TestListDateRangeInclusiveEnd(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, &model.Order{OrderID: "order_old", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900,
		CreatedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)})
	seedOrder(t, db, &model.Order{OrderID: "order_edge", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900,
		CreatedAt: time.Date(2026, 8, 10, 23, 30, 0, 0, time.UTC)})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	orders, err := repo.List(ctx, OrderFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// the end date is inclusive: [from, to+1day)
	if len(orders) != 1 || orders[0].OrderID != "order_edge" {
		t.Fatalf("expected only the order inside the range, got %d rows", len(orders))
	}
}

func TestDeleteByPrimaryKeyAndOrderIDFallback(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	first := &model.Order{OrderID: "order_1", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderProcessing}
	second := &model.Order{OrderID: "order_2", Email: "c@d.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderProcessing}
	seedOrder(t, db, first)
	seedOrder(t, db, second)

	if err := repo.Delete(ctx, fmt.Sprint(first.ID)); err != nil {
		t.Fatalf("delete by pk: %v", err)
	}
	if err := repo.Delete(ctx, "order_2"); err != nil {
		t.Fatalf("delete by gateway order id fallback: %v", err)
	}

	err := repo.Delete(ctx, "order_nope")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not-found for unknown id, got %v", err)
	}
}

func TestRecipientsDeduplicatesAndFiltersStatus(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, &model.Order{OrderID: "order_1", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderEmailSent})
	seedOrder(t, db, &model.Order{OrderID: "order_2", Email: "a@b.com", PlanName: "DSA Kit", Amount: 9900, Status: model.OrderEmailSent})
	seedOrder(t, db, &model.Order{OrderID: "order_3", Email: "c@d.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderProcessing})

	emails, err := repo.Recipients(ctx, "")
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}
	if len(emails) != 1 || emails[0] != "a@b.com" {
		t.Fatalf("expected deduplicated delivered buyers only, got %v", emails)
	}

	emails, err = repo.Recipients(ctx, "dsa")
	if err != nil {
		t.Fatalf("recipients with filter: %v", err)
	}
	if len(emails) != 1 || emails[0] != "a@b.com" {
		t.Fatalf("expected case-insensitive kit filter to match, got %v", emails)
	}

	emails, err = repo.Recipients(ctx, "golang")
	if err != nil {
		t.Fatalf("recipients with non-matching filter: %v", err)
	}
	if len(emails) != 0 {
		t.Fatalf("expected no recipients, got %v", emails)
	}
}

func TestAnalytics(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, &model.Order{OrderID: "order_1", Email: "a@b.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderEmailSent})
	seedOrder(t, db, &model.Order{OrderID: "order_2", Email: "c@d.com", PlanName: "JS Kit", Amount: 4900, Status: model.OrderEmailSent})
	seedOrder(t, db, &model.Order{OrderID: "order_3", Email: "e@f.com", PlanName: "DSA Kit", Amount: 9900, Status: model.OrderFailed})

	stats, err := repo.Analytics(ctx)
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}

	if stats.TotalOrders != 3 {
		t.Errorf("total orders = %d, want 3", stats.TotalOrders)
	}
	if stats.TotalRevenue != 4900+4900+9900 {
		t.Errorf("total revenue = %d", stats.TotalRevenue)
	}

	byPlan := map[string]PlanStat{}
	for _, p := range stats.ByPlan {
		byPlan[p.PlanName] = p
	}
	if byPlan["JS Kit"].Count != 2 || byPlan["JS Kit"].Revenue != 9800 {
		t.Errorf("JS Kit stats wrong: %+v", byPlan["JS Kit"])
	}

	byStatus := map[string]int64{}
	for _, s := range stats.ByStatus {
		byStatus[s.Status] = s.Count
	}
	if byStatus[model.OrderEmailSent] != 2 || byStatus[model.OrderFailed] != 1 {
		t.Errorf("status counts wrong: %v", byStatus)
	}

	if len(stats.ByDay) == 0 {
		t.Error("expected per-day counts for recent orders")
	}
}
