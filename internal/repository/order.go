package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"prepkit-store/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns is the allow-list of sortable fields; anything else falls back
// to created_at.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"amount":    "amount",
	"planName":  "plan_name",
	"email":     "email",
	"status":    "status",
}

type OrderFilter struct {
	Plan      string
	Status    string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string
	SortOrder string
}

type PlanStat struct {
	PlanName string `json:"planName"`
	Count    int64  `json:"count"`
	Revenue  int64  `json:"revenue"`
}

type StatusStat struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DayStat struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type Analytics struct {
	TotalOrders  int64        `json:"totalOrders"`
	TotalRevenue int64        `json:"totalRevenue"`
	ByPlan       []PlanStat   `json:"byPlan"`
	ByStatus     []StatusStat `json:"byStatus"`
	ByDay        []DayStat    `json:"byDay"`
}

type OrderRepository interface {
	UpsertPurchase(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	SetStatus(ctx context.Context, orderID, status, errorMessage string) error
	List(ctx context.Context, f OrderFilter) ([]*model.Order, error)
	Delete(ctx context.Context, id string) error
	Recipients(ctx context.Context, planFilter string) ([]string, error)
	DistinctPlans(ctx context.Context) ([]string, error)
	Analytics(ctx context.Context) (*Analytics, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) UpsertPurchase(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"payment_id": order.PaymentID,
			"email":      order.Email,
			"plan_name":  order.PlanName,
			"amount":     order.Amount,
			"status":     order.Status,
			"updated_at": time.Now(),
		}),
	}).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) SetStatus(ctx context.Context, orderID, status, errorMessage string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"updated_at":    time.Now(),
		}).Error
}

func (r *orderRepoImpl) List(ctx context.Context, f OrderFilter) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.Plan != "" {
		q = q.Where("LOWER(plan_name) LIKE ?", "%"+strings.ToLower(f.Plan)+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.DateFrom != nil {
		q = q.Where("created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		// inclusive end date: [from, to+1day)
		q = q.Where("created_at < ?", f.DateTo.AddDate(0, 0, 1))
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "desc"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "asc"
	}

	var orders []*model.Order
	err := q.Order(column + " " + direction).
		Order("id asc"). // deterministic tie-break by insertion order
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// Delete removes an order by store primary key, falling back to the gateway
// order id when the value is not a known primary key.
func (r *orderRepoImpl) Delete(ctx context.Context, id string) error {
	if pk, err := strconv.ParseUint(id, 10, 64); err == nil {
		res := r.db.WithContext(ctx).Delete(&model.Order{}, pk)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}

	res := r.db.WithContext(ctx).Where("order_id = ?", id).Delete(&model.Order{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Recipients returns the de-duplicated emails of buyers whose order reached
// email_sent, optionally narrowed by a case-insensitive plan substring.
func (r *orderRepoImpl) Recipients(ctx context.Context, planFilter string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", model.OrderEmailSent)

	if planFilter != "" {
		q = q.Where("LOWER(plan_name) LIKE ?", "%"+strings.ToLower(planFilter)+"%")
	}

	var emails []string
	err := q.Distinct().Order("email asc").Pluck("email", &emails).Error
	if err != nil {
		return nil, err
	}

	return emails, nil
}

func (r *orderRepoImpl) DistinctPlans(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Distinct().Order("plan_name asc").
		Pluck("plan_name", &names).Error

	if err != nil {
		return nil, err
	}

	return names, nil
}

func (r *orderRepoImpl) Analytics(ctx context.Context) (*Analytics, error) {
	var stats Analytics

	if err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("plan_name, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue").
		Group("plan_name").
		Order("count desc").
		Scan(&stats.ByPlan).Error
	if err != nil {
		return nil, err
	}
	for _, p := range stats.ByPlan {
		stats.TotalRevenue += p.Revenue
	}

	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&stats.ByStatus).Error
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -30)
	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("day asc").
		Scan(&stats.ByDay).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
