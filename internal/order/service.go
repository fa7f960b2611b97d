// Package order implements the order aggregate: header plus line items,
// per-location order numbers and the customer order counter.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/audit"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/database"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ItemInput struct {
	MenuItemID *uuid.UUID
	Quantity   *int
	UnitPrice  *decimal.Decimal
	Notes      string
}

type CreateInput struct {
	LocationID *uuid.UUID
	CustomerID *uuid.UUID
	Status     models.OrderStatus
	Notes      string
	OrderDate  *time.Time
	Items      []ItemInput
}

type Filter struct {
	LocationID *uuid.UUID
	Status     models.OrderStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Search     string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
	tz  *time.Location
	now func() time.Time
}

// NewService builds the order service. tz is the zone calendar days are cut
// in for stats and exports.
func NewService(db *gorm.DB, log *zap.Logger, tz *time.Location) *Service {
	if tz == nil {
		tz = time.Local
	}
	return &Service{db: db, log: log, tz: tz, now: time.Now}
}

func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%05d", seq)
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.MenuItem")
}

func scoped(db *gorm.DB, scope *uuid.UUID) *gorm.DB {
	if scope != nil {
		return db.Where("location_id = ?", *scope)
	}
	return db
}

func (s *Service) load(tx *gorm.DB, scope *uuid.UUID, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := withItems(scoped(tx, scope)).First(&o, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &o, nil
}

// buildItems applies the line defaults (quantity 1, unit price 0) and
// returns the rows with the order total.
func buildItems(in []ItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(in))
	total := decimal.Zero
	for i, it := range in {
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		if qty < 1 {
			return nil, decimal.Zero, apperr.Newf(apperr.Validation, "items[%d]: quantity must be at least 1", i)
		}
		price := decimal.Zero
		if it.UnitPrice != nil {
			price = it.UnitPrice.Round(2)
		}
		if price.IsNegative() {
			return nil, decimal.Zero, apperr.Newf(apperr.Validation, "items[%d]: unit_price cannot be negative", i)
		}

		line := price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(line)
		items = append(items, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Quantity:   qty,
			UnitPrice:  price,
			TotalPrice: line,
			Notes:      it.Notes,
			Position:   i,
		})
	}
	return items, total, nil
}

// checkLocationRefs makes sure the customer and every menu item belong to
// the order's location.
func checkLocationRefs(tx *gorm.DB, locationID uuid.UUID, customerID *uuid.UUID, items []models.OrderItem) error {
	if customerID != nil {
		var n int64
		if err := tx.Model(&models.Customer{}).
			Where("id = ? AND location_id = ?", *customerID, locationID).
			Count(&n).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		if n == 0 {
			return apperr.New(apperr.Validation, "customer_id does not reference a customer of this location")
		}
	}

	ids := make(map[uuid.UUID]struct{})
	for _, it := range items {
		if it.MenuItemID != nil {
			ids[*it.MenuItemID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil
	}
	list := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	var n int64
	if err := tx.Model(&models.MenuItem{}).
		Where("id IN ? AND location_id = ?", list, locationID).
		Count(&n).Error; err != nil {
		return apperr.FromDB(err, "menu item")
	}
	if int(n) != len(list) {
		return apperr.New(apperr.Validation, "menu_item_id does not reference a menu item of this location")
	}
	return nil
}

func bumpCustomer(tx *gorm.DB, customerID *uuid.UUID, delta int) error {
	if customerID == nil {
		return nil
	}
	q := tx.Model(&models.Customer{}).Where("id = ?", *customerID)
	if delta < 0 {
		q = q.Where("total_preps > 0")
	}
	if err := q.UpdateColumn("total_preps", gorm.Expr("total_preps + ?", delta)).Error; err != nil {
		return apperr.FromDB(err, "customer")
	}
	return nil
}

// Create stores the order, its items, the next order number and the
// customer counter bump in one transaction.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.Order, error) {
	if in.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}
	if len(in.Items) == 0 {
		return nil, apperr.New(apperr.EmptyOrder, "an order needs at least one item")
	}
	status := in.Status
	if status == "" {
		status = models.OrderReceived
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid order status %q", status)
	}
	items, total, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	o := models.Order{
		LocationID: *in.LocationID,
		CustomerID: in.CustomerID,
		Status:     status,
		TotalPrice: total,
		Notes:      in.Notes,
		OrderDate:  now,
	}
	if in.OrderDate != nil && !in.OrderDate.IsZero() {
		o.OrderDate = in.OrderDate.UTC()
	}
	if status == models.OrderDelivered {
		o.DeliveredAt = &now
	}
	if actor.UserID != uuid.Nil {
		createdBy := actor.UserID
		o.CreatedBy = &createdBy
	}

	var out *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkLocationRefs(tx, o.LocationID, o.CustomerID, items); err != nil {
			return err
		}
		seq, err := database.NextSequence(tx, o.LocationID, database.OrderSequence)
		if err != nil {
			return apperr.FromDB(err, "location")
		}
		o.OrderNumber = FormatOrderNumber(seq)

		if err := tx.Create(&o).Error; err != nil {
			return apperr.FromDB(err, "order")
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperr.FromDB(err, "order item")
		}
		if err := bumpCustomer(tx, o.CustomerID, 1); err != nil {
			return err
		}

		if out, err = s.load(tx, nil, o.ID); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &o.LocationID,
			Actor:       actor,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionCreate,
			Description: "order created: " + o.OrderNumber,
			After:       ToResponse(out),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", out.ID.String()),
		zap.String("order_number", out.OrderNumber),
		zap.String("location_id", out.LocationID.String()),
	)
	return out, nil
}

// UpdateStatus overwrites the status with any valid value; the transition
// graph is not enforced. delivered_at is stamped when the new status is
// delivered and is never cleared.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid order status %q", status)
	}

	var out *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := scoped(tx, scope).First(&o, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "order")
		}
		from := o.Status

		changes := map[string]any{"status": status}
		if status == models.OrderDelivered {
			changes["delivered_at"] = s.now().UTC()
		}
		if err := tx.Model(&o).Updates(changes).Error; err != nil {
			return apperr.FromDB(err, "order")
		}

		var err error
		if out, err = s.load(tx, nil, id); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &o.LocationID,
			Actor:       actor,
			EntityType:  "order",
			EntityID:    o.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("order %s status: %s -> %s", o.OrderNumber, from, status),
			Before:      map[string]any{"status": from},
			After:       map[string]any{"status": status, "delivered_at": out.DeliveredAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the order with its items and gives the customer's counter
// back.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, scope, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Order{}, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "order")
		}
		if err := bumpCustomer(tx, current.CustomerID, -1); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &current.LocationID,
			Actor:       actor,
			EntityType:  "order",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "order deleted: " + current.OrderNumber,
			Before:      ToResponse(current),
		})
	})
}

func (s *Service) Get(ctx context.Context, scope *uuid.UUID, id uuid.UUID) (*models.Order, error) {
	return s.load(s.db.WithContext(ctx), scope, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Order, error) {
	if f.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	q := withItems(s.db.WithContext(ctx).Model(&models.Order{})).Where("location_id = ?", *f.LocationID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("order_date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("order_date < ?", f.To.UTC())
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(order_number) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var list []models.Order
	if err := q.Order("order_date DESC, order_number DESC").Find(&list).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return list, nil
}
