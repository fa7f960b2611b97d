package order

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type Stats struct {
	Date             string
	TotalOrders      int64
	Received         int64
	Delivered        int64
	DeliveredRevenue decimal.Decimal
	ByStatus         map[models.OrderStatus]int64
}

// dayBounds returns [start, end) of the calendar day containing date, in
// the service timezone.
func (s *Service) dayBounds(date time.Time) (time.Time, time.Time) {
	d := date.In(s.tz)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.tz)
	return start, start.AddDate(0, 0, 1)
}

func (s *Service) dayQuery(db *gorm.DB, locationID uuid.UUID, date time.Time) *gorm.DB {
	start, end := s.dayBounds(date)
	return db.Model(&models.Order{}).
		Where("location_id = ? AND order_date >= ? AND order_date < ?", locationID, start.UTC(), end.UTC())
}

// Stats counts the orders placed on one day, by status, and sums the
// revenue of the delivered ones.
func (s *Service) Stats(ctx context.Context, locationID *uuid.UUID, date time.Time) (*Stats, error) {
	if locationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	var rows []struct {
		Status models.OrderStatus
		N      int64
		Total  decimal.Decimal
	}
	err := s.dayQuery(s.db.WithContext(ctx), *locationID, date).
		Select("status, COUNT(*) AS n, COALESCE(SUM(total_price), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	start, _ := s.dayBounds(date)
	st := &Stats{
		Date:             start.Format("2006-01-02"),
		DeliveredRevenue: decimal.Zero,
		ByStatus:         make(map[models.OrderStatus]int64, len(rows)),
	}
	for _, r := range rows {
		st.ByStatus[r.Status] = r.N
		st.TotalOrders += r.N
		switch r.Status {
		case models.OrderReceived:
			st.Received = r.N
		case models.OrderDelivered:
			st.Delivered = r.N
			st.DeliveredRevenue = r.Total.Round(2)
		}
	}
	return st, nil
}

var exportHeader = []any{
	"Order Number", "Order Date", "Status", "Customer", "Items", "Total", "Delivered At", "Notes",
}

// Export renders the orders of one day as an xlsx workbook with an Orders
// sheet and an Items sheet.
func (s *Service) Export(ctx context.Context, locationID *uuid.UUID, date time.Time) ([]byte, error) {
	if locationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	var orders []models.Order
	err := withItems(s.dayQuery(s.db.WithContext(ctx), *locationID, date)).
		Order("order_date ASC, order_number ASC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	buf, err := s.writeWorkbook(orders)
	if err != nil {
		return nil, apperr.Wrap(apperr.StorageFailure, "could not build the export", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) writeWorkbook(orders []models.Order) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const ordersSheet, itemsSheet = "Orders", "Items"
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(ordersSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	itemHeader := []any{"Order Number", "Menu Item", "Quantity", "Unit Price", "Total", "Notes"}
	if err := f.SetSheetRow(itemsSheet, "A1", &itemHeader); err != nil {
		return nil, err
	}

	total := decimal.Zero
	itemRow := 2
	for i, o := range orders {
		customer := ""
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		delivered := ""
		if o.DeliveredAt != nil {
			delivered = o.DeliveredAt.In(s.tz).Format("2006-01-02 15:04")
		}
		price, _ := o.TotalPrice.Round(2).Float64()
		row := []any{
			o.OrderNumber,
			o.OrderDate.In(s.tz).Format("2006-01-02 15:04"),
			string(o.Status),
			customer,
			len(o.Items),
			price,
			delivered,
			o.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return nil, err
		}
		total = total.Add(o.TotalPrice)

		for _, it := range o.Items {
			name := ""
			if it.MenuItem != nil {
				name = it.MenuItem.Name
			}
			unit, _ := it.UnitPrice.Float64()
			line, _ := it.TotalPrice.Float64()
			r := []any{o.OrderNumber, name, it.Quantity, unit, line, it.Notes}
			cell, err := excelize.CoordinatesToCellName(1, itemRow)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(itemsSheet, cell, &r); err != nil {
				return nil, err
			}
			itemRow++
		}
	}

	totalRow := len(orders) + 2
	sum, _ := total.Round(2).Float64()
	if err := f.SetCellValue(ordersSheet, fmt.Sprintf("E%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(ordersSheet, fmt.Sprintf("F%d", totalRow), sum); err != nil {
		return nil, err
	}

	for _, sheet := range []string{ordersSheet, itemsSheet} {
		if err := f.SetCellStyle(sheet, "A1", "H1", bold); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", "H", 18); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(ordersSheet, fmt.Sprintf("E%d", totalRow), fmt.Sprintf("F%d", totalRow), bold); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
