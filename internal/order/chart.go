package order

import (
	"context"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

const maxChartPoints = 366

// defaultCount is how many buckets a period shows when the caller does not
// say.
func (p Period) defaultCount() int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

type ChartPoint struct {
	Label     string
	Orders    int64
	Delivered int64
	Revenue   decimal.Decimal
}

type Chart struct {
	Period       Period
	From         string
	To           string
	Points       []ChartPoint
	TotalOrders  int64
	TotalRevenue decimal.Decimal
}

// bucket returns the start of the period containing t, in the service
// timezone. Weeks start on Monday.
func (s *Service) bucket(p Period, t time.Time) time.Time {
	d := t.In(s.tz)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.tz)
	switch p {
	case PeriodWeekly:
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case PeriodMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, s.tz)
	}
	return day
}

func step(p Period, t time.Time, n int) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// Chart returns order counts and delivered revenue for the last count
// periods, the current one included. Empty periods are present with zeros.
func (s *Service) Chart(ctx context.Context, locationID *uuid.UUID, period Period, count int) (*Chart, error) {
	if locationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}
	if period == "" {
		period = PeriodDaily
	}
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
	default:
		return nil, apperr.Newf(apperr.Validation, "period must be daily, weekly or monthly, got %q", period)
	}
	if count == 0 {
		count = period.defaultCount()
	}
	if count < 0 || count > maxChartPoints {
		return nil, apperr.Newf(apperr.Validation, "count must be between 1 and %d", maxChartPoints)
	}

	current := s.bucket(period, s.now())
	start := step(period, current, -(count - 1))
	end := step(period, current, 1)

	var rows []struct {
		OrderDate  time.Time
		Status     models.OrderStatus
		TotalPrice decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("order_date, status, total_price").
		Where("location_id = ? AND order_date >= ? AND order_date < ?", *locationID, start.UTC(), end.UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.FromDB(err, "order")
	}

	chart := &Chart{
		Period:       period,
		From:         start.Format("2006-01-02"),
		To:           end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:       make([]ChartPoint, count),
		TotalRevenue: decimal.Zero,
	}
	index := make(map[time.Time]int, count)
	for i := 0; i < count; i++ {
		b := step(period, start, i)
		index[b] = i
		chart.Points[i] = ChartPoint{Label: b.Format("2006-01-02"), Revenue: decimal.Zero}
	}

	for _, r := range rows {
		i, ok := index[s.bucket(period, r.OrderDate)]
		if !ok {
			continue
		}
		pt := &chart.Points[i]
		pt.Orders++
		chart.TotalOrders++
		if r.Status == models.OrderDelivered {
			pt.Delivered++
			pt.Revenue = pt.Revenue.Add(r.TotalPrice)
			chart.TotalRevenue = chart.TotalRevenue.Add(r.TotalPrice)
		}
	}
	return chart, nil
}
