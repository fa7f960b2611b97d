package ingredient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportResult reports what a spreadsheet import created and which rows
// were skipped.
type ImportResult struct {
	Created   int
	Skipped   []string
	Unmatched []string
}

// importColumns is the expected sheet layout; the header row is optional.
// Category is only needed when a food type name exists in more than one
// category.
var importColumns = []string{"Name", "Food Type", "Quantity", "Grams", "Price", "Category"}

type importRow struct {
	line     int
	name     string
	foodType string
	category string
	tier     QuantityInput
}

// foodTypeIndex resolves a sheet's food type (and optional category) to one
// food type.
type foodTypeIndex map[string][]models.FoodType

func (idx foodTypeIndex) resolve(row *importRow) (*models.FoodType, string) {
	var found []models.FoodType
	for _, ft := range idx[normalizeName(row.foodType)] {
		if row.category != "" && (ft.FoodCategory == nil || normalizeName(ft.FoodCategory.Name) != normalizeName(row.category)) {
			continue
		}
		found = append(found, ft)
	}
	switch len(found) {
	case 0:
		return nil, ""
	case 1:
		return &found[0], ""
	}
	return nil, fmt.Sprintf("row %d: food type %q exists in several categories, fill the Category column", row.line, row.foodType)
}

// skipReason is the client-facing text for a failed create. Storage errors
// are logged and reported without their details.
func (s *Service) skipReason(line int, name string, err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.StorageFailure {
		return fmt.Sprintf("row %d: %s: %s", line, name, ae.Message)
	}
	s.log.Error("ingredient import row failed",
		zap.Int("row", line),
		zap.String("name", name),
		zap.Error(err),
	)
	return fmt.Sprintf("row %d: %s: could not be saved", line, name)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Import reads the first sheet of an xlsx workbook and creates one
// ingredient per (name, food type) pair, with one tier per row. Every
// ingredient is created in its own transaction so a bad row only skips its
// ingredient.
func (s *Service) Import(ctx context.Context, actor auth.Principal, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not read the workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.New(apperr.Validation, "the workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "could not read the first sheet", err)
	}
	first := 1
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), importColumns[0]) {
		rows, first = rows[1:], 2
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.Validation, "the sheet is empty")
	}

	var types []models.FoodType
	if err := s.db.WithContext(ctx).Preload("FoodCategory").Find(&types).Error; err != nil {
		return nil, apperr.FromDB(err, "food type")
	}
	index := make(foodTypeIndex, len(types))
	for _, ft := range types {
		key := normalizeName(ft.Name)
		index[key] = append(index[key], ft)
	}

	type group struct {
		foodTypeID uuid.UUID
		rows       []importRow
	}
	res := &ImportResult{}
	groups := make(map[string]*group)
	var order []string
	for i, cells := range rows {
		row, err := parseImportRow(i+first, cells)
		if err != nil {
			res.Skipped = append(res.Skipped, err.Error())
			continue
		}
		if row == nil {
			continue
		}
		ft, ambiguous := index.resolve(row)
		if ambiguous != "" {
			res.Skipped = append(res.Skipped, ambiguous)
			continue
		}
		if ft == nil {
			label := row.foodType
			if row.category != "" {
				label = row.category + " / " + row.foodType
			}
			res.Unmatched = append(res.Unmatched, fmt.Sprintf("row %d: %s", row.line, label))
			continue
		}
		key := normalizeName(row.name) + "\x00" + ft.ID.String()
		g, seen := groups[key]
		if !seen {
			g = &group{foodTypeID: ft.ID}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, *row)
	}

	for _, key := range order {
		g := groups[key]
		name := g.rows[0].name
		tiers := make([]QuantityInput, 0, len(g.rows))
		for _, row := range g.rows {
			tiers = append(tiers, row.tier)
		}

		_, err := s.Create(ctx, actor, CreateInput{
			FoodTypeID: &g.foodTypeID,
			Name:       &name,
			Quantities: tiers,
		})
		if err != nil {
			res.Skipped = append(res.Skipped, s.skipReason(g.rows[0].line, name, err))
			continue
		}
		res.Created++
	}

	s.log.Info("ingredients imported",
		zap.Int("created", res.Created),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("unmatched", len(res.Unmatched)),
	)
	return res, nil
}

// parseImportRow returns nil for blank rows.
func parseImportRow(line int, cells []string) (*importRow, error) {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	row := &importRow{line: line, name: get(0), foodType: get(1), category: get(5)}
	if row.name == "" && row.foodType == "" {
		return nil, nil
	}
	if row.name == "" || row.foodType == "" {
		return nil, fmt.Errorf("row %d: name and food type are required", line)
	}

	row.tier.Quantity = get(2)
	if row.tier.Quantity == "" {
		return nil, fmt.Errorf("row %d: quantity is required", line)
	}
	if g := get(3); g != "" {
		grams, err := decimal.NewFromString(g)
		if err != nil {
			return nil, fmt.Errorf("row %d: grams %q is not a number", line, g)
		}
		row.tier.QuantityGrams = &grams
	}
	if p := get(4); p != "" {
		price, err := decimal.NewFromString(p)
		if err != nil {
			return nil, fmt.Errorf("row %d: price %q is not a number", line, p)
		}
		row.tier.Price = price
	}
	return row, nil
}
