package database

import (
	"fmt"

	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Sequence string

const (
	OrderSequence    Sequence = "order_seq"
	MenuItemSequence Sequence = "menu_item_seq"
)

// NextSequence increments a per-location counter and returns the new value.
// Call it with the transaction that uses the value: the UPDATE holds the
// location row lock until commit, so concurrent callers are serialized and a
// rollback gives the number back. Returns gorm.ErrRecordNotFound for an
// unknown location.
func NextSequence(tx *gorm.DB, locationID uuid.UUID, seq Sequence) (int64, error) {
	column := string(seq)
	if seq != OrderSequence && seq != MenuItemSequence {
		return 0, fmt.Errorf("unknown sequence %q", column)
	}

	res := tx.Model(&models.Location{}).
		Where("id = ?", locationID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var value int64
	if err := tx.Model(&models.Location{}).
		Where("id = ?", locationID).
		Pluck(column, &value).Error; err != nil {
		return 0, err
	}
	return value, nil
}
