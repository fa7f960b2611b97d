package models

type LocationStatus string

const (
	LocationActive   LocationStatus = "active"
	LocationInactive LocationStatus = "inactive"
)

func (s LocationStatus) Valid() bool {
	return s == LocationActive || s == LocationInactive
}

// Location partitions every location-scoped table. Deleting it removes all
// dependents through the database cascades declared below.
type Location struct {
	Base
	Name     string         `gorm:"size:150;not null;uniqueIndex"`
	Currency string         `gorm:"size:3;not null;default:USD"`
	Type     string         `gorm:"size:50"`
	Address  string         `gorm:"size:255"`
	Phone    string         `gorm:"size:50"`
	Status   LocationStatus `gorm:"size:20;not null;default:active"`

	// Per-location sequences, only ever bumped with an atomic UPDATE.
	OrderSeq    int64 `gorm:"not null;default:0"`
	MenuItemSeq int64 `gorm:"not null;default:0"`

	MenuItems []MenuItem `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	Customers []Customer `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	Users     []User     `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	Orders    []Order    `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
	AuditLogs []AuditLog `gorm:"foreignKey:LocationID;constraint:OnDelete:CASCADE"`
}
