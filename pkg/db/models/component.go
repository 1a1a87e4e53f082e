package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component represents an electronic part tracked by the inventory.
type Component struct {
	ID           uint             `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string           `gorm:"column:name;type:varchar(255);not null;index"`
	PartNumber   string           `gorm:"column:part_number;type:varchar(100);not null;uniqueIndex"`
	Category     string           `gorm:"column:category;type:varchar(100);not null;index"`
	Quantity     int              `gorm:"column:quantity;not null;default:0;check:quantity >= 0"`
	Location     *string          `gorm:"column:location;type:varchar(100)"`
	UnitPrice    *decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);check:unit_price >= 0"`
	LowThreshold int              `gorm:"column:low_threshold;not null;default:0;check:low_threshold >= 0"`
	Description  *string          `gorm:"column:description;type:text"`
	Manufacturer *string          `gorm:"column:manufacturer;type:varchar(100)"`
	DatasheetURL *string          `gorm:"column:datasheet_url;type:varchar(500)"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Component) TableName() string { return "components" }

// IsLowStock reports whether the quantity sits at or below the threshold.
func (c Component) IsLowStock() bool {
	return c.Quantity <= c.LowThreshold
}

// TotalValue returns quantity * unit_price, or nil when no price is set.
func (c Component) TotalValue() *decimal.Decimal {
	if c.UnitPrice == nil {
		return nil
	}
	total := c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
	return &total
}
