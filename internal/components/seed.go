package component

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/logger"
)

func ptr[T any](v T) *T { return &v }

// SampleComponents returns the starter inventory loaded into empty databases.
func SampleComponents() []models.Component {
	return []models.Component{
		{
			Name:         "Arduino Uno R3",
			PartNumber:   "ARD-UNO-R3",
			Category:     "Microcontrollers",
			Quantity:     15,
			Location:     ptr("Shelf A1"),
			UnitPrice:    ptr(decimal.NewFromFloat(25.99)),
			LowThreshold: 5,
		},
		{
			Name:         "Resistor 220Ω",
			PartNumber:   "RES-220-1/4W",
			Category:     "Passive Components",
			Quantity:     100,
			Location:     ptr("Drawer B2"),
			UnitPrice:    ptr(decimal.NewFromFloat(0.05)),
			LowThreshold: 20,
		},
		{
			Name:         "LED Red 5mm",
			PartNumber:   "LED-RED-5MM",
			Category:     "LEDs",
			Quantity:     3,
			Location:     ptr("Drawer C1"),
			UnitPrice:    ptr(decimal.NewFromFloat(0.15)),
			LowThreshold: 10,
		},
	}
}

// SeedIfEmpty loads the sample inventory when the components table has no rows.
func SeedIfEmpty(ctx context.Context, conn *gorm.DB, logg *logger.Logger) error {
	repo := NewRepository(conn)

	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	samples := SampleComponents()
	if err := conn.WithContext(ctx).Create(&samples).Error; err != nil {
		return err
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "count", len(samples)), "inventory.seeded")
	}
	return nil
}
