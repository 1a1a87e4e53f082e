package component

import (
	"time"

	"github.com/openlims/lims-backend/pkg/db/models"
	"github.com/openlims/lims-backend/pkg/pagination"
)

// ComponentDTO is the component payload returned to clients.
type ComponentDTO struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	PartNumber   string    `json:"part_number"`
	Category     string    `json:"category"`
	Quantity     int       `json:"quantity"`
	Location     *string   `json:"location"`
	UnitPrice    *float64  `json:"unit_price"`
	LowThreshold int       `json:"low_threshold"`
	LowStock     bool      `json:"low_stock"`
	TotalValue   *float64  `json:"total_value"`
	Description  *string   `json:"description,omitempty"`
	Manufacturer *string   `json:"manufacturer,omitempty"`
	DatasheetURL *string   `json:"datasheet_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListResult is the component listing envelope.
type ListResult struct {
	Components    []ComponentDTO
	TotalCount    int64
	LowStockCount int64
	Page          pagination.Page
}

// TransactionDTO is one stock ledger entry returned to clients.
type TransactionDTO struct {
	ID               uint      `json:"id"`
	ComponentID      uint      `json:"component_id"`
	UserID           uint      `json:"user_id"`
	TransactionType  string    `json:"transaction_type"`
	QuantityChange   int       `json:"quantity_change"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Notes            *string   `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
}

// TransactionListResult is the ledger listing envelope.
type TransactionListResult struct {
	Transactions []TransactionDTO
	Total        int64
	Page         pagination.Page
}

func toComponentDTO(c models.Component) ComponentDTO {
	dto := ComponentDTO{
		ID:           c.ID,
		Name:         c.Name,
		PartNumber:   c.PartNumber,
		Category:     c.Category,
		Quantity:     c.Quantity,
		Location:     c.Location,
		LowThreshold: c.LowThreshold,
		LowStock:     c.IsLowStock(),
		Description:  c.Description,
		Manufacturer: c.Manufacturer,
		DatasheetURL: c.DatasheetURL,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.UnitPrice != nil {
		price := c.UnitPrice.InexactFloat64()
		dto.UnitPrice = &price
	}
	if total := c.TotalValue(); total != nil {
		value := total.InexactFloat64()
		dto.TotalValue = &value
	}
	return dto
}

func toComponentDTOs(items []models.Component) []ComponentDTO {
	dtos := make([]ComponentDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toComponentDTO(item))
	}
	return dtos
}

func toTransactionDTO(entry models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:               entry.ID,
		ComponentID:      entry.ComponentID,
		UserID:           entry.UserID,
		TransactionType:  entry.TransactionType,
		QuantityChange:   entry.QuantityChange,
		PreviousQuantity: entry.PreviousQuantity,
		NewQuantity:      entry.NewQuantity,
		Notes:            entry.Notes,
		CreatedAt:        entry.CreatedAt,
	}
}
