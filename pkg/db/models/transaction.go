package models

import "time"

// Transaction types recorded in the stock ledger.
const (
	TransactionTypeAdd    = "add"
	TransactionTypeRemove = "remove"
	TransactionTypeSet    = "set"
)

// ValidTransactionType reports whether value names a known ledger entry type.
func ValidTransactionType(value string) bool {
	switch value {
	case TransactionTypeAdd, TransactionTypeRemove, TransactionTypeSet:
		return true
	}
	return false
}

// Transaction is an immutable ledger entry for a stock quantity change.
type Transaction struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	ComponentID      uint      `gorm:"column:component_id;not null;index"`
	UserID           uint      `gorm:"column:user_id;not null"`
	TransactionType  string    `gorm:"column:transaction_type;type:varchar(20);not null"`
	QuantityChange   int       `gorm:"column:quantity_change;not null"`
	PreviousQuantity int       `gorm:"column:previous_quantity;not null"`
	NewQuantity      int       `gorm:"column:new_quantity;not null"`
	Notes            *string   `gorm:"column:notes;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`

	Component *Component `gorm:"foreignKey:ComponentID"`
	User      *User      `gorm:"foreignKey:UserID"`
}

func (Transaction) TableName() string { return "transactions" }
