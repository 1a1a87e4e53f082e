package component

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	transaction "github.com/openlims/lims-backend/internal/transactions"
	"github.com/openlims/lims-backend/pkg/config"
	"github.com/openlims/lims-backend/pkg/db"
	"github.com/openlims/lims-backend/pkg/db/models"
	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
	"github.com/openlims/lims-backend/pkg/pagination"
)

// Service exposes inventory management operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id uint) (*ComponentDTO, error)
	Create(ctx context.Context, input CreateInput) (*ComponentDTO, error)
	AdjustStock(ctx context.Context, actorID, componentID uint, input AdjustStockInput) (*ComponentDTO, error)
	ListTransactions(ctx context.Context, componentID uint, params pagination.Params) (*TransactionListResult, error)
}

// ListInput holds the listing filters and page selection.
type ListInput struct {
	Category string
	Query    string
	LowStock *bool
	Page     int
	PerPage  int
}

// CreateInput holds the validated payload to create a component.
type CreateInput struct {
	Name         string
	PartNumber   string
	Category     string
	Quantity     int
	Location     *string
	UnitPrice    *float64
	LowThreshold int
	Description  *string
	Manufacturer *string
	DatasheetURL *string
}

// AdjustStockInput describes one stock mutation.
type AdjustStockInput struct {
	Type     string
	Quantity int
	Notes    *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   *Repository
	ledger *transaction.Repository
	tx     txRunner
	pcfg   config.PaginationConfig
}

// NewService wires the inventory service.
func NewService(repo *Repository, ledger *transaction.Repository, tx txRunner, pcfg config.PaginationConfig) Service {
	return &service{repo: repo, ledger: ledger, tx: tx, pcfg: pcfg}
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := pagination.Normalize(pagination.Params{Page: input.Page, PerPage: input.PerPage}, s.pcfg)

	items, total, lowStock, err := s.repo.List(ctx, ListFilter{
		Category: input.Category,
		Query:    input.Query,
		LowStock: input.LowStock,
	}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list components")
	}

	return &ListResult{
		Components:    toComponentDTOs(items),
		TotalCount:    total,
		LowStockCount: lowStock,
		Page:          pagination.NewPage(params, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uint) (*ComponentDTO, error) {
	found, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load component")
	}
	if found == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Component not found")
	}
	dto := toComponentDTO(*found)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ComponentDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	record := models.Component{
		Name:         strings.TrimSpace(input.Name),
		PartNumber:   strings.TrimSpace(input.PartNumber),
		Category:     strings.TrimSpace(input.Category),
		Quantity:     input.Quantity,
		Location:     input.Location,
		LowThreshold: input.LowThreshold,
		Description:  input.Description,
		Manufacturer: input.Manufacturer,
		DatasheetURL: input.DatasheetURL,
	}
	if input.UnitPrice != nil {
		price := decimal.NewFromFloat(*input.UnitPrice).Round(2)
		record.UnitPrice = &price
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err,
				fmt.Sprintf("Component with part number %q already exists", record.PartNumber))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create component")
	}

	dto := toComponentDTO(record)
	return &dto, nil
}

func (s *service) AdjustStock(ctx context.Context, actorID, componentID uint, input AdjustStockInput) (*ComponentDTO, error) {
	if !models.ValidTransactionType(input.Type) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Transaction type must be add, remove or set")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must not be negative")
	}
	if input.Quantity == 0 && input.Type != models.TransactionTypeSet {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Quantity must be positive")
	}

	var result ComponentDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByIDForUpdate(ctx, componentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load component")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Component not found")
		}

		previous := current.Quantity
		next, err := nextQuantity(previous, input)
		if err != nil {
			return err
		}

		if err := repo.UpdateQuantity(ctx, componentID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quantity")
		}

		entry := models.Transaction{
			ComponentID:      componentID,
			UserID:           actorID,
			TransactionType:  input.Type,
			QuantityChange:   next - previous,
			PreviousQuantity: previous,
			NewQuantity:      next,
			Notes:            input.Notes,
		}
		if err := s.ledger.WithTx(tx).Create(ctx, &entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record transaction")
		}

		current.Quantity = next
		result = toComponentDTO(*current)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) ListTransactions(ctx context.Context, componentID uint, params pagination.Params) (*TransactionListResult, error) {
	found, err := s.repo.FindByID(ctx, componentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load component")
	}
	if found == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Component not found")
	}

	params = pagination.Normalize(params, s.pcfg)
	entries, total, err := s.ledger.ListByComponent(ctx, componentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}

	dtos := make([]TransactionDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, toTransactionDTO(entry))
	}
	return &TransactionListResult{
		Transactions: dtos,
		Total:        total,
		Page:         pagination.NewPage(params, total),
	}, nil
}

func nextQuantity(previous int, input AdjustStockInput) (int, error) {
	switch input.Type {
	case models.TransactionTypeAdd:
		return previous + input.Quantity, nil
	case models.TransactionTypeRemove:
		next := previous - input.Quantity
		if next < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("Cannot remove %d units, only %d in stock", input.Quantity, previous))
		}
		return next, nil
	case models.TransactionTypeSet:
		return input.Quantity, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "Transaction type must be add, remove or set")
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Name is required")
	}
	if strings.TrimSpace(input.PartNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Part number is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Category is required")
	}
	if input.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Quantity must not be negative")
	}
	if input.LowThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Low stock threshold must not be negative")
	}
	if input.UnitPrice != nil && *input.UnitPrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Unit price must not be negative")
	}
	return nil
}
