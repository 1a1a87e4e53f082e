package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openlims/lims-backend/api/middleware"
	"github.com/openlims/lims-backend/api/responses"
	"github.com/openlims/lims-backend/api/validators"
	component "github.com/openlims/lims-backend/internal/components"
	"github.com/openlims/lims-backend/pkg/config"
	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
	"github.com/openlims/lims-backend/pkg/logger"
	"github.com/openlims/lims-backend/pkg/pagination"
)

type componentListResponse struct {
	Success       bool                     `json:"success"`
	Components    []component.ComponentDTO `json:"components"`
	TotalCount    int64                    `json:"total_count"`
	LowStockCount int64                    `json:"low_stock_count"`
	Pagination    pagination.Page          `json:"pagination"`
}

type componentResponse struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message,omitempty"`
	Component component.ComponentDTO `json:"component"`
}

type transactionListResponse struct {
	Success      bool                       `json:"success"`
	Transactions []component.TransactionDTO `json:"transactions"`
	TotalCount   int64                      `json:"total_count"`
	Pagination   pagination.Page            `json:"pagination"`
}

type createComponentRequest struct {
	Name         string   `json:"name" validate:"required"`
	PartNumber   string   `json:"part_number" validate:"required"`
	Category     string   `json:"category" validate:"required"`
	Quantity     int      `json:"quantity" validate:"gte=0"`
	Location     *string  `json:"location"`
	UnitPrice    *float64 `json:"unit_price"`
	LowThreshold int      `json:"low_threshold" validate:"gte=0"`
	Description  *string  `json:"description"`
	Manufacturer *string  `json:"manufacturer"`
	DatasheetURL *string  `json:"datasheet_url"`
}

type adjustStockRequest struct {
	Type     string  `json:"type" validate:"required,oneof=add remove set"`
	Quantity int     `json:"quantity" validate:"gte=0"`
	Notes    *string `json:"notes"`
}

// ComponentsList serves the inventory listing with optional filters.
func ComponentsList(svc component.Service, logg *logger.Logger, pcfg config.PaginationConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", 0, 1, pagination.MaxFor(pcfg))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStock, err := validators.ParseQueryBool(r, "low_stock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), component.ListInput{
			Category: validators.ParseQueryString(r, "category"),
			Query:    validators.ParseQueryString(r, "q"),
			LowStock: lowStock,
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, componentListResponse{
			Success:       true,
			Components:    result.Components,
			TotalCount:    result.TotalCount,
			LowStockCount: result.LowStockCount,
			Pagination:    result.Page,
		})
	}
}

// ComponentGet serves one component by id.
func ComponentGet(svc component.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := componentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		found, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, componentResponse{Success: true, Component: *found})
	}
}

// ComponentCreate registers a new component.
func ComponentCreate(svc component.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createComponentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), component.CreateInput{
			Name:         body.Name,
			PartNumber:   body.PartNumber,
			Category:     body.Category,
			Quantity:     body.Quantity,
			Location:     body.Location,
			UnitPrice:    body.UnitPrice,
			LowThreshold: body.LowThreshold,
			Description:  body.Description,
			Manufacturer: body.Manufacturer,
			DatasheetURL: body.DatasheetURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, componentResponse{
			Success:   true,
			Message:   "Component created",
			Component: *created,
		})
	}
}

// ComponentStock applies an add/remove/set mutation and records it.
func ComponentStock(svc component.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := componentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adjustStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Authentication required"))
			return
		}

		updated, err := svc.AdjustStock(r.Context(), actorID, id, component.AdjustStockInput{
			Type:     body.Type,
			Quantity: body.Quantity,
			Notes:    body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, componentResponse{
			Success:   true,
			Message:   "Stock updated",
			Component: *updated,
		})
	}
}

// ComponentTransactions serves the stock ledger for a component.
func ComponentTransactions(svc component.Service, logg *logger.Logger, pcfg config.PaginationConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := componentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "per_page", 0, 1, pagination.MaxFor(pcfg))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListTransactions(r.Context(), id, pagination.Params{Page: page, PerPage: perPage})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactionListResponse{
			Success:      true,
			Transactions: result.Transactions,
			TotalCount:   result.Total,
			Pagination:   result.Page,
		})
	}
}

func componentID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "componentID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "Component not found")
	}
	return uint(id), nil
}
