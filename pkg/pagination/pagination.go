package pagination

import (
	"github.com/openlims/lims-backend/pkg/config"
)

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any page query can request.
	MaxPerPage = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Page describes one resolved page of results.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// MaxFor returns the per-page ceiling for query validation, falling back to
// the package default when the config leaves it unset.
func MaxFor(cfg config.PaginationConfig) int {
	if cfg.MaxPerPage > 0 {
		return cfg.MaxPerPage
	}
	return MaxPerPage
}

// Normalize clamps the params against the configured limits.
func Normalize(params Params, cfg config.PaginationConfig) Params {
	perPageDefault := cfg.PerPage
	if perPageDefault <= 0 {
		perPageDefault = DefaultPerPage
	}
	perPageMax := cfg.MaxPerPage
	if perPageMax <= 0 {
		perPageMax = MaxPerPage
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = perPageDefault
	}
	if params.PerPage > perPageMax {
		params.PerPage = perPageMax
	}
	return params
}

// Offset returns the row offset for the params.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// NewPage builds the page envelope for a result set of total rows.
func NewPage(params Params, total int64) Page {
	totalPages := 0
	if params.PerPage > 0 {
		totalPages = int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	}
	return Page{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
