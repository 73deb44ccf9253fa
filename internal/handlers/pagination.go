package handlers

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/clinicpulse/clinicpulse/internal/httpx"
	"github.com/clinicpulse/clinicpulse/internal/models"
)

// SortDirection represents sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PaginationParams holds pagination and sorting query parameters
type PaginationParams struct {
	Page      int           `json:"page"`       // 1-indexed page number (default: 1)
	Per       int           `json:"per"`        // Items per page (default: 25, max: 100)
	Offset    int           `json:"-"`          // Index of the first item on the page
	SortBy    string        `json:"sort_by"`    // Defaults to the endpoint's first sort column
	SortOrder SortDirection `json:"sort_order"` // Sort direction: "asc" or "desc" (default: "asc")
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	Page       int   `json:"page"`
	Per        int   `json:"per"`
	Total      int64 `json:"total"`       // Items matching the filter across all pages
	TotalPages int   `json:"total_pages"` // Calculated total pages
	HasMore    bool  `json:"has_more"`    // Whether more pages exist
}

// PaginatedResponse wraps any list response with pagination metadata
type PaginatedResponse struct {
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    int            `json:"active_filters"`
}

// ValidSortColumns defines allowed sort columns per endpoint type
var ValidSortColumns = map[string][]string{
	"assets": {"name", "priority", "status", "last_updated"},
	"tasks":  {"due_date", "priority", "title"},
}

// ParsePaginationParams extracts and validates pagination from request
func ParsePaginationParams(c fiber.Ctx, endpointType string) PaginationParams {
	page := max(httpx.QueryInt(c, "page", 1), 1)
	per := min(max(httpx.QueryInt(c, "per", 25), 1), 100)
	offset := (page - 1) * per

	sortBy := strings.ToLower(httpx.QueryString(c, "sort_by", ""))
	sortOrder := SortDirection(strings.ToLower(httpx.QueryString(c, "sort_order", "asc")))

	if sortOrder != SortAsc && sortOrder != SortDesc {
		sortOrder = SortAsc
	}

	// Default to first valid column if invalid
	if validColumns, ok := ValidSortColumns[endpointType]; ok && !slices.Contains(validColumns, sortBy) {
		sortBy = validColumns[0]
	}

	return PaginationParams{
		Page:      page,
		Per:       per,
		Offset:    offset,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

// BuildPaginationMeta creates pagination metadata from query results
func BuildPaginationMeta(params PaginationParams, total int64) PaginationMeta {
	var totalPages int
	if total > 0 && params.Per > 0 {
		totalPages = int((total + int64(params.Per) - 1) / int64(params.Per))
	}
	hasMore := params.Page < totalPages

	return PaginationMeta{
		Page:       params.Page,
		Per:        params.Per,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    hasMore,
	}
}

// Paginate returns the page of items selected by params. Out-of-range pages are empty.
func Paginate[T any](items []T, params PaginationParams) []T {
	if params.Offset >= len(items) {
		return []T{}
	}
	end := min(params.Offset+params.Per, len(items))
	return items[params.Offset:end]
}

// NewPaginatedResponse pages data and wraps it with pagination metadata
func NewPaginatedResponse[T any](items []T, params PaginationParams, activeFilters int) PaginatedResponse {
	return PaginatedResponse{
		Data:       Paginate(items, params),
		Pagination: BuildPaginationMeta(params, int64(len(items))),
		Filters:    activeFilters,
	}
}

func priorityRank(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	case models.PriorityLow:
		return 2
	default:
		return 3
	}
}

func direction(order SortDirection, c int) int {
	if order == SortDesc {
		return -c
	}
	return c
}

// sortAssets orders assets in place; ties keep their stored order.
func sortAssets(assets []models.Asset, params PaginationParams) {
	slices.SortStableFunc(assets, func(a, b models.Asset) int {
		var c int
		switch params.SortBy {
		case "priority":
			c = cmp.Compare(priorityRank(a.Priority), priorityRank(b.Priority))
		case "status":
			c = cmp.Compare(a.Status, b.Status)
		case "last_updated":
			c = a.LastUpdated.Compare(b.LastUpdated)
		default:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		return direction(params.SortOrder, c)
	})
}

// sortTasks orders tasks in place; undated tasks sort after dated ones in either direction.
func sortTasks(tasks []models.Task, params PaginationParams) {
	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		switch params.SortBy {
		case "priority":
			return direction(params.SortOrder, cmp.Compare(priorityRank(a.Priority), priorityRank(b.Priority)))
		case "title":
			return direction(params.SortOrder, cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)))
		default:
			switch {
			case a.DueDate.IsZero() && b.DueDate.IsZero():
				return 0
			case a.DueDate.IsZero():
				return 1
			case b.DueDate.IsZero():
				return -1
			}
			return direction(params.SortOrder, a.DueDate.Compare(b.DueDate))
		}
	})
}
