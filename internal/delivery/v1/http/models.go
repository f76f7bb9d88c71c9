package http

import (
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/usecase"
)

// CreateCategoryRequest — тело запроса на создание категории.
type CreateCategoryRequest struct {
	Name        string  `json:"name" example:"Movie"`
	Description *string `json:"description" example:"Feature films"`
	IsActive    *bool   `json:"is_active,omitempty" example:"true"`
}

// UpdateCategoryRequest — тело запроса на изменение категории.
// Отсутствующее описание остаётся прежним.
type UpdateCategoryRequest struct {
	Name        string  `json:"name" example:"Movies"`
	Description *string `json:"description,omitempty" example:"All movies"`
	IsActive    *bool   `json:"is_active,omitempty" example:"false"`
}

type CategoryResponse struct {
	ID          string    `json:"id" example:"7b0f6c1e-5a5e-4b63-9a1a-0c0a4d5e9f10"`
	Name        string    `json:"name" example:"Movie"`
	Description string    `json:"description" example:"Feature films"`
	IsActive    bool      `json:"is_active" example:"true"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaginationMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"current_page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

type ListCategoriesResponse struct {
	Items []CategoryResponse `json:"data"`
	Meta  PaginationMeta     `json:"meta"`
}

type ExportCategoriesResponse struct {
	Key   string `json:"key" example:"categories/snapshot-20240305T102030Z.json"`
	Count int    `json:"count" example:"42"`
}

func NewCategoryResponse(out *usecase.CategoryOutput) *CategoryResponse {
	return &CategoryResponse{
		ID:          out.ID.String(),
		Name:        out.Name,
		Description: out.Description,
		IsActive:    out.IsActive,
		CreatedAt:   out.CreatedAt,
	}
}

func NewListCategoriesResponse(res *usecase.ListCategoriesRes) *ListCategoriesResponse {
	items := make([]CategoryResponse, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, *NewCategoryResponse(&res.Items[i]))
	}

	lastPage := 1
	if res.PerPage > 0 && res.Total > 0 {
		lastPage = int((res.Total + int64(res.PerPage) - 1) / int64(res.PerPage))
	}

	return &ListCategoriesResponse{
		Items: items,
		Meta: PaginationMeta{
			Total:    res.Total,
			Page:     res.Page,
			PerPage:  res.PerPage,
			LastPage: lastPage,
		},
	}
}

func NewExportCategoriesResponse(res *usecase.ExportCategoriesRes) *ExportCategoriesResponse {
	return &ExportCategoriesResponse{
		Key:   res.Key,
		Count: res.Count,
	}
}
