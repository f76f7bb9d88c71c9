package usecase

import (
	"context"

	"github.com/google/uuid"
)

type CategoryUC interface {
	CreateCategory(ctx context.Context, req *CreateCategoryReq) (*CategoryOutput, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error)
	ListCategories(ctx context.Context, req *ListCategoriesReq) (*ListCategoriesRes, error)
	UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*CategoryOutput, error)
	ActivateCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error)
	DeactivateCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ExportCategories(ctx context.Context) (*ExportCategoriesRes, error)
}
