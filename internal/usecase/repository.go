package usecase

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	List(ctx context.Context, req *ListCategoriesReq) ([]*domain.Category, int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
	// ReturnToPending возвращает событие в очередь, не тратя попытку.
	ReturnToPending(ctx context.Context, id int64) error
	MarkAsDead(ctx context.Context, id int64) error
}

// CacheRepository кэширует категории. GetCategory возвращает (nil, nil) при промахе.
type CacheRepository interface {
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	SetCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}
