package converter

import (
	"github.com/DRSN-tech/catalog-backend/internal/domain"
)

type CategoryConverter interface {
	ToRedisModel(entity *domain.Category) *CategoryRedisModel
	ToEntity(model *CategoryRedisModel) *domain.Category
}

type CategoryConverterImpl struct{}

func NewCategoryConverterImpl() *CategoryConverterImpl {
	return &CategoryConverterImpl{}
}

func (c *CategoryConverterImpl) ToRedisModel(entity *domain.Category) *CategoryRedisModel {
	if entity == nil {
		return nil
	}

	return &CategoryRedisModel{
		ID:          entity.ID(),
		Name:        entity.Name(),
		Description: entity.Description(),
		IsActive:    entity.IsActive(),
		CreatedAt:   entity.CreatedAt(),
	}
}

func (c *CategoryConverterImpl) ToEntity(model *CategoryRedisModel) *domain.Category {
	if model == nil {
		return nil
	}

	return domain.RestoreCategory(model.ID, model.Name, model.Description, model.IsActive, model.CreatedAt)
}
