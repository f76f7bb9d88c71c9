package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
)

const exportPageSize = MaxPerPage

// CategoryUseCase реализует бизнес-логику управления категориями каталога.
// Все изменения агрегата выполняются в транзакции вместе с записью события в outbox.
type CategoryUseCase struct {
	categoryRepo  CategoryRepository
	outboxRepo    OutboxRepository
	cacheRepo     CacheRepository
	exportStorage ExportStorage
	trManager     TxManager
	logger        logger.Logger
	now           func() time.Time
}

func NewCategoryUC(
	categoryRepo CategoryRepository,
	outboxRepo OutboxRepository,
	cacheRepo CacheRepository,
	exportStorage ExportStorage,
	trManager TxManager,
	logger logger.Logger,
) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo:  categoryRepo,
		outboxRepo:    outboxRepo,
		cacheRepo:     cacheRepo,
		exportStorage: exportStorage,
		trManager:     trManager,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateCategory создаёт категорию и событие category.created в одной транзакции.
func (c *CategoryUseCase) CreateCategory(ctx context.Context, req *CreateCategoryReq) (*CategoryOutput, error) {
	const op = "CategoryUseCase.CreateCategory"

	var opts []domain.CategoryOption
	if req.IsActive != nil {
		opts = append(opts, domain.WithIsActive(*req.IsActive))
	}

	category, err := domain.NewCategory(req.Name, req.Description, opts...)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = c.trManager.Do(ctx, func(ctx context.Context) error {
		if err := c.categoryRepo.Create(ctx, category); err != nil {
			return err
		}

		return c.addEvent(ctx, CategoryCreated, category)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewCategoryOutput(category), nil
}

// GetCategory возвращает категорию из кэша, при промахе читает из БД и прогревает кэш.
func (c *CategoryUseCase) GetCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error) {
	const op = "CategoryUseCase.GetCategory"

	cached, err := c.cacheRepo.GetCategory(ctx, id)
	if err != nil {
		c.logger.Warnf("category cache read failed: %v", e.Wrap(op, err))
	}
	if cached != nil {
		return NewCategoryOutput(cached), nil
	}

	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := c.cacheRepo.SetCategory(ctx, category); err != nil {
		c.logger.Warnf("category cache write failed: %v", e.Wrap(op, err))
	}

	return NewCategoryOutput(category), nil
}

// ListCategories возвращает страницу категорий с учётом поиска и сортировки.
func (c *CategoryUseCase) ListCategories(ctx context.Context, req *ListCategoriesReq) (*ListCategoriesRes, error) {
	const op = "CategoryUseCase.ListCategories"

	query, err := normalizeListReq(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	categories, total, err := c.categoryRepo.List(ctx, query)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	items := make([]CategoryOutput, 0, len(categories))
	for _, category := range categories {
		items = append(items, *NewCategoryOutput(category))
	}

	return NewListCategoriesRes(items, total, query.Page, query.PerPage), nil
}

// UpdateCategory меняет имя и описание. Если задан IsActive, меняет и статус категории.
func (c *CategoryUseCase) UpdateCategory(ctx context.Context, req *UpdateCategoryReq) (*CategoryOutput, error) {
	const op = "CategoryUseCase.UpdateCategory"

	out, err := c.mutate(ctx, req.ID, CategoryUpdated, func(category *domain.Category) error {
		if err := category.Update(req.Name, req.Description); err != nil {
			return err
		}

		if req.IsActive == nil {
			return nil
		}
		if *req.IsActive {
			return category.Activate()
		}
		return category.Deactivate()
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return out, nil
}

func (c *CategoryUseCase) ActivateCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error) {
	const op = "CategoryUseCase.ActivateCategory"

	out, err := c.mutate(ctx, id, CategoryActivated, (*domain.Category).Activate)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return out, nil
}

func (c *CategoryUseCase) DeactivateCategory(ctx context.Context, id uuid.UUID) (*CategoryOutput, error) {
	const op = "CategoryUseCase.DeactivateCategory"

	out, err := c.mutate(ctx, id, CategoryDeactivated, (*domain.Category).Deactivate)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return out, nil
}

// DeleteCategory удаляет категорию и публикует category.deleted со снимком удалённой записи.
func (c *CategoryUseCase) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "CategoryUseCase.DeleteCategory"

	err := c.trManager.Do(ctx, func(ctx context.Context) error {
		category, err := c.categoryRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := c.categoryRepo.Delete(ctx, id); err != nil {
			return err
		}

		return c.addEvent(ctx, CategoryDeleted, category)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	c.invalidateCache(ctx, id)
	return nil
}

// ExportCategories выгружает все категории одним JSON-файлом в объектное хранилище.
func (c *CategoryUseCase) ExportCategories(ctx context.Context) (*ExportCategoriesRes, error) {
	const op = "CategoryUseCase.ExportCategories"

	snapshots := make([]CategorySnapshot, 0)
	for page := DefaultPage; ; page++ {
		categories, total, err := c.categoryRepo.List(ctx, NewListCategoriesReq(page, exportPageSize, "", SortByCreatedAt, SortAsc))
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		for _, category := range categories {
			snapshots = append(snapshots, NewCategorySnapshot(category))
		}

		if len(categories) < exportPageSize || int64(len(snapshots)) >= total {
			break
		}
	}

	exportedAt := c.now().UTC()
	data, err := json.Marshal(CategoryExport{
		ExportedAt: exportedAt,
		Count:      len(snapshots),
		Categories: snapshots,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	name := fmt.Sprintf("snapshot-%s.json", exportedAt.Format("20060102T150405Z"))
	key, err := c.exportStorage.Upload(ctx, name, data, "application/json")
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("exported %d categories to %s", len(snapshots), key)
	return NewExportCategoriesRes(key, len(snapshots)), nil
}

// mutate загружает категорию с блокировкой строки, применяет fn и сохраняет результат.
// Ошибка fn откатывает транзакцию, поэтому невалидное состояние не попадает в БД.
func (c *CategoryUseCase) mutate(
	ctx context.Context,
	id uuid.UUID,
	eventType OutboxEventType,
	fn func(category *domain.Category) error,
) (*CategoryOutput, error) {
	var category *domain.Category
	err := c.trManager.Do(ctx, func(ctx context.Context) error {
		var err error
		category, err = c.categoryRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := fn(category); err != nil {
			return err
		}

		if err := c.categoryRepo.Update(ctx, category); err != nil {
			return err
		}

		return c.addEvent(ctx, eventType, category)
	})
	if err != nil {
		return nil, err
	}

	c.invalidateCache(ctx, id)
	return NewCategoryOutput(category), nil
}

// addEvent записывает событие в outbox в рамках текущей транзакции.
func (c *CategoryUseCase) addEvent(ctx context.Context, eventType OutboxEventType, category *domain.Category) error {
	eventID := uuid.New()
	occurredAt := c.now().UTC()

	payload, err := json.Marshal(CategoryEventPayload{
		EventID:    eventID,
		EventType:  eventType,
		OccurredAt: occurredAt,
		Category:   NewCategorySnapshot(category),
	})
	if err != nil {
		return err
	}

	_, err = c.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: category.ID(),
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   occurredAt,
	})
	return err
}

// invalidateCache удаляет категорию из кэша. Ошибка только логируется: запись истечёт по TTL.
func (c *CategoryUseCase) invalidateCache(ctx context.Context, id uuid.UUID) {
	if err := c.cacheRepo.DeleteCategory(ctx, id); err != nil {
		c.logger.Warnf("failed to invalidate category %s in cache: %v", id, err)
	}
}

// normalizeListReq подставляет значения по умолчанию и проверяет параметры выборки.
func normalizeListReq(req *ListCategoriesReq) (*ListCategoriesReq, error) {
	query := *req

	// Верхняя граница Page держит OFFSET в пределах int32, как и в gRPC.
	if query.Page < 0 || query.Page > MaxPage || query.PerPage < 0 || query.PerPage > MaxPerPage {
		return nil, e.ErrInvalidPagination
	}
	if query.Page == 0 {
		query.Page = DefaultPage
	}
	if query.PerPage == 0 {
		query.PerPage = DefaultPerPage
	}

	switch SortField(strings.ToLower(string(query.Sort))) {
	case "", SortByName:
		query.Sort = SortByName
	case SortByCreatedAt:
		query.Sort = SortByCreatedAt
	default:
		return nil, e.Wrap(fmt.Sprintf("sort: %s", query.Sort), e.ErrInvalidPagination)
	}

	switch SortDir(strings.ToLower(string(query.Dir))) {
	case "", SortAsc:
		query.Dir = SortAsc
	case SortDesc:
		query.Dir = SortDesc
	default:
		return nil, e.Wrap(fmt.Sprintf("dir: %s", query.Dir), e.ErrInvalidPagination)
	}

	query.Search = strings.TrimSpace(query.Search)
	return &query, nil
}
