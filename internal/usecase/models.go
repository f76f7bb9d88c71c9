package usecase

import (
	"math"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/google/uuid"
)

// CATEGORY USECASE

// CreateCategoryReq — запрос на создание категории.
// Description == nil означает, что описание не передано.
type CreateCategoryReq struct {
	Name        string
	Description *string
	IsActive    *bool
}

// UpdateCategoryReq — запрос на изменение категории.
// Nil-поля остаются без изменений.
type UpdateCategoryReq struct {
	ID          uuid.UUID
	Name        string
	Description *string
	IsActive    *bool
}

// ListCategoriesReq — параметры постраничного поиска категорий.
type ListCategoriesReq struct {
	Page    int
	PerPage int
	Search  string
	Sort    SortField
	Dir     SortDir
}

type SortField string

const (
	SortByName      SortField = "name"
	SortByCreatedAt SortField = "created_at"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 15
	MaxPerPage     = 100
	MaxPage        = math.MaxInt32
)

// ListCategoriesRes — страница категорий.
type ListCategoriesRes struct {
	Items   []CategoryOutput
	Total   int64
	Page    int
	PerPage int
}

// CategoryOutput — DTO категории для слоя доставки.
type CategoryOutput struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
}

// ExportCategoriesRes — результат выгрузки каталога в объектное хранилище.
type ExportCategoriesRes struct {
	Key   string
	Count int
}

// CategorySnapshot — JSON-представление категории в событиях и выгрузках.
type CategorySnapshot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryEventPayload — тело события об изменении категории.
type CategoryEventPayload struct {
	EventID    uuid.UUID        `json:"event_id"`
	EventType  OutboxEventType  `json:"event_type"`
	OccurredAt time.Time        `json:"occurred_at"`
	Category   CategorySnapshot `json:"category"`
}

// CategoryExport — содержимое файла выгрузки.
type CategoryExport struct {
	ExportedAt time.Time          `json:"exported_at"`
	Count      int                `json:"count"`
	Categories []CategorySnapshot `json:"categories"`
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	// Failed — конечный статус: событие исчерпало попытки или не может быть опубликовано.
	Failed OutboxStatus = "failed"
)

type OutboxEventType string

const (
	CategoryCreated     OutboxEventType = "category.created"
	CategoryUpdated     OutboxEventType = "category.updated"
	CategoryActivated   OutboxEventType = "category.activated"
	CategoryDeactivated OutboxEventType = "category.deactivated"
	CategoryDeleted     OutboxEventType = "category.deleted"
)

// OutboxEvent — запись таблицы outbox, ожидающая публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     uuid.UUID
	EventType   OutboxEventType
	AggregateID uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// INFRASTRUCTURE

// WriteRawMessageReq — готовое к отправке сообщение: ключ партиционирования, тип события и тело.
type WriteRawMessageReq struct {
	Key       string
	EventType string
	Payload   []byte
}

// MAPPERS

func NewCategoryOutput(category *domain.Category) *CategoryOutput {
	return &CategoryOutput{
		ID:          category.ID(),
		Name:        category.Name(),
		Description: category.Description(),
		IsActive:    category.IsActive(),
		CreatedAt:   category.CreatedAt(),
	}
}

func NewCategorySnapshot(category *domain.Category) CategorySnapshot {
	return CategorySnapshot{
		ID:          category.ID(),
		Name:        category.Name(),
		Description: category.Description(),
		IsActive:    category.IsActive(),
		CreatedAt:   category.CreatedAt(),
	}
}

func NewCreateCategoryReq(name string, description *string, isActive *bool) *CreateCategoryReq {
	return &CreateCategoryReq{
		Name:        name,
		Description: description,
		IsActive:    isActive,
	}
}

func NewUpdateCategoryReq(id uuid.UUID, name string, description *string, isActive *bool) *UpdateCategoryReq {
	return &UpdateCategoryReq{
		ID:          id,
		Name:        name,
		Description: description,
		IsActive:    isActive,
	}
}

func NewListCategoriesReq(page, perPage int, search string, sort SortField, dir SortDir) *ListCategoriesReq {
	return &ListCategoriesReq{
		Page:    page,
		PerPage: perPage,
		Search:  search,
		Sort:    sort,
		Dir:     dir,
	}
}

func NewListCategoriesRes(items []CategoryOutput, total int64, page, perPage int) *ListCategoriesRes {
	return &ListCategoriesRes{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}
}

func NewExportCategoriesRes(key string, count int) *ExportCategoriesRes {
	return &ExportCategoriesRes{
		Key:   key,
		Count: count,
	}
}

func NewWriteRawMessageReq(key, eventType string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}
