package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	CategoryNameMinLength        = 3
	CategoryNameMaxLength        = 255
	CategoryDescriptionMaxLength = 10_000
)

const (
	MsgNameRequired        = "Name should not be empty or null"
	MsgNameTooShort        = "Name should has at least 3 characters"
	MsgNameTooLong         = "Name should has less then 255 characters"
	MsgDescriptionRequired = "Description should not be empty or null"
	MsgDescriptionTooLong  = "Description should has less then 10.000 characters"
)

// Category описывает категорию каталога.
// Экземпляр всегда валиден: конструктор и все мутаторы проверяют инварианты до фиксации изменений.
// Category не потокобезопасна, синхронизация остаётся за слоем приложения.
type Category struct {
	AggregateRoot
	name        string
	description string
	isActive    bool
}

// CategoryOption настраивает необязательные параметры NewCategory.
type CategoryOption func(*categoryOptions)

type categoryOptions struct {
	isActive bool
}

// WithIsActive задаёт начальный статус категории. По умолчанию категория активна.
func WithIsActive(isActive bool) CategoryOption {
	return func(o *categoryOptions) {
		o.isActive = isActive
	}
}

// NewCategory создаёт категорию и проверяет её инварианты.
// description == nil трактуется как отсутствующее описание и не проходит валидацию.
func NewCategory(name string, description *string, opts ...CategoryOption) (*Category, error) {
	options := categoryOptions{isActive: true}
	for _, opt := range opts {
		opt(&options)
	}

	if err := validateCategory(name, description); err != nil {
		return nil, err
	}

	return &Category{
		AggregateRoot: NewAggregateRoot(),
		name:          name,
		description:   *description,
		isActive:      options.isActive,
	}, nil
}

// RestoreCategory восстанавливает категорию из хранилища без повторной валидации.
func RestoreCategory(id uuid.UUID, name, description string, isActive bool, createdAt time.Time) *Category {
	return &Category{
		AggregateRoot: RestoreAggregateRoot(id, createdAt),
		name:          name,
		description:   description,
		isActive:      isActive,
	}
}

func (c *Category) Name() string {
	return c.name
}

func (c *Category) Description() string {
	return c.description
}

func (c *Category) IsActive() bool {
	return c.isActive
}

func (c *Category) Activate() error {
	return c.setActive(true)
}

func (c *Category) Deactivate() error {
	return c.setActive(false)
}

// Update меняет имя и, если description != nil, описание.
// При ошибке валидации ни одно поле не изменяется.
func (c *Category) Update(name string, description *string) error {
	if description == nil {
		description = &c.description
	}

	if err := validateCategory(name, description); err != nil {
		return err
	}

	c.name = name
	c.description = *description
	return nil
}

func (c *Category) setActive(isActive bool) error {
	if err := validateCategory(c.name, &c.description); err != nil {
		return err
	}

	c.isActive = isActive
	return nil
}

// validateCategory проверяет правила по порядку и возвращает первую ошибку.
// Для описания проверяются только nil и максимальная длина.
func validateCategory(name string, description *string) error {
	if strings.TrimSpace(name) == "" {
		return NewEntityValidationError(MsgNameRequired)
	}

	nameLength := utf8.RuneCountInString(name)
	if nameLength < CategoryNameMinLength {
		return NewEntityValidationError(MsgNameTooShort)
	}
	if nameLength > CategoryNameMaxLength {
		return NewEntityValidationError(MsgNameTooLong)
	}

	if description == nil {
		return NewEntityValidationError(MsgDescriptionRequired)
	}
	if utf8.RuneCountInString(*description) > CategoryDescriptionMaxLength {
		return NewEntityValidationError(MsgDescriptionTooLong)
	}

	return nil
}
