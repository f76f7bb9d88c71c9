package domain

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot хранит идентичность и время создания агрегата.
// Оба значения присваиваются один раз и дальше не меняются.
type AggregateRoot struct {
	id        uuid.UUID
	createdAt time.Time
}

func NewAggregateRoot() AggregateRoot {
	return AggregateRoot{
		id:        uuid.New(),
		createdAt: time.Now(),
	}
}

// RestoreAggregateRoot восстанавливает идентичность агрегата из хранилища.
func RestoreAggregateRoot(id uuid.UUID, createdAt time.Time) AggregateRoot {
	return AggregateRoot{
		id:        id,
		createdAt: createdAt,
	}
}

func (a AggregateRoot) ID() uuid.UUID {
	return a.id
}

func (a AggregateRoot) CreatedAt() time.Time {
	return a.createdAt
}
