package domain

import "github.com/DRSN-tech/catalog-backend/pkg/e"

// EntityValidationError сообщает о нарушении инварианта агрегата.
// Текст сообщения является частью контракта и передаётся клиенту без изменений.
type EntityValidationError struct {
	Message string
}

func NewEntityValidationError(message string) *EntityValidationError {
	return &EntityValidationError{Message: message}
}

func (v *EntityValidationError) Error() string {
	return v.Message
}

// Unwrap позволяет проверять ошибку через errors.Is(err, e.ErrEntityValidation).
func (v *EntityValidationError) Unwrap() error {
	return e.ErrEntityValidation
}
