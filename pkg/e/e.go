package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// Нарушение инварианта агрегата (422 Unprocessable Entity)
	ErrEntityValidation = fmt.Errorf("entity validation failed")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrInvalidCategoryID = fmt.Errorf("invalid category id")
	ErrInvalidPagination = fmt.Errorf("invalid pagination parameters")

	// 404 Not Found
	ErrCategoryNotFound = fmt.Errorf("category not found")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки outbox
	ErrEmptyOutboxPayload = fmt.Errorf("empty outbox payload")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
