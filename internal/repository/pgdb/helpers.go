package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// postgresDuplicate сообщает, нарушено ли ограничение уникальности.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// escapeLike экранирует спецсимволы шаблона LIKE.
func escapeLike(s string) string {
	var b []rune
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b = append(b, '\\')
		}
		b = append(b, r)
	}

	return string(b)
}
