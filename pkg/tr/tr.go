package tr

import (
	"context"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
)

// NewManager создаёт менеджер транзакций поверх пула PostgreSQL.
// Транзакция передаётся репозиториям через ctx.
func NewManager(pool *pgxpool.Pool) (*manager.Manager, error) {
	const op = "tr.NewManager"

	m, err := manager.New(trmpgx.NewDefaultFactory(pool))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return m, nil
}

// Conn возвращает транзакцию из контекста, а если её нет, то db.
func Conn(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

// TxFromCtx извлекает открытую менеджером транзакцию из контекста
func TxFromCtx(ctx context.Context) (trmpgx.Tr, error) {
	tx := trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, nil)
	if tx == nil {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
