package pgdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-backend/internal/usecase"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/tr"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// Разрешённые колонки сортировки. Значение подставляется в запрос только из этой таблицы.
var categorySortColumns = map[usecase.SortField]string{
	usecase.SortByName:      "name",
	usecase.SortByCreatedAt: "created_at",
}

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	model := c.conv.ToModel(category)
	query := `
		INSERT INTO categories (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`

	if _, err := tr.Conn(ctx, c.pool).Exec(ctx, query,
		model.ID,
		model.Name,
		model.Description,
		model.IsActive,
		model.CreatedAt,
	); err != nil {
		if postgresDuplicate(err) {
			return fmt.Errorf("%s: category with id %s already exists", whereami.WhereAmI(), model.ID)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	model := c.conv.ToModel(category)
	query := `
		UPDATE categories
		SET name = $2, description = $3, is_active = $4
		WHERE id = $1;
	`

	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, query,
		model.ID,
		model.Name,
		model.Description,
		model.IsActive,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

func (c *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
	}

	return nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM categories
		WHERE id = $1;
	`

	return c.getOne(ctx, tr.Conn(ctx, c.pool), query, id)
}

// GetByIDForUpdate блокирует строку до конца транзакции.
// Вызывается только внутри транзакции менеджера.
func (c *CategoryRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, name, description, is_active, created_at
		FROM categories
		WHERE id = $1
		FOR UPDATE;
	`

	return c.getOne(ctx, tx, query, id)
}

// List возвращает страницу категорий и общее количество записей, подходящих под поиск.
// Поиск регистронезависимый по подстроке имени.
func (c *CategoryRepo) List(ctx context.Context, req *usecase.ListCategoriesReq) ([]*domain.Category, int64, error) {
	column, ok := categorySortColumns[req.Sort]
	if !ok {
		column = categorySortColumns[usecase.SortByName]
	}

	dir := "ASC"
	if req.Dir == usecase.SortDesc {
		dir = "DESC"
	}

	var (
		where string
		args  []any
	)
	if req.Search != "" {
		where = `WHERE name ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(req.Search)+"%")
	}

	conn := tr.Conn(ctx, c.pool)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM categories %s;`, where)
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	if total == 0 {
		return []*domain.Category{}, 0, nil
	}

	limitArg := len(args) + 1
	query := fmt.Sprintf(`
		SELECT id, name, description, is_active, created_at
		FROM categories
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d;
	`, where, column, dir, limitArg, limitArg+1)
	args = append(args, req.PerPage, (req.Page-1)*req.PerPage)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	var models []*converter.CategoryModel
	for rows.Next() {
		var model converter.CategoryModel
		if err := rows.Scan(
			&model.ID, &model.Name, &model.Description, &model.IsActive, &model.CreatedAt,
		); err != nil {
			return nil, 0, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), total, nil
}

func (c *CategoryRepo) getOne(ctx context.Context, conn trmpgx.Tr, query string, id uuid.UUID) (*domain.Category, error) {
	var model converter.CategoryModel
	if err := conn.QueryRow(ctx, query, id).Scan(
		&model.ID, &model.Name, &model.Description, &model.IsActive, &model.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrCategoryNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(&model), nil
}
