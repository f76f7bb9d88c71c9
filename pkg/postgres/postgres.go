package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"time"

	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// PgDatabase хранит пул соединений и строку подключения, по которой открываются
// отдельные соединения для миграций и LISTEN.
type PgDatabase struct {
	Pool *pgxpool.Pool
	Dsn  string
}

// Connect открывает пул и проверяет соединение.
func Connect(ctx context.Context, dsn string) (*PgDatabase, error) {
	const op = "postgres.Connect"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	db := &PgDatabase{Pool: pool, Dsn: dsn}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, e.Wrap(op, err)
	}

	return db, nil
}

func (db *PgDatabase) Ping(ctx context.Context) error {
	const op = "PgDatabase.Ping"

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (db *PgDatabase) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// RunMigrations применяет миграции из каталога dir файловой системы src.
// Отсутствие новых миграций не считается ошибкой.
func (db *PgDatabase) RunMigrations(src fs.FS, dir string, logger logger.Logger) error {
	const op = "PgDatabase.RunMigrations"

	source, err := iofs.New(src, dir)
	if err != nil {
		return e.Wrap(op, err)
	}

	sqlDB, err := sql.Open("pgx", db.Dsn)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return e.Wrap(op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debugf("database schema is up to date")
			return nil
		}
		return e.Wrap(op, err)
	}

	version, _, err := m.Version()
	if err != nil {
		return e.Wrap(op, err)
	}

	logger.Infof("migrations applied, schema version %d", version)
	return nil
}
