package store

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database at dsn and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Migrate applies the embedded goose migrations and returns the schema
// version.
func (p *Postgres) Migrate(ctx context.Context) (int64, error) {
	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Ping checks that the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const identityColumns = `id, username, disabled, superuser, password_hash`

func scanIdentity(row pgx.Row) (*Identity, error) {
	var identity Identity
	err := row.Scan(&identity.ID, &identity.Name, &identity.Disabled, &identity.Superuser, &identity.PasswordHash)
	if err != nil {
		return nil, translate(err)
	}
	return &identity, nil
}

// LookupIdentity returns the identity named name.
func (p *Postgres) LookupIdentity(ctx context.Context, name string) (*Identity, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE username = $1`, name)
	return scanIdentity(row)
}

// GetIdentity returns the identity with the given ID.
func (p *Postgres) GetIdentity(ctx context.Context, id int64) (*Identity, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM users WHERE id = $1`, id)
	return scanIdentity(row)
}

// CreateIdentity inserts identity and sets its generated ID.
func (p *Postgres) CreateIdentity(ctx context.Context, identity *Identity) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (username, disabled, superuser, password_hash)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		identity.Name, identity.Disabled, identity.Superuser, identity.PasswordHash,
	).Scan(&identity.ID)
	return translate(err)
}

// PutIdentity inserts identity with the ID it already carries.
func (p *Postgres) PutIdentity(ctx context.Context, identity *Identity) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, username, disabled, superuser, password_hash)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.Name, identity.Disabled, identity.Superuser, identity.PasswordHash,
	)
	return translate(err)
}

const hookColumns = `id, user_id, name, content`

// CreateHook inserts hook and sets its generated ID.
func (p *Postgres) CreateHook(ctx context.Context, hook *Hook) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO hooks (user_id, name, content) VALUES ($1, $2, $3) RETURNING id`,
		hook.UserID, hook.Name, hook.Content,
	).Scan(&hook.ID)
	return translate(err)
}

// GetHook returns the hook with the given ID.
func (p *Postgres) GetHook(ctx context.Context, id int64) (*Hook, error) {
	var hook Hook
	err := p.pool.QueryRow(ctx, `SELECT `+hookColumns+` FROM hooks WHERE id = $1`, id).
		Scan(&hook.ID, &hook.UserID, &hook.Name, &hook.Content)
	if err != nil {
		return nil, translate(err)
	}
	return &hook, nil
}

// ListHooks returns the hooks owned by ownerID ordered by ID.
func (p *Postgres) ListHooks(ctx context.Context, ownerID int64) ([]Hook, error) {
	return p.listHooks(ctx, `SELECT `+hookColumns+` FROM hooks WHERE user_id = $1 ORDER BY id`, ownerID)
}

// ListAllHooks returns every hook ordered by ID.
func (p *Postgres) ListAllHooks(ctx context.Context) ([]Hook, error) {
	return p.listHooks(ctx, `SELECT `+hookColumns+` FROM hooks ORDER BY id`)
}

func (p *Postgres) listHooks(ctx context.Context, query string, args ...any) ([]Hook, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query hooks: %w", err)
	}
	hooks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Hook, error) {
		var hook Hook
		err := row.Scan(&hook.ID, &hook.UserID, &hook.Name, &hook.Content)
		return hook, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan hooks: %w", err)
	}
	return hooks, nil
}

// UpdateHook replaces the name and content of an existing hook.
func (p *Postgres) UpdateHook(ctx context.Context, hook *Hook) error {
	err := p.pool.QueryRow(ctx,
		`UPDATE hooks SET name = $2, content = $3 WHERE id = $1 RETURNING user_id`,
		hook.ID, hook.Name, hook.Content,
	).Scan(&hook.UserID)
	return translate(err)
}

// DeleteHook removes the hook with the given ID.
func (p *Postgres) DeleteHook(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM hooks WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}
