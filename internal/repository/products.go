package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"radiolink/catalog/internal/domain"
)

// DB is the subset of pgxpool.Pool the repositories need.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ DB = (*pgxpool.Pool)(nil)

type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveSnapshot(ctx context.Context, products []domain.Product, projects []domain.Project) error
	LoadSnapshot(ctx context.Context) ([]domain.Product, []domain.Project, error)
}

type productRepository struct {
	db DB
}

func NewProductRepository(db DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS product_snapshots (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL,
	data JSONB NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS project_snapshots (
	id TEXT PRIMARY KEY,
	slug TEXT NOT NULL,
	data JSONB NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL
);`

func (r *productRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create snapshot tables: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the stored catalog with the given one in a single
// transaction.
func (r *productRepository) SaveSnapshot(ctx context.Context, products []domain.Product, projects []domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	syncedAt := time.Now().UTC()

	batch := &pgx.Batch{}
	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		data, err := sonic.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode product %s: %w", p.ID, err)
		}
		batch.Queue(`
		INSERT INTO product_snapshots (id, slug, data, synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET slug = $2, data = $3, synced_at = $4`, p.ID, p.Slug, data, syncedAt)
		productIDs = append(productIDs, p.ID)
	}
	batch.Queue(`DELETE FROM product_snapshots WHERE NOT (id = ANY($1))`, productIDs)

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		data, err := sonic.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to encode project %s: %w", p.ID, err)
		}
		batch.Queue(`
		INSERT INTO project_snapshots (id, slug, data, synced_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET slug = $2, data = $3, synced_at = $4`, p.ID, p.Slug, data, syncedAt)
		projectIDs = append(projectIDs, p.ID)
	}
	batch.Queue(`DELETE FROM project_snapshots WHERE NOT (id = ANY($1))`, projectIDs)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	log.Debugf("💾 Saved snapshot of %d products and %d projects", len(products), len(projects))
	return nil
}

// LoadSnapshot returns the last saved catalog. Rows that no longer decode are
// skipped.
func (r *productRepository) LoadSnapshot(ctx context.Context) ([]domain.Product, []domain.Project, error) {
	products, err := loadRows[domain.Product](ctx, r.db, `SELECT id, data FROM product_snapshots`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}
	projects, err := loadRows[domain.Project](ctx, r.db, `SELECT id, data FROM project_snapshots`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load projects: %w", err)
	}
	return products, projects, nil
}

func loadRows[T any](ctx context.Context, db DB, query string) ([]T, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var item T
		if err := sonic.Unmarshal(data, &item); err != nil {
			log.Warnf("⚠️ Skipping unreadable snapshot row %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
