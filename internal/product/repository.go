package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrProductNotFound = errors.New("product not found")

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so one
// repository serves both pooled reads and transactional mutations.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*Product, error)
	ApplyCommands(ctx context.Context, q Querier, id uuid.UUID, cmds []Command) error
}

type postgresRepository struct {
	db Querier
}

func NewRepository(db Querier) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, storefront_id, name, slug, product_type, price, status,
		inventory_count, sold_count, max_quantity_per_order, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO commerce.products
			(id, storefront_id, name, slug, product_type, price, status,
			 inventory_count, sold_count, max_quantity_per_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.StorefrontID, p.Name, p.Slug, p.ProductType, p.Price, string(p.Status),
		p.InventoryCount, p.SoldCount, p.MaxQuantityPerOrder, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM commerce.products WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id), id)
}

// GetForUpdate locks the product row for the duration of the caller's
// transaction. Every concurrent reserve/release/commit against one product
// serializes on this lock.
func (r *postgresRepository) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM commerce.products WHERE id = $1 FOR UPDATE`
	return r.scanOne(q.QueryRow(ctx, query, id), id)
}

func (r *postgresRepository) scanOne(row pgx.Row, id uuid.UUID) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.StorefrontID, &p.Name, &p.Slug, &p.ProductType, &p.Price, &p.Status,
		&p.InventoryCount, &p.SoldCount, &p.MaxQuantityPerOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}
	return &p, nil
}

// ApplyCommands persists ledger side effects within the caller's transaction.
func (r *postgresRepository) ApplyCommands(ctx context.Context, q Querier, id uuid.UUID, cmds []Command) error {
	now := time.Now().UTC()
	for _, cmd := range cmds {
		var (
			tag pgconn.CommandTag
			err error
		)
		switch cmd.Type {
		case CommandSetInventory:
			tag, err = q.Exec(ctx,
				`UPDATE commerce.products SET inventory_count = $1, updated_at = $2 WHERE id = $3`,
				cmd.Inventory, now, id)
		case CommandSetStatus:
			tag, err = q.Exec(ctx,
				`UPDATE commerce.products SET status = $1, updated_at = $2 WHERE id = $3`,
				string(cmd.Status), now, id)
		case CommandAddSold:
			tag, err = q.Exec(ctx,
				`UPDATE commerce.products SET sold_count = sold_count + $1, updated_at = $2 WHERE id = $3`,
				cmd.SoldDelta, now, id)
		default:
			return fmt.Errorf("repository: unknown ledger command %q", cmd.Type)
		}
		if err != nil {
			return fmt.Errorf("repository: failed to apply ledger command %q to product %s: %w", cmd.Type, id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}
	}
	return nil
}
