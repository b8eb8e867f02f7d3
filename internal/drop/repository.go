package drop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/product"
)

var (
	ErrDropNotFound        = errors.New("drop not found")
	ErrParticipantNotFound = errors.New("drop participant not found")
)

type Repository interface {
	Create(ctx context.Context, d *Drop) error
	GetByID(ctx context.Context, id uuid.UUID) (*Drop, error)
	GetForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Drop, error)
	Update(ctx context.Context, q product.Querier, d *Drop) error
	RecordSale(ctx context.Context, q product.Querier, dropID uuid.UUID, amount decimal.Decimal) error
	AddParticipant(ctx context.Context, q product.Querier, p *DropParticipant) error
	ListParticipants(ctx context.Context, q product.Querier, dropID uuid.UUID) ([]DropParticipant, error)
	SetParticipantCommission(ctx context.Context, q product.Querier, participantID uuid.UUID, commission decimal.Decimal) error
}

type postgresRepository struct {
	db product.Querier
}

func NewRepository(db product.Querier) Repository {
	return &postgresRepository{db: db}
}

const dropColumns = `id, name, slug, created_by_user_id, status,
		creator_revenue_percentage, participant_revenue_percentage, platform_fee_percentage,
		participant_count, max_participants, total_sales, total_orders,
		start_date, end_date, created_at, updated_at, launched_at, completed_at`

func (r *postgresRepository) Create(ctx context.Context, d *Drop) error {
	if d.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate drop ID: %w", err)
		}
		d.ID = id
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
		INSERT INTO commerce.drops
			(id, name, slug, created_by_user_id, status,
			 creator_revenue_percentage, participant_revenue_percentage, platform_fee_percentage,
			 participant_count, max_participants, total_sales, total_orders,
			 start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		d.ID, d.Name, d.Slug, d.CreatedByUserID, string(d.Status),
		d.CreatorRevenuePct, d.ParticipantRevPct, d.PlatformFeePct,
		d.ParticipantCount, d.MaxParticipants, d.TotalSales, d.TotalOrders,
		d.StartDate, d.EndDate, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert drop: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Drop, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Drop, error) {
	return r.get(ctx, q, id, true)
}

func (r *postgresRepository) get(ctx context.Context, q product.Querier, id uuid.UUID, forUpdate bool) (*Drop, error) {
	query := `SELECT ` + dropColumns + ` FROM commerce.drops WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var d Drop
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Slug, &d.CreatedByUserID, &d.Status,
		&d.CreatorRevenuePct, &d.ParticipantRevPct, &d.PlatformFeePct,
		&d.ParticipantCount, &d.MaxParticipants, &d.TotalSales, &d.TotalOrders,
		&d.StartDate, &d.EndDate, &d.CreatedAt, &d.UpdatedAt, &d.LaunchedAt, &d.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDropNotFound
		}
		return nil, fmt.Errorf("repository: failed to select drop %s: %w", id, err)
	}
	return &d, nil
}

func (r *postgresRepository) Update(ctx context.Context, q product.Querier, d *Drop) error {
	d.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE commerce.drops
		SET status = $1, participant_count = $2, total_sales = $3, total_orders = $4,
			start_date = $5, end_date = $6, updated_at = $7, launched_at = $8, completed_at = $9
		WHERE id = $10
	`
	cmdTag, err := q.Exec(ctx, query,
		string(d.Status), d.ParticipantCount, d.TotalSales, d.TotalOrders,
		d.StartDate, d.EndDate, d.UpdatedAt, d.LaunchedAt, d.CompletedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update drop %s: %w", d.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDropNotFound
	}
	return nil
}

// RecordSale accrues a confirmed order onto the drop's running totals inside
// the caller's transaction.
func (r *postgresRepository) RecordSale(ctx context.Context, q product.Querier, dropID uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE commerce.drops
		SET total_sales = total_sales + $1, total_orders = total_orders + 1, updated_at = $2
		WHERE id = $3
	`
	cmdTag, err := q.Exec(ctx, query, amount, time.Now().UTC(), dropID)
	if err != nil {
		return fmt.Errorf("repository: failed to record sale on drop %s: %w", dropID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrDropNotFound
	}
	return nil
}

func (r *postgresRepository) AddParticipant(ctx context.Context, q product.Querier, p *DropParticipant) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate participant ID: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO commerce.drop_participants
			(id, drop_id, user_id, revenue_percentage, total_sales, total_commission, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := q.Exec(ctx, query,
		p.ID, p.DropID, p.UserID, p.RevenuePct, p.TotalSales, p.TotalCommission,
		string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert drop participant: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListParticipants(ctx context.Context, q product.Querier, dropID uuid.UUID) ([]DropParticipant, error) {
	query := `
		SELECT id, drop_id, user_id, revenue_percentage, total_sales, total_commission, status, created_at, updated_at
		FROM commerce.drop_participants
		WHERE drop_id = $1
		ORDER BY created_at
	`
	rows, err := q.Query(ctx, query, dropID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query participants for drop %s: %w", dropID, err)
	}
	defer rows.Close()

	participants := make([]DropParticipant, 0)
	for rows.Next() {
		var p DropParticipant
		err := rows.Scan(
			&p.ID, &p.DropID, &p.UserID, &p.RevenuePct, &p.TotalSales, &p.TotalCommission,
			&p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan participant for drop %s: %w", dropID, err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating participants for drop %s: %w", dropID, err)
	}
	return participants, nil
}

func (r *postgresRepository) SetParticipantCommission(ctx context.Context, q product.Querier, participantID uuid.UUID, commission decimal.Decimal) error {
	query := `
		UPDATE commerce.drop_participants
		SET total_commission = $1, updated_at = $2
		WHERE id = $3
	`
	cmdTag, err := q.Exec(ctx, query, commission, time.Now().UTC(), participantID)
	if err != nil {
		return fmt.Errorf("repository: failed to set commission for participant %s: %w", participantID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
