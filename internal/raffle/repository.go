package raffle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/instantin-me/commerce-core/internal/product"
)

var (
	ErrRaffleNotFound = errors.New("raffle not found")
	ErrEntryNotFound  = errors.New("raffle entry not found")
)

type Repository interface {
	Create(ctx context.Context, r *Raffle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Raffle, error)
	GetForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Raffle, error)
	Update(ctx context.Context, q product.Querier, r *Raffle) error
	AddEntry(ctx context.Context, q product.Querier, e *RaffleEntry) error
	UpdateEntry(ctx context.Context, q product.Querier, e *RaffleEntry) error
	GetEntryForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*RaffleEntry, error)
	ListEntries(ctx context.Context, q product.Querier, raffleID uuid.UUID) ([]RaffleEntry, error)
	CountUserEntries(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error)
}

type postgresRepository struct {
	db product.Querier
}

func NewRepository(db product.Querier) Repository {
	return &postgresRepository{db: db}
}

const raffleColumns = `id, title, slug, status, ticket_price, tickets_per_dollar_spent,
		total_prize_pool, grand_prize_amount, number_of_winners, max_entries_per_user,
		total_entries, total_participants, total_tickets, winners_selected, winners_announced,
		start_date, end_date, drawing_date, created_at, updated_at, completed_at`

const entryColumns = `id, raffle_id, user_id, ticket_count, bonus_tickets, referral_tickets,
		qualifying_amount, entry_source, source_order_id, is_valid, disqualified,
		disqualification_reason, is_winner, prize_place, prize_amount, prize_claimed_at,
		created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, ra *Raffle) error {
	if ra.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate raffle ID: %w", err)
		}
		ra.ID = id
	}
	now := time.Now().UTC()
	ra.CreatedAt = now
	ra.UpdatedAt = now

	query := `
		INSERT INTO commerce.raffles
			(id, title, slug, status, ticket_price, tickets_per_dollar_spent,
			 total_prize_pool, grand_prize_amount, number_of_winners, max_entries_per_user,
			 total_entries, total_participants, total_tickets, winners_selected, winners_announced,
			 start_date, end_date, drawing_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	_, err := r.db.Exec(ctx, query,
		ra.ID, ra.Title, ra.Slug, string(ra.Status), ra.TicketPrice, ra.TicketsPerDollarSpent,
		ra.TotalPrizePool, ra.GrandPrizeAmount, ra.NumberOfWinners, ra.MaxEntriesPerUser,
		ra.TotalEntries, ra.TotalParticipants, ra.TotalTickets, ra.WinnersSelected, ra.WinnersAnnounced,
		ra.StartDate, ra.EndDate, ra.DrawingDate, ra.CreatedAt, ra.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert raffle: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Raffle, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *postgresRepository) GetForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Raffle, error) {
	return r.get(ctx, q, id, true)
}

func (r *postgresRepository) get(ctx context.Context, q product.Querier, id uuid.UUID, forUpdate bool) (*Raffle, error) {
	query := `SELECT ` + raffleColumns + ` FROM commerce.raffles WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var ra Raffle
	err := q.QueryRow(ctx, query, id).Scan(
		&ra.ID, &ra.Title, &ra.Slug, &ra.Status, &ra.TicketPrice, &ra.TicketsPerDollarSpent,
		&ra.TotalPrizePool, &ra.GrandPrizeAmount, &ra.NumberOfWinners, &ra.MaxEntriesPerUser,
		&ra.TotalEntries, &ra.TotalParticipants, &ra.TotalTickets, &ra.WinnersSelected, &ra.WinnersAnnounced,
		&ra.StartDate, &ra.EndDate, &ra.DrawingDate, &ra.CreatedAt, &ra.UpdatedAt, &ra.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRaffleNotFound
		}
		return nil, fmt.Errorf("repository: failed to select raffle %s: %w", id, err)
	}
	return &ra, nil
}

func (r *postgresRepository) Update(ctx context.Context, q product.Querier, ra *Raffle) error {
	ra.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE commerce.raffles
		SET status = $1, total_entries = $2, total_participants = $3, total_tickets = $4,
			winners_selected = $5, winners_announced = $6, updated_at = $7, completed_at = $8
		WHERE id = $9
	`
	cmdTag, err := q.Exec(ctx, query,
		string(ra.Status), ra.TotalEntries, ra.TotalParticipants, ra.TotalTickets,
		ra.WinnersSelected, ra.WinnersAnnounced, ra.UpdatedAt, ra.CompletedAt, ra.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update raffle %s: %w", ra.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRaffleNotFound
	}
	return nil
}

func (r *postgresRepository) AddEntry(ctx context.Context, q product.Querier, e *RaffleEntry) error {
	if e.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate entry ID: %w", err)
		}
		e.ID = id
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `
		INSERT INTO commerce.raffle_entries
			(id, raffle_id, user_id, ticket_count, bonus_tickets, referral_tickets,
			 qualifying_amount, entry_source, source_order_id, is_valid, disqualified,
			 disqualification_reason, is_winner, prize_place, prize_amount, prize_claimed_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := q.Exec(ctx, query,
		e.ID, e.RaffleID, e.UserID, e.TicketCount, e.BonusTickets, e.ReferralTickets,
		e.QualifyingAmount, string(e.EntrySource), e.SourceOrderID, e.IsValid, e.Disqualified,
		e.DisqualificationReason, e.IsWinner, e.PrizePlace, e.PrizeAmount, e.PrizeClaimedAt,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert raffle entry: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateEntry(ctx context.Context, q product.Querier, e *RaffleEntry) error {
	e.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE commerce.raffle_entries
		SET ticket_count = $1, bonus_tickets = $2, referral_tickets = $3,
			is_valid = $4, disqualified = $5, disqualification_reason = $6,
			is_winner = $7, prize_place = $8, prize_amount = $9, prize_claimed_at = $10,
			updated_at = $11
		WHERE id = $12
	`
	cmdTag, err := q.Exec(ctx, query,
		e.TicketCount, e.BonusTickets, e.ReferralTickets,
		e.IsValid, e.Disqualified, e.DisqualificationReason,
		e.IsWinner, e.PrizePlace, e.PrizeAmount, e.PrizeClaimedAt, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update raffle entry %s: %w", e.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *postgresRepository) GetEntryForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*RaffleEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM commerce.raffle_entries WHERE id = $1 FOR UPDATE`
	var e RaffleEntry
	err := q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.RaffleID, &e.UserID, &e.TicketCount, &e.BonusTickets, &e.ReferralTickets,
		&e.QualifyingAmount, &e.EntrySource, &e.SourceOrderID, &e.IsValid, &e.Disqualified,
		&e.DisqualificationReason, &e.IsWinner, &e.PrizePlace, &e.PrizeAmount, &e.PrizeClaimedAt,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("repository: failed to select raffle entry %s: %w", id, err)
	}
	return &e, nil
}

func (r *postgresRepository) ListEntries(ctx context.Context, q product.Querier, raffleID uuid.UUID) ([]RaffleEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM commerce.raffle_entries WHERE raffle_id = $1 ORDER BY created_at`
	rows, err := q.Query(ctx, query, raffleID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query entries for raffle %s: %w", raffleID, err)
	}
	defer rows.Close()

	entries := make([]RaffleEntry, 0)
	for rows.Next() {
		var e RaffleEntry
		err := rows.Scan(
			&e.ID, &e.RaffleID, &e.UserID, &e.TicketCount, &e.BonusTickets, &e.ReferralTickets,
			&e.QualifyingAmount, &e.EntrySource, &e.SourceOrderID, &e.IsValid, &e.Disqualified,
			&e.DisqualificationReason, &e.IsWinner, &e.PrizePlace, &e.PrizeAmount, &e.PrizeClaimedAt,
			&e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan entry for raffle %s: %w", raffleID, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating entries for raffle %s: %w", raffleID, err)
	}
	return entries, nil
}

func (r *postgresRepository) CountUserEntries(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM commerce.raffle_entries WHERE raffle_id = $1 AND user_id = $2`
	var count int
	if err := q.QueryRow(ctx, query, raffleID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count entries for raffle %s user %s: %w", raffleID, userID, err)
	}
	return count, nil
}
