package raffle

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/apperr"
	"github.com/instantin-me/commerce-core/internal/product"
)

// Notifier is fire-and-forget; failures never affect raffle state.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any)
}

type EnterInput struct {
	UserID           uuid.UUID       `json:"user_id"`
	QualifyingAmount decimal.Decimal `json:"qualifying_amount"`
	Source           EntrySource     `json:"source"`
	SourceOrderID    *uuid.UUID      `json:"source_order_id,omitempty"`
}

type Service interface {
	CreateRaffle(ctx context.Context, ra *Raffle) (*Raffle, error)
	GetRaffleByID(ctx context.Context, id uuid.UUID) (*Raffle, error)
	EnterRaffle(ctx context.Context, raffleID uuid.UUID, input EnterInput) (*RaffleEntry, error)
	AddBonusTickets(ctx context.Context, entryID uuid.UUID, count int, reason string) (*RaffleEntry, error)
	AddReferralTickets(ctx context.Context, entryID uuid.UUID, count int) (*RaffleEntry, error)
	DisqualifyEntry(ctx context.Context, entryID uuid.UUID, reason string) (*RaffleEntry, error)
	ClaimPrize(ctx context.Context, entryID, userID uuid.UUID) (*RaffleEntry, error)
	ComputePrizeBreakdown(ctx context.Context, raffleID uuid.UUID) ([]Prize, error)
	DrawWinners(ctx context.Context, raffleID uuid.UUID, seed uint64) ([]Winner, error)
	LaunchRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error)
	PauseRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error)
	ResumeRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error)
	CancelRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error)
}

type service struct {
	tx       product.TxRunner
	repo     Repository
	notifier Notifier
}

func NewService(tx product.TxRunner, repo Repository, notifier Notifier) Service {
	return &service{tx: tx, repo: repo, notifier: notifier}
}

func (s *service) CreateRaffle(ctx context.Context, ra *Raffle) (*Raffle, error) {
	if ra.Title == "" {
		return nil, apperr.New(apperr.KindValidation, "raffle title is required")
	}
	if ra.NumberOfWinners < 1 {
		return nil, apperr.New(apperr.KindValidation, "raffle must have at least 1 winner, got %d", ra.NumberOfWinners)
	}
	if ra.MaxEntriesPerUser < 1 {
		return nil, apperr.New(apperr.KindValidation, "max entries per user must be at least 1, got %d", ra.MaxEntriesPerUser)
	}
	if ra.TotalPrizePool.IsNegative() {
		return nil, apperr.New(apperr.KindValidation, "prize pool cannot be negative, got %s", ra.TotalPrizePool)
	}
	if ra.TicketsPerDollarSpent.IsNegative() {
		return nil, apperr.New(apperr.KindValidation, "tickets per dollar rate cannot be negative, got %s", ra.TicketsPerDollarSpent)
	}
	if ra.GrandPrizeAmount != nil && ra.GrandPrizeAmount.GreaterThan(ra.TotalPrizePool) {
		return nil, apperr.New(apperr.KindInvariant,
			"grand prize %s exceeds prize pool %s", ra.GrandPrizeAmount, ra.TotalPrizePool)
	}
	if !ra.EndDate.After(ra.StartDate) {
		return nil, apperr.New(apperr.KindValidation, "raffle end date must be after start date")
	}
	if ra.Status == "" {
		ra.Status = StatusUpcoming
	}
	if err := s.repo.Create(ctx, ra); err != nil {
		log.Error().Err(err).Msg("service: failed to create raffle")
		return nil, err
	}
	log.Info().Stringer("raffle_id", ra.ID).Str("title", ra.Title).Msg("service: raffle created")
	return ra, nil
}

func (s *service) GetRaffleByID(ctx context.Context, id uuid.UUID) (*Raffle, error) {
	ra, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRaffleNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "raffle %s does not exist", id)
		}
		return nil, err
	}
	return ra, nil
}

// EnterRaffle converts qualifying spend into an entry. The entry append and
// the raffle's running totals move in one transaction.
func (s *service) EnterRaffle(ctx context.Context, raffleID uuid.UUID, input EnterInput) (*RaffleEntry, error) {
	if input.UserID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "user id cannot be nil")
	}
	if input.Source == "" {
		input.Source = SourcePurchase
	}

	var entry *RaffleEntry
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		ra, err := s.repo.GetForUpdate(ctx, q, raffleID)
		if err != nil {
			if errors.Is(err, ErrRaffleNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "raffle %s does not exist", raffleID)
			}
			return err
		}
		if !ra.CanEnter(time.Now().UTC()) {
			return apperr.New(apperr.KindConflict, "raffle %s is not accepting entries", raffleID)
		}

		existing, err := s.repo.CountUserEntries(ctx, q, raffleID, input.UserID)
		if err != nil {
			return err
		}
		if ra.MaxEntriesPerUser > 0 && existing >= ra.MaxEntriesPerUser {
			return apperr.New(apperr.KindConflict,
				"user %s reached the entry limit of %d for raffle %s", input.UserID, ra.MaxEntriesPerUser, raffleID)
		}

		tickets, err := TicketsFor(input.QualifyingAmount, ra.TicketsPerDollarSpent)
		if err != nil {
			return err
		}

		entry = &RaffleEntry{
			RaffleID:         raffleID,
			UserID:           input.UserID,
			TicketCount:      tickets,
			QualifyingAmount: input.QualifyingAmount,
			EntrySource:      input.Source,
			SourceOrderID:    input.SourceOrderID,
			IsValid:          true,
		}
		if err := s.repo.AddEntry(ctx, q, entry); err != nil {
			return err
		}

		ra.TotalEntries++
		ra.TotalTickets += entry.TotalTickets()
		if existing == 0 {
			ra.TotalParticipants++
		}
		return s.repo.Update(ctx, q, ra)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("raffle_id", raffleID).Stringer("user_id", input.UserID).Msg("service: failed to enter raffle")
		return nil, err
	}

	log.Info().
		Stringer("raffle_id", raffleID).
		Stringer("user_id", input.UserID).
		Int("tickets", entry.TicketCount).
		Msg("service: raffle entry created")
	return entry, nil
}

func (s *service) AddBonusTickets(ctx context.Context, entryID uuid.UUID, count int, reason string) (*RaffleEntry, error) {
	return s.addTickets(ctx, entryID, count, func(e *RaffleEntry) {
		e.BonusTickets += count
	})
}

func (s *service) AddReferralTickets(ctx context.Context, entryID uuid.UUID, count int) (*RaffleEntry, error) {
	return s.addTickets(ctx, entryID, count, func(e *RaffleEntry) {
		e.ReferralTickets += count
	})
}

// addTickets applies a bonus mutation and keeps the raffle's ticket total in
// step. Bonuses are additive only.
func (s *service) addTickets(ctx context.Context, entryID uuid.UUID, count int, apply func(*RaffleEntry)) (*RaffleEntry, error) {
	if count <= 0 {
		return nil, apperr.New(apperr.KindValidation, "ticket count must be positive, got %d", count)
	}
	var updated *RaffleEntry
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		e, err := s.getEntryForUpdate(ctx, q, entryID)
		if err != nil {
			return err
		}
		ra, err := s.repo.GetForUpdate(ctx, q, e.RaffleID)
		if err != nil {
			return err
		}
		apply(e)
		if err := s.repo.UpdateEntry(ctx, q, e); err != nil {
			return err
		}
		ra.TotalTickets += count
		updated = e
		return s.repo.Update(ctx, q, ra)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("entry_id", entryID).Int("tickets", count).Msg("service: tickets added to entry")
	return updated, nil
}

func (s *service) DisqualifyEntry(ctx context.Context, entryID uuid.UUID, reason string) (*RaffleEntry, error) {
	if reason == "" {
		return nil, apperr.New(apperr.KindValidation, "disqualification reason is required")
	}
	var updated *RaffleEntry
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		e, err := s.getEntryForUpdate(ctx, q, entryID)
		if err != nil {
			return err
		}
		e.Disqualified = true
		e.IsValid = false
		e.DisqualificationReason = reason
		updated = e
		return s.repo.UpdateEntry(ctx, q, e)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("entry_id", entryID).Str("reason", reason).Msg("service: raffle entry disqualified")
	return updated, nil
}

func (s *service) ComputePrizeBreakdown(ctx context.Context, raffleID uuid.UUID) ([]Prize, error) {
	ra, err := s.GetRaffleByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}
	return PrizeBreakdown(ra)
}

// DrawWinners runs the weighted draw and persists winner flags, places and
// prize amounts. The raffle transitions active -> drawing -> completed within
// the same transaction; entries and totals are locked for the draw.
func (s *service) DrawWinners(ctx context.Context, raffleID uuid.UUID, seed uint64) ([]Winner, error) {
	var winners []Winner
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		ra, err := s.repo.GetForUpdate(ctx, q, raffleID)
		if err != nil {
			if errors.Is(err, ErrRaffleNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "raffle %s does not exist", raffleID)
			}
			return err
		}
		if ra.Status != StatusActive && ra.Status != StatusDrawing {
			return apperr.New(apperr.KindConflict, "raffle %s in status %s cannot be drawn", raffleID, ra.Status)
		}
		if ra.WinnersSelected {
			return apperr.New(apperr.KindConflict, "raffle %s winners already selected", raffleID)
		}

		entries, err := s.repo.ListEntries(ctx, q, raffleID)
		if err != nil {
			return err
		}
		winners, err = DrawWinners(ra, entries, seed)
		if err != nil {
			return err
		}

		for _, w := range winners {
			e := w.Entry
			place := w.Prize.Place
			amount := w.Prize.Amount
			e.IsWinner = true
			e.PrizePlace = &place
			e.PrizeAmount = &amount
			if err := s.repo.UpdateEntry(ctx, q, &e); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		ra.Status = StatusCompleted
		ra.WinnersSelected = true
		ra.WinnersAnnounced = true
		ra.CompletedAt = &now
		return s.repo.Update(ctx, q, ra)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("raffle_id", raffleID).Msg("service: failed to draw raffle winners")
		return nil, err
	}

	log.Info().Stringer("raffle_id", raffleID).Int("winners", len(winners)).Msg("service: raffle winners drawn")
	s.notifier.Publish(ctx, "raffle.winners", winners)
	return winners, nil
}

func (s *service) LaunchRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error) {
	ra, err := s.transition(ctx, raffleID, []Status{StatusUpcoming}, StatusActive)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("raffle_id", raffleID).Msg("service: raffle launched")
	return ra, nil
}

func (s *service) PauseRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error) {
	ra, err := s.transition(ctx, raffleID, []Status{StatusActive}, StatusPaused)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("raffle_id", raffleID).Msg("service: raffle paused")
	return ra, nil
}

func (s *service) ResumeRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error) {
	ra, err := s.transition(ctx, raffleID, []Status{StatusPaused}, StatusActive)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("raffle_id", raffleID).Msg("service: raffle resumed")
	return ra, nil
}

// CancelRaffle closes a raffle that never reached a draw. Entries are kept
// for audit but no prizes are ever paid out of a cancelled raffle.
func (s *service) CancelRaffle(ctx context.Context, raffleID uuid.UUID) (*Raffle, error) {
	ra, err := s.transition(ctx, raffleID, []Status{StatusUpcoming, StatusActive, StatusPaused}, StatusCancelled)
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("raffle_id", raffleID).Msg("service: raffle cancelled")
	return ra, nil
}

func (s *service) transition(ctx context.Context, raffleID uuid.UUID, from []Status, to Status) (*Raffle, error) {
	var updated *Raffle
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		ra, err := s.repo.GetForUpdate(ctx, q, raffleID)
		if err != nil {
			if errors.Is(err, ErrRaffleNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "raffle %s does not exist", raffleID)
			}
			return err
		}
		allowed := false
		for _, st := range from {
			if ra.Status == st {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.New(apperr.KindConflict, "raffle %s in status %s cannot move to %s", raffleID, ra.Status, to)
		}
		ra.Status = to
		updated = ra
		return s.repo.Update(ctx, q, ra)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ClaimPrize marks a winning entry's prize as collected by its owner. A
// prize can be claimed exactly once.
func (s *service) ClaimPrize(ctx context.Context, entryID, userID uuid.UUID) (*RaffleEntry, error) {
	if userID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "user id is required to claim a prize")
	}
	var updated *RaffleEntry
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		e, err := s.getEntryForUpdate(ctx, q, entryID)
		if err != nil {
			return err
		}
		if e.UserID != userID {
			return apperr.New(apperr.KindConflict, "entry %s does not belong to user %s", entryID, userID)
		}
		if !e.IsWinner {
			return apperr.New(apperr.KindConflict, "entry %s is not a winning entry", entryID)
		}
		if e.PrizeClaimedAt != nil {
			return apperr.New(apperr.KindConflict, "prize for entry %s was already claimed at %s", entryID, e.PrizeClaimedAt.Format(time.RFC3339))
		}
		now := time.Now().UTC()
		e.PrizeClaimedAt = &now
		updated = e
		return s.repo.UpdateEntry(ctx, q, e)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("entry_id", entryID).Stringer("user_id", userID).Msg("service: raffle prize claimed")
	return updated, nil
}

func (s *service) getEntryForUpdate(ctx context.Context, q product.Querier, entryID uuid.UUID) (*RaffleEntry, error) {
	e, err := s.repo.GetEntryForUpdate(ctx, q, entryID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "raffle entry %s does not exist", entryID)
		}
		return nil, err
	}
	return e, nil
}
