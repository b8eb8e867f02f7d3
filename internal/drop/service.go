package drop

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

type Service interface {
	CreateDrop(ctx context.Context, d *Drop) (*Drop, error)
	GetDropByID(ctx context.Context, id uuid.UUID) (*Drop, error)
	ComputeRevenueSplit(ctx context.Context, dropID uuid.UUID, totalRevenue decimal.Decimal) (SplitResult, error)
	DistributeRevenue(ctx context.Context, dropID uuid.UUID) (SplitResult, error)
	JoinDrop(ctx context.Context, dropID, userID uuid.UUID) (*DropParticipant, error)
	ScheduleDrop(ctx context.Context, dropID uuid.UUID, start, end *time.Time) (*Drop, error)
	StartDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error)
	PauseDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error)
	ResumeDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error)
	EndDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error)
	CancelDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error)
}

type service struct {
	tx   product.TxRunner
	repo Repository
}

func NewService(tx product.TxRunner, repo Repository) Service {
	return &service{tx: tx, repo: repo}
}

// CreateDrop registers a new drop in draft. The creator occupies the first
// participant slot.
func (s *service) CreateDrop(ctx context.Context, d *Drop) (*Drop, error) {
	if d.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "drop name is required")
	}
	if d.CreatedByUserID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "drop creator is required")
	}
	for _, pct := range []decimal.Decimal{d.PlatformFeePct, d.CreatorRevenuePct, d.ParticipantRevPct} {
		if pct.IsNegative() || pct.GreaterThan(oneHundred) {
			return nil, apperr.New(apperr.KindInvariant, "revenue percentage %s is outside [0, 100]", pct)
		}
	}
	if d.PlatformFeePct.Add(d.CreatorRevenuePct).GreaterThan(oneHundred) {
		return nil, apperr.New(apperr.KindInvariant,
			"platform fee %s%% and creator share %s%% sum over 100%%", d.PlatformFeePct, d.CreatorRevenuePct)
	}
	if d.MaxParticipants != nil && *d.MaxParticipants < 1 {
		return nil, apperr.New(apperr.KindValidation, "max participants must be at least 1")
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.ParticipantCount < 1 {
		d.ParticipantCount = 1
	}
	if err := s.repo.Create(ctx, d); err != nil {
		log.Error().Err(err).Msg("service: failed to create drop")
		return nil, err
	}
	log.Info().Stringer("drop_id", d.ID).Str("name", d.Name).Msg("service: drop created")
	return d, nil
}

func (s *service) GetDropByID(ctx context.Context, id uuid.UUID) (*Drop, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDropNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "drop %s does not exist", id)
		}
		return nil, err
	}
	return d, nil
}

// ComputeRevenueSplit runs the split engine against the drop's configured
// percentages for a given revenue figure, without persisting anything.
func (s *service) ComputeRevenueSplit(ctx context.Context, dropID uuid.UUID, totalRevenue decimal.Decimal) (SplitResult, error) {
	d, err := s.GetDropByID(ctx, dropID)
	if err != nil {
		return SplitResult{}, err
	}
	result, err := Split(totalRevenue, d.PlatformFeePct, d.CreatorRevenuePct, d.ParticipantCount)
	if err != nil {
		if apperr.IsKind(err, apperr.KindInvariant) {
			log.Error().Err(err).Stringer("drop_id", dropID).Msg("service: drop revenue percentages violate invariant")
		}
		return SplitResult{}, err
	}
	return result, nil
}

// DistributeRevenue splits the drop's accumulated sales and persists each
// non-creator participant's commission. The drop totals are read under the
// same row lock that sale accrual takes, so the split always sees a
// consistent total_sales/participant_count pair.
func (s *service) DistributeRevenue(ctx context.Context, dropID uuid.UUID) (SplitResult, error) {
	var result SplitResult
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		d, err := s.repo.GetForUpdate(ctx, q, dropID)
		if err != nil {
			if errors.Is(err, ErrDropNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "drop %s does not exist", dropID)
			}
			return err
		}

		result, err = Split(d.TotalSales, d.PlatformFeePct, d.CreatorRevenuePct, d.ParticipantCount)
		if err != nil {
			return err
		}

		participants, err := s.repo.ListParticipants(ctx, q, dropID)
		if err != nil {
			return err
		}
		for i := range participants {
			p := &participants[i]
			if p.Status != ParticipantActive {
				continue
			}
			if err := s.repo.SetParticipantCommission(ctx, q, p.ID, result.ParticipantShare); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Stringer("drop_id", dropID).Msg("service: failed to distribute drop revenue")
		return SplitResult{}, err
	}

	log.Info().
		Stringer("drop_id", dropID).
		Stringer("platform_fee", result.PlatformFee).
		Stringer("creator_share", result.CreatorShare).
		Stringer("participant_share", result.ParticipantShare).
		Msg("service: drop revenue distributed")
	return result, nil
}

// JoinDrop adds a collaborator with the drop's default participant share.
func (s *service) JoinDrop(ctx context.Context, dropID, userID uuid.UUID) (*DropParticipant, error) {
	if userID == uuid.Nil {
		return nil, apperr.New(apperr.KindValidation, "user id cannot be nil")
	}
	var joined *DropParticipant
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		d, err := s.repo.GetForUpdate(ctx, q, dropID)
		if err != nil {
			if errors.Is(err, ErrDropNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "drop %s does not exist", dropID)
			}
			return err
		}
		if !d.CanJoin() {
			return apperr.New(apperr.KindConflict, "drop %s is not accepting new participants", dropID)
		}

		p := &DropParticipant{
			DropID:          dropID,
			UserID:          userID,
			RevenuePct:      d.ParticipantRevPct,
			TotalSales:      decimal.Zero,
			TotalCommission: decimal.Zero,
			Status:          ParticipantActive,
		}
		if err := s.repo.AddParticipant(ctx, q, p); err != nil {
			return err
		}
		d.ParticipantCount++
		joined = p
		return s.repo.Update(ctx, q, d)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("drop_id", dropID).Stringer("user_id", userID).Msg("service: failed to join drop")
		return nil, err
	}
	log.Info().Stringer("drop_id", dropID).Stringer("user_id", userID).Msg("service: participant joined drop")
	return joined, nil
}

// ScheduleDrop publishes a draft drop onto the calendar. The dates may be nil
// for a drop started manually.
func (s *service) ScheduleDrop(ctx context.Context, dropID uuid.UUID, start, end *time.Time) (*Drop, error) {
	if start != nil && end != nil && !end.After(*start) {
		return nil, apperr.New(apperr.KindValidation, "drop end date must be after start date")
	}
	return s.transition(ctx, dropID, []Status{StatusDraft}, StatusScheduled, func(d *Drop, now time.Time) {
		d.StartDate = start
		d.EndDate = end
	})
}

func (s *service) StartDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error) {
	return s.transition(ctx, dropID, []Status{StatusScheduled}, StatusActive, func(d *Drop, now time.Time) {
		d.LaunchedAt = &now
	})
}

func (s *service) PauseDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error) {
	return s.transition(ctx, dropID, []Status{StatusActive}, StatusPaused, nil)
}

func (s *service) ResumeDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error) {
	return s.transition(ctx, dropID, []Status{StatusPaused}, StatusActive, nil)
}

func (s *service) EndDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error) {
	return s.transition(ctx, dropID, []Status{StatusActive, StatusPaused}, StatusEnded, func(d *Drop, now time.Time) {
		d.CompletedAt = &now
	})
}

// CancelDrop aborts a drop that never ended. Recorded sales stay untouched;
// cancellation only closes the event.
func (s *service) CancelDrop(ctx context.Context, dropID uuid.UUID) (*Drop, error) {
	return s.transition(ctx, dropID, []Status{StatusDraft, StatusScheduled, StatusActive, StatusPaused}, StatusCancelled, nil)
}

func (s *service) transition(ctx context.Context, dropID uuid.UUID, from []Status, to Status, stamp func(*Drop, time.Time)) (*Drop, error) {
	var out *Drop
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		d, err := s.repo.GetForUpdate(ctx, q, dropID)
		if err != nil {
			if errors.Is(err, ErrDropNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "drop %s does not exist", dropID)
			}
			return err
		}
		allowed := false
		for _, f := range from {
			if d.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperr.New(apperr.KindConflict, "drop %s cannot go from %s to %s", dropID, d.Status, to)
		}
		now := time.Now().UTC()
		d.Status = to
		if stamp != nil {
			stamp(d, now)
		}
		out = d
		return s.repo.Update(ctx, q, d)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("drop_id", dropID).Stringer("status", out.Status).Msg("service: drop status updated")
	return out, nil
}
