package raffle_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instantin-me/commerce-core/internal/apperr"
	"github.com/instantin-me/commerce-core/internal/product"
	"github.com/instantin-me/commerce-core/internal/raffle"
)

type fakeTxRunner struct{}

func (fakeTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, q product.Querier) error) error {
	return fn(ctx, nil)
}

type stubQuerier struct{ product.Querier }

type querierTxRunner struct{ q product.Querier }

func (r querierTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, q product.Querier) error) error {
	return fn(ctx, r.q)
}

type mockRepository struct {
	createFunc           func(ctx context.Context, r *raffle.Raffle) error
	getByIDFunc          func(ctx context.Context, id uuid.UUID) (*raffle.Raffle, error)
	getForUpdateFunc     func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error)
	updateFunc           func(ctx context.Context, q product.Querier, r *raffle.Raffle) error
	addEntryFunc         func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error
	updateEntryFunc      func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error
	getEntryForUpdateFunc func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error)
	listEntriesFunc      func(ctx context.Context, q product.Querier, raffleID uuid.UUID) ([]raffle.RaffleEntry, error)
	countUserEntriesFunc func(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error)
}

func (m *mockRepository) Create(ctx context.Context, r *raffle.Raffle) error {
	return m.createFunc(ctx, r)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*raffle.Raffle, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
	return m.getForUpdateFunc(ctx, q, id)
}

func (m *mockRepository) Update(ctx context.Context, q product.Querier, r *raffle.Raffle) error {
	return m.updateFunc(ctx, q, r)
}

func (m *mockRepository) AddEntry(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error {
	return m.addEntryFunc(ctx, q, e)
}

func (m *mockRepository) UpdateEntry(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error {
	return m.updateEntryFunc(ctx, q, e)
}

func (m *mockRepository) GetEntryForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) {
	return m.getEntryForUpdateFunc(ctx, q, id)
}

func (m *mockRepository) ListEntries(ctx context.Context, q product.Querier, raffleID uuid.UUID) ([]raffle.RaffleEntry, error) {
	return m.listEntriesFunc(ctx, q, raffleID)
}

func (m *mockRepository) CountUserEntries(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error) {
	return m.countUserEntriesFunc(ctx, q, raffleID, userID)
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Publish(ctx context.Context, event string, payload any) {
	n.events = append(n.events, event)
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func openRaffle(t *testing.T) *raffle.Raffle {
	t.Helper()
	now := time.Now().UTC()
	return &raffle.Raffle{
		ID:                    mustUUID(t),
		Title:                 "Spring Giveaway",
		Status:                raffle.StatusActive,
		TicketsPerDollarSpent: decimal.NewFromInt(1),
		TotalPrizePool:        dec("300.00"),
		NumberOfWinners:       2,
		MaxEntriesPerUser:     3,
		StartDate:             now.Add(-time.Hour),
		EndDate:               now.Add(time.Hour),
	}
}

func TestService_EnterRaffle(t *testing.T) {
	t.Run("converts_spend_into_tickets_and_accrues_totals", func(t *testing.T) {
		ra := openRaffle(t)
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			countUserEntriesFunc: func(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error) {
				return 0, nil
			},
			addEntryFunc:    func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
			updateFunc:      func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
			updateEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		entry, err := svc.EnterRaffle(context.Background(), ra.ID, raffle.EnterInput{
			UserID:           mustUUID(t),
			QualifyingAmount: dec("47.00"),
		})
		require.NoError(t, err)

		assert.Equal(t, 47, entry.TicketCount)
		assert.Equal(t, raffle.SourcePurchase, entry.EntrySource)
		assert.True(t, entry.IsValid)
		assert.Equal(t, 1, ra.TotalEntries)
		assert.Equal(t, 1, ra.TotalParticipants)
		assert.Equal(t, 47, ra.TotalTickets)
	})

	t.Run("repeat_entrant_does_not_recount_as_participant", func(t *testing.T) {
		ra := openRaffle(t)
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			countUserEntriesFunc: func(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error) {
				return 1, nil
			},
			addEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
			updateFunc:   func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.EnterRaffle(context.Background(), ra.ID, raffle.EnterInput{
			UserID:           mustUUID(t),
			QualifyingAmount: dec("10.00"),
		})
		require.NoError(t, err)
		assert.Equal(t, 0, ra.TotalParticipants)
		assert.Equal(t, 1, ra.TotalEntries)
	})

	t.Run("entry_cap_enforced", func(t *testing.T) {
		ra := openRaffle(t)
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			countUserEntriesFunc: func(ctx context.Context, q product.Querier, raffleID, userID uuid.UUID) (int, error) {
				return 3, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.EnterRaffle(context.Background(), ra.ID, raffle.EnterInput{
			UserID:           mustUUID(t),
			QualifyingAmount: dec("10.00"),
		})
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("closed_raffle_rejects_entries", func(t *testing.T) {
		ra := openRaffle(t)
		ra.EndDate = time.Now().UTC().Add(-time.Minute)
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.EnterRaffle(context.Background(), ra.ID, raffle.EnterInput{
			UserID:           mustUUID(t),
			QualifyingAmount: dec("10.00"),
		})
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("nil_user_rejected", func(t *testing.T) {
		svc := raffle.NewService(fakeTxRunner{}, &mockRepository{}, &recordingNotifier{})
		_, err := svc.EnterRaffle(context.Background(), mustUUID(t), raffle.EnterInput{})
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestService_AddBonusTickets(t *testing.T) {
	t.Run("bonus_accrues_on_entry_and_raffle", func(t *testing.T) {
		ra := openRaffle(t)
		ra.TotalTickets = 47
		entry := &raffle.RaffleEntry{ID: mustUUID(t), RaffleID: ra.ID, TicketCount: 47, IsValid: true}
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) { return entry, nil },
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			updateEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
			updateFunc:      func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		got, err := svc.AddBonusTickets(context.Background(), entry.ID, 5, "social share")
		require.NoError(t, err)
		assert.Equal(t, 5, got.BonusTickets)
		assert.Equal(t, 52, got.TotalTickets())
		assert.Equal(t, 52, ra.TotalTickets)
	})

	t.Run("entry_is_read_and_locked_inside_the_transaction", func(t *testing.T) {
		ra := openRaffle(t)
		entry := &raffle.RaffleEntry{ID: mustUUID(t), RaffleID: ra.ID, TicketCount: 1, IsValid: true}
		txQuerier := &stubQuerier{}
		var entryQuerier, raffleQuerier product.Querier
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) {
				entryQuerier = q
				return entry, nil
			},
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				raffleQuerier = q
				return ra, nil
			},
			updateEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
			updateFunc:      func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
		svc := raffle.NewService(querierTxRunner{q: txQuerier}, repo, &recordingNotifier{})

		_, err := svc.AddBonusTickets(context.Background(), entry.ID, 2, "social share")
		require.NoError(t, err)
		assert.Same(t, txQuerier, entryQuerier)
		assert.Same(t, txQuerier, raffleQuerier)
	})

	t.Run("non_positive_count_rejected", func(t *testing.T) {
		svc := raffle.NewService(fakeTxRunner{}, &mockRepository{}, &recordingNotifier{})
		_, err := svc.AddBonusTickets(context.Background(), mustUUID(t), 0, "")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestService_DisqualifyEntry(t *testing.T) {
	t.Run("marks_entry_invalid", func(t *testing.T) {
		entry := &raffle.RaffleEntry{ID: mustUUID(t), TicketCount: 10, IsValid: true}
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) { return entry, nil },
			updateEntryFunc:       func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		got, err := svc.DisqualifyEntry(context.Background(), entry.ID, "fraudulent order")
		require.NoError(t, err)
		assert.True(t, got.Disqualified)
		assert.False(t, got.IsValid)
		assert.Equal(t, "fraudulent order", got.DisqualificationReason)
		assert.False(t, got.Qualified())
	})

	t.Run("reason_required", func(t *testing.T) {
		svc := raffle.NewService(fakeTxRunner{}, &mockRepository{}, &recordingNotifier{})
		_, err := svc.DisqualifyEntry(context.Background(), mustUUID(t), "")
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestService_DrawWinners(t *testing.T) {
	t.Run("persists_winner_flags_and_completes_raffle", func(t *testing.T) {
		ra := openRaffle(t)
		entries := []raffle.RaffleEntry{
			{ID: mustUUID(t), RaffleID: ra.ID, TicketCount: 10, IsValid: true},
			{ID: mustUUID(t), RaffleID: ra.ID, TicketCount: 20, IsValid: true},
			{ID: mustUUID(t), RaffleID: ra.ID, TicketCount: 5, IsValid: true},
		}
		var persisted []raffle.RaffleEntry
		notifier := &recordingNotifier{}
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			listEntriesFunc: func(ctx context.Context, q product.Querier, raffleID uuid.UUID) ([]raffle.RaffleEntry, error) {
				return entries, nil
			},
			updateEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error {
				persisted = append(persisted, *e)
				return nil
			},
			updateFunc: func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, notifier)

		winners, err := svc.DrawWinners(context.Background(), ra.ID, 42)
		require.NoError(t, err)
		require.Len(t, winners, 2)

		require.Len(t, persisted, 2)
		for i, e := range persisted {
			assert.True(t, e.IsWinner)
			require.NotNil(t, e.PrizePlace)
			assert.Equal(t, i+1, *e.PrizePlace)
			require.NotNil(t, e.PrizeAmount)
			assert.True(t, e.PrizeAmount.Equal(dec("150.00")))
		}

		assert.Equal(t, raffle.StatusCompleted, ra.Status)
		assert.True(t, ra.WinnersSelected)
		assert.True(t, ra.WinnersAnnounced)
		assert.NotNil(t, ra.CompletedAt)
		assert.Equal(t, []string{"raffle.winners"}, notifier.events)
	})

	t.Run("second_draw_rejected", func(t *testing.T) {
		ra := openRaffle(t)
		ra.WinnersSelected = true
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.DrawWinners(context.Background(), ra.ID, 42)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("upcoming_raffle_cannot_draw", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusUpcoming
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.DrawWinners(context.Background(), ra.ID, 42)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestService_LaunchRaffle(t *testing.T) {
	t.Run("upcoming_goes_active", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusUpcoming
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			updateFunc: func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		got, err := svc.LaunchRaffle(context.Background(), ra.ID)
		require.NoError(t, err)
		assert.Equal(t, raffle.StatusActive, got.Status)
	})

	t.Run("completed_raffle_cannot_relaunch", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusCompleted
		repo := &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.LaunchRaffle(context.Background(), ra.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestService_RaffleLifecycle(t *testing.T) {
	lifecycleRepo := func(ra *raffle.Raffle) *mockRepository {
		return &mockRepository{
			getForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.Raffle, error) {
				return ra, nil
			},
			updateFunc: func(ctx context.Context, q product.Querier, r *raffle.Raffle) error { return nil },
		}
	}

	t.Run("active_can_pause_and_resume", func(t *testing.T) {
		ra := openRaffle(t)
		svc := raffle.NewService(fakeTxRunner{}, lifecycleRepo(ra), &recordingNotifier{})

		got, err := svc.PauseRaffle(context.Background(), ra.ID)
		require.NoError(t, err)
		assert.Equal(t, raffle.StatusPaused, got.Status)

		got, err = svc.ResumeRaffle(context.Background(), ra.ID)
		require.NoError(t, err)
		assert.Equal(t, raffle.StatusActive, got.Status)
	})

	t.Run("upcoming_cannot_pause", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusUpcoming
		svc := raffle.NewService(fakeTxRunner{}, lifecycleRepo(ra), &recordingNotifier{})

		_, err := svc.PauseRaffle(context.Background(), ra.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("paused_can_cancel", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusPaused
		svc := raffle.NewService(fakeTxRunner{}, lifecycleRepo(ra), &recordingNotifier{})

		got, err := svc.CancelRaffle(context.Background(), ra.ID)
		require.NoError(t, err)
		assert.Equal(t, raffle.StatusCancelled, got.Status)
	})

	t.Run("completed_cannot_cancel", func(t *testing.T) {
		ra := openRaffle(t)
		ra.Status = raffle.StatusCompleted
		svc := raffle.NewService(fakeTxRunner{}, lifecycleRepo(ra), &recordingNotifier{})

		_, err := svc.CancelRaffle(context.Background(), ra.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestService_ClaimPrize(t *testing.T) {
	winningEntry := func(t *testing.T, userID uuid.UUID) *raffle.RaffleEntry {
		t.Helper()
		place := 1
		amount := dec("150.00")
		return &raffle.RaffleEntry{
			ID:          mustUUID(t),
			RaffleID:    mustUUID(t),
			UserID:      userID,
			IsWinner:    true,
			IsValid:     true,
			PrizePlace:  &place,
			PrizeAmount: &amount,
		}
	}

	t.Run("winner_claims_once", func(t *testing.T) {
		userID := mustUUID(t)
		entry := winningEntry(t, userID)
		var saved *raffle.RaffleEntry
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) {
				return entry, nil
			},
			updateEntryFunc: func(ctx context.Context, q product.Querier, e *raffle.RaffleEntry) error {
				saved = e
				return nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		got, err := svc.ClaimPrize(context.Background(), entry.ID, userID)
		require.NoError(t, err)
		require.NotNil(t, got.PrizeClaimedAt)
		require.NotNil(t, saved)

		_, err = svc.ClaimPrize(context.Background(), entry.ID, userID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("only_the_owner_can_claim", func(t *testing.T) {
		entry := winningEntry(t, mustUUID(t))
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) {
				return entry, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.ClaimPrize(context.Background(), entry.ID, mustUUID(t))
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("losing_entry_has_nothing_to_claim", func(t *testing.T) {
		userID := mustUUID(t)
		entry := winningEntry(t, userID)
		entry.IsWinner = false
		repo := &mockRepository{
			getEntryForUpdateFunc: func(ctx context.Context, q product.Querier, id uuid.UUID) (*raffle.RaffleEntry, error) {
				return entry, nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		_, err := svc.ClaimPrize(context.Background(), entry.ID, userID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("missing_user_rejected", func(t *testing.T) {
		svc := raffle.NewService(fakeTxRunner{}, &mockRepository{}, &recordingNotifier{})

		_, err := svc.ClaimPrize(context.Background(), mustUUID(t), uuid.Nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestService_CreateRaffle(t *testing.T) {
	t.Run("persists_upcoming_raffle", func(t *testing.T) {
		var saved *raffle.Raffle
		repo := &mockRepository{
			createFunc: func(ctx context.Context, r *raffle.Raffle) error {
				saved = r
				return nil
			},
		}
		svc := raffle.NewService(fakeTxRunner{}, repo, &recordingNotifier{})

		now := time.Now().UTC()
		created, err := svc.CreateRaffle(context.Background(), &raffle.Raffle{
			Title:                 "Spring Giveaway",
			TicketsPerDollarSpent: decimal.NewFromInt(1),
			TotalPrizePool:        dec("300.00"),
			NumberOfWinners:       2,
			MaxEntriesPerUser:     3,
			StartDate:             now,
			EndDate:               now.Add(72 * time.Hour),
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, raffle.StatusUpcoming, created.Status)
	})

	t.Run("rejections", func(t *testing.T) {
		now := time.Now().UTC()
		valid := func() raffle.Raffle {
			return raffle.Raffle{
				Title:             "Giveaway",
				TotalPrizePool:    dec("100.00"),
				NumberOfWinners:   1,
				MaxEntriesPerUser: 1,
				StartDate:         now,
				EndDate:           now.Add(time.Hour),
			}
		}
		oversizedGrand := dec("200.00")
		tests := []struct {
			name   string
			mutate func(*raffle.Raffle)
			kind   apperr.Kind
		}{
			{"missing_title", func(r *raffle.Raffle) { r.Title = "" }, apperr.KindValidation},
			{"zero_winners", func(r *raffle.Raffle) { r.NumberOfWinners = 0 }, apperr.KindValidation},
			{"zero_entry_cap", func(r *raffle.Raffle) { r.MaxEntriesPerUser = 0 }, apperr.KindValidation},
			{"negative_pool", func(r *raffle.Raffle) { r.TotalPrizePool = dec("-1") }, apperr.KindValidation},
			{"grand_prize_exceeds_pool", func(r *raffle.Raffle) { r.GrandPrizeAmount = &oversizedGrand }, apperr.KindInvariant},
			{"end_before_start", func(r *raffle.Raffle) { r.EndDate = r.StartDate.Add(-time.Hour) }, apperr.KindValidation},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				in := valid()
				tc.mutate(&in)
				svc := raffle.NewService(fakeTxRunner{}, &mockRepository{}, &recordingNotifier{})
				_, err := svc.CreateRaffle(context.Background(), &in)
				require.Error(t, err)
				assert.Equal(t, tc.kind, apperr.KindOf(err))
			})
		}
	})
}
