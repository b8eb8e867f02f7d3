package raffle_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instantin-me/commerce-core/internal/apperr"
	"github.com/instantin-me/commerce-core/internal/raffle"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestTicketsFor(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		rate     string
		want     int
		wantKind apperr.Kind
	}{
		{name: "whole_dollars_at_par", amount: "47", rate: "1", want: 47},
		{name: "fractional_spend_floors", amount: "47.99", rate: "1", want: 47},
		{name: "double_rate", amount: "10.50", rate: "2", want: 21},
		{name: "fractional_rate_floors", amount: "10", rate: "0.5", want: 5},
		{name: "spend_below_one_ticket", amount: "0.99", rate: "1", want: 0},
		{name: "zero_rate", amount: "100", rate: "0", want: 0},
		{name: "negative_amount_rejected", amount: "-10", rate: "1", wantKind: apperr.KindValidation},
		{name: "negative_rate_rejected", amount: "10", rate: "-1", wantKind: apperr.KindInvariant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := raffle.TicketsFor(dec(tt.amount), dec(tt.rate))
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrizeBreakdown(t *testing.T) {
	t.Run("grand_prize_then_even_remainder", func(t *testing.T) {
		r := &raffle.Raffle{
			TotalPrizePool:   dec("1000.00"),
			GrandPrizeAmount: decPtr("500.00"),
			NumberOfWinners:  3,
		}
		prizes, err := raffle.PrizeBreakdown(r)
		require.NoError(t, err)
		require.Len(t, prizes, 3)

		assert.Equal(t, 1, prizes[0].Place)
		assert.Equal(t, "Grand Prize", prizes[0].Label)
		assert.True(t, prizes[0].Amount.Equal(dec("500.00")))

		assert.Equal(t, 2, prizes[1].Place)
		assert.Equal(t, "2nd Place", prizes[1].Label)
		assert.True(t, prizes[1].Amount.Equal(dec("250.00")))

		assert.Equal(t, 3, prizes[2].Place)
		assert.Equal(t, "3rd Place", prizes[2].Label)
		assert.True(t, prizes[2].Amount.Equal(dec("250.00")))
	})

	t.Run("no_grand_prize_splits_evenly", func(t *testing.T) {
		r := &raffle.Raffle{TotalPrizePool: dec("300.00"), NumberOfWinners: 4}
		prizes, err := raffle.PrizeBreakdown(r)
		require.NoError(t, err)
		require.Len(t, prizes, 4)
		assert.Equal(t, "1st Place", prizes[0].Label)
		assert.True(t, prizes[0].Amount.Equal(dec("75.00")))
		assert.True(t, prizes[3].Amount.Equal(dec("75.00")))
	})

	t.Run("rounding_residual_lands_on_first_place", func(t *testing.T) {
		r := &raffle.Raffle{TotalPrizePool: dec("100.00"), NumberOfWinners: 3}
		prizes, err := raffle.PrizeBreakdown(r)
		require.NoError(t, err)
		require.Len(t, prizes, 3)

		sum := decimal.Zero
		for _, p := range prizes {
			sum = sum.Add(p.Amount)
		}
		assert.True(t, sum.Equal(dec("100.00")), "breakdown sums to %s", sum)
		assert.True(t, prizes[1].Amount.Equal(prizes[2].Amount))
	})

	t.Run("single_winner_takes_pool", func(t *testing.T) {
		r := &raffle.Raffle{TotalPrizePool: dec("100.00"), NumberOfWinners: 1}
		prizes, err := raffle.PrizeBreakdown(r)
		require.NoError(t, err)
		require.Len(t, prizes, 1)
		assert.True(t, prizes[0].Amount.Equal(dec("100.00")))
	})

	t.Run("grand_prize_exceeding_pool_rejected", func(t *testing.T) {
		r := &raffle.Raffle{
			TotalPrizePool:   dec("100.00"),
			GrandPrizeAmount: decPtr("200.00"),
			NumberOfWinners:  2,
		}
		_, err := raffle.PrizeBreakdown(r)
		assert.Equal(t, apperr.KindInvariant, apperr.KindOf(err))
	})

	t.Run("zero_winners_rejected", func(t *testing.T) {
		r := &raffle.Raffle{TotalPrizePool: dec("100.00"), NumberOfWinners: 0}
		_, err := raffle.PrizeBreakdown(r)
		assert.Equal(t, apperr.KindInvariant, apperr.KindOf(err))
	})
}

func entryWithTickets(tickets int) raffle.RaffleEntry {
	id, _ := uuid.NewV4()
	return raffle.RaffleEntry{ID: id, TicketCount: tickets, IsValid: true}
}

func TestDrawWinners(t *testing.T) {
	newRaffle := func(winners int) *raffle.Raffle {
		return &raffle.Raffle{TotalPrizePool: dec("300.00"), NumberOfWinners: winners}
	}

	t.Run("no_entry_wins_twice", func(t *testing.T) {
		entries := []raffle.RaffleEntry{
			entryWithTickets(10), entryWithTickets(5), entryWithTickets(1), entryWithTickets(20),
		}
		winners, err := raffle.DrawWinners(newRaffle(3), entries, 42)
		require.NoError(t, err)
		require.Len(t, winners, 3)

		seen := make(map[uuid.UUID]bool)
		for _, w := range winners {
			assert.False(t, seen[w.Entry.ID], "entry %s drawn twice", w.Entry.ID)
			seen[w.Entry.ID] = true
		}
		assert.Equal(t, 1, winners[0].Prize.Place)
		assert.Equal(t, 2, winners[1].Prize.Place)
		assert.Equal(t, 3, winners[2].Prize.Place)
	})

	t.Run("deterministic_for_same_seed", func(t *testing.T) {
		entries := []raffle.RaffleEntry{
			entryWithTickets(7), entryWithTickets(13), entryWithTickets(3),
		}
		first, err := raffle.DrawWinners(newRaffle(2), entries, 99)
		require.NoError(t, err)
		second, err := raffle.DrawWinners(newRaffle(2), entries, 99)
		require.NoError(t, err)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Entry.ID, second[i].Entry.ID)
		}
	})

	t.Run("disqualified_and_zero_ticket_entries_excluded", func(t *testing.T) {
		eligible := entryWithTickets(5)
		disqualified := entryWithTickets(1000)
		disqualified.Disqualified = true
		invalid := entryWithTickets(1000)
		invalid.IsValid = false
		zero := entryWithTickets(0)

		winners, err := raffle.DrawWinners(newRaffle(3), []raffle.RaffleEntry{eligible, disqualified, invalid, zero}, 7)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		assert.Equal(t, eligible.ID, winners[0].Entry.ID)
	})

	t.Run("fewer_entries_than_prizes_draws_what_it_can", func(t *testing.T) {
		entries := []raffle.RaffleEntry{entryWithTickets(1), entryWithTickets(1)}
		winners, err := raffle.DrawWinners(newRaffle(5), entries, 3)
		require.NoError(t, err)
		assert.Len(t, winners, 2)
	})

	t.Run("no_qualified_entries_rejected", func(t *testing.T) {
		bad := entryWithTickets(10)
		bad.Disqualified = true
		_, err := raffle.DrawWinners(newRaffle(1), []raffle.RaffleEntry{bad}, 1)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})
}

func TestRaffleEntry_TotalTickets(t *testing.T) {
	e := raffle.RaffleEntry{TicketCount: 47, BonusTickets: 3, ReferralTickets: 5}
	assert.Equal(t, 55, e.TotalTickets())
}
