package raffle

import (
	"math/rand/v2"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/apperr"
)

// TicketsFor converts qualifying spend into purchase tickets:
// floor(amount * rate). Bonus and referral tickets never come from here.
func TicketsFor(qualifyingAmount, ticketsPerDollar decimal.Decimal) (int, error) {
	if qualifyingAmount.IsNegative() {
		return 0, apperr.New(apperr.KindValidation, "qualifying amount cannot be negative, got %s", qualifyingAmount)
	}
	if ticketsPerDollar.IsNegative() {
		return 0, apperr.New(apperr.KindInvariant, "tickets per dollar rate cannot be negative, got %s", ticketsPerDollar)
	}
	return int(qualifyingAmount.Mul(ticketsPerDollar).Floor().IntPart()), nil
}

// Prize is one place in the prize breakdown.
type Prize struct {
	Place  int             `json:"place"`
	Amount decimal.Decimal `json:"amount"`
	Label  string          `json:"label"`
}

// PrizeBreakdown distributes the raffle's prize pool across its winner
// places. When a grand prize is configured, place 1 receives exactly that
// amount and the pool remainder splits evenly over places 2..N. Without a
// grand prize the whole pool splits evenly over all N places. Amounts round
// half-up to cents; the rounding residual lands on place 1 so the breakdown
// always sums to the pool.
func PrizeBreakdown(r *Raffle) ([]Prize, error) {
	if r.NumberOfWinners < 1 {
		return nil, apperr.New(apperr.KindInvariant, "raffle %s has %d winners configured", r.ID, r.NumberOfWinners)
	}
	if r.TotalPrizePool.IsNegative() {
		return nil, apperr.New(apperr.KindInvariant, "raffle %s has a negative prize pool", r.ID)
	}

	pool := r.TotalPrizePool
	prizes := make([]Prize, 0, r.NumberOfWinners)

	if r.GrandPrizeAmount != nil {
		grand := *r.GrandPrizeAmount
		if grand.GreaterThan(pool) {
			return nil, apperr.New(apperr.KindInvariant,
				"raffle %s grand prize %s exceeds prize pool %s", r.ID, grand, pool)
		}
		prizes = append(prizes, Prize{Place: 1, Amount: grand, Label: "Grand Prize"})
		remainder := pool.Sub(grand)
		if r.NumberOfWinners > 1 {
			prizes = append(prizes, evenSplit(remainder, 2, r.NumberOfWinners)...)
		}
		return prizes, nil
	}

	return evenSplit(pool, 1, r.NumberOfWinners), nil
}

// evenSplit divides amount over places first..last, residual cent to the
// first place of the range.
func evenSplit(amount decimal.Decimal, first, last int) []Prize {
	places := last - first + 1
	per := amount.Div(decimal.NewFromInt(int64(places))).Round(2)
	residual := amount.Sub(per.Mul(decimal.NewFromInt(int64(places))))

	prizes := make([]Prize, 0, places)
	for place := first; place <= last; place++ {
		p := Prize{Place: place, Amount: per, Label: ordinal(place) + " Place"}
		if place == first {
			p.Amount = p.Amount.Add(residual)
		}
		prizes = append(prizes, p)
	}
	return prizes
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// Winner pairs a drawn entry with its prize.
type Winner struct {
	Entry RaffleEntry
	Prize Prize
}

// DrawWinners selects prize winners from the qualified entries by weighted
// random draw without replacement: each entry's chance is proportional to its
// total tickets, and no entry wins more than one place. The draw is
// deterministic for a given seed so it can be audited and replayed.
func DrawWinners(r *Raffle, entries []RaffleEntry, seed uint64) ([]Winner, error) {
	prizes, err := PrizeBreakdown(r)
	if err != nil {
		return nil, err
	}

	pool := make([]RaffleEntry, 0, len(entries))
	totalWeight := 0
	for _, e := range entries {
		if !e.Qualified() || e.TotalTickets() <= 0 {
			continue
		}
		pool = append(pool, e)
		totalWeight += e.TotalTickets()
	}
	if len(pool) == 0 {
		return nil, apperr.New(apperr.KindConflict, "raffle %s has no qualified entries to draw from", r.ID)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	winners := make([]Winner, 0, len(prizes))
	for _, prize := range prizes {
		if len(pool) == 0 {
			break
		}
		pick := rng.IntN(totalWeight)
		idx := 0
		for i, e := range pool {
			pick -= e.TotalTickets()
			if pick < 0 {
				idx = i
				break
			}
		}
		chosen := pool[idx]
		winners = append(winners, Winner{Entry: chosen, Prize: prize})

		totalWeight -= chosen.TotalTickets()
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners, nil
}
