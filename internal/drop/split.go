package drop

import (
	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/apperr"
)

var oneHundred = decimal.NewFromInt(100)

// SplitResult is the outcome of dividing drop revenue. ParticipantShare is
// the amount owed to EACH non-creator participant.
type SplitResult struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
	CreatorShare     decimal.Decimal `json:"creator_share"`
	ParticipantShare decimal.Decimal `json:"participant_share"`
	RemainingRevenue decimal.Decimal `json:"remaining_revenue"`
}

// Split divides totalRevenue between the platform, the drop creator and the
// non-creator participants. participantCount includes the creator as one
// slot, so the participant pool divides by participantCount-1.
//
// All outputs are rounded half-up to cents. The cent that division can leave
// unaccounted is absorbed by the creator share, keeping
// platformFee + creatorShare + participantShare*(n-1) == totalRevenue exact.
func Split(totalRevenue, platformFeePct, creatorPct decimal.Decimal, participantCount int) (SplitResult, error) {
	if totalRevenue.IsNegative() {
		return SplitResult{}, apperr.New(apperr.KindValidation, "total revenue cannot be negative, got %s", totalRevenue)
	}
	if participantCount < 1 {
		return SplitResult{}, apperr.New(apperr.KindValidation, "participant count must be at least 1, got %d", participantCount)
	}
	for _, pct := range []decimal.Decimal{platformFeePct, creatorPct} {
		if pct.IsNegative() || pct.GreaterThan(oneHundred) {
			return SplitResult{}, apperr.New(apperr.KindInvariant, "revenue percentage %s is outside [0, 100]", pct)
		}
	}
	if platformFeePct.Add(creatorPct).GreaterThan(oneHundred) {
		return SplitResult{}, apperr.New(apperr.KindInvariant,
			"platform fee %s%% and creator share %s%% sum over 100%%", platformFeePct, creatorPct)
	}

	platformFee := totalRevenue.Mul(platformFeePct).Div(oneHundred).Round(2)
	remaining := totalRevenue.Sub(platformFee)
	creatorShare := remaining.Mul(creatorPct).Div(oneHundred).Round(2)

	participantShare := decimal.Zero
	if participantCount > 1 {
		pool := remaining.Sub(creatorShare)
		others := decimal.NewFromInt(int64(participantCount - 1))
		participantShare = pool.Div(others).Round(2)
		// Rounding residual, positive or negative, lands on the creator.
		creatorShare = creatorShare.Add(pool.Sub(participantShare.Mul(others)))
	}

	return SplitResult{
		TotalRevenue:     totalRevenue,
		PlatformFee:      platformFee,
		CreatorShare:     creatorShare,
		ParticipantShare: participantShare,
		RemainingRevenue: remaining,
	}, nil
}
