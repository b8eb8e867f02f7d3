package raffle

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusDrawing   Status = "drawing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// EntrySource identifies how an entry's tickets were earned.
type EntrySource string

const (
	SourcePurchase EntrySource = "purchase"
	SourceReferral EntrySource = "referral"
	SourceManual   EntrySource = "manual"
)

// Raffle defines one prize draw period.
type Raffle struct {
	ID                    uuid.UUID        `json:"id" db:"id"`
	Title                 string           `json:"title" db:"title"`
	Slug                  string           `json:"slug" db:"slug"`
	Status                Status           `json:"status" db:"status"`
	TicketPrice           decimal.Decimal  `json:"ticket_price" db:"ticket_price"`
	TicketsPerDollarSpent decimal.Decimal  `json:"tickets_per_dollar_spent" db:"tickets_per_dollar_spent"`
	TotalPrizePool        decimal.Decimal  `json:"total_prize_pool" db:"total_prize_pool"`
	GrandPrizeAmount      *decimal.Decimal `json:"grand_prize_amount" db:"grand_prize_amount"`
	NumberOfWinners       int              `json:"number_of_winners" db:"number_of_winners"`
	MaxEntriesPerUser     int              `json:"max_entries_per_user" db:"max_entries_per_user"`
	TotalEntries          int              `json:"total_entries" db:"total_entries"`
	TotalParticipants     int              `json:"total_participants" db:"total_participants"`
	TotalTickets          int              `json:"total_tickets" db:"total_tickets"`
	WinnersSelected       bool             `json:"winners_selected" db:"winners_selected"`
	WinnersAnnounced      bool             `json:"winners_announced" db:"winners_announced"`
	StartDate             time.Time        `json:"start_date" db:"start_date"`
	EndDate               time.Time        `json:"end_date" db:"end_date"`
	DrawingDate           *time.Time       `json:"drawing_date,omitempty" db:"drawing_date"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
	CompletedAt           *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// CanEnter reports whether the raffle currently accepts entries.
func (r *Raffle) CanEnter(now time.Time) bool {
	return r.Status == StatusActive && !now.Before(r.StartDate) && !now.After(r.EndDate)
}

// RaffleEntry is one user's stake in a raffle. Bonus and referral tickets are
// only ever added through explicit calls, never derived.
type RaffleEntry struct {
	ID                     uuid.UUID        `json:"id" db:"id"`
	RaffleID               uuid.UUID        `json:"raffle_id" db:"raffle_id"`
	UserID                 uuid.UUID        `json:"user_id" db:"user_id"`
	TicketCount            int              `json:"ticket_count" db:"ticket_count"`
	BonusTickets           int              `json:"bonus_tickets" db:"bonus_tickets"`
	ReferralTickets        int              `json:"referral_tickets" db:"referral_tickets"`
	QualifyingAmount       decimal.Decimal  `json:"qualifying_amount" db:"qualifying_amount"`
	EntrySource            EntrySource      `json:"entry_source" db:"entry_source"`
	SourceOrderID          *uuid.UUID       `json:"source_order_id,omitempty" db:"source_order_id"`
	IsValid                bool             `json:"is_valid" db:"is_valid"`
	Disqualified           bool             `json:"disqualified" db:"disqualified"`
	DisqualificationReason string           `json:"disqualification_reason,omitempty" db:"disqualification_reason"`
	IsWinner               bool             `json:"is_winner" db:"is_winner"`
	PrizePlace             *int             `json:"prize_place,omitempty" db:"prize_place"`
	PrizeAmount            *decimal.Decimal `json:"prize_amount,omitempty" db:"prize_amount"`
	PrizeClaimedAt         *time.Time       `json:"prize_claimed_at,omitempty" db:"prize_claimed_at"`
	CreatedAt              time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at" db:"updated_at"`
}

// TotalTickets is the entry's full weight in a draw: purchase tickets plus
// every bonus, never less than TicketCount.
func (e *RaffleEntry) TotalTickets() int {
	return e.TicketCount + e.BonusTickets + e.ReferralTickets
}

// Qualified reports whether the entry may take part in a winner draw.
func (e *RaffleEntry) Qualified() bool {
	return e.IsValid && !e.Disqualified
}
