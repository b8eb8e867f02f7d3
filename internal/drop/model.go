package drop

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

type ParticipantStatus string

const (
	ParticipantActive  ParticipantStatus = "active"
	ParticipantPending ParticipantStatus = "pending"
	ParticipantRemoved ParticipantStatus = "removed"
)

// Drop is a time-boxed collaborative selling event. The creator occupies one
// participant slot, so ParticipantCount includes them.
type Drop struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	Name                 string          `json:"name" db:"name"`
	Slug                 string          `json:"slug" db:"slug"`
	CreatedByUserID      uuid.UUID       `json:"created_by_user_id" db:"created_by_user_id"`
	Status               Status          `json:"status" db:"status"`
	CreatorRevenuePct    decimal.Decimal `json:"creator_revenue_percentage" db:"creator_revenue_percentage"`
	ParticipantRevPct    decimal.Decimal `json:"participant_revenue_percentage" db:"participant_revenue_percentage"`
	PlatformFeePct       decimal.Decimal `json:"platform_fee_percentage" db:"platform_fee_percentage"`
	ParticipantCount     int             `json:"participant_count" db:"participant_count"`
	MaxParticipants      *int            `json:"max_participants" db:"max_participants"`
	TotalSales           decimal.Decimal `json:"total_sales" db:"total_sales"`
	TotalOrders          int             `json:"total_orders" db:"total_orders"`
	StartDate            *time.Time      `json:"start_date" db:"start_date"`
	EndDate              *time.Time      `json:"end_date" db:"end_date"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
	LaunchedAt           *time.Time      `json:"launched_at,omitempty" db:"launched_at"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// CanJoin reports whether the drop accepts another participant.
func (d *Drop) CanJoin() bool {
	if d.Status != StatusScheduled && d.Status != StatusActive {
		return false
	}
	if d.MaxParticipants != nil && d.ParticipantCount >= *d.MaxParticipants {
		return false
	}
	return true
}

// DropParticipant is one non-creator collaborator row.
type DropParticipant struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	DropID            uuid.UUID         `json:"drop_id" db:"drop_id"`
	UserID            uuid.UUID         `json:"user_id" db:"user_id"`
	RevenuePct        decimal.Decimal   `json:"revenue_percentage" db:"revenue_percentage"`
	TotalSales        decimal.Decimal   `json:"total_sales" db:"total_sales"`
	TotalCommission   decimal.Decimal   `json:"total_commission" db:"total_commission"`
	Status            ParticipantStatus `json:"status" db:"status"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}
