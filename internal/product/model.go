package product

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusSoldOut  Status = "sold_out"
	StatusArchived Status = "archived"
)

func (s Status) String() string {
	return string(s)
}

type Type string

const (
	TypeDigital  Type = "digital"
	TypePhysical Type = "physical"
	TypeService  Type = "service"
)

// Product is a storefront listing. InventoryCount of nil means unlimited
// stock; MaxQuantityPerOrder of nil means no per-order cap.
type Product struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	StorefrontID        uuid.UUID       `json:"storefront_id" db:"storefront_id"`
	Name                string          `json:"name" db:"name"`
	Slug                string          `json:"slug" db:"slug"`
	ProductType         Type            `json:"product_type" db:"product_type"`
	Price               decimal.Decimal `json:"price" db:"price"`
	Status              Status          `json:"status" db:"status"`
	InventoryCount      *int            `json:"inventory_count" db:"inventory_count"`
	SoldCount           int             `json:"sold_count" db:"sold_count"`
	MaxQuantityPerOrder *int            `json:"max_quantity_per_order" db:"max_quantity_per_order"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// Unlimited reports whether the product has no finite stock counter.
func (p *Product) Unlimited() bool {
	return p.InventoryCount == nil
}

// Available reports whether the product can currently be purchased.
func (p *Product) Available() bool {
	if p.Status != StatusActive {
		return false
	}
	if p.InventoryCount != nil && *p.InventoryCount <= 0 {
		return false
	}
	return true
}
