package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether no further transition can leave the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPayPal PaymentProvider = "paypal"
	ProviderManual PaymentProvider = "manual"
	ProviderFree   PaymentProvider = "free"
)

// OrderItem is one line of an order. Product name, type and price are
// snapshotted at purchase time so order history survives later product edits.
type OrderItem struct {
	ID                   uuid.UUID       `json:"id" db:"id"`
	OrderID              uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID            uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName          string          `json:"product_name" db:"product_name"`
	ProductType          string          `json:"product_type" db:"product_type"`
	Quantity             int             `json:"quantity" db:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice           decimal.Decimal `json:"total_price" db:"total_price"`
	InventoryReservedAt  *time.Time      `json:"inventory_reserved_at" db:"inventory_reserved_at"`
	InventoryCommittedAt *time.Time      `json:"inventory_committed_at" db:"inventory_committed_at"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// Reserved reports whether inventory has been provisionally taken for the line.
func (i *OrderItem) Reserved() bool {
	return i.InventoryReservedAt != nil
}

// Committed reports whether the line's reservation became a recorded sale.
func (i *OrderItem) Committed() bool {
	return i.InventoryCommittedAt != nil
}

type Order struct {
	ID                    uuid.UUID        `json:"id" db:"id"`
	StorefrontID          uuid.UUID        `json:"storefront_id" db:"storefront_id"`
	DropID                *uuid.UUID       `json:"drop_id,omitempty" db:"drop_id"`
	BuyerEmail            string           `json:"buyer_email" db:"buyer_email"`
	BuyerName             string           `json:"buyer_name,omitempty" db:"buyer_name"`
	Status                Status           `json:"status" db:"status"`
	Items                 []OrderItem      `json:"items" db:"-"`
	Subtotal              decimal.Decimal  `json:"subtotal" db:"subtotal"`
	Tax                   decimal.Decimal  `json:"tax" db:"tax"`
	Shipping              decimal.Decimal  `json:"shipping" db:"shipping"`
	Discount              decimal.Decimal  `json:"discount" db:"discount"`
	PlatformFee           decimal.Decimal  `json:"platform_fee" db:"platform_fee"`
	Total                 decimal.Decimal  `json:"total_amount" db:"total_amount"`
	Currency              string           `json:"currency" db:"currency"`
	PaymentProvider       PaymentProvider  `json:"payment_provider" db:"payment_provider"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty" db:"external_transaction_id"`
	TrackingNumber        string           `json:"tracking_number,omitempty" db:"tracking_number"`
	RefundAmount          *decimal.Decimal `json:"refund_amount,omitempty" db:"refund_amount"`
	RefundReason          string           `json:"refund_reason,omitempty" db:"refund_reason"`
	InternalNotes         string           `json:"-" db:"internal_notes"`
	CreatedAt             time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at" db:"updated_at"`
	ConfirmedAt           *time.Time       `json:"confirmed_at,omitempty" db:"confirmed_at"`
	ShippedAt             *time.Time       `json:"shipped_at,omitempty" db:"shipped_at"`
	DeliveredAt           *time.Time       `json:"delivered_at,omitempty" db:"delivered_at"`
	RefundedAt            *time.Time       `json:"refunded_at,omitempty" db:"refunded_at"`
}

// RecalculateTotal derives the order total from its components. The total is
// never written directly; every mutation of a component calls this.
func (o *Order) RecalculateTotal() {
	o.Total = o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount).Add(o.PlatformFee)
}

// Paid reports whether payment has been confirmed for the order.
func (o *Order) Paid() bool {
	switch o.Status {
	case StatusProcessing, StatusShipped, StatusDelivered:
		return true
	}
	return false
}
