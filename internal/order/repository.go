package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/instantin-me/commerce-core/internal/product"
)

type Repository interface {
	CreateOrder(ctx context.Context, q product.Querier, o *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Order, error)
	UpdateOrder(ctx context.Context, q product.Querier, o *Order) error
	SetItemCommitted(ctx context.Context, q product.Querier, itemID uuid.UUID, at time.Time) error
	ClearItemReservation(ctx context.Context, q product.Querier, itemID uuid.UUID) error
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

type postgresRepository struct {
	db product.Querier
}

func NewRepository(db product.Querier) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, storefront_id, drop_id, buyer_email, buyer_name, status,
		subtotal, tax, shipping, discount, platform_fee, total_amount, currency,
		payment_provider, external_transaction_id, tracking_number,
		refund_amount, refund_reason, internal_notes,
		created_at, updated_at, confirmed_at, shipped_at, delivered_at, refunded_at`

const itemColumns = `id, order_id, product_id, product_name, product_type, quantity,
		unit_price, total_price, inventory_reserved_at, inventory_committed_at,
		created_at, updated_at`

func (r *postgresRepository) CreateOrder(ctx context.Context, q product.Querier, o *Order) error {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", err)
		}
		o.ID = id
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO commerce.orders
			(id, storefront_id, drop_id, buyer_email, buyer_name, status,
			 subtotal, tax, shipping, discount, platform_fee, total_amount, currency,
			 payment_provider, external_transaction_id, tracking_number,
			 refund_amount, refund_reason, internal_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := q.Exec(ctx, queryOrder,
		o.ID, o.StorefrontID, o.DropID, o.BuyerEmail, o.BuyerName, string(o.Status),
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.PlatformFee, o.Total, o.Currency,
		string(o.PaymentProvider), o.ExternalTransactionID, o.TrackingNumber,
		o.RefundAmount, o.RefundReason, o.InternalNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO commerce.order_items
			(id, order_id, product_id, product_name, product_type, quantity,
			 unit_price, total_price, inventory_reserved_at, inventory_committed_at,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	for i := range o.Items {
		item := &o.Items[i]
		itemID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", err)
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now
		item.UpdatedAt = now

		_, err = q.Exec(ctx, queryItem,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductType, item.Quantity,
			item.UnitPrice, item.TotalPrice, item.InventoryReservedAt, item.InventoryCommittedAt,
			item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}
	return nil
}

func (r *postgresRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.get(ctx, r.db, id, false)
}

func (r *postgresRepository) GetOrderForUpdate(ctx context.Context, q product.Querier, id uuid.UUID) (*Order, error) {
	return r.get(ctx, q, id, true)
}

func (r *postgresRepository) get(ctx context.Context, q product.Querier, id uuid.UUID, forUpdate bool) (*Order, error) {
	queryOrder := `SELECT ` + orderColumns + ` FROM commerce.orders WHERE id = $1`
	if forUpdate {
		queryOrder += ` FOR UPDATE`
	}

	var o Order
	err := q.QueryRow(ctx, queryOrder, id).Scan(
		&o.ID, &o.StorefrontID, &o.DropID, &o.BuyerEmail, &o.BuyerName, &o.Status,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.PlatformFee, &o.Total, &o.Currency,
		&o.PaymentProvider, &o.ExternalTransactionID, &o.TrackingNumber,
		&o.RefundAmount, &o.RefundReason, &o.InternalNotes,
		&o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.RefundedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	queryItems := `SELECT ` + itemColumns + ` FROM commerce.order_items WHERE order_id = $1 ORDER BY created_at`
	rows, err := q.Query(ctx, queryItems, id)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order id %s: %w", id, err)
	}
	defer rows.Close()

	items := make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductType, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.InventoryReservedAt, &item.InventoryCommittedAt,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order id %s: %w", id, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order id %s: %w", id, err)
	}

	o.Items = items
	return &o, nil
}

func (r *postgresRepository) UpdateOrder(ctx context.Context, q product.Querier, o *Order) error {
	o.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE commerce.orders
		SET status = $1, subtotal = $2, tax = $3, shipping = $4, discount = $5,
			platform_fee = $6, total_amount = $7, payment_provider = $8,
			external_transaction_id = $9, tracking_number = $10,
			refund_amount = $11, refund_reason = $12, internal_notes = $13,
			updated_at = $14, confirmed_at = $15, shipped_at = $16,
			delivered_at = $17, refunded_at = $18
		WHERE id = $19
	`
	cmdTag, err := q.Exec(ctx, query,
		string(o.Status), o.Subtotal, o.Tax, o.Shipping, o.Discount,
		o.PlatformFee, o.Total, string(o.PaymentProvider),
		o.ExternalTransactionID, o.TrackingNumber,
		o.RefundAmount, o.RefundReason, o.InternalNotes,
		o.UpdatedAt, o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.RefundedAt,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update order %s: %w", o.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) SetItemCommitted(ctx context.Context, q product.Querier, itemID uuid.UUID, at time.Time) error {
	query := `
		UPDATE commerce.order_items
		SET inventory_committed_at = $1, updated_at = $2
		WHERE id = $3 AND inventory_reserved_at IS NOT NULL AND inventory_committed_at IS NULL
	`
	cmdTag, err := q.Exec(ctx, query, at, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to commit order item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: order item %s is not in a committable state", itemID)
	}
	return nil
}

func (r *postgresRepository) ClearItemReservation(ctx context.Context, q product.Querier, itemID uuid.UUID) error {
	query := `
		UPDATE commerce.order_items
		SET inventory_reserved_at = NULL, updated_at = $1
		WHERE id = $2 AND inventory_reserved_at IS NOT NULL AND inventory_committed_at IS NULL
	`
	cmdTag, err := q.Exec(ctx, query, time.Now().UTC(), itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear reservation on order item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("repository: order item %s has no releasable reservation", itemID)
	}
	return nil
}

// ListExpiredPending returns pending orders older than the cutoff, i.e.
// abandoned checkouts still holding reservations.
func (r *postgresRepository) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM commerce.orders
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, string(StatusPending), cutoff)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query expired pending orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository: failed to scan expired pending order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating expired pending orders: %w", err)
	}
	return ids, nil
}
