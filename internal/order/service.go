package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/instantin-me/commerce-core/internal/apperr"
	"github.com/instantin-me/commerce-core/internal/product"
)

// allowedTransitions is the order state machine. A missing entry means the
// transition is rejected.
var allowedTransitions = map[Status]map[Status]bool{
	StatusDraft: {
		StatusPending: true,
		StatusFailed:  true,
	},
	StatusPending: {
		StatusProcessing: true,
		StatusCancelled:  true,
		StatusFailed:     true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusCancelled: true,
		StatusRefunded:  true,
		StatusFailed:    true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusRefunded:  true,
		StatusFailed:    true,
	},
	StatusDelivered: {
		StatusRefunded: true,
	},
	StatusCancelled: {},
	StatusRefunded:  {},
	StatusFailed:    {},
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrAmountMismatch          = errors.New("payment amount does not match order total")
)

// DropSales accrues confirmed order revenue onto a drop, within the caller's
// transaction. Implemented by the drop repository.
type DropSales interface {
	RecordSale(ctx context.Context, q product.Querier, dropID uuid.UUID, amount decimal.Decimal) error
}

// Notifier is fire-and-forget: failures are logged by the implementation and
// never affect commerce state.
type Notifier interface {
	Publish(ctx context.Context, event string, payload any)
}

// PaymentConfirmation is the inbound event from the payment collaborator.
type PaymentConfirmation struct {
	Provider              PaymentProvider `json:"provider"`
	ExternalTransactionID string          `json:"external_transaction_id"`
	Amount                decimal.Decimal `json:"amount"`
}

// CreateOrderItemInput is one requested line at checkout.
type CreateOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type CreateOrderInput struct {
	StorefrontID uuid.UUID              `json:"storefront_id"`
	DropID       *uuid.UUID             `json:"drop_id,omitempty"`
	BuyerEmail   string                 `json:"buyer_email"`
	BuyerName    string                 `json:"buyer_name,omitempty"`
	Items        []CreateOrderItemInput `json:"items"`
	Tax          decimal.Decimal        `json:"tax"`
	Shipping     decimal.Decimal        `json:"shipping"`
	Discount     decimal.Decimal        `json:"discount"`
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, confirmation PaymentConfirmation) (*Order, error)
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error)
	RefundOrder(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, reason string) (*Order, error)
	FailOrder(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error)
	ExpireOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
}

type service struct {
	tx             product.TxRunner
	orderRepo      Repository
	productRepo    product.Repository
	ledger         *product.Ledger
	dropSales      DropSales
	notifier       Notifier
	platformFeePct decimal.Decimal
}

// NewService wires the order lifecycle. platformFeePct is the platform's cut
// of the subtotal, in percent.
func NewService(tx product.TxRunner, orderRepo Repository, productRepo product.Repository, ledger *product.Ledger, dropSales DropSales, notifier Notifier, platformFeePct decimal.Decimal) Service {
	return &service{
		tx:             tx,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		ledger:         ledger,
		dropSales:      dropSales,
		notifier:       notifier,
		platformFeePct: platformFeePct,
	}
}

func validateTransition(o *Order, to Status) error {
	if allowed, ok := allowedTransitions[o.Status]; !ok || !allowed[to] {
		return apperr.Wrap(apperr.KindConflict, ErrInvalidStatusTransition,
			"order %s cannot go from %s to %s", o.ID, o.Status, to)
	}
	return nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "order must contain at least one item")
	}
	if input.BuyerEmail == "" {
		return nil, apperr.New(apperr.KindValidation, "buyer email is required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, apperr.New(apperr.KindValidation, "product id in order item cannot be nil")
		}
		if item.Quantity <= 0 {
			return nil, apperr.New(apperr.KindValidation,
				"order item quantity for product %s must be greater than zero", item.ProductID)
		}
	}
	for _, amount := range []decimal.Decimal{input.Tax, input.Shipping, input.Discount} {
		if amount.IsNegative() {
			return nil, apperr.New(apperr.KindValidation, "order amounts cannot be negative")
		}
	}

	o := &Order{
		StorefrontID:    input.StorefrontID,
		DropID:          input.DropID,
		BuyerEmail:      input.BuyerEmail,
		BuyerName:       input.BuyerName,
		Status:          StatusDraft,
		Tax:             input.Tax,
		Shipping:        input.Shipping,
		Discount:        input.Discount,
		Currency:        "USD",
		PaymentProvider: ProviderManual,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		now := time.Now().UTC()
		subtotal := decimal.Zero

		for _, in := range input.Items {
			p, err := s.productRepo.GetForUpdate(ctx, q, in.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrProductNotFound) {
					return apperr.Wrap(apperr.KindNotFound, err, "product %s does not exist", in.ProductID)
				}
				return err
			}

			_, cmds, err := s.ledger.Reserve(*p, in.Quantity)
			if err != nil {
				return err
			}
			if err := s.productRepo.ApplyCommands(ctx, q, p.ID, cmds); err != nil {
				return err
			}

			reservedAt := now
			lineTotal := p.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
			o.Items = append(o.Items, OrderItem{
				ProductID:           p.ID,
				ProductName:         p.Name,
				ProductType:         string(p.ProductType),
				Quantity:            in.Quantity,
				UnitPrice:           p.Price,
				TotalPrice:          lineTotal,
				InventoryReservedAt: &reservedAt,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		o.Subtotal = subtotal
		o.PlatformFee = subtotal.Mul(s.platformFeePct).Div(decimal.NewFromInt(100)).Round(2)
		o.RecalculateTotal()
		if o.Total.IsNegative() {
			return apperr.New(apperr.KindInvariant, "order total is negative")
		}

		// Checkout submission moves the draft straight to pending with the
		// reservations held.
		o.Status = StatusPending
		return s.orderRepo.CreateOrder(ctx, q, o)
	})
	if err != nil {
		log.Warn().Err(err).Str("buyer_email", input.BuyerEmail).Msg("service: failed to create order")
		return nil, err
	}

	log.Info().Stringer("order_id", o.ID).Stringer("storefront_id", o.StorefrontID).Msg("service: order created")
	s.notifier.Publish(ctx, "order.created", o)
	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "order %s does not exist", id)
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, confirmation PaymentConfirmation) (*Order, error) {
	var confirmed *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if err := validateTransition(o, StatusProcessing); err != nil {
			return err
		}
		if !confirmation.Amount.Equal(o.Total) {
			return apperr.Wrap(apperr.KindValidation, ErrAmountMismatch,
				"order %s total is %s, confirmation carries %s", o.ID, o.Total, confirmation.Amount)
		}

		now := time.Now().UTC()
		for i := range o.Items {
			item := &o.Items[i]
			if item.Committed() {
				return apperr.New(apperr.KindInvariant, "order item %s already committed", item.ID)
			}
			p, err := s.productRepo.GetForUpdate(ctx, q, item.ProductID)
			if err != nil {
				return err
			}
			_, cmds, err := s.ledger.Commit(*p, item.Quantity)
			if err != nil {
				return err
			}
			if err := s.productRepo.ApplyCommands(ctx, q, p.ID, cmds); err != nil {
				return err
			}
			if err := s.orderRepo.SetItemCommitted(ctx, q, item.ID, now); err != nil {
				return err
			}
			item.InventoryCommittedAt = &now
		}

		o.Status = StatusProcessing
		o.ConfirmedAt = &now
		o.PaymentProvider = confirmation.Provider
		o.ExternalTransactionID = confirmation.ExternalTransactionID
		if err := s.orderRepo.UpdateOrder(ctx, q, o); err != nil {
			return err
		}

		if o.DropID != nil {
			if err := s.dropSales.RecordSale(ctx, q, *o.DropID, o.Total); err != nil {
				return err
			}
		}
		confirmed = o
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to confirm payment")
		return nil, err
	}

	log.Info().Stringer("order_id", orderID).Str("provider", string(confirmed.PaymentProvider)).Msg("service: payment confirmed")
	s.notifier.Publish(ctx, "order.confirmed", confirmed)
	return confirmed, nil
}

func (s *service) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*Order, error) {
	var shipped *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if err := validateTransition(o, StatusShipped); err != nil {
			return err
		}
		now := time.Now().UTC()
		o.Status = StatusShipped
		o.ShippedAt = &now
		o.TrackingNumber = trackingNumber
		shipped = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("order_id", orderID).Str("tracking_number", trackingNumber).Msg("service: order shipped")
	return shipped, nil
}

func (s *service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var delivered *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if err := validateTransition(o, StatusDelivered); err != nil {
			return err
		}
		now := time.Now().UTC()
		o.Status = StatusDelivered
		o.DeliveredAt = &now
		delivered = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("order_id", orderID).Msg("service: order delivered")
	return delivered, nil
}

// CancelOrder releases every reserved-but-uncommitted line. Lines already
// committed by payment stay sold; recovering their value goes through
// RefundOrder instead.
func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error) {
	var cancelled *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusPending && o.Status != StatusProcessing {
			return apperr.Wrap(apperr.KindConflict, ErrInvalidStatusTransition,
				"order %s in status %s cannot be cancelled", o.ID, o.Status)
		}
		if err := s.releaseUncommitted(ctx, q, o); err != nil {
			return err
		}
		o.Status = StatusCancelled
		if reason != "" {
			o.InternalNotes = "Cancelled: " + reason
		}
		cancelled = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
		return nil, err
	}
	log.Info().Stringer("order_id", orderID).Str("reason", reason).Msg("service: order cancelled")
	s.notifier.Publish(ctx, "order.cancelled", cancelled)
	return cancelled, nil
}

// RefundOrder reverses payment value only. Inventory is not re-released:
// the sale was committed when payment confirmed.
func (s *service) RefundOrder(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, reason string) (*Order, error) {
	if !amount.IsPositive() {
		return nil, apperr.New(apperr.KindValidation, "refund amount must be positive, got %s", amount)
	}
	var refunded *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if err := validateTransition(o, StatusRefunded); err != nil {
			return err
		}
		if amount.GreaterThan(o.Total) {
			return apperr.New(apperr.KindValidation,
				"refund amount %s exceeds order total %s", amount, o.Total)
		}
		now := time.Now().UTC()
		o.Status = StatusRefunded
		o.RefundAmount = &amount
		o.RefundReason = reason
		o.RefundedAt = &now
		refunded = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to refund order")
		return nil, err
	}
	log.Info().Stringer("order_id", orderID).Stringer("refund_amount", amount).Msg("service: order refunded")
	s.notifier.Publish(ctx, "order.refunded", refunded)
	return refunded, nil
}

// FailOrder aborts any non-terminal order, returning reserved-but-uncommitted
// inventory to stock.
func (s *service) FailOrder(ctx context.Context, orderID uuid.UUID, reason string) (*Order, error) {
	var failed *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.Wrap(apperr.KindConflict, ErrInvalidStatusTransition,
				"order %s is already terminal in status %s", o.ID, o.Status)
		}
		if err := s.releaseUncommitted(ctx, q, o); err != nil {
			return err
		}
		o.Status = StatusFailed
		if reason != "" {
			o.InternalNotes = "Failed: " + reason
		}
		failed = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to fail order")
		return nil, err
	}
	log.Info().Stringer("order_id", orderID).Str("reason", reason).Msg("service: order failed")
	s.notifier.Publish(ctx, "order.failed", failed)
	return failed, nil
}

// ExpireOrder fails an order whose inventory reservation outlived its TTL.
// The pending check runs under the row lock, so an order confirmed after it
// was listed for expiry is left untouched and a nil order is returned.
func (s *service) ExpireOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var expired *Order
	err := s.tx.InTx(ctx, func(ctx context.Context, q product.Querier) error {
		o, err := s.getForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}
		if o.Status != StatusPending {
			return nil
		}
		if err := s.releaseUncommitted(ctx, q, o); err != nil {
			return err
		}
		o.Status = StatusFailed
		o.InternalNotes = "Failed: reservation expired"
		expired = o
		return s.orderRepo.UpdateOrder(ctx, q, o)
	})
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: failed to expire order")
		return nil, err
	}
	if expired == nil {
		return nil, nil
	}
	log.Info().Stringer("order_id", orderID).Msg("service: order expired")
	s.notifier.Publish(ctx, "order.failed", expired)
	return expired, nil
}

func (s *service) getForUpdate(ctx context.Context, q product.Querier, orderID uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetOrderForUpdate(ctx, q, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "order %s does not exist", orderID)
		}
		return nil, err
	}
	return o, nil
}

// releaseUncommitted returns stock for every line that was reserved but never
// committed. The reservation stamp is cleared so a release can never run
// twice for the same line.
func (s *service) releaseUncommitted(ctx context.Context, q product.Querier, o *Order) error {
	for i := range o.Items {
		item := &o.Items[i]
		if !item.Reserved() || item.Committed() {
			continue
		}
		p, err := s.productRepo.GetForUpdate(ctx, q, item.ProductID)
		if err != nil {
			return err
		}
		_, cmds, err := s.ledger.Release(*p, item.Quantity)
		if err != nil {
			return err
		}
		if err := s.productRepo.ApplyCommands(ctx, q, p.ID, cmds); err != nil {
			return err
		}
		if err := s.orderRepo.ClearItemReservation(ctx, q, item.ID); err != nil {
			return err
		}
		item.InventoryReservedAt = nil
	}
	return nil
}
