package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instantin-me/commerce-core/internal/order"
	"github.com/instantin-me/commerce-core/internal/product"
)

func TestSweeper_SweepOnce(t *testing.T) {
	t.Run("fails_expired_pending_orders", func(t *testing.T) {
		f := newFixture("2.9")
		stale := pendingOrder(t, "30.00")
		f.orderRepo.listExpiredPendingFunc = func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			assert.True(t, cutoff.Before(time.Now().UTC()))
			return []uuid.UUID{stale.ID}, nil
		}
		f.orderRepo.getOrderForUpdateFunc = func(ctx context.Context, q product.Querier, id uuid.UUID) (*order.Order, error) {
			require.Equal(t, stale.ID, id)
			return stale, nil
		}
		inventory := 3
		f.productRepo.getForUpdateFunc = func(ctx context.Context, q product.Querier, id uuid.UUID) (*product.Product, error) {
			return &product.Product{ID: id, Status: product.StatusActive, InventoryCount: &inventory}, nil
		}
		var released int
		f.orderRepo.clearItemReservationFunc = func(ctx context.Context, q product.Querier, itemID uuid.UUID) error {
			released++
			return nil
		}

		sweeper := order.NewSweeper(f.svc, f.orderRepo, 15*time.Minute, time.Minute)
		sweeper.SweepOnce(context.Background())

		assert.Equal(t, order.StatusFailed, stale.Status)
		assert.Equal(t, 1, released)
	})

	t.Run("order_confirmed_mid_sweep_keeps_its_payment", func(t *testing.T) {
		f := newFixture("2.9")
		confirmed := pendingOrder(t, "30.00")
		confirmed.Status = order.StatusProcessing
		committedAt := time.Now().UTC()
		confirmed.Items[0].InventoryCommittedAt = &committedAt
		f.orderRepo.listExpiredPendingFunc = func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			return []uuid.UUID{confirmed.ID}, nil
		}
		f.orderRepo.getOrderForUpdateFunc = func(ctx context.Context, q product.Querier, id uuid.UUID) (*order.Order, error) {
			return confirmed, nil
		}
		f.orderRepo.updateOrderFunc = func(ctx context.Context, q product.Querier, o *order.Order) error {
			t.Fatal("confirmed order must not be rewritten by the sweeper")
			return nil
		}
		f.orderRepo.clearItemReservationFunc = func(ctx context.Context, q product.Querier, itemID uuid.UUID) error {
			t.Fatal("committed inventory must not be released")
			return nil
		}

		sweeper := order.NewSweeper(f.svc, f.orderRepo, 15*time.Minute, time.Minute)
		sweeper.SweepOnce(context.Background())

		assert.Equal(t, order.StatusProcessing, confirmed.Status)
	})

	t.Run("cancelled_order_listed_stale_is_skipped", func(t *testing.T) {
		f := newFixture("2.9")
		cancelled := pendingOrder(t, "30.00")
		cancelled.Status = order.StatusCancelled
		f.orderRepo.listExpiredPendingFunc = func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
			return []uuid.UUID{cancelled.ID}, nil
		}
		f.orderRepo.getOrderForUpdateFunc = func(ctx context.Context, q product.Querier, id uuid.UUID) (*order.Order, error) {
			return cancelled, nil
		}

		sweeper := order.NewSweeper(f.svc, f.orderRepo, 15*time.Minute, time.Minute)
		sweeper.SweepOnce(context.Background())

		assert.Equal(t, order.StatusCancelled, cancelled.Status)
	})
}
