package product

import (
	"context"
	"errors"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/instantin-me/commerce-core/internal/apperr"
)

// TxRunner matches the db-layer transaction helper without importing it.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	PublishProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	UnpublishProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

type service struct {
	tx     TxRunner
	repo   Repository
	ledger *Ledger
}

func NewService(tx TxRunner, repo Repository, ledger *Ledger) Service {
	return &service{tx: tx, repo: repo, ledger: ledger}
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if p.Name == "" {
		return nil, apperr.New(apperr.KindValidation, "product name is required")
	}
	if p.Price.IsNegative() {
		return nil, apperr.New(apperr.KindValidation, "product price cannot be negative")
	}
	if p.InventoryCount != nil && *p.InventoryCount < 0 {
		return nil, apperr.New(apperr.KindValidation, "inventory count cannot be negative")
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, err
	}
	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "product %s does not exist", id)
		}
		return nil, err
	}
	return p, nil
}

func (s *service) PublishProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.apply(ctx, id, s.ledger.Publish)
}

func (s *service) UnpublishProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.apply(ctx, id, s.ledger.Unpublish)
}

func (s *service) apply(ctx context.Context, id uuid.UUID, op func(Product) (Product, []Command, error)) (*Product, error) {
	var out Product
	err := s.tx.InTx(ctx, func(ctx context.Context, q Querier) error {
		p, err := s.repo.GetForUpdate(ctx, q, id)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return apperr.Wrap(apperr.KindNotFound, err, "product %s does not exist", id)
			}
			return err
		}
		updated, cmds, err := op(*p)
		if err != nil {
			return err
		}
		if err := s.repo.ApplyCommands(ctx, q, id, cmds); err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Stringer("product_id", id).Stringer("status", out.Status).Msg("service: product status updated")
	return &out, nil
}
