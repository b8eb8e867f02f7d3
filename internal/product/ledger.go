package product

import (
	"errors"

	"github.com/instantin-me/commerce-core/internal/apperr"
)

var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrQuantityLimitExceeded = errors.New("quantity exceeds per-order limit")
	ErrNotAvailable          = errors.New("product is not available for purchase")
)

// CommandType identifies a persisted side effect produced by a ledger call.
type CommandType string

const (
	CommandSetInventory CommandType = "set_inventory"
	CommandSetStatus    CommandType = "set_status"
	CommandAddSold      CommandType = "add_sold"
)

// Command is one persistence instruction emitted by the ledger. The ledger
// itself never touches storage; callers apply commands inside their own
// transaction.
type Command struct {
	Type      CommandType
	Inventory int
	Status    Status
	SoldDelta int
}

// Ledger mutates product inventory counters by value. Each operation takes a
// product snapshot and returns the updated snapshot plus the commands needed
// to persist the change.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve provisionally takes quantity units of stock. Reaching zero flips
// the product to sold_out. Unlimited products always succeed and are left
// untouched.
func (l *Ledger) Reserve(p Product, quantity int) (Product, []Command, error) {
	if quantity <= 0 {
		return p, nil, apperr.New(apperr.KindValidation, "reserve quantity must be positive, got %d", quantity)
	}
	if p.MaxQuantityPerOrder != nil && quantity > *p.MaxQuantityPerOrder {
		return p, nil, apperr.Wrap(apperr.KindValidation, ErrQuantityLimitExceeded,
			"maximum %d per order for product %s", *p.MaxQuantityPerOrder, p.ID)
	}
	if !p.Available() {
		return p, nil, apperr.Wrap(apperr.KindConflict, ErrNotAvailable, "product %s is not available", p.ID)
	}
	if p.Unlimited() {
		return p, nil, nil
	}
	if *p.InventoryCount < quantity {
		return p, nil, apperr.Wrap(apperr.KindConflict, ErrInsufficientInventory,
			"only %d of product %s available", *p.InventoryCount, p.ID)
	}

	remaining := *p.InventoryCount - quantity
	p.InventoryCount = &remaining

	cmds := []Command{{Type: CommandSetInventory, Inventory: remaining}}
	if remaining == 0 {
		p.Status = StatusSoldOut
		cmds = append(cmds, Command{Type: CommandSetStatus, Status: StatusSoldOut})
	}
	return p, cmds, nil
}

// Release returns quantity units of a previous reservation to stock. The
// order lifecycle guarantees a release never exceeds what was reserved.
func (l *Ledger) Release(p Product, quantity int) (Product, []Command, error) {
	if quantity <= 0 {
		return p, nil, apperr.New(apperr.KindValidation, "release quantity must be positive, got %d", quantity)
	}
	if p.Unlimited() {
		return p, nil, nil
	}

	restored := *p.InventoryCount + quantity
	p.InventoryCount = &restored

	cmds := []Command{{Type: CommandSetInventory, Inventory: restored}}
	if p.Status == StatusSoldOut && restored > 0 {
		p.Status = StatusActive
		cmds = append(cmds, Command{Type: CommandSetStatus, Status: StatusActive})
	}
	return p, cmds, nil
}

// Commit converts a reservation into a recorded sale. Stock was already
// decremented at Reserve, so only the sold counter moves.
func (l *Ledger) Commit(p Product, quantity int) (Product, []Command, error) {
	if quantity <= 0 {
		return p, nil, apperr.New(apperr.KindValidation, "commit quantity must be positive, got %d", quantity)
	}
	p.SoldCount += quantity
	return p, []Command{{Type: CommandAddSold, SoldDelta: quantity}}, nil
}

// Publish moves a draft or inactive product onto the storefront.
func (l *Ledger) Publish(p Product) (Product, []Command, error) {
	if p.Status != StatusDraft && p.Status != StatusInactive {
		return p, nil, apperr.New(apperr.KindConflict, "cannot publish product %s in status %s", p.ID, p.Status)
	}
	p.Status = StatusActive
	return p, []Command{{Type: CommandSetStatus, Status: StatusActive}}, nil
}

// Unpublish hides an active product without archiving it.
func (l *Ledger) Unpublish(p Product) (Product, []Command, error) {
	if p.Status != StatusActive && p.Status != StatusSoldOut {
		return p, nil, apperr.New(apperr.KindConflict, "cannot unpublish product %s in status %s", p.ID, p.Status)
	}
	p.Status = StatusInactive
	return p, []Command{{Type: CommandSetStatus, Status: StatusInactive}}, nil
}
