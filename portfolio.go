package coinfolio

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/coinfolio/logger"
)

// Position is a user's holding of one coin. ID is assigned by the store.
type Position struct {
	ID     string
	UserID string
	CoinID string
	Amount Quantity
}

// MarshalJSON writes the position without its user id.
func (p Position) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("coin", p.CoinID)
	w.Append("amount", p.Amount)
	return w.MarshalJSON()
}

// Portfolio holds the positions of the session user and applies mutations to
// them through a PositionStore.
//
// The in-memory list mirrors the store: it changes only after the store
// accepted a mutation, so that a failed mutation leaves it untouched.
// Mutations are serialized.
type Portfolio struct {
	mu        sync.Mutex
	session   *Session
	store     PositionStore
	positions []Position
	log       *logger.Entry
}

// NewPortfolio returns an empty portfolio for the session user. Call Load to
// read the stored positions.
func NewPortfolio(s *Session, store PositionStore) *Portfolio {
	return &Portfolio{
		session: s,
		store:   store,
		log:     logger.GetLogger().WithComponent("portfolio"),
	}
}

// Load replaces the positions with the stored ones. On failure the positions
// are left as they were.
func (p *Portfolio) Load(ctx context.Context) error {
	userID, err := p.session.requireUser()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	positions, err := p.store.ListPositions(ctx, userID)
	if err != nil {
		p.log.WithError(err).Warn("cannot list positions")
		return &PersistenceError{Op: "list positions", Err: err}
	}
	p.positions = positions
	return nil
}

// Positions returns a copy of the positions in store order.
func (p *Portfolio) Positions() []Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.positions)
}

// Valuation values the current positions in the session currency.
func (p *Portfolio) Valuation(prices PriceSnapshot, catalog Catalog) Valuation {
	return ComputeRows(p.Positions(), prices, catalog, p.session.Currency.Code)
}

// parseAmount parses a user amount. Negative amounts are rejected, zero is a
// valid holding.
func parseAmount(text string) (Quantity, error) {
	q, err := ParseQuantity(text)
	if err != nil {
		return Quantity{}, &ValidationError{Field: "amount", Err: err}
	}
	if q.IsNegative() {
		return Quantity{}, invalid("amount", "%s is negative", q)
	}
	return q, nil
}

// AddOrUpdate adds amountText to the user's position on coinID, creating the
// position if there is none. Adding twice to the same coin accumulates into a
// single position.
//
// Input is validated before the store is called. When the store implements
// PositionIncrementer the addition is atomic, otherwise the existing position
// is read then updated.
func (p *Portfolio) AddOrUpdate(ctx context.Context, coinID, amountText string) (Position, error) {
	userID, err := p.session.requireUser()
	if err != nil {
		return Position{}, err
	}
	coinID = strings.TrimSpace(coinID)
	if coinID == "" {
		return Position{}, invalid("coin", "no coin selected")
	}
	amount, err := parseAmount(amountText)
	if err != nil {
		return Position{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var pos Position
	if inc, ok := p.store.(PositionIncrementer); ok {
		pos, err = inc.IncrementPosition(ctx, userID, coinID, amount)
	} else {
		pos, err = p.readThenWrite(ctx, userID, coinID, amount)
	}
	if err != nil {
		p.log.WithError(err).WithFields(logger.Fields{"coin": coinID}).Warn("cannot add to position")
		return Position{}, &PersistenceError{Op: "save position", Err: err}
	}
	p.upsert(pos)
	p.log.WithFields(logger.Fields{"coin": coinID, "amount": pos.Amount.String()}).Debug("position saved")
	return pos, nil
}

func (p *Portfolio) readThenWrite(ctx context.Context, userID, coinID string, amount Quantity) (Position, error) {
	existing, err := p.store.FindPosition(ctx, userID, coinID)
	switch {
	case errors.Is(err, ErrNotFound):
		return p.store.InsertPosition(ctx, userID, coinID, amount)
	case err != nil:
		return Position{}, err
	}
	return p.store.UpdatePositionAmount(ctx, userID, existing.ID, existing.Amount.Add(amount))
}

// upsert replaces the mirrored row with pos's id, or with pos's coin, or
// appends pos.
func (p *Portfolio) upsert(pos Position) {
	i := slices.IndexFunc(p.positions, func(x Position) bool { return x.ID == pos.ID })
	if i < 0 {
		i = slices.IndexFunc(p.positions, func(x Position) bool { return x.CoinID == pos.CoinID })
	}
	if i < 0 {
		p.positions = append(p.positions, pos)
		return
	}
	p.positions[i] = pos
}

// SetAmount overwrites the amount of a position.
func (p *Portfolio) SetAmount(ctx context.Context, positionID, amountText string) (Position, error) {
	userID, err := p.session.requireUser()
	if err != nil {
		return Position{}, err
	}
	amount, err := parseAmount(amountText)
	if err != nil {
		return Position{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !slices.ContainsFunc(p.positions, func(x Position) bool { return x.ID == positionID }) {
		return Position{}, invalid("position", "unknown position %q", positionID)
	}
	pos, err := p.store.UpdatePositionAmount(ctx, userID, positionID, amount)
	if err != nil {
		p.log.WithError(err).WithFields(logger.Fields{"position": positionID}).Warn("cannot update position")
		return Position{}, &PersistenceError{Op: "update position", Err: err}
	}
	p.upsert(pos)
	return pos, nil
}

// Remove deletes a position. Removing a position that is not there is not an
// error.
func (p *Portfolio) Remove(ctx context.Context, positionID string) error {
	userID, err := p.session.requireUser()
	if err != nil {
		return err
	}
	if strings.TrimSpace(positionID) == "" {
		return invalid("position", "no position selected")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.DeletePosition(ctx, userID, positionID); err != nil {
		p.log.WithError(err).WithFields(logger.Fields{"position": positionID}).Warn("cannot delete position")
		return &PersistenceError{Op: "delete position", Err: err}
	}
	p.positions = slices.DeleteFunc(p.positions, func(x Position) bool { return x.ID == positionID })
	return nil
}
