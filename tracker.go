package coinfolio

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/etnz/coinfolio/logger"
)

// Tracker is the state of one user facing session: the market list, the
// favorites, the price snapshot and the portfolio.
//
// Every fetch either replaces its piece of state as a whole or, on failure,
// leaves it as it was.
type Tracker struct {
	currency  Currency
	session   *Session
	market    MarketData
	favStore  FavoriteStore
	portfolio *Portfolio
	log       *logger.Entry

	mu        sync.RWMutex
	coins     []Coin
	favorites *FavoriteSet
	prices    PriceSnapshot
}

// NewTracker returns a tracker for anonymous browsing of the market list.
// Favorite and portfolio operations return ErrNotSignedIn.
func NewTracker(cur Currency, market MarketData) *Tracker {
	return &Tracker{
		currency: cur,
		market:   market,
		prices:   PriceSnapshot{},
		log:      logger.GetLogger().WithComponent("tracker"),
	}
}

// NewUserTracker returns a tracker acting for the session user, in the session
// currency.
func NewUserTracker(s *Session, market MarketData, favorites FavoriteStore, positions PositionStore) *Tracker {
	t := NewTracker(s.Currency, market)
	t.session = s
	t.favStore = favorites
	t.portfolio = NewPortfolio(s, positions)
	t.log = t.log.WithFields(logger.Fields{"user": s.UserID})
	return t
}

// Currency is the quote currency of every price of the tracker.
func (t *Tracker) Currency() Currency { return t.currency }

// LoadMarkets fetches the top coins.
func (t *Tracker) LoadMarkets(ctx context.Context) error {
	start := time.Now()
	coins, err := t.market.ListTopMarkets(ctx, t.currency.VS())
	if err != nil {
		t.log.WithError(err).Warn("cannot fetch markets")
		return &RemoteFetchError{Op: "markets", Err: err}
	}
	logger.LogDuration(t.log, "markets", start, logger.Fields{"count": len(coins)})
	t.mu.Lock()
	t.coins = coins
	t.mu.Unlock()
	return nil
}

// Coins returns the last fetched market list.
func (t *Tracker) Coins() []Coin {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.coins)
}

// Catalog indexes the last fetched market list by id.
func (t *Tracker) Catalog() Catalog {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return NewCatalog(t.coins)
}

// LoadFavorites reads the user's favorites.
func (t *Tracker) LoadFavorites(ctx context.Context) error {
	userID, err := t.session.requireUser()
	if err != nil {
		return err
	}
	ids, err := t.favStore.GetFavorites(ctx, userID)
	if err != nil {
		t.log.WithError(err).Warn("cannot load favorites")
		return &PersistenceError{Op: "load favorites", Err: err}
	}
	t.mu.Lock()
	t.favorites = NewFavoriteSet(ids...)
	t.mu.Unlock()
	return nil
}

// Favorites returns the current favorites. It is never nil.
func (t *Tracker) Favorites() *FavoriteSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.favorites == nil {
		return NewFavoriteSet()
	}
	return t.favorites
}

// ToggleFavorite adds coinID to the favorites, or removes it, and reports
// whether it is now a favorite. The new set is saved first and adopted only
// once saved.
func (t *Tracker) ToggleFavorite(ctx context.Context, coinID string) (bool, error) {
	userID, err := t.session.requireUser()
	if err != nil {
		return false, err
	}
	if coinID == "" {
		return false, invalid("coin", "no coin selected")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next, on := t.favorites.Toggled(coinID)
	if err := t.favStore.SetFavorites(ctx, userID, next.IDs()); err != nil {
		t.log.WithError(err).WithFields(logger.Fields{"coin": coinID}).Warn("cannot save favorites")
		return t.favorites.Contains(coinID), &PersistenceError{Op: "save favorites", Err: err}
	}
	t.favorites = next
	return on, nil
}

// MarketView computes the visible page of the market list.
func (t *Tracker) MarketView(state ListState) View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return state.View(t.coins, t.favorites)
}

// CoinDetail fetches the detail of a coin.
func (t *Tracker) CoinDetail(ctx context.Context, id string) (CoinDetail, error) {
	d, err := t.market.GetCoinDetail(ctx, id, t.currency.VS())
	if err != nil {
		t.log.WithError(err).WithFields(logger.Fields{"coin": id}).Warn("cannot fetch coin")
		return CoinDetail{}, &RemoteFetchError{Op: "coin " + id, Err: err}
	}
	return d, nil
}

// MarketChart fetches the price history of a coin over the last days.
func (t *Tracker) MarketChart(ctx context.Context, id string, days int) ([]PricePoint, error) {
	points, err := t.market.GetMarketChart(ctx, id, t.currency.VS(), days)
	if err != nil {
		t.log.WithError(err).WithFields(logger.Fields{"coin": id}).Warn("cannot fetch chart")
		return nil, &RemoteFetchError{Op: "chart " + id, Err: err}
	}
	return points, nil
}

// Portfolio returns the user's portfolio, nil for anonymous trackers.
func (t *Tracker) Portfolio() *Portfolio { return t.portfolio }

// LoadPortfolio reads the positions then fetches their prices. When only the
// prices fail the positions are loaded and the previous prices kept.
func (t *Tracker) LoadPortfolio(ctx context.Context) error {
	if t.portfolio == nil {
		return ErrNotSignedIn
	}
	if err := t.portfolio.Load(ctx); err != nil {
		return err
	}
	ids := make([]string, 0)
	for _, p := range t.portfolio.Positions() {
		if !slices.Contains(ids, p.CoinID) {
			ids = append(ids, p.CoinID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	prices, err := t.fetchPrices(ctx, ids)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.prices = prices
	t.mu.Unlock()
	return nil
}

// RefreshPrices fetches the prices of ids and merges them into the snapshot.
func (t *Tracker) RefreshPrices(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	prices, err := t.fetchPrices(ctx, ids)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.prices = t.prices.Merge(prices)
	t.mu.Unlock()
	return nil
}

func (t *Tracker) fetchPrices(ctx context.Context, ids []string) (PriceSnapshot, error) {
	raw, err := t.market.GetPrices(ctx, ids, t.currency.VS())
	if err != nil {
		t.log.WithError(err).WithFields(logger.Fields{"coins": len(ids)}).Warn("cannot fetch prices")
		return nil, &RemoteFetchError{Op: "prices", Err: err}
	}
	return NewPriceSnapshot(raw, t.currency.Code), nil
}

// Prices returns the current price snapshot.
func (t *Tracker) Prices() PriceSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.prices.Merge(nil)
}

// AddOrUpdate adds to a position then refreshes the price of its coin. A
// failed refresh is only logged: the position is saved and is valued with the
// prices at hand.
func (t *Tracker) AddOrUpdate(ctx context.Context, coinID, amountText string) (Position, error) {
	if t.portfolio == nil {
		return Position{}, ErrNotSignedIn
	}
	pos, err := t.portfolio.AddOrUpdate(ctx, coinID, amountText)
	if err != nil {
		return Position{}, err
	}
	if err := t.RefreshPrices(ctx, pos.CoinID); err != nil {
		t.log.WithError(err).WithFields(logger.Fields{"coin": pos.CoinID}).Info("keeping previous price")
	}
	return pos, nil
}

// SetAmount overwrites the amount of a position.
func (t *Tracker) SetAmount(ctx context.Context, positionID, amountText string) (Position, error) {
	if t.portfolio == nil {
		return Position{}, ErrNotSignedIn
	}
	return t.portfolio.SetAmount(ctx, positionID, amountText)
}

// Remove deletes a position.
func (t *Tracker) Remove(ctx context.Context, positionID string) error {
	if t.portfolio == nil {
		return ErrNotSignedIn
	}
	return t.portfolio.Remove(ctx, positionID)
}

// Valuation values the portfolio with the current prices and market list.
func (t *Tracker) Valuation() Valuation {
	if t.portfolio == nil {
		return ComputeRows(nil, nil, nil, t.currency.Code)
	}
	return t.portfolio.Valuation(t.Prices(), t.Catalog())
}
