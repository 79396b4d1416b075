package coinfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
)

// errBoom is the failure injected by the fakes.
var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

var usd = Currency{Code: "USD"}

func testSession() *Session {
	return NewSession(Identity{UserID: "u1", Email: "a@b.c", Token: "t1"}, usd)
}

// coin is a helper to build a market record with a name, a rank and a price.
func coin(id, name string, rank int, price float64) Coin {
	return Coin{ID: id, Name: name, Symbol: id[:min(3, len(id))], MarketCapRank: ptr(rank), CurrentPrice: ptr(price)}
}

func ids(coins []Coin) []string {
	res := make([]string, len(coins))
	for i, c := range coins {
		res[i] = c.ID
	}
	return res
}

// memStore is an in-memory PositionStore, FavoriteStore and ProfileStore that
// counts its calls and fails on demand.
type memStore struct {
	mu        sync.Mutex
	next      int
	positions []Position
	favorites map[string][]string
	profiles  map[string]Profile
	calls     map[string]int
	fail      map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		favorites: map[string][]string{},
		profiles:  map[string]Profile{},
		calls:     map[string]int{},
		fail:      map[string]bool{},
	}
}

func (m *memStore) call(op string) error {
	m.calls[op]++
	if m.fail[op] {
		return errBoom
	}
	return nil
}

func (m *memStore) ListPositions(ctx context.Context, userID string) ([]Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("list"); err != nil {
		return nil, err
	}
	var res []Position
	for _, p := range m.positions {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *memStore) FindPosition(ctx context.Context, userID, coinID string) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("find"); err != nil {
		return Position{}, err
	}
	for _, p := range m.positions {
		if p.UserID == userID && p.CoinID == coinID {
			return p, nil
		}
	}
	return Position{}, ErrNotFound
}

func (m *memStore) InsertPosition(ctx context.Context, userID, coinID string, amount Quantity) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("insert"); err != nil {
		return Position{}, err
	}
	for _, p := range m.positions {
		if p.UserID == userID && p.CoinID == coinID {
			return Position{}, fmt.Errorf("duplicate position on %s", coinID)
		}
	}
	m.next++
	p := Position{ID: fmt.Sprintf("p%d", m.next), UserID: userID, CoinID: coinID, Amount: amount}
	m.positions = append(m.positions, p)
	return p, nil
}

func (m *memStore) UpdatePositionAmount(ctx context.Context, userID, positionID string, amount Quantity) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("update"); err != nil {
		return Position{}, err
	}
	for i, p := range m.positions {
		if p.UserID == userID && p.ID == positionID {
			m.positions[i].Amount = amount
			return m.positions[i], nil
		}
	}
	return Position{}, ErrNotFound
}

func (m *memStore) DeletePosition(ctx context.Context, userID, positionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("delete"); err != nil {
		return err
	}
	m.positions = slices.DeleteFunc(m.positions, func(p Position) bool {
		return p.UserID == userID && p.ID == positionID
	})
	return nil
}

func (m *memStore) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("get favorites"); err != nil {
		return nil, err
	}
	return slices.Clone(m.favorites[userID]), nil
}

func (m *memStore) SetFavorites(ctx context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("set favorites"); err != nil {
		return err
	}
	m.favorites[userID] = slices.Clone(ids)
	return nil
}

func (m *memStore) GetProfile(ctx context.Context, userID string) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("get profile"); err != nil {
		return Profile{}, err
	}
	return m.profiles[userID], nil
}

func (m *memStore) SaveProfileName(ctx context.Context, userID, first, last string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("save name"); err != nil {
		return err
	}
	p := m.profiles[userID]
	p.UserID, p.FirstName, p.LastName = userID, first, last
	m.profiles[userID] = p
	return nil
}

func (m *memStore) SaveAvatarURL(ctx context.Context, userID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("save avatar"); err != nil {
		return err
	}
	p := m.profiles[userID]
	p.UserID, p.AvatarURL = userID, url
	m.profiles[userID] = p
	return nil
}

// incStore adds the atomic increment to memStore.
type incStore struct{ *memStore }

func (s incStore) IncrementPosition(ctx context.Context, userID, coinID string, delta Quantity) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("increment"); err != nil {
		return Position{}, err
	}
	for i, p := range s.positions {
		if p.UserID == userID && p.CoinID == coinID {
			s.positions[i].Amount = p.Amount.Add(delta)
			return s.positions[i], nil
		}
	}
	s.next++
	p := Position{ID: fmt.Sprintf("p%d", s.next), UserID: userID, CoinID: coinID, Amount: delta}
	s.positions = append(s.positions, p)
	return p, nil
}

// fakeMarket serves canned market data.
type fakeMarket struct {
	coins  []Coin
	prices map[string]float64
	fail   map[string]bool
	asked  [][]string
	vs     []string
}

func (f *fakeMarket) ListTopMarkets(ctx context.Context, vs string) ([]Coin, error) {
	f.vs = append(f.vs, vs)
	if f.fail["markets"] {
		return nil, errBoom
	}
	return slices.Clone(f.coins), nil
}

func (f *fakeMarket) GetPrices(ctx context.Context, ids []string, vs string) (map[string]float64, error) {
	f.vs = append(f.vs, vs)
	f.asked = append(f.asked, slices.Clone(ids))
	if f.fail["prices"] {
		return nil, errBoom
	}
	res := map[string]float64{}
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			res[id] = p
		}
	}
	return res, nil
}

func (f *fakeMarket) GetCoinDetail(ctx context.Context, id, vs string) (CoinDetail, error) {
	if f.fail["detail"] {
		return CoinDetail{}, errBoom
	}
	for _, c := range f.coins {
		if c.ID == id {
			return CoinDetail{Coin: c}, nil
		}
	}
	return CoinDetail{}, ErrNotFound
}

func (f *fakeMarket) GetMarketChart(ctx context.Context, id, vs string, days int) ([]PricePoint, error) {
	if f.fail["chart"] {
		return nil, errBoom
	}
	return nil, nil
}

// fakeAvatars records uploads.
type fakeAvatars struct {
	key, contentType, body string
	fail                   bool
}

func (f *fakeAvatars) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if f.fail {
		return "", errBoom
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.body = key, contentType, string(data)
	return "https://avatars.example.com/" + key, nil
}

// fakeAuth accepts a single account.
type fakeAuth struct {
	email, password string
	revoked         []string
	failSignOut     bool
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (Identity, error) {
	if email == f.email {
		return Identity{}, ErrEmailTaken
	}
	f.email, f.password = email, password
	return Identity{UserID: "u1", Email: email, Token: "t1"}, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (Identity, error) {
	if email != f.email || password != f.password {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: "u1", Email: email, Token: "t1"}, nil
}

func (f *fakeAuth) Resume(ctx context.Context, token string) (Identity, error) {
	if token != "t1" || slices.Contains(f.revoked, token) {
		return Identity{}, ErrNotSignedIn
	}
	return Identity{UserID: "u1", Email: f.email, Token: token}, nil
}

func (f *fakeAuth) SignOut(ctx context.Context, token string) error {
	if f.failSignOut {
		return errBoom
	}
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeAuth) ChangePassword(ctx context.Context, userID, password string) error {
	f.password = password
	return nil
}
