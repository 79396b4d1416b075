package coinfolio

import (
	"context"
	"io"
)

// Identity is an authenticated user as seen by the rest of the application.
// UserID is opaque and used as the foreign key of favorites, positions and
// profiles.
type Identity struct {
	UserID string
	Email  string
	Token  string
}

// Authenticator signs users up, in and out.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (Identity, error)
	// SignIn returns ErrInvalidCredentials for a wrong email or password.
	SignIn(ctx context.Context, email, password string) (Identity, error)
	// Resume returns the identity of a live session token, or ErrNotSignedIn.
	Resume(ctx context.Context, token string) (Identity, error)
	SignOut(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID, password string) error
}

// MarketData is the read side of the market-data provider. Every call fails
// as a whole: there are no partial results.
type MarketData interface {
	// ListTopMarkets returns the top coins by market cap, quoted in vs.
	ListTopMarkets(ctx context.Context, vs string) ([]Coin, error)
	// GetPrices returns the price of each known id, quoted in vs. Unknown ids
	// are absent from the result.
	GetPrices(ctx context.Context, ids []string, vs string) (map[string]float64, error)
	GetCoinDetail(ctx context.Context, id, vs string) (CoinDetail, error)
	GetMarketChart(ctx context.Context, id, vs string, days int) ([]PricePoint, error)
}

// PositionStore persists positions. All operations are scoped by user id.
type PositionStore interface {
	ListPositions(ctx context.Context, userID string) ([]Position, error)
	// FindPosition returns ErrNotFound when the user has no position on coinID.
	FindPosition(ctx context.Context, userID, coinID string) (Position, error)
	InsertPosition(ctx context.Context, userID, coinID string, amount Quantity) (Position, error)
	UpdatePositionAmount(ctx context.Context, userID, positionID string, amount Quantity) (Position, error)
	// DeletePosition deletes a position. Deleting a missing id is not an error.
	DeletePosition(ctx context.Context, userID, positionID string) error
}

// PositionIncrementer is implemented by stores that can add to a position, or
// create it, in one atomic step.
type PositionIncrementer interface {
	IncrementPosition(ctx context.Context, userID, coinID string, delta Quantity) (Position, error)
}

// FavoriteStore persists the favorite set of each user as a whole.
type FavoriteStore interface {
	// GetFavorites returns the user's favorite ids, empty when none was saved.
	GetFavorites(ctx context.Context, userID string) ([]string, error)
	SetFavorites(ctx context.Context, userID string, ids []string) error
}

// Profile is the editable part of a user account.
type Profile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProfileStore persists profiles.
type ProfileStore interface {
	// GetProfile returns an empty profile when none was saved.
	GetProfile(ctx context.Context, userID string) (Profile, error)
	SaveProfileName(ctx context.Context, userID, firstName, lastName string) error
	SaveAvatarURL(ctx context.Context, userID, url string) error
}

// AvatarStorage stores avatar images and returns their public URL. Uploading
// to an existing key overwrites it.
type AvatarStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Backend is a store that covers the whole persistence side.
type Backend interface {
	Authenticator
	PositionStore
	FavoriteStore
	ProfileStore
	Close() error
}
