// Package postgres is the hosted backend of coinfolio on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	queryTimeout    = 4 * time.Second
	uniqueViolation = "23505"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS positions (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    user_id TEXT NOT NULL,
    coin_id TEXT NOT NULL,
    amount NUMERIC NOT NULL,
    UNIQUE (user_id, coin_id)
);
CREATE TABLE IF NOT EXISTS favorites (
    user_id TEXT PRIMARY KEY,
    coin_ids TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS profiles (
    user_id TEXT PRIMARY KEY,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    avatar_url TEXT NOT NULL DEFAULT ''
);
`

// Store implements coinfolio.Backend on PostgreSQL.
type Store struct {
	db   *pgxpool.Pool
	cost int // bcrypt cost
	log  *logger.Entry
}

var (
	_ coinfolio.Backend             = (*Store)(nil)
	_ coinfolio.PositionIncrementer = (*Store)(nil)
)

// Open connects to the database at dsn and creates the missing tables.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, cost: bcrypt.DefaultCost, log: logger.GetLogger().WithComponent("postgres")}, nil
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *Store) newSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if _, err := s.db.Exec(ctx, `INSERT INTO sessions (token, user_id) VALUES ($1, $2)`, token, userID); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (s *Store) SignUp(ctx context.Context, email, password string) (coinfolio.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`, id, email, string(hash))
	if isUniqueViolation(err) {
		return coinfolio.Identity{}, coinfolio.ErrEmailTaken
	}
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to insert user: %w", err)
	}
	s.log.WithFields(logger.Fields{"user": id}).Info("user signed up")
	token, err := s.newSession(ctx, id)
	if err != nil {
		return coinfolio.Identity{}, err
	}
	return coinfolio.Identity{UserID: id, Email: email, Token: token}, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (coinfolio.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	email = normalizeEmail(email)
	var id, hash string
	err := s.db.QueryRow(ctx, `SELECT id, password_hash FROM users WHERE email = $1`, email).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return coinfolio.Identity{}, coinfolio.ErrInvalidCredentials
	}
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return coinfolio.Identity{}, coinfolio.ErrInvalidCredentials
	}
	token, err := s.newSession(ctx, id)
	if err != nil {
		return coinfolio.Identity{}, err
	}
	return coinfolio.Identity{UserID: id, Email: email, Token: token}, nil
}

func (s *Store) Resume(ctx context.Context, token string) (coinfolio.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var id, email string
	err := s.db.QueryRow(ctx, `
        SELECT u.id, u.email
        FROM sessions s JOIN users u ON u.id = s.user_id
        WHERE s.token = $1
    `, token).Scan(&id, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return coinfolio.Identity{}, coinfolio.ErrNotSignedIn
	}
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return coinfolio.Identity{UserID: id, Email: email, Token: token}, nil
}

func (s *Store) SignOut(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (s *Store) ChangePassword(ctx context.Context, userID, password string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, string(hash), userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return coinfolio.ErrNotFound
	}
	return nil
}

const positionColumns = `id, user_id, coin_id, amount::text`

func scanPosition(row pgx.Row) (coinfolio.Position, error) {
	var p coinfolio.Position
	var amount string
	if err := row.Scan(&p.ID, &p.UserID, &p.CoinID, &amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return coinfolio.Position{}, coinfolio.ErrNotFound
		}
		return coinfolio.Position{}, err
	}
	q, err := coinfolio.ParseQuantity(amount)
	if err != nil {
		return coinfolio.Position{}, fmt.Errorf("position %s: %w", p.ID, err)
	}
	p.Amount = q
	return p, nil
}

func (s *Store) ListPositions(ctx context.Context, userID string) ([]coinfolio.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := s.db.Query(ctx, `SELECT `+positionColumns+` FROM positions WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []coinfolio.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (s *Store) FindPosition(ctx context.Context, userID, coinID string) (coinfolio.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPosition(s.db.QueryRow(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE user_id = $1 AND coin_id = $2`, userID, coinID))
}

func (s *Store) InsertPosition(ctx context.Context, userID, coinID string, amount coinfolio.Quantity) (coinfolio.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPosition(s.db.QueryRow(ctx, `
        INSERT INTO positions (id, user_id, coin_id, amount)
        VALUES ($1, $2, $3, $4::numeric)
        RETURNING `+positionColumns,
		uuid.NewString(), userID, coinID, amount.String()))
}

func (s *Store) UpdatePositionAmount(ctx context.Context, userID, positionID string, amount coinfolio.Quantity) (coinfolio.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPosition(s.db.QueryRow(ctx, `
        UPDATE positions SET amount = $3::numeric
        WHERE id = $1 AND user_id = $2
        RETURNING `+positionColumns,
		positionID, userID, amount.String()))
}

func (s *Store) DeletePosition(ctx context.Context, userID, positionID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if _, err := s.db.Exec(ctx, `DELETE FROM positions WHERE id = $1 AND user_id = $2`, positionID, userID); err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// IncrementPosition adds delta to the user's position on coinID, or creates it,
// in a single statement.
func (s *Store) IncrementPosition(ctx context.Context, userID, coinID string, delta coinfolio.Quantity) (coinfolio.Position, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanPosition(s.db.QueryRow(ctx, `
        INSERT INTO positions (id, user_id, coin_id, amount)
        VALUES ($1, $2, $3, $4::numeric)
        ON CONFLICT (user_id, coin_id) DO UPDATE SET
            amount = positions.amount + EXCLUDED.amount
        RETURNING `+positionColumns,
		uuid.NewString(), userID, coinID, delta.String()))
}

func (s *Store) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var ids []string
	err := s.db.QueryRow(ctx, `SELECT coin_ids FROM favorites WHERE user_id = $1`, userID).Scan(&ids)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *Store) SetFavorites(ctx context.Context, userID string, ids []string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if ids == nil {
		ids = []string{}
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO favorites (user_id, coin_ids) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET coin_ids = EXCLUDED.coin_ids
    `, userID, ids)
	return err
}

func (s *Store) GetProfile(ctx context.Context, userID string) (coinfolio.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	p := coinfolio.Profile{UserID: userID}
	err := s.db.QueryRow(ctx, `SELECT first_name, last_name, avatar_url FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.FirstName, &p.LastName, &p.AvatarURL)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return coinfolio.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfileName(ctx context.Context, userID, firstName, lastName string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.db.Exec(ctx, `
        INSERT INTO profiles (user_id, first_name, last_name) VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name
    `, userID, firstName, lastName)
	return err
}

func (s *Store) SaveAvatarURL(ctx context.Context, userID, url string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.db.Exec(ctx, `
        INSERT INTO profiles (user_id, avatar_url) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET avatar_url = EXCLUDED.avatar_url
    `, userID, url)
	return err
}
