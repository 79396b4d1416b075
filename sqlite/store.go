// Package sqlite is the embedded backend of coinfolio: accounts, sessions,
// positions, favorites and profiles in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/etnz/coinfolio/logger"
	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL
	);`,
	// one position per user and coin
	`CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		coin_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(user_id, coin_id)
	);`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id TEXT PRIMARY KEY,
		coin_ids TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT ''
	);`,
}

// Store implements coinfolio.Backend on SQLite.
type Store struct {
	db   *sql.DB
	cost int // bcrypt cost
	log  *logger.Entry
}

var (
	_ coinfolio.Backend             = (*Store)(nil)
	_ coinfolio.PositionIncrementer = (*Store)(nil)
)

// Open opens, or creates, the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// a single connection serializes the transactions of the process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return &Store{
		db:   db,
		cost: bcrypt.DefaultCost,
		log:  logger.GetLogger().WithComponent("sqlite"),
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// newSession stores a new session token for userID.
func (s *Store) newSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)",
		token, userID, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (s *Store) SignUp(ctx context.Context, email, password string) (coinfolio.Identity, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coinfolio.Identity{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE email = ?", email).Scan(&exists)
	switch {
	case err == nil:
		return coinfolio.Identity{}, coinfolio.ErrEmailTaken
	case !errors.Is(err, sql.ErrNoRows):
		return coinfolio.Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		id, email, string(hash), time.Now().Unix()); err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to insert user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return coinfolio.Identity{}, err
	}
	s.log.WithFields(logger.Fields{"user": id}).Info("user signed up")

	token, err := s.newSession(ctx, id)
	if err != nil {
		return coinfolio.Identity{}, err
	}
	return coinfolio.Identity{UserID: id, Email: email, Token: token}, nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (coinfolio.Identity, error) {
	email = normalizeEmail(email)
	var id, hash string
	err := s.db.QueryRowContext(ctx, "SELECT id, password_hash FROM users WHERE email = ?", email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
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
	var id, email string
	err := s.db.QueryRowContext(ctx,
		"SELECT u.id, u.email FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.token = ?",
		token).Scan(&id, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return coinfolio.Identity{}, coinfolio.ErrNotSignedIn
	}
	if err != nil {
		return coinfolio.Identity{}, fmt.Errorf("failed to look up session: %w", err)
	}
	return coinfolio.Identity{UserID: id, Email: email, Token: token}, nil
}

func (s *Store) SignOut(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}

func (s *Store) ChangePassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	res, err := s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", string(hash), userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return coinfolio.ErrNotFound
	}
	return nil
}

// scanner is a *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPosition(row scanner) (coinfolio.Position, error) {
	var p coinfolio.Position
	var amount string
	if err := row.Scan(&p.ID, &p.UserID, &p.CoinID, &amount); err != nil {
		return coinfolio.Position{}, err
	}
	q, err := coinfolio.ParseQuantity(amount)
	if err != nil {
		return coinfolio.Position{}, fmt.Errorf("position %s: %w", p.ID, err)
	}
	p.Amount = q
	return p, nil
}

const positionColumns = "id, user_id, coin_id, amount"

func (s *Store) ListPositions(ctx context.Context, userID string) ([]coinfolio.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE user_id = ? ORDER BY created_at, rowid", userID)
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
	return findPosition(ctx, s.db, userID, coinID)
}

// querier is a *sql.DB or *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func findPosition(ctx context.Context, q querier, userID, coinID string) (coinfolio.Position, error) {
	p, err := scanPosition(q.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE user_id = ? AND coin_id = ?", userID, coinID))
	if errors.Is(err, sql.ErrNoRows) {
		return coinfolio.Position{}, coinfolio.ErrNotFound
	}
	return p, err
}

func insertPosition(ctx context.Context, q querier, userID, coinID string, amount coinfolio.Quantity) (coinfolio.Position, error) {
	p := coinfolio.Position{ID: uuid.NewString(), UserID: userID, CoinID: coinID, Amount: amount}
	_, err := q.ExecContext(ctx,
		"INSERT INTO positions (id, user_id, coin_id, amount, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, userID, coinID, amount.String(), time.Now().UnixNano())
	if err != nil {
		return coinfolio.Position{}, fmt.Errorf("failed to insert position: %w", err)
	}
	return p, nil
}

func (s *Store) InsertPosition(ctx context.Context, userID, coinID string, amount coinfolio.Quantity) (coinfolio.Position, error) {
	return insertPosition(ctx, s.db, userID, coinID, amount)
}

func (s *Store) UpdatePositionAmount(ctx context.Context, userID, positionID string, amount coinfolio.Quantity) (coinfolio.Position, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE positions SET amount = ? WHERE id = ? AND user_id = ?", amount.String(), positionID, userID)
	if err != nil {
		return coinfolio.Position{}, fmt.Errorf("failed to update position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return coinfolio.Position{}, coinfolio.ErrNotFound
	}
	return scanPosition(s.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE id = ?", positionID))
}

func (s *Store) DeletePosition(ctx context.Context, userID, positionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM positions WHERE id = ? AND user_id = ?", positionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}

// IncrementPosition adds delta to the user's position on coinID, or creates it,
// in one transaction.
func (s *Store) IncrementPosition(ctx context.Context, userID, coinID string, delta coinfolio.Quantity) (coinfolio.Position, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return coinfolio.Position{}, err
	}
	defer tx.Rollback()

	p, err := findPosition(ctx, tx, userID, coinID)
	switch {
	case errors.Is(err, coinfolio.ErrNotFound):
		p, err = insertPosition(ctx, tx, userID, coinID, delta)
		if err != nil {
			return coinfolio.Position{}, err
		}
	case err != nil:
		return coinfolio.Position{}, err
	default:
		p.Amount = p.Amount.Add(delta)
		if _, err := tx.ExecContext(ctx, "UPDATE positions SET amount = ? WHERE id = ?", p.Amount.String(), p.ID); err != nil {
			return coinfolio.Position{}, fmt.Errorf("failed to update position: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return coinfolio.Position{}, err
	}
	return p, nil
}

func (s *Store) GetFavorites(ctx context.Context, userID string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT coin_ids FROM favorites WHERE user_id = ?", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return ids, nil
}

func (s *Store) SetFavorites(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO favorites (user_id, coin_ids) VALUES (?, ?) ON CONFLICT(user_id) DO UPDATE SET coin_ids=excluded.coin_ids",
		userID, string(raw))
	return err
}

func (s *Store) GetProfile(ctx context.Context, userID string) (coinfolio.Profile, error) {
	p := coinfolio.Profile{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		"SELECT first_name, last_name, avatar_url FROM profiles WHERE user_id = ?", userID).
		Scan(&p.FirstName, &p.LastName, &p.AvatarURL)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return coinfolio.Profile{}, fmt.Errorf("failed to query profile: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProfileName(ctx context.Context, userID, firstName, lastName string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles (user_id, first_name, last_name) VALUES (?, ?, ?) ON CONFLICT(user_id) DO UPDATE SET first_name=excluded.first_name, last_name=excluded.last_name",
		userID, firstName, lastName)
	return err
}

func (s *Store) SaveAvatarURL(ctx context.Context, userID, url string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO profiles (user_id, avatar_url) VALUES (?, ?) ON CONFLICT(user_id) DO UPDATE SET avatar_url=excluded.avatar_url",
		userID, url)
	return err
}
