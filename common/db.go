package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/xor-shift/simdpcg/util/rng"
)

const sessionsSchema = "CREATE TABLE IF NOT EXISTS sessions (" +
	"session_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY, " +
	"state CHAR(64) NOT NULL, " +
	"increment CHAR(64) NOT NULL, " +
	"created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)"

var ErrNoSession = errors.New("no such session")

func (cfg Config) MySQL() *mysql.Config {
	dbConfig := mysql.NewConfig()
	dbConfig.User = cfg.DBUser
	dbConfig.Passwd = cfg.DBPassword
	dbConfig.Addr = cfg.DBAddress
	dbConfig.DBName = cfg.DBName
	dbConfig.Collation = "utf8mb4_general_ci"
	dbConfig.Net = "tcp"
	dbConfig.AllowNativePasswords = true
	dbConfig.ParseTime = true

	return dbConfig
}

func OpenDB(cfg Config) (*sql.DB, error) {
	return sql.Open("mysql", cfg.MySQL().FormatDSN())
}

// SessionStore records the seed of every session so that any published batch
// can be recomputed later.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sessionsSchema)
	return err
}

func (s *SessionStore) Create(ctx context.Context, seed rng.Seed) (uint, error) {
	str := seed.String()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (state, increment) VALUES (?, ?)",
		str[:64], str[64:])
	if err != nil {
		return 0, fmt.Errorf("recording session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recording session: %w", err)
	}

	return uint(id), nil
}

func (s *SessionStore) Lookup(ctx context.Context, id uint) (rng.Seed, error) {
	var state, increment string

	err := s.db.QueryRowContext(ctx,
		"SELECT state, increment FROM sessions WHERE session_id = ?", id).
		Scan(&state, &increment)
	if errors.Is(err, sql.ErrNoRows) {
		return rng.Seed{}, fmt.Errorf("%w: %d", ErrNoSession, id)
	}
	if err != nil {
		return rng.Seed{}, fmt.Errorf("looking up session %d: %w", id, err)
	}

	return rng.ParseSeed(state + increment)
}
