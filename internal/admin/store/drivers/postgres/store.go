package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/meridiantours/meridian/internal/admin/store"
)

const pgErrUniqueViolation = "23505"

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the same repo code runs standalone and inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner lets scan helpers accept both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	// Execute the function
	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	// Commit on success
	return tx.Commit()
}

func (s *Store) Principals() store.Principals       { return &principalsRepo{q: s.db} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.db} }
func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{q: s.db} }
func (s *Store) SigningKeys() store.SigningKeys     { return &signingKeysRepo{q: s.db} }
func (s *Store) BackupCodes() store.BackupCodes     { return &backupCodesRepo{q: s.db} }
func (s *Store) MFAChallenges() store.MFAChallenges { return &mfaChallengesRepo{q: s.db} }
func (s *Store) Clients() store.Clients             { return &clientsRepo{q: s.db} }
func (s *Store) Applications() store.Applications   { return &applicationsRepo{q: s.db} }
func (s *Store) Posts() store.Posts                 { return &postsRepo{q: s.db} }
func (s *Store) Packages() store.Packages           { return &packagesRepo{q: s.db} }
func (s *Store) Products() store.Products           { return &productsRepo{q: s.db} }
func (s *Store) Orders() store.Orders               { return &ordersRepo{q: s.db} }
func (s *Store) AuditEntries() store.AuditEntries   { return &auditEntriesRepo{q: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapUnique converts postgres unique violations into store.ErrAlreadyExists.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}

// requireRowAffected turns a zero-row UPDATE or DELETE into ErrNotFound so
// callers can tell a missing id from a silent no-op.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// joinList encodes single-token values (AMR methods) as a space-joined string.
func joinList(vals []string) string {
	return strings.Join(vals, " ")
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// encodeStrings stores free-text lists (tags, inclusions) as a JSON array,
// since their values may contain spaces.
func encodeStrings(vals []string) (string, error) {
	if vals == nil {
		vals = []string{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var vals []string
	if err := json.Unmarshal([]byte(s), &vals); err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals, nil
}
