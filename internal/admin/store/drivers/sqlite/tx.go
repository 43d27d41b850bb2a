package sqlite

import (
	"context"
	"database/sql"

	"github.com/meridiantours/meridian/internal/admin/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Principals() store.Principals       { return &principalsRepo{q: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.tx} }
func (t *txStore) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{q: t.tx} }
func (t *txStore) SigningKeys() store.SigningKeys     { return &signingKeysRepo{q: t.tx} }
func (t *txStore) BackupCodes() store.BackupCodes     { return &backupCodesRepo{q: t.tx} }
func (t *txStore) MFAChallenges() store.MFAChallenges { return &mfaChallengesRepo{q: t.tx} }
func (t *txStore) Clients() store.Clients             { return &clientsRepo{q: t.tx} }
func (t *txStore) Applications() store.Applications   { return &applicationsRepo{q: t.tx} }
func (t *txStore) Posts() store.Posts                 { return &postsRepo{q: t.tx} }
func (t *txStore) Packages() store.Packages           { return &packagesRepo{q: t.tx} }
func (t *txStore) Products() store.Products           { return &productsRepo{q: t.tx} }
func (t *txStore) Orders() store.Orders               { return &ordersRepo{q: t.tx} }
func (t *txStore) AuditEntries() store.AuditEntries   { return &auditEntriesRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
