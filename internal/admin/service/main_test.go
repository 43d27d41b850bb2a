package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/internal/admin/store/drivers/sqlite"
	"github.com/meridiantours/meridian/pkg/cryptox"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Password hashing loads a pepper file on first use, point it at a
	// throwaway location before any fixture hashes a password.
	pepperPath := filepath.Join(os.TempDir(), "meridian-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)
	os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "admin.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newRecorder(s store.Store) *audit.Recorder {
	return &audit.Recorder{Store: s}
}

func testMeta(actorID string) audit.Meta {
	return audit.Meta{ActorID: actorID, OriginIP: "127.0.0.1", UserAgent: "service-test"}
}

func seedPrincipal(t *testing.T, s store.Store, username, password, role string) domain.Principal {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	p := domain.Principal{
		ID:           idx.New().String(),
		Username:     username,
		Email:        username + "@meridian.test",
		FullName:     "Test " + username,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Principals().CreatePrincipal(context.Background(), p))
	return p
}

func seedClient(t *testing.T, s store.Store, email string) domain.Client {
	t.Helper()

	now := time.Now().UTC()
	c := domain.Client{
		ID:          idx.New().String(),
		FullName:    "Client " + email,
		Email:       email,
		Phone:       "+61 400 000 000",
		Nationality: "AU",
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Clients().CreateClient(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, s store.Store, sku, currency string, priceCents int64) domain.Product {
	t.Helper()

	now := time.Now().UTC()
	p := domain.Product{
		ID:         idx.New().String(),
		Name:       "Product " + sku,
		SKU:        sku,
		Type:       domain.ProductService,
		PriceCents: priceCents,
		Currency:   currency,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Products().CreateProduct(context.Background(), p))
	return p
}
