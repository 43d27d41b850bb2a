package service

import (
	"context"
	"testing"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &DashboardService{Store: st}

	apps := newApplicationsService(st)
	actor := seedPrincipal(t, st, "analyst", "numbers-person", "admin")
	meta := testMeta(actor.ID)

	c1 := seedClient(t, st, "stats1@example.com")
	c2 := seedClient(t, st, "stats2@example.com")
	seedProduct(t, st, "STATS-SKU", "USD", 1000)

	a1, err := apps.Create(ctx, meta, CreateApplicationRequest{ClientID: c1.ID, Type: domain.TypeVisa})
	require.NoError(t, err)
	_, err = apps.Create(ctx, meta, CreateApplicationRequest{ClientID: c2.ID, Type: domain.TypeBusinessLicense})
	require.NoError(t, err)

	_, err = apps.Transition(ctx, meta, a1.ID, domain.StatusUnderReview, "")
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Clients)
	require.EqualValues(t, 2, stats.Applications)
	require.EqualValues(t, 1, stats.Products)
	require.EqualValues(t, 1, stats.ApplicationsByState[domain.StatusSubmitted])
	require.EqualValues(t, 1, stats.ApplicationsByState[domain.StatusUnderReview])
	require.EqualValues(t, 2, stats.NewClientsThisWeek)
	require.Len(t, stats.RecentApplications, 2)
	require.NotEmpty(t, stats.RecentAuditEntries)
}
