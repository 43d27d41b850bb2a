package service

import (
	"context"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
)

const (
	recentApplicationCount = 5
	recentAuditEntryCount  = 10
)

// DashboardService aggregates the landing-page snapshot for the admin UI.
type DashboardService struct {
	Store store.Store
}

// Stats collects entity counts, the application status distribution, recent
// client growth and the latest activity.
func (s *DashboardService) Stats(ctx context.Context) (domain.DashboardStats, error) {
	var (
		stats domain.DashboardStats
		err   error
	)

	if stats.Clients, err = s.Store.Clients().CountClients(ctx, store.ClientFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.Applications, err = s.Store.Applications().CountApplications(ctx, store.ApplicationFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.Posts, err = s.Store.Posts().CountPosts(ctx, store.PostFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.Packages, err = s.Store.Packages().CountPackages(ctx, store.PackageFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.Products, err = s.Store.Products().CountProducts(ctx, store.ProductFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.Orders, err = s.Store.Orders().CountOrders(ctx, store.OrderFilter{}); err != nil {
		return domain.DashboardStats{}, err
	}

	if stats.ApplicationsByState, err = s.Store.Applications().CountApplicationsByStatus(ctx); err != nil {
		return domain.DashboardStats{}, err
	}

	now := time.Now().UTC()
	if stats.NewClientsThisWeek, err = s.Store.Clients().CountClients(ctx, store.ClientFilter{
		CreatedAfter: now.AddDate(0, 0, -7),
	}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.NewClientsThisMonth, err = s.Store.Clients().CountClients(ctx, store.ClientFilter{
		CreatedAfter: now.AddDate(0, -1, 0),
	}); err != nil {
		return domain.DashboardStats{}, err
	}

	if stats.RecentApplications, err = s.Store.Applications().ListApplications(ctx, store.ApplicationFilter{
		Limit: recentApplicationCount,
	}); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.RecentAuditEntries, err = s.Store.AuditEntries().ListAuditEntries(ctx, store.AuditFilter{
		Limit: recentAuditEntryCount,
	}); err != nil {
		return domain.DashboardStats{}, err
	}

	return stats, nil
}
