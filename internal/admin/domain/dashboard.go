package domain

// DashboardStats is the aggregate snapshot served to the admin dashboard.
type DashboardStats struct {
	Clients             int64                       `json:"clients"`
	Applications        int64                       `json:"applications"`
	Posts               int64                       `json:"posts"`
	Packages            int64                       `json:"packages"`
	Products            int64                       `json:"products"`
	Orders              int64                       `json:"orders"`
	ApplicationsByState map[ApplicationStatus]int64 `json:"applications_by_status"`
	NewClientsThisWeek  int64                       `json:"new_clients_this_week"`
	NewClientsThisMonth int64                       `json:"new_clients_this_month"`
	RecentApplications  []Application               `json:"recent_applications"`
	RecentAuditEntries  []AuditEntry                `json:"recent_audit_entries"`
}
