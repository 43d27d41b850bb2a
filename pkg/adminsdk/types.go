package adminsdk

import (
	"encoding/json"

	"github.com/meridiantours/meridian/pkg/jwtx"
)

// ============================================================================
// Error Envelope Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the standard error envelope every endpoint writes.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "not_found", "conflict")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned when request validation fails with
// field-level detail, typically from the bootstrap endpoint.
type ValidationErrorResponse struct {
	// Code is the error code (e.g., "validation_error")
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains field-specific validation errors (field name: error message)
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest authenticates a staff account by username and password.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MFACompleteRequest exchanges a login challenge for a token pair.
type MFACompleteRequest struct {
	// MFAToken is the single-use challenge reference from the login response
	MFAToken string `json:"mfa_token"`

	// Method is the second factor presented: "totp" or "backup_codes"
	Method string `json:"method"`

	// Code is the 6-digit TOTP code or one backup code
	Code string `json:"code"`
}

// RefreshRequest rotates a refresh token for a fresh pair.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the session the refresh token belongs to.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is returned from login, MFA completion and refresh.
type TokenResponse struct {
	// AccessToken is the JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// RefreshToken is the opaque token used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`
}

// MeResponse describes the authenticated principal.
type MeResponse struct {
	// UserID is the principal's unique identifier
	UserID string `json:"user_id"`

	// Username is the login username
	Username string `json:"username"`

	// Email is the principal's email address
	Email string `json:"email"`

	// FullName is the display name
	FullName string `json:"full_name"`

	// Role is the principal's role name from the static matrix
	Role string `json:"role"`

	// Capabilities lists the "module:action" grants the role carries
	Capabilities []string `json:"capabilities"`

	// MFAEnabled reports whether a second factor is enrolled and verified
	MFAEnabled bool `json:"mfa_enabled"`

	// LastLoginAt is the previous successful login (RFC3339, empty if none)
	LastLoginAt string `json:"last_login_at,omitempty"`
}

// ============================================================================
// MFA Types
// ============================================================================

// TOTPEnrollResponse is returned from TOTP enrollment.
type TOTPEnrollResponse struct {
	Secret  string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	QRCode  string `json:"qr_code" example:"otpauth://totp/issuer:user@example.com?secret=JBSWY3DPEHPK3PXP&issuer=issuer"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

// BackupCodesResponse carries freshly generated backup codes. They are
// shown exactly once.
type BackupCodesResponse struct {
	Codes []string `json:"codes"`
}

// TOTPVerifyRequest is the request to verify a TOTP code and enable MFA.
type TOTPVerifyRequest struct {
	Code string `json:"code"` // 6-digit TOTP code
}

// TOTPRemoveRequest is the request to remove TOTP MFA.
type TOTPRemoveRequest struct {
	Code string `json:"code"` // 6-digit TOTP code for verification
}

// BackupCodesRegenerateRequest is the request to regenerate backup codes.
type BackupCodesRegenerateRequest struct {
	Code string `json:"code"` // 6-digit TOTP code for verification
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest performs the one-time first-run setup: it creates the
// initial super_admin account.
type BootstrapRequest struct {
	// AdminUsername is the username for the first account (3-32 chars, alphanumeric with _ or -)
	AdminUsername string `json:"admin_username"`

	// AdminEmail is the email address for the first account
	AdminEmail string `json:"admin_email"`

	// AdminFullName is the display name for the first account (max 64 chars)
	AdminFullName string `json:"admin_full_name"`

	// AdminPassword is the password for the first account (8-128 chars)
	AdminPassword string `json:"admin_password"`
}

// BootstrapResponse contains the ID of the created super_admin account.
type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ============================================================================
// Client (CRM) Types
// ============================================================================

// ClientPayload carries the mutable client fields for create and update.
type ClientPayload struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Company        string `json:"company,omitempty"`
	Address        string `json:"address,omitempty"`
	Notes          string `json:"notes,omitempty"`

	// Active omitted keeps the current value; create defaults to true
	Active *bool `json:"active,omitempty"`
}

// ClientInfo is one CRM record.
type ClientInfo struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Company        string `json:"company,omitempty"`
	Address        string `json:"address,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at"` // RFC3339
	UpdatedAt      string `json:"updated_at"` // RFC3339
}

// ClientDetailResponse is a client together with every application filed
// for them.
type ClientDetailResponse struct {
	Client       ClientInfo        `json:"client"`
	Applications []ApplicationInfo `json:"applications"`
}

// ListClientsResponse is a filtered page of the client book.
type ListClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
	Total   int64        `json:"total"`
}

// ============================================================================
// Application Types
// ============================================================================

// CreateApplicationRequest files a new application for a client. The client
// comes from the URL path.
type CreateApplicationRequest struct {
	// Type is "visa", "business_license" or "company_incorporation"
	Type string `json:"type"`

	// Priority is "standard" (default) or "urgent"
	Priority string `json:"priority,omitempty"`

	// Data is the per-type form payload, stored as submitted
	Data json.RawMessage `json:"data,omitempty"`
}

// ApplicationInfo is one filing.
type ApplicationInfo struct {
	ID          string          `json:"id"`
	TrackingID  string          `json:"tracking_id"`
	ClientID    string          `json:"client_id"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	Data        json.RawMessage `json:"data,omitempty"`
	SubmittedAt string          `json:"submitted_at"` // RFC3339
	UpdatedAt   string          `json:"updated_at"`   // RFC3339
}

// StatusChangeInfo is one row of an application's status history.
type StatusChangeInfo struct {
	From      string `json:"from,omitempty"` // empty for the submission row
	To        string `json:"to"`
	ChangedBy string `json:"changed_by"`
	Note      string `json:"note,omitempty"`
	ChangedAt string `json:"changed_at"` // RFC3339
}

// ApplicationDetailResponse is an application with its full status history.
type ApplicationDetailResponse struct {
	Application ApplicationInfo    `json:"application"`
	History     []StatusChangeInfo `json:"history"`
}

// ListApplicationsResponse is a filtered page of applications.
type ListApplicationsResponse struct {
	Applications []ApplicationInfo `json:"applications"`
	Total        int64             `json:"total"`
}

// TransitionRequest moves an application to a new status.
type TransitionRequest struct {
	// Status is the target status; the move must be a legal lifecycle edge
	Status string `json:"status"`

	// Note is an optional reviewer remark recorded in the history
	Note string `json:"note,omitempty"`
}

// TrackingEvent is one step of the public status timeline.
type TrackingEvent struct {
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"` // RFC3339
}

// TrackingResponse is the public projection of an application. It carries
// no client identity and no internal notes.
type TrackingResponse struct {
	TrackingID  string          `json:"tracking_id"`
	Type        string          `json:"application_type"`
	Status      string          `json:"status"`
	SubmittedAt string          `json:"submitted_at"` // RFC3339
	UpdatedAt   string          `json:"updated_at"`   // RFC3339
	Timeline    []TrackingEvent `json:"timeline"`
}

// ============================================================================
// Content Types
// ============================================================================

// PostPayload carries the mutable blog post fields for create and update.
type PostPayload struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"` // empty derives from title on create
	Body       string   `json:"body,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
	CoverImage string   `json:"cover_image,omitempty"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Status     string   `json:"status,omitempty"` // draft, published, archived
}

// PostInfo is one blog post.
type PostInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Body        string   `json:"body,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status"`
	AuthorID    string   `json:"author_id,omitempty"`
	PublishedAt *string  `json:"published_at,omitempty"` // RFC3339, null until first publish
	CreatedAt   string   `json:"created_at"`             // RFC3339
	UpdatedAt   string   `json:"updated_at"`             // RFC3339
}

// ListPostsResponse is a filtered page of posts.
type ListPostsResponse struct {
	Posts []PostInfo `json:"posts"`
	Total int64      `json:"total"`
}

// PackagePayload carries the mutable travel package fields.
type PackagePayload struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug,omitempty"` // empty derives from name on create
	Destination  string   `json:"destination,omitempty"`
	Description  string   `json:"description,omitempty"`
	DurationDays int      `json:"duration_days"`
	PriceCents   int64    `json:"price_cents"`
	Currency     string   `json:"currency,omitempty"` // ISO 4217, defaults to USD
	Inclusions   []string `json:"inclusions,omitempty"`
	Exclusions   []string `json:"exclusions,omitempty"`
	IsFeatured   bool     `json:"is_featured,omitempty"`

	// Active omitted keeps the current value; create defaults to true
	Active *bool `json:"active,omitempty"`
}

// PackageInfo is one travel package.
type PackageInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Destination  string   `json:"destination,omitempty"`
	Description  string   `json:"description,omitempty"`
	DurationDays int      `json:"duration_days"`
	PriceCents   int64    `json:"price_cents"`
	Currency     string   `json:"currency"`
	Inclusions   []string `json:"inclusions,omitempty"`
	Exclusions   []string `json:"exclusions,omitempty"`
	IsFeatured   bool     `json:"is_featured"`
	Active       bool     `json:"active"`
	CreatedAt    string   `json:"created_at"` // RFC3339
	UpdatedAt    string   `json:"updated_at"` // RFC3339
}

// ListPackagesResponse is a filtered page of travel packages.
type ListPackagesResponse struct {
	Packages []PackageInfo `json:"packages"`
	Total    int64         `json:"total"`
}

// ============================================================================
// Product Types
// ============================================================================

// ProductPayload carries the mutable product fields for create and update.
type ProductPayload struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Type        string `json:"type"` // esim, service, physical
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency,omitempty"` // ISO 4217, defaults to USD

	// StockQuantity is tracked for physical products only
	StockQuantity int `json:"stock_quantity,omitempty"`

	// Active omitted keeps the current value; create defaults to true
	Active *bool `json:"active,omitempty"`
}

// ProductInfo is one catalogue item.
type ProductInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Type          string `json:"type"`
	Description   string `json:"description,omitempty"`
	PriceCents    int64  `json:"price_cents"`
	Currency      string `json:"currency"`
	StockQuantity int    `json:"stock_quantity"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"` // RFC3339
	UpdatedAt     string `json:"updated_at"` // RFC3339
}

// ListProductsResponse is a filtered page of the catalogue.
type ListProductsResponse struct {
	Products []ProductInfo `json:"products"`
	Total    int64         `json:"total"`
}

// ============================================================================
// Order Types
// ============================================================================

// OrderItemPayload is one requested line of a new order.
type OrderItemPayload struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest places an order against the catalogue. The client is
// identified by registered email; prices always come from the catalogue,
// never from the request.
type CreateOrderRequest struct {
	ClientEmail   string             `json:"client_email"`
	DiscountCents int64              `json:"discount_cents,omitempty"`
	TaxCents      int64              `json:"tax_cents,omitempty"`
	Items         []OrderItemPayload `json:"items"`
}

// OrderItemInfo is one line of an order, with the product snapshot taken at
// order time.
type OrderItemInfo struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	ProductSKU     string `json:"product_sku"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// OrderInfo is one order with its lines.
type OrderInfo struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	ClientID      string          `json:"client_id"`
	SubtotalCents int64           `json:"subtotal_cents"`
	DiscountCents int64           `json:"discount_cents"`
	TaxCents      int64           `json:"tax_cents"`
	TotalCents    int64           `json:"total_cents"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Items         []OrderItemInfo `json:"items,omitempty"`
	CreatedAt     string          `json:"created_at"` // RFC3339
	UpdatedAt     string          `json:"updated_at"` // RFC3339
}

// ListOrdersResponse is a filtered page of orders.
type ListOrdersResponse struct {
	Orders []OrderInfo `json:"orders"`
	Total  int64       `json:"total"`
}

// OrderStatusRequest updates fulfilment and/or payment state. An empty
// field keeps the current value.
type OrderStatusRequest struct {
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// ============================================================================
// Staff Account Types
// ============================================================================

// CreateUserRequest registers a new staff account.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role"` // super_admin, admin, editor, viewer
}

// UpdateUserRequest changes a staff account's profile, role or state.
// Password, when set, resets the password and revokes existing sessions.
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   *bool  `json:"active,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserInfo is one staff account. Password material never appears.
type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	MFAEnabled  bool   `json:"mfa_enabled"`
	LastLoginAt string `json:"last_login_at,omitempty"` // RFC3339
	CreatedAt   string `json:"created_at"`              // RFC3339
}

// ListUsersResponse is every staff account.
type ListUsersResponse struct {
	Users []UserInfo `json:"users"`
}

// RoleInfo is one role of the static capability matrix.
type RoleInfo struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// ListRolesResponse is the full static role matrix.
type ListRolesResponse struct {
	Roles []RoleInfo `json:"roles"`
}

// ============================================================================
// Dashboard & Audit Types
// ============================================================================

// StatsResponse is the aggregate snapshot for the admin dashboard.
type StatsResponse struct {
	Clients             int64             `json:"clients"`
	Applications        int64             `json:"applications"`
	Posts               int64             `json:"posts"`
	Packages            int64             `json:"packages"`
	Products            int64             `json:"products"`
	Orders              int64             `json:"orders"`
	ApplicationsByState map[string]int64  `json:"applications_by_status"`
	NewClientsThisWeek  int64             `json:"new_clients_this_week"`
	NewClientsThisMonth int64             `json:"new_clients_this_month"`
	RecentApplications  []ApplicationInfo `json:"recent_applications"`
	RecentAuditEntries  []AuditEntryInfo  `json:"recent_audit_entries"`
}

// AuditEntryInfo is one immutable audit record.
type AuditEntryInfo struct {
	ID           string          `json:"id"`
	ActorID      string          `json:"actor_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id,omitempty"`
	Detail       json.RawMessage `json:"detail,omitempty"`
	OriginIP     string          `json:"origin_ip,omitempty"`
	UserAgent    string          `json:"user_agent,omitempty"`
	CreatedAt    string          `json:"created_at"` // RFC3339
}

// ListAuditLogsResponse is a filtered page of the audit trail, newest first.
type ListAuditLogsResponse struct {
	Entries []AuditEntryInfo `json:"entries"`
	Total   int64            `json:"total"`
}

// ============================================================================
// Key Rotation Types
// ============================================================================

// RotateKeyRequest represents a request to rotate signing keys.
type RotateKeyRequest struct {
	// RetireExisting will mark current active keys as retired if true.
	// If false, new key is added alongside existing keys.
	RetireExisting bool `json:"retire_existing"`
}

// SigningKeyInfo represents a JWT signing key with its metadata.
type SigningKeyInfo struct {
	ID        string  `json:"id"`                   // ULID
	Kid       string  `json:"kid"`                  // Key identifier in JWKS
	Algorithm string  `json:"algorithm"`            // RS256, ES256, or EdDSA
	CreatedAt string  `json:"created_at"`           // RFC3339 timestamp
	RetiredAt *string `json:"retired_at,omitempty"` // RFC3339 timestamp (null if active)
	ExpiresAt string  `json:"expires_at"`           // RFC3339 timestamp
}

// RotateKeyResponse represents the result of a key rotation operation.
type RotateKeyResponse struct {
	NewKey      SigningKeyInfo   `json:"new_key"`
	RetiredKeys []SigningKeyInfo `json:"retired_keys,omitempty"`
	ActiveKeys  int              `json:"active_keys"`
}

// ListKeysResponse lists every signing key, active and retired.
type ListKeysResponse struct {
	Keys []SigningKeyInfo `json:"keys"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is the body of both /livez and /readyz; readyz adds the
// Checks field.
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Signer indicates the JWT signing capability status
	Signer string `json:"signer"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse contains the JSON Web Key Set served at
// GET /.well-known/jwks.json for JWT signature verification.
type JWKSResponse jwtx.JWKS
