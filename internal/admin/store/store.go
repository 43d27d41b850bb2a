package store

import (
	"context"
	"errors"
	"time"

	"github.com/meridiantours/meridian/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable. We can change having the sub-repos as methods later but we do it
// now so we can have more control and actively stop people from accidently
// doing transactions within transactions.
type Store interface {
	Principals() Principals
	RefreshTokens() RefreshTokens
	RevokedTokens() RevokedTokens
	SigningKeys() SigningKeys
	BackupCodes() BackupCodes
	MFAChallenges() MFAChallenges
	Clients() Clients
	Applications() Applications
	Posts() Posts
	Packages() Packages
	Products() Products
	Orders() Orders
	AuditEntries() AuditEntries

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., a status
	// transition plus its audit entry). The caller MUST call Commit() or
	// Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// CreatePrincipal inserts a new staff account (id is provided by app via ULID).
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByUsername is used during password login.
	GetPrincipalByUsername(ctx context.Context, username string) (domain.Principal, error)

	// ListPrincipals returns all principals ordered by creation date (newest first).
	ListPrincipals(ctx context.Context) ([]domain.Principal, error)

	// UpdatePrincipal mutates email, full_name and role, and bumps updated_at.
	UpdatePrincipal(ctx context.Context, id, email, fullName, role string) error

	// SetPrincipalActive flips the active flag. Disabled accounts keep their
	// row so audit references stay intact.
	SetPrincipalActive(ctx context.Context, id string, active bool) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id string, newHash string) error

	// UpdateMFASecret sets the MFA secret for a principal.
	UpdateMFASecret(ctx context.Context, id string, secret string) error

	// EnableMFA marks MFA as enabled (sets mfa_enabled timestamp).
	EnableMFA(ctx context.Context, id string) error

	// DisableMFA disables MFA (clears mfa_enabled and mfa_secret).
	DisableMFA(ctx context.Context, id string) error

	// TouchLastLogin stamps last_login_at.
	TouchLastLogin(ctx context.Context, id string) error

	// IsEmpty returns true if there are no principals (bootstrap gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 for one token, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeSessionRefreshTokens revokes every token of a session (logout).
	RevokeSessionRefreshTokens(ctx context.Context, sessionID string) error

	// RevokePrincipalRefreshTokens bulk revocation for a principal
	// (password reset, account disable).
	RevokePrincipalRefreshTokens(ctx context.Context, principalID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type RevokedTokens interface {
	// InsertRevokedToken adds a jti to the denylist. Inserting the same jti
	// twice is not an error (logout is idempotent).
	InsertRevokedToken(ctx context.Context, t domain.RevokedToken) error

	// IsTokenRevoked reports whether the jti is on the denylist.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevokedTokens drops entries whose token has expired anyway.
	DeleteExpiredRevokedTokens(ctx context.Context) error
}

type SigningKeys interface {
	// CreateSigningKey stores a new signing key with encrypted private key material.
	CreateSigningKey(ctx context.Context, key domain.SigningKey) error

	// GetSigningKeyByKid fetches a signing key by its key identifier.
	GetSigningKeyByKid(ctx context.Context, kid string) (domain.SigningKey, error)

	// ListActiveSigningKeys returns all non-retired, non-expired signing keys
	// ordered by creation date (newest first).
	ListActiveSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// ListAllSigningKeys returns all signing keys (including retired and expired)
	// ordered by creation date (newest first). Used for verification during grace period.
	ListAllSigningKeys(ctx context.Context) ([]domain.SigningKey, error)

	// RetireSigningKey marks a key as retired (sets retired_at timestamp).
	// Retired keys can still be used for verification but not for signing.
	RetireSigningKey(ctx context.Context, kid string) error

	// DeleteExpiredSigningKeys removes all keys that have passed their expires_at
	// timestamp. This is housekeeping to prevent unbounded growth.
	DeleteExpiredSigningKeys(ctx context.Context) error
}

type BackupCodes interface {
	// CreateBackupCode stores a backup code fingerprint for a principal.
	CreateBackupCode(ctx context.Context, principalID string, codeHash string) error

	// VerifyBackupCode checks if an unused backup code fingerprint exists.
	VerifyBackupCode(ctx context.Context, principalID string, codeHash string) (bool, error)

	// DeleteBackupCode removes a specific backup code after use.
	DeleteBackupCode(ctx context.Context, principalID string, codeHash string) error

	// DeleteAllBackupCodes removes all backup codes for a principal.
	DeleteAllBackupCodes(ctx context.Context, principalID string) error

	// CountBackupCodes returns the number of remaining backup codes.
	CountBackupCodes(ctx context.Context, principalID string) (int, error)
}

type MFAChallenges interface {
	// CreateMFAChallenge creates a new MFA challenge session.
	CreateMFAChallenge(ctx context.Context, session domain.MFASession) error

	// GetMFAChallenge retrieves a challenge by its token (only if not expired).
	GetMFAChallenge(ctx context.Context, mfaToken string) (domain.MFASession, error)

	// IncrementMFAChallengeAttempts increments the failed attempt counter and
	// returns the updated session with the new count.
	IncrementMFAChallengeAttempts(ctx context.Context, mfaToken string) (domain.MFASession, error)

	// DeleteMFAChallenge removes a challenge by its token.
	DeleteMFAChallenge(ctx context.Context, mfaToken string) error

	// DeleteExpiredMFAChallenges removes all expired challenges (housekeeping).
	DeleteExpiredMFAChallenges(ctx context.Context) error
}

// ClientFilter narrows client listings. Zero values mean "any".
type ClientFilter struct {
	Search       string // matches full_name, email or phone
	Nationality  string
	CreatedAfter time.Time
	Limit        int
	Offset       int
}

type Clients interface {
	// CreateClient inserts a new client record (id is ULID).
	CreateClient(ctx context.Context, c domain.Client) error

	// GetClientByID returns a client by id.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// GetClientByEmail returns a client by its unique email.
	GetClientByEmail(ctx context.Context, email string) (domain.Client, error)

	// ListClients returns a filtered page ordered newest first.
	ListClients(ctx context.Context, f ClientFilter) ([]domain.Client, error)

	// CountClients counts the rows ListClients would match, ignoring paging.
	CountClients(ctx context.Context, f ClientFilter) (int64, error)

	// UpdateClient rewrites the mutable fields and bumps updated_at.
	UpdateClient(ctx context.Context, c domain.Client) error

	// DeleteClient removes a client. Callers must first check the client has
	// no non-terminal applications.
	DeleteClient(ctx context.Context, id string) error
}

// ApplicationFilter narrows application listings. Zero values mean "any".
type ApplicationFilter struct {
	ClientID string
	Type     domain.ApplicationType
	Status   domain.ApplicationStatus
	Priority string
	Limit    int
	Offset   int
}

type Applications interface {
	// CreateApplication inserts a new application row.
	CreateApplication(ctx context.Context, a domain.Application) error

	// GetApplicationByID returns an application by id.
	GetApplicationByID(ctx context.Context, id string) (domain.Application, error)

	// GetApplicationByTrackingID returns an application by its public reference.
	GetApplicationByTrackingID(ctx context.Context, trackingID string) (domain.Application, error)

	// ListApplications returns a filtered page ordered newest first.
	ListApplications(ctx context.Context, f ApplicationFilter) ([]domain.Application, error)

	// CountApplications counts the rows ListApplications would match.
	CountApplications(ctx context.Context, f ApplicationFilter) (int64, error)

	// CountApplicationsByStatus returns the status distribution.
	CountApplicationsByStatus(ctx context.Context) (map[domain.ApplicationStatus]int64, error)

	// CountActiveApplicationsForClient counts a client's non-terminal
	// applications (guards client deletion).
	CountActiveApplicationsForClient(ctx context.Context, clientID string) (int64, error)

	// UpdateApplicationStatus sets the status and bumps updated_at.
	UpdateApplicationStatus(ctx context.Context, id string, status domain.ApplicationStatus) error

	// AppendStatusChange adds a status history row.
	AppendStatusChange(ctx context.Context, c domain.StatusChange) error

	// ListStatusChanges returns an application's history, oldest first.
	ListStatusChanges(ctx context.Context, applicationID string) ([]domain.StatusChange, error)
}

// PostFilter narrows blog post listings. Zero values mean "any".
type PostFilter struct {
	Status   domain.PostStatus
	Category string
	Limit    int
	Offset   int
}

type Posts interface {
	// CreatePost inserts a new blog post.
	CreatePost(ctx context.Context, p domain.Post) error

	// GetPostByID returns a post by id.
	GetPostByID(ctx context.Context, id string) (domain.Post, error)

	// GetPostBySlug returns a post by its unique slug.
	GetPostBySlug(ctx context.Context, slug string) (domain.Post, error)

	// ListPosts returns a filtered page ordered newest first.
	ListPosts(ctx context.Context, f PostFilter) ([]domain.Post, error)

	// CountPosts counts the rows ListPosts would match.
	CountPosts(ctx context.Context, f PostFilter) (int64, error)

	// PostSlugExists reports whether a slug is already taken.
	PostSlugExists(ctx context.Context, slug string) (bool, error)

	// UpdatePost rewrites the mutable fields and bumps updated_at.
	UpdatePost(ctx context.Context, p domain.Post) error

	// DeletePost removes a post.
	DeletePost(ctx context.Context, id string) error
}

// PackageFilter narrows travel package listings. Zero values mean "any".
type PackageFilter struct {
	Destination   string
	ActiveOnly    bool
	MinPriceCents int64
	MaxPriceCents int64
	FeaturedFirst bool // public listing order: featured, then newest
	Limit         int
	Offset        int
}

type Packages interface {
	// CreatePackage inserts a new travel package.
	CreatePackage(ctx context.Context, p domain.TravelPackage) error

	// GetPackageByID returns a package by id.
	GetPackageByID(ctx context.Context, id string) (domain.TravelPackage, error)

	// GetPackageBySlug returns a package by its unique slug.
	GetPackageBySlug(ctx context.Context, slug string) (domain.TravelPackage, error)

	// ListPackages returns a filtered page.
	ListPackages(ctx context.Context, f PackageFilter) ([]domain.TravelPackage, error)

	// CountPackages counts the rows ListPackages would match.
	CountPackages(ctx context.Context, f PackageFilter) (int64, error)

	// PackageSlugExists reports whether a slug is already taken.
	PackageSlugExists(ctx context.Context, slug string) (bool, error)

	// UpdatePackage rewrites the mutable fields and bumps updated_at.
	UpdatePackage(ctx context.Context, p domain.TravelPackage) error

	// DeletePackage removes a package.
	DeletePackage(ctx context.Context, id string) error
}

// ProductFilter narrows product listings. Zero values mean "any".
type ProductFilter struct {
	Type       domain.ProductType
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Products interface {
	// CreateProduct inserts a new catalogue item.
	CreateProduct(ctx context.Context, p domain.Product) error

	// GetProductByID returns a product by id.
	GetProductByID(ctx context.Context, id string) (domain.Product, error)

	// GetProductBySKU returns a product by its unique SKU.
	GetProductBySKU(ctx context.Context, sku string) (domain.Product, error)

	// ListProducts returns a filtered page ordered newest first.
	ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error)

	// CountProducts counts the rows ListProducts would match.
	CountProducts(ctx context.Context, f ProductFilter) (int64, error)

	// UpdateProduct rewrites the mutable fields and bumps updated_at.
	UpdateProduct(ctx context.Context, p domain.Product) error

	// DeleteProduct removes a product. Callers must first check no order
	// items reference it.
	DeleteProduct(ctx context.Context, id string) error
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	ClientID      string
	Status        domain.OrderStatus
	PaymentStatus domain.PaymentStatus
	Limit         int
	Offset        int
}

type Orders interface {
	// CreateOrder inserts an order together with its line items.
	CreateOrder(ctx context.Context, o domain.Order) error

	// GetOrderByID returns an order with its items.
	GetOrderByID(ctx context.Context, id string) (domain.Order, error)

	// GetOrderByNumber returns an order with its items by public reference.
	GetOrderByNumber(ctx context.Context, number string) (domain.Order, error)

	// ListOrders returns a filtered page ordered newest first, without items.
	ListOrders(ctx context.Context, f OrderFilter) ([]domain.Order, error)

	// CountOrders counts the rows ListOrders would match.
	CountOrders(ctx context.Context, f OrderFilter) (int64, error)

	// UpdateOrderStatus sets both status columns and bumps updated_at.
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus, payment domain.PaymentStatus) error

	// CountItemsForProduct counts order lines referencing a product
	// (guards product deletion).
	CountItemsForProduct(ctx context.Context, productID string) (int64, error)
}

// AuditFilter narrows audit queries. Zero values mean "any".
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

type AuditEntries interface {
	// AppendAuditEntry writes one immutable audit row. There is no update
	// and no delete.
	AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error

	// ListAuditEntries returns a filtered page ordered newest first.
	ListAuditEntries(ctx context.Context, f AuditFilter) ([]domain.AuditEntry, error)

	// CountAuditEntries counts the rows ListAuditEntries would match.
	CountAuditEntries(ctx context.Context, f AuditFilter) (int64, error)
}
