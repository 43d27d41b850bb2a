package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/obs"
	"github.com/meridiantours/meridian/internal/admin/rbac"
	"github.com/meridiantours/meridian/internal/admin/service"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/httpx"
	"github.com/meridiantours/meridian/pkg/jwtx"
	"github.com/meridiantours/meridian/pkg/slogx"

	_ "github.com/meridiantours/meridian/api/admin" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	Audit               *audit.Recorder
	TokenService        *service.TokenService
	MFAService          *service.MFAService
	BootstrapService    *service.BootstrapService
	AdminService        *service.AdminService
	ClientsService      *service.ClientsService
	ApplicationsService *service.ApplicationsService
	ContentService      *service.ContentService
	ProductsService     *service.ProductsService
	OrdersService       *service.OrdersService
	DashboardService    *service.DashboardService
	KeyRotationService  *service.KeyRotationService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain. Instrumentation sits inside the
	// request logger so the route pattern is resolved by the time it
	// records.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerPublic()
	r.registerClients()
	r.registerApplications()
	r.registerContent()
	r.registerProducts()
	r.registerOrders()
	r.registerAdmin()
	r.registerKeyRotation()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Meridian Tours Admin API
//	@version		0.1.0
//	@description	Back office for a tours and visa services business: client records, visa and business application tracking with an auditable status lifecycle, blog and travel package content, a small product catalogue with order intake, and staff accounts with role-based access.
//	@description
//	@description				Access tokens are signed JWTs verifiable against the JWKS endpoint. A public, unauthenticated endpoint serves application status by tracking reference.
//
//	@contact.name				Meridian Tours Engineering
//	@contact.url				https://github.com/meridiantours/meridian
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.store.RevokedTokens())
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		TokenService: r.TokenService,
		AdminService: r.AdminService,
	}

	// Credential endpoints get strict IP limits to slow brute force
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleMFA),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Logout needs the access token so its jti can be denylisted
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/mfa/totp/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Strict limit to prevent brute force of TOTP codes
	r.Mux.Handle("POST /v1/mfa/totp/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			r.authn(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/mfa/backup-codes",
		httpx.Chain(http.HandlerFunc(h.HandleRegenerateBackupCodes),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/mfa/totp",
		httpx.Chain(http.HandlerFunc(h.HandleRemove),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPublic() {
	track := &TrackHandler{ApplicationsService: r.ApplicationsService}
	catalog := &PublicHandler{
		ContentService:  r.ContentService,
		ProductsService: r.ProductsService,
	}
	orders := &OrdersHandler{OrdersService: r.OrdersService}

	r.Mux.Handle("GET /v1/track/{trackingID}",
		httpx.Chain(http.HandlerFunc(track.HandleTrack),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /v1/public/posts",
		httpx.Chain(http.HandlerFunc(catalog.HandleListPosts),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/public/posts/{slug}",
		httpx.Chain(http.HandlerFunc(catalog.HandleGetPost),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/public/packages",
		httpx.Chain(http.HandlerFunc(catalog.HandleListPackages),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/public/products",
		httpx.Chain(http.HandlerFunc(catalog.HandleListProducts),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Order intake writes to the store, so it gets a tighter limit than
	// the public reads
	r.Mux.Handle("POST /v1/orders",
		httpx.Chain(http.HandlerFunc(orders.HandleCreate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientsService: r.ClientsService}

	r.Mux.Handle("POST /v1/clients",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapClientsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/clients",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapClientsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/clients/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapClientsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/clients/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RequireCapability(rbac.CapClientsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/clients/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			httpx.RequireCapability(rbac.CapClientsDelete, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{ApplicationsService: r.ApplicationsService}

	r.Mux.Handle("POST /v1/clients/{id}/applications",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapApplicationsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapApplicationsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/applications/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapApplicationsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/applications/{id}/transition",
		httpx.Chain(http.HandlerFunc(h.HandleTransition),
			r.authn(),
			httpx.RequireCapability(rbac.CapApplicationsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerContent() {
	posts := &PostsHandler{ContentService: r.ContentService}
	packages := &PackagesHandler{ContentService: r.ContentService}

	r.Mux.Handle("POST /v1/posts",
		httpx.Chain(http.HandlerFunc(posts.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/posts",
		httpx.Chain(http.HandlerFunc(posts.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(posts.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(posts.HandleUpdate),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/posts/{id}",
		httpx.Chain(http.HandlerFunc(posts.HandleDelete),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentDelete, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/packages",
		httpx.Chain(http.HandlerFunc(packages.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/packages",
		httpx.Chain(http.HandlerFunc(packages.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/packages/{id}",
		httpx.Chain(http.HandlerFunc(packages.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/packages/{id}",
		httpx.Chain(http.HandlerFunc(packages.HandleUpdate),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/packages/{id}",
		httpx.Chain(http.HandlerFunc(packages.HandleDelete),
			r.authn(),
			httpx.RequireCapability(rbac.CapContentDelete, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProducts() {
	h := &ProductsHandler{ProductsService: r.ProductsService}

	r.Mux.Handle("POST /v1/products",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapProductsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/products",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapProductsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapProductsRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RequireCapability(rbac.CapProductsWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			r.authn(),
			httpx.RequireCapability(rbac.CapProductsDelete, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerOrders() {
	h := &OrdersHandler{OrdersService: r.OrdersService}

	r.Mux.Handle("GET /v1/admin/orders",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapOrdersRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/admin/orders/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapOrdersRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/admin/orders/{id}/status",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateStatus),
			r.authn(),
			httpx.RequireCapability(rbac.CapOrdersWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	users := &UsersHandler{AdminService: r.AdminService}
	stats := &StatsHandler{DashboardService: r.DashboardService}
	auditlog := &AuditLogHandler{Audit: r.Audit}

	r.Mux.Handle("GET /v1/admin/stats",
		httpx.Chain(http.HandlerFunc(stats.HandleStats),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/admin/users",
		httpx.Chain(http.HandlerFunc(users.HandleCreate),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/admin/users",
		httpx.Chain(http.HandlerFunc(users.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/admin/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleGet),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /v1/admin/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleUpdate),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/admin/users/{id}",
		httpx.Chain(http.HandlerFunc(users.HandleDeactivate),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/admin/roles",
		httpx.Chain(RolesHandler(),
			r.authn(),
			httpx.RequireCapability(rbac.CapAdminRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/admin/audit-logs",
		httpx.Chain(http.HandlerFunc(auditlog.HandleList),
			r.authn(),
			httpx.RequireCapability(rbac.CapAuditRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerKeyRotation() {
	h := &KeyRotationHandler{KeyRotationService: r.KeyRotationService}

	r.Mux.Handle("POST /v1/keys/rotate",
		httpx.Chain(http.HandlerFunc(h.HandleRotate),
			r.authn(),
			httpx.RequireCapability(rbac.CapKeysWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/keys",
		httpx.Chain(http.HandlerFunc(h.HandleListKeys),
			r.authn(),
			httpx.RequireCapability(rbac.CapKeysRead, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/keys/{kid}/retire",
		httpx.Chain(http.HandlerFunc(h.HandleRetireKey),
			r.authn(),
			httpx.RequireCapability(rbac.CapKeysWrite, rbac.RoleHas),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Prometheus scrape endpoint, unauthenticated like the health probes
	r.Mux.Handle("GET /metrics", obs.Handler())
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}
