package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/studyconnect/accounts/internal/accounts/service"
	"github.com/studyconnect/accounts/internal/accounts/store"
	"github.com/studyconnect/accounts/pkg/httpx"
	"github.com/studyconnect/accounts/pkg/jwtx"
	"github.com/studyconnect/accounts/pkg/slogx"

	_ "github.com/studyconnect/accounts/api/accounts" // Swagger docs
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

	store store.Store

	AuthService      *service.AuthService
	AccountService   *service.AccountService
	InviteService    *service.InviteService
	BootstrapService *service.BootstrapService
	PendingFeed      *service.PendingFeed
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

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccounts()
	r.registerInvitations()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			StudyConnect Accounts Service API
//	@version		0.1.0
//	@description	Role-based account management: invitation tokens, admin approval of
//	@description	pending accounts, and landing-state resolution for clients. Access
//	@description	tokens are EdDSA-signed JWTs verifiable via the JWKS endpoint.
//
//	@contact.name				StudyConnect Team
//	@contact.url				https://github.com/studyconnect/accounts
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

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - moderate rate limit (rotation happens often)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/logout - moderate rate limit
	logoutHandler := &LogoutHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /jwks.json - public key discovery
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAccounts() {
	me := &MeHandler{AccountService: r.AccountService}
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(me,
			httpx.AuthnMiddleware(r.verifier),     // verify JWT (iss/exp)
			httpx.RequireAnyScope("profile:read"), // enforce scopes
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)

	// POST /register - public signup endpoint, strict rate limit by IP
	register := &RegisterHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /accounts/{id}/approve - admin operation
	approve := &ApproveHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/accounts/{id}/approve",
		httpx.Chain(approve,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("accounts:write"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// GET /accounts/pending and its SSE watch variant - admin reads
	pending := &PendingHandler{AccountService: r.AccountService, Feed: r.PendingFeed}
	r.Mux.Handle("GET /v1/accounts/pending",
		httpx.Chain(http.HandlerFunc(pending.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("accounts:read"),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/accounts/pending/watch",
		httpx.Chain(http.HandlerFunc(pending.HandleWatch),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("accounts:read"),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	// POST /invitations - authenticated mint, role rules enforced in the
	// service against the live issuer record
	create := &InviteCreateHandler{InviteService: r.InviteService, AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(create,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("invites:write"),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	// GET /invitations/{token} - public preview for the registration form
	validate := &InviteValidateHandler{InviteService: r.InviteService}
	r.Mux.Handle("GET /v1/invitations/{token}",
		httpx.Chain(validate,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /invitations/redeem - public signup endpoint, strict limit
	redeem := &InviteRedeemHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/invitations/redeem",
		httpx.Chain(redeem,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
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
}
