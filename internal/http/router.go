package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"github.com/aussiebroadwan/caronte/pkg/caronte"
	"github.com/aussiebroadwan/caronte/pkg/httpx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"

	_ "github.com/aussiebroadwan/caronte/api/caronte" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// IdentityClient is the part of *authsdk.SDKClient the routes call.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	RequestTwoFactor(ctx context.Context, req authsdk.TwoFactorRequest) (string, error)
	TwoFactorLogin(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, raw string, all bool) error
	RequestPasswordRecovery(ctx context.Context, req authsdk.PasswordRecoveryRequest) (string, error)
	ValidateRecoveryToken(ctx context.Context, token string) (string, error)
	RecoverPassword(ctx context.Context, token string, req authsdk.RecoverPasswordRequest) (string, error)
	PasswordRecoverURL(callbackURL, appName string) string
}

// UserDirectory looks up users mirrored from validated tokens.
type UserDirectory interface {
	UserName(ctx context.Context, uriUser string) string
	UserEmail(ctx context.Context, uriUser string) string
}

// Settings are the application values the routes need.
type Settings struct {
	AppURL     string
	AppName    string
	SuccessURL string
	LoginURL   string
	TwoFactor  bool

	// AdminRole may read any user's profile.
	AdminRole string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	auth         *httpx.SessionAuth
	client       IdentityClient
	settings     Settings
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Users is optional; without it only self lookups are answered.
	Users UserDirectory
}

func NewRouter(
	auth *httpx.SessionAuth,
	client IdentityClient,
	settings Settings,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	if settings.SuccessURL == "" {
		settings.SuccessURL = "/"
	}
	if settings.LoginURL == "" {
		settings.LoginURL = "/login"
	}
	if settings.AdminRole == "" {
		settings.AdminRole = "admin"
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		auth:         auth,
		client:       client,
		settings:     settings,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerPassword()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Caronte Client Application API
//	@version		0.1.0
//	@description	Session endpoints of an application that delegates authentication to a Caronte identity server.
//	@description
//	@description				Browser callers hold a session cookie; machine callers send the token as a bearer credential and receive exchanged tokens in the new_token header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/caronte
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
//	@description				Caronte token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	h := &SessionHandler{
		Client:    r.client,
		Validator: r.auth.Validator,
		Store:     r.auth.Store,
		Settings:  r.settings,
	}

	// Credential endpoints: strict limit per IP and e-mail address
	strict := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitByIPAndCredential(httpx.StrictLimit, "email"))
	}

	r.Mux.Handle("POST /login", strict(h.HandleLogin))
	r.Mux.Handle("POST /api/login", strict(h.HandleLogin))
	r.Mux.Handle("POST /2fa", strict(h.HandleTwoFactorRequest))
	r.Mux.Handle("POST /api/2fa", strict(h.HandleTwoFactorRequest))

	// Login links are single use, a moderate limit is enough
	twoFactor := httpx.Chain(http.HandlerFunc(h.HandleTwoFactorLogin), httpx.RateLimitByIP(httpx.ModerateLimit))
	r.Mux.Handle("GET /2fa/{token}", twoFactor)
	r.Mux.Handle("GET /api/2fa/{token}", twoFactor)

	logout := httpx.Chain(http.HandlerFunc(h.HandleLogout),
		httpx.NoHistory(),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	for _, pattern := range []string{"GET /logout", "POST /logout", "GET /api/logout", "POST /api/logout"} {
		r.Mux.Handle(pattern, logout)
	}
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{Client: r.client, Settings: r.settings}

	r.Mux.Handle("GET /password/recover",
		httpx.Chain(http.HandlerFunc(h.HandleHosted),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /password/recover",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIPAndCredential(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("GET /password/recover/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /password/recover/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleRecover),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UserHandler{Users: r.Users}

	r.Mux.Handle("GET /get-token",
		httpx.Chain(http.HandlerFunc(h.HandleToken),
			r.auth.ValidateSession(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/user",
		httpx.Chain(http.HandlerFunc(h.HandleSelf),
			r.auth.ValidateSession(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /api/user/{uri_user}",
		httpx.Chain(http.HandlerFunc(h.HandleUser),
			r.auth.ValidateSession(),
			r.auth.RequireRoles(caronte.RoleSelf, r.settings.AdminRole),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.auth.Store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
