package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/apperror"
	"github.com/vasapolrittideah/zacademy-api/shared/middleware"
)

const requestTimeout = 60 * time.Second

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	ServiceName    string
	ClientURL      string
	AllowedOrigins []string
	SecureCookies  bool
	// TrustProxyHeaders keys rate limits on the forwarded client address instead of the peer.
	TrustProxyHeaders bool

	RegistrationUsecase  usecase.RegistrationUsecase
	SessionUsecase       usecase.SessionUsecase
	OAuthUsecase         usecase.OAuthUsecase
	ProfileUsecase       usecase.ProfileUsecase
	PasswordResetUsecase usecase.PasswordResetUsecase
	CourseUsecase        usecase.CourseUsecase
	EnrollmentUsecase    usecase.EnrollmentUsecase

	Validator *payload.Validator
	// Limiter is optional; requests are not rate limited without one.
	Limiter      middleware.Limiter
	HealthChecks map[string]HealthCheck
	Logger       *zerolog.Logger
}

// NewRouter creates the chi router with the middleware stack and every /api/v1 route.
func NewRouter(p RouterParams) chi.Router {
	errs := errorResponder{logger: p.Logger}
	cookies := cookieSettings{secure: p.SecureCookies}
	requireAuth := middleware.RequireAuth(authenticateWith(p.SessionUsecase), errs.respond)

	auth := &authHTTPHandler{
		registrationUsecase:  p.RegistrationUsecase,
		sessionUsecase:       p.SessionUsecase,
		oauthUsecase:         p.OAuthUsecase,
		profileUsecase:       p.ProfileUsecase,
		passwordResetUsecase: p.PasswordResetUsecase,
		validator:            p.Validator,
		cookies:              cookies,
		clientURL:            p.ClientURL,
		errors:               errs,
		logger:               p.Logger,
	}
	users := &userHTTPHandler{profileUsecase: p.ProfileUsecase, validator: p.Validator, errors: errs}
	courses := &courseHTTPHandler{courseUsecase: p.CourseUsecase, validator: p.Validator, errors: errs}
	enrollments := &enrollmentHTTPHandler{enrollmentUsecase: p.EnrollmentUsecase, validator: p.Validator, errors: errs}
	health := &healthHTTPHandler{serviceName: p.ServiceName, checks: p.HealthChecks, logger: p.Logger}

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	if p.TrustProxyHeaders {
		router.Use(chimiddleware.RealIP)
	}
	router.Use(middleware.RequestLogger(p.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(requestTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", health.Health)

	router.Route("/api/v1", func(r chi.Router) {
		if p.Limiter != nil {
			r.Use(middleware.RateLimit(p.Limiter, p.Logger, errs.respond))
		}

		auth.registerRoutes(r, requireAuth)
		users.registerRoutes(r, requireAuth)
		courses.registerRoutes(r, requireAuth)
		enrollments.registerRoutes(r, requireAuth)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.respond(w, r, apperror.New(apperror.KindNotFound, fmt.Sprintf("can't find %s on this server", r.URL.Path)))
	})

	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(Response{Status: statusFail, Message: "method not allowed"})
	})

	return router
}

func authenticateWith(sessions usecase.SessionUsecase) middleware.AuthenticateFunc {
	return func(ctx context.Context, token string) (*middleware.Principal, error) {
		user, err := sessions.Authenticate(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{UserID: user.ID.Hex(), Role: string(user.Role)}, nil
	}
}
