package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/middleware"
)

type authHTTPHandler struct {
	registrationUsecase  usecase.RegistrationUsecase
	sessionUsecase       usecase.SessionUsecase
	oauthUsecase         usecase.OAuthUsecase
	profileUsecase       usecase.ProfileUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *payload.Validator
	cookies              cookieSettings
	clientURL            string
	errors               errorResponder
	logger               *zerolog.Logger
}

func (h *authHTTPHandler) registerRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/student/register", h.RegisterStudent)
		r.Post("/instructor/register", h.RegisterInstructor)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(requireAuth).Get("/me", h.Me)

		r.Get("/google", h.BeginGoogleAuth)
		r.Get("/google/callback", h.GoogleCallback)
		r.Post("/google/exchange", h.ExchangeGoogleCode)

		r.Post("/password/forgot", h.RequestPasswordReset)
		r.Post("/password/reset", h.ResetPassword)
		r.Post("/password/validate", h.ValidatePasswordResetToken)
	})
}

func (h *authHTTPHandler) RegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterStudentRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	info, err := h.registrationUsecase.Register(r.Context(), usecase.RegisterParams{
		Role:     model.RoleStudent,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "OTP sent to student email", payload.RegisterResponse{
		Email:     info.Email,
		ExpiresAt: info.ExpiresAt,
	})
}

func (h *authHTTPHandler) RegisterInstructor(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterInstructorRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	info, err := h.registrationUsecase.Register(r.Context(), usecase.RegisterParams{
		Role:           model.RoleInstructor,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Institute:      req.Institute,
		Specialization: req.Specialization,
		Experience:     req.Experience,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "OTP sent to instructor email", payload.RegisterResponse{
		Email:     info.Email,
		ExpiresAt: info.ExpiresAt,
	})
}

func (h *authHTTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("userType"))
	if !role.Valid() {
		h.errors.respond(w, r, usecase.ErrInvalidRole)
		return
	}

	var req payload.VerifyOTPRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	session, err := h.registrationUsecase.VerifyRegistration(r.Context(), usecase.VerifyRegistrationParams{
		Email: req.Email,
		OTP:   req.OTP,
		Role:  role,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	h.cookies.setSession(w, session.Token)
	respondJSON(w, http.StatusOK, "registration verified", payload.SessionResponse{
		User:  session.User,
		Token: session.Token,
	})
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	session, err := h.sessionUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	h.cookies.setSession(w, session.Token)
	respondJSON(w, http.StatusOK, "login successful", payload.SessionResponse{
		User:  session.User,
		Token: session.Token,
	})
}

func (h *authHTTPHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.clearSession(w)
	respondJSON(w, http.StatusOK, "logged out successfully", nil)
}

func (h *authHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	user, err := h.profileUsecase.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "user fetched successfully", payload.UserResponse{User: user})
}

func (h *authHTTPHandler) BeginGoogleAuth(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	intent := model.IntentSignupStudent
	switch {
	case query.Get("login") == "true":
		intent = model.IntentLogin
	case query.Get("userType") == string(model.RoleInstructor):
		intent = model.IntentSignupInstructor
	}

	authURL, err := h.oauthUsecase.BeginGoogleAuth(r.Context(), intent)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

func (h *authHTTPHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	result, err := h.oauthUsecase.CompleteGoogleAuth(r.Context(), usecase.CompleteGoogleAuthParams{
		State:         query.Get("state"),
		Code:          query.Get("code"),
		ProviderError: query.Get("error"),
	})
	if err != nil {
		reason := googleFailureReason(err)
		if reason == "server_error" {
			h.logger.Error().Err(err).Msg("google sign-in failed")
		}

		http.Redirect(w, r, h.clientRedirect("/google-auth-error", url.Values{"reason": {reason}}), http.StatusFound)
		return
	}

	http.Redirect(w, r, h.clientRedirect("/google-auth-success", url.Values{
		"code":     {result.ExchangeCode},
		"userType": {string(result.Role)},
	}), http.StatusFound)
}

func (h *authHTTPHandler) ExchangeGoogleCode(w http.ResponseWriter, r *http.Request) {
	var req payload.ExchangeCodeRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	session, err := h.oauthUsecase.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	h.cookies.setSession(w, session.Token)
	respondJSON(w, http.StatusOK, "login successful", payload.SessionResponse{
		User:  session.User,
		Token: session.Token,
	})
}

func (h *authHTTPHandler) bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return h.validator.Struct(dst)
}

func (h *authHTTPHandler) clientRedirect(path string, query url.Values) string {
	return strings.TrimRight(h.clientURL, "/") + path + "?" + query.Encode()
}

func googleFailureReason(err error) string {
	switch {
	case errors.Is(err, usecase.ErrOAuthStateInvalid):
		return "invalid_state"
	case errors.Is(err, usecase.ErrOAuthDenied):
		return "cancelled"
	case errors.Is(err, usecase.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, usecase.ErrAccountExists):
		return "account_exists"
	case errors.Is(err, usecase.ErrGoogleEmailUnverified):
		return "email_unverified"
	case errors.Is(err, usecase.ErrGoogleAccountMismatch):
		return "account_mismatch"
	case errors.Is(err, usecase.ErrProviderFailure):
		return "provider_error"
	default:
		return "server_error"
	}
}
