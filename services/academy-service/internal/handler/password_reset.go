package handler

import (
	"net/http"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
)

func (h *authHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "if the email is registered, a password reset link has been sent", nil)
}

func (h *authHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	h.cookies.clearSession(w)
	respondJSON(w, http.StatusOK, "password has been reset, please log in again", nil)
}

func (h *authHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	var req payload.ValidateResetTokenRequest
	if err := h.bind(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), req.Token); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "password reset token is valid", nil)
}
