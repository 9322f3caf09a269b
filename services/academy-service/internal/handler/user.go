package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/middleware"
)

type userHTTPHandler struct {
	profileUsecase usecase.ProfileUsecase
	validator      *payload.Validator
	errors         errorResponder
}

func (h *userHTTPHandler) registerRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", h.GetMe)
		r.Patch("/me", h.UpdateMe)
	})
}

func (h *userHTTPHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	user, err := h.profileUsecase.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "user fetched successfully", payload.UserResponse{User: user})
}

func (h *userHTTPHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())

	user, err := h.profileUsecase.UpdateProfile(r.Context(), principal.UserID, usecase.UpdateProfileParams{
		Name:           req.Name,
		Bio:            req.Bio,
		Avatar:         req.Avatar,
		Institute:      req.Institute,
		Specialization: req.Specialization,
		Experience:     req.Experience,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "profile updated successfully", payload.UserResponse{User: user})
}
