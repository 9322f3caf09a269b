package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/middleware"
)

type enrollmentHTTPHandler struct {
	enrollmentUsecase usecase.EnrollmentUsecase
	validator         *payload.Validator
	errors            errorResponder
}

func (h *enrollmentHTTPHandler) registerRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Use(requireAuth, middleware.RestrictTo(h.errors.respond, string(model.RoleStudent)))
		r.Post("/", h.Enroll)
		r.Get("/me", h.ListMine)
	})
}

func (h *enrollmentHTTPHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateEnrollmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())

	enrollment, err := h.enrollmentUsecase.Enroll(r.Context(), principal.UserID, req.CourseID)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "enrolled successfully", payload.EnrollmentResponse{Enrollment: enrollment})
}

func (h *enrollmentHTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	enrollments, err := h.enrollmentUsecase.ListStudentEnrollments(r.Context(), principal.UserID)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "enrollments fetched successfully", payload.EnrollmentsResponse{Enrollments: enrollments})
}
