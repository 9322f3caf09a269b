package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/apperror"
	"github.com/vasapolrittideah/zacademy-api/shared/middleware"
)

type courseHTTPHandler struct {
	courseUsecase usecase.CourseUsecase
	validator     *payload.Validator
	errors        errorResponder
}

func (h *courseHTTPHandler) registerRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	instructorOnly := middleware.RestrictTo(h.errors.respond, string(model.RoleInstructor))

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.With(requireAuth, instructorOnly).Post("/", h.CreateCourse)
		r.With(requireAuth, instructorOnly).Get("/instructor", h.ListInstructorCourses)
		r.Get("/{id}", h.GetCourse)
		r.With(requireAuth, instructorOnly).Patch("/{id}", h.UpdateCourse)
	})
}

func (h *courseHTTPHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())

	course, err := h.courseUsecase.CreateCourse(r.Context(), principal.UserID, usecase.CreateCourseParams{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, "course created successfully", payload.CourseResponse{Course: course})
}

func (h *courseHTTPHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	params, err := parseListCoursesQuery(r)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	courses, err := h.courseUsecase.ListCourses(r.Context(), params)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "courses fetched successfully", payload.CoursesResponse{Courses: courses})
}

func (h *courseHTTPHandler) ListInstructorCourses(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromContext(r.Context())

	courses, err := h.courseUsecase.ListInstructorCourses(r.Context(), principal.UserID)
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "courses fetched successfully", payload.CoursesResponse{Courses: courses})
}

func (h *courseHTTPHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseUsecase.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "course fetched successfully", payload.CourseResponse{Course: course})
}

func (h *courseHTTPHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.errors.respond(w, r, err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errors.respond(w, r, err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())

	course, err := h.courseUsecase.UpdateCourse(r.Context(), principal.UserID, chi.URLParam(r, "id"), usecase.UpdateCourseParams{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		h.errors.respond(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, "course updated successfully", payload.CourseResponse{Course: course})
}

func parseListCoursesQuery(r *http.Request) (usecase.ListCoursesParams, error) {
	query := r.URL.Query()

	var params usecase.ListCoursesParams
	if level := query.Get("level"); level != "" {
		l := model.CourseLevel(level)
		params.Level = &l
	}

	var err error
	if params.Limit, err = parseUintQuery(query.Get("limit"), "limit"); err != nil {
		return params, err
	}
	if params.Offset, err = parseUintQuery(query.Get("offset"), "offset"); err != nil {
		return params, err
	}

	return params, nil
}

func parseUintQuery(raw, name string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.Validation(name + " must be a non-negative integer")
	}
	return v, nil
}
