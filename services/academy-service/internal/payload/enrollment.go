package payload

import "github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"

type CreateEnrollmentRequest struct {
	CourseID string `json:"courseId" validate:"required,mongodb"`
}

type EnrollmentResponse struct {
	Enrollment *model.Enrollment `json:"enrollment"`
}

type EnrollmentsResponse struct {
	Enrollments []*model.Enrollment `json:"enrollments"`
}
