package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/shared/events"
)

// EnrollmentUsecase enrolls students into courses.
type EnrollmentUsecase interface {
	Enroll(ctx context.Context, studentID, courseID string) (*model.Enrollment, error)
	ListStudentEnrollments(ctx context.Context, studentID string) ([]*model.Enrollment, error)
}

type enrollmentUsecase struct {
	enrollmentRepo repository.EnrollmentRepository
	courseRepo     repository.CourseRepository
	userRepo       repository.UserRepository
	publisher      events.Publisher
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewEnrollmentUsecase(
	enrollmentRepo repository.EnrollmentRepository,
	courseRepo repository.CourseRepository,
	userRepo repository.UserRepository,
	publisher events.Publisher,
	logger *zerolog.Logger,
) EnrollmentUsecase {
	return &enrollmentUsecase{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		userRepo:       userRepo,
		publisher:      publisher,
		logger:         logger,
		now:            time.Now,
	}
}

func (u *enrollmentUsecase) Enroll(ctx context.Context, studentID, courseID string) (*model.Enrollment, error) {
	student, err := u.userRepo.GetUser(ctx, studentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	course, err := u.courseRepo.GetCourse(ctx, courseID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidID):
			return nil, ErrInvalidCourseID
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	enrollment, err := u.enrollmentRepo.CreateEnrollment(ctx, &model.Enrollment{
		StudentID:  student.ID,
		CourseID:   course.ID,
		Status:     model.EnrollmentEnrolled,
		EnrolledAt: u.now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	if err := u.courseRepo.IncrementEnrollmentCount(ctx, courseID, 1); err != nil {
		u.logger.Error().Err(err).Str("course_id", courseID).Msg("failed to increment enrollment count")

		if delErr := u.enrollmentRepo.DeleteEnrollment(ctx, enrollment.ID.Hex()); delErr != nil {
			u.logger.Error().Err(delErr).Str("enrollment_id", enrollment.ID.Hex()).Msg("failed to roll back enrollment")
		}
		return nil, err
	}

	publish(ctx, u.publisher, u.logger, events.TypeEnrollmentCreated, course.ID.Hex(), enrollmentCreatedPayload{
		EnrollmentID: enrollment.ID.Hex(),
		StudentID:    student.ID.Hex(),
		CourseID:     course.ID.Hex(),
	})

	return enrollment, nil
}

func (u *enrollmentUsecase) ListStudentEnrollments(ctx context.Context, studentID string) ([]*model.Enrollment, error) {
	enrollments, err := u.enrollmentRepo.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return enrollments, nil
}
