package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
)

// CourseUsecase manages the course catalog.
type CourseUsecase interface {
	CreateCourse(ctx context.Context, instructorID string, params CreateCourseParams) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*CourseDetail, error)
	ListCourses(ctx context.Context, params ListCoursesParams) ([]*model.Course, error)
	ListInstructorCourses(ctx context.Context, instructorID string) ([]*model.Course, error)
	UpdateCourse(ctx context.Context, instructorID, id string, params UpdateCourseParams) (*model.Course, error)
}

type CreateCourseParams struct {
	Title       string
	Description string
	Level       model.CourseLevel
	Price       float64
	Thumbnail   string
}

type ListCoursesParams struct {
	Level  *model.CourseLevel
	Limit  uint64
	Offset uint64
}

type UpdateCourseParams struct {
	Title       *string
	Description *string
	Level       *model.CourseLevel
	Price       *float64
	Thumbnail   *string
}

// InstructorSummary is the public part of an instructor profile shown with a course.
type InstructorSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Bio    string `json:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty"`

	model.InstructorProfile
}

// CourseDetail is a course together with its instructor.
type CourseDetail struct {
	*model.Course
	Instructor *InstructorSummary `json:"instructor,omitempty"`
}

type courseUsecase struct {
	courseRepo repository.CourseRepository
	userRepo   repository.UserRepository
}

func NewCourseUsecase(courseRepo repository.CourseRepository, userRepo repository.UserRepository) CourseUsecase {
	return &courseUsecase{
		courseRepo: courseRepo,
		userRepo:   userRepo,
	}
}

func (u *courseUsecase) CreateCourse(
	ctx context.Context,
	instructorID string,
	params CreateCourseParams,
) (*model.Course, error) {
	if params.Level == "" {
		params.Level = model.LevelBeginner
	}
	if err := validateCourseFields(&params.Level, &params.Price); err != nil {
		return nil, err
	}

	instructor, err := u.userRepo.GetUser(ctx, instructorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	course, err := u.courseRepo.CreateCourse(ctx, &model.Course{
		Title:        params.Title,
		Description:  params.Description,
		Level:        params.Level,
		InstructorID: instructor.ID,
		Price:        params.Price,
		Thumbnail:    params.Thumbnail,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrCourseTitleTaken
		}
		return nil, err
	}

	return course, nil
}

func (u *courseUsecase) GetCourse(ctx context.Context, id string) (*CourseDetail, error) {
	course, err := u.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{Course: course}

	instructor, err := u.userRepo.GetUser(ctx, course.InstructorID.Hex())
	switch {
	case err == nil:
		detail.Instructor = &InstructorSummary{
			ID:                instructor.ID.Hex(),
			Name:              instructor.Name,
			Email:             instructor.Email,
			Bio:               instructor.Bio,
			Avatar:            instructor.Avatar,
			InstructorProfile: instructor.InstructorProfile,
		}
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	return detail, nil
}

func (u *courseUsecase) ListCourses(ctx context.Context, params ListCoursesParams) ([]*model.Course, error) {
	if params.Level != nil {
		if err := validateCourseFields(params.Level, nil); err != nil {
			return nil, err
		}
	}

	return u.courseRepo.ListCourses(ctx, repository.FilterCoursesParams{
		Level:  params.Level,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
}

func (u *courseUsecase) ListInstructorCourses(ctx context.Context, instructorID string) ([]*model.Course, error) {
	courses, err := u.courseRepo.ListCourses(ctx, repository.FilterCoursesParams{
		InstructorID: &instructorID,
		Limit:        100,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return courses, nil
}

func (u *courseUsecase) UpdateCourse(
	ctx context.Context,
	instructorID, id string,
	params UpdateCourseParams,
) (*model.Course, error) {
	if err := validateCourseFields(params.Level, params.Price); err != nil {
		return nil, err
	}

	course, err := u.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if course.InstructorID.Hex() != instructorID {
		return nil, ErrNotCourseOwner
	}

	updated, err := u.courseRepo.UpdateCourse(ctx, id, repository.UpdateCourseParams{
		Title:       params.Title,
		Description: params.Description,
		Level:       params.Level,
		Price:       params.Price,
		Thumbnail:   params.Thumbnail,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNothingToSave):
			return nil, ErrNothingToUpdate
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrCourseNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, ErrCourseTitleTaken
		}
		return nil, err
	}

	return updated, nil
}

func (u *courseUsecase) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := u.courseRepo.GetCourse(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidID):
			return nil, ErrInvalidCourseID
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	return course, nil
}

func validateCourseFields(level *model.CourseLevel, price *float64) error {
	if level != nil {
		switch *level {
		case model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced:
		default:
			return ErrInvalidCourseLevel
		}
	}
	if price != nil && *price < 0 {
		return ErrNegativePrice
	}

	return nil
}
