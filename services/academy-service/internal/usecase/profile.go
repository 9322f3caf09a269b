package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
)

// ProfileUsecase reads and edits the caller's own profile.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*model.User, error)
}

// UpdateProfileParams defines the optional profile fields. Only the fields that are not nil
// will be updated.
type UpdateProfileParams struct {
	Name           *string
	Bio            *string
	Avatar         *string
	Institute      *string
	Specialization *string
	Experience     *int
}

func (p UpdateProfileParams) hasInstructorFields() bool {
	return p.Institute != nil || p.Specialization != nil || p.Experience != nil
}

func (p UpdateProfileParams) empty() bool {
	return p.Name == nil && p.Bio == nil && p.Avatar == nil && !p.hasInstructorFields()
}

type profileUsecase struct {
	userRepo repository.UserRepository
}

func NewProfileUsecase(userRepo repository.UserRepository) ProfileUsecase {
	return &profileUsecase{userRepo: userRepo}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *profileUsecase) UpdateProfile(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.User, error) {
	if params.empty() {
		return nil, ErrNothingToUpdate
	}
	if params.Experience != nil && *params.Experience < 0 {
		return nil, ErrNegativeExperience
	}

	user, err := u.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Role != model.RoleInstructor && params.hasInstructorFields() {
		return nil, ErrStudentInstructorFields
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Name:           params.Name,
		Bio:            params.Bio,
		Avatar:         params.Avatar,
		Institute:      params.Institute,
		Specialization: params.Specialization,
		Experience:     params.Experience,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return updated, nil
}
