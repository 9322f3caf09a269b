package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
	"github.com/vasapolrittideah/zacademy-api/shared/events"
)

type userRegisteredPayload struct {
	UserID string     `json:"user_id"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	Method string     `json:"method"`
}

type userFederatedLinkedPayload struct {
	UserID   string `json:"user_id"`
	Provider string `json:"provider"`
}

type enrollmentCreatedPayload struct {
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
}

// Event publishing never fails the request that triggered it.
func publish(ctx context.Context, publisher events.Publisher, logger *zerolog.Logger, eventType, key string, payload any) {
	if err := publisher.Publish(ctx, eventType, key, payload); err != nil {
		logger.Warn().Err(err).Str("event_type", eventType).Str("key", key).Msg("failed to publish domain event")
	}
}

func publishUserRegistered(
	ctx context.Context,
	publisher events.Publisher,
	logger *zerolog.Logger,
	user *model.User,
	method string,
) {
	publish(ctx, publisher, logger, events.TypeUserRegistered, user.ID.Hex(), userRegisteredPayload{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		Method: method,
	})
}
