package repository

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

// EnrollmentRepository defines the interface for enrollment-related database operations.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) (*model.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]*model.Enrollment, error)
	DeleteEnrollment(ctx context.Context, id string) error
}

const enrollmentCollection = "enrollments"

type enrollmentMongoRepository struct {
	db *mongo.Database
}

func NewEnrollmentMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) EnrollmentRepository {
	collection := db.Collection(enrollmentCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "course_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create enrollment indexes")
	}

	return &enrollmentMongoRepository{db: db}
}

func (r *enrollmentMongoRepository) CreateEnrollment(
	ctx context.Context,
	enrollment *model.Enrollment,
) (*model.Enrollment, error) {
	result, err := r.db.Collection(enrollmentCollection).InsertOne(ctx, enrollment)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		enrollment.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return enrollment, nil
}

func (r *enrollmentMongoRepository) ListEnrollmentsByStudent(
	ctx context.Context,
	studentID string,
) ([]*model.Enrollment, error) {
	objectID, err := parseObjectID(studentID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(enrollmentCollection).Find(
		ctx,
		bson.M{"student_id": objectID},
		options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	enrollments := make([]*model.Enrollment, 0)
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentMongoRepository) DeleteEnrollment(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(enrollmentCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}
