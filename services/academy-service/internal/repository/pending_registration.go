package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

// PendingRegistrationRepository stores sign-ups that are waiting for OTP verification.
type PendingRegistrationRepository interface {
	CreatePendingRegistration(ctx context.Context, pending *model.PendingRegistration) (*model.PendingRegistration, error)
	GetPendingRegistration(ctx context.Context, email, otp string, role model.Role) (*model.PendingRegistration, error)
	// IncrementAttempts records a failed verification and returns the new attempt count.
	IncrementAttempts(ctx context.Context, email string) (int, error)
	DeletePendingRegistration(ctx context.Context, email string) error
	// DeleteExpiredPendingRegistration removes the record for email if it expired at or
	// before now. The TTL index sweeps lazily, so sign-ups clear stale records themselves.
	DeleteExpiredPendingRegistration(ctx context.Context, email string, now time.Time) error
}

const pendingRegistrationCollection = "pending_registrations"

type pendingRegistrationMongoRepository struct {
	db *mongo.Database
}

func NewPendingRegistrationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PendingRegistrationRepository {
	collection := db.Collection(pendingRegistrationCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create pending registration indexes")
	}

	return &pendingRegistrationMongoRepository{db: db}
}

func (r *pendingRegistrationMongoRepository) CreatePendingRegistration(
	ctx context.Context,
	pending *model.PendingRegistration,
) (*model.PendingRegistration, error) {
	now := time.Now()
	pending.CreatedAt = now
	pending.UpdatedAt = now
	pending.Attempts = 0

	result, err := r.db.Collection(pendingRegistrationCollection).InsertOne(ctx, pending)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		pending.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return pending, nil
}

func (r *pendingRegistrationMongoRepository) GetPendingRegistration(
	ctx context.Context,
	email, otp string,
	role model.Role,
) (*model.PendingRegistration, error) {
	filter := bson.M{"email": email, "otp": otp, "role": role}

	var pending model.PendingRegistration
	err := r.db.Collection(pendingRegistrationCollection).FindOne(ctx, filter).Decode(&pending)
	if err != nil {
		return nil, err
	}

	return &pending, nil
}

func (r *pendingRegistrationMongoRepository) IncrementAttempts(ctx context.Context, email string) (int, error) {
	result := r.db.Collection(pendingRegistrationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"email": email},
		bson.M{
			"$inc": bson.M{"attempts": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return 0, result.Err()
	}

	var pending model.PendingRegistration
	if err := result.Decode(&pending); err != nil {
		return 0, err
	}

	return pending.Attempts, nil
}

func (r *pendingRegistrationMongoRepository) DeletePendingRegistration(ctx context.Context, email string) error {
	_, err := r.db.Collection(pendingRegistrationCollection).DeleteOne(ctx, bson.M{"email": email})
	return err
}

func (r *pendingRegistrationMongoRepository) DeleteExpiredPendingRegistration(
	ctx context.Context,
	email string,
	now time.Time,
) error {
	_, err := r.db.Collection(pendingRegistrationCollection).DeleteOne(ctx, bson.M{
		"email":      email,
		"expires_at": bson.M{"$lte": now},
	})
	return err
}
