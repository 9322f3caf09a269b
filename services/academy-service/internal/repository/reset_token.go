package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"
)

// ResetTokenRepository keeps password reset grants. A grant is live while it is unused
// and now is before its expiry; at most one live grant exists per user.
type ResetTokenRepository interface {
	// IssueResetToken stores token and drops every other live grant of the same user.
	IssueResetToken(ctx context.Context, token *model.PasswordResetToken) error

	// FindLiveResetToken returns mongo.ErrNoDocuments unless the grant is live at now.
	FindLiveResetToken(ctx context.Context, jtiHash string, now time.Time) (*model.PasswordResetToken, error)

	// RedeemResetToken atomically marks a live grant used. Concurrent redemptions of the
	// same grant see mongo.ErrNoDocuments except for the first.
	RedeemResetToken(ctx context.Context, jtiHash string, now time.Time) (*model.PasswordResetToken, error)
}

const resetTokenCollection = "password_reset_tokens"

type resetTokenMongoRepository struct {
	tokens *mongo.Collection
}

func NewResetTokenMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) ResetTokenRepository {
	tokens := db.Collection(resetTokenCollection)

	_, err := tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "jti_hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "used", Value: 1}}},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create reset token indexes")
	}

	return &resetTokenMongoRepository{tokens: tokens}
}

func liveGrant(jtiHash string, now time.Time) bson.M {
	return bson.M{"jti_hash": jtiHash, "used": false, "expires_at": bson.M{"$gt": now}}
}

func (r *resetTokenMongoRepository) IssueResetToken(ctx context.Context, token *model.PasswordResetToken) error {
	if _, err := r.tokens.DeleteMany(ctx, bson.M{"user_id": token.UserID, "used": false}); err != nil {
		return err
	}

	token.ID = bson.NewObjectID()
	token.Used = false
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt

	_, err := r.tokens.InsertOne(ctx, token)
	return err
}

func (r *resetTokenMongoRepository) FindLiveResetToken(
	ctx context.Context,
	jtiHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	if err := r.tokens.FindOne(ctx, liveGrant(jtiHash, now)).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *resetTokenMongoRepository) RedeemResetToken(
	ctx context.Context,
	jtiHash string,
	now time.Time,
) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	err := r.tokens.FindOneAndUpdate(
		ctx,
		liveGrant(jtiHash, now),
		bson.M{"$set": bson.M{"used": true, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
