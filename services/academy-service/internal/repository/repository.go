package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrInvalidID     = errors.New("invalid object id")
	ErrNothingToSave = errors.New("no fields to update")
)

func parseObjectID(id string) (bson.ObjectID, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return objectID, nil
}
