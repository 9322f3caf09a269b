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

// CourseRepository defines the interface for course-related database operations.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	ListCourses(ctx context.Context, params FilterCoursesParams) ([]*model.Course, error)
	UpdateCourse(ctx context.Context, id string, params UpdateCourseParams) (*model.Course, error)
	IncrementEnrollmentCount(ctx context.Context, id string, delta int64) error
}

// FilterCoursesParams defines the parameters for filtering and paginating courses.
type FilterCoursesParams struct {
	InstructorID *string
	Level        *model.CourseLevel
	Limit        uint64
	Offset       uint64
}

// UpdateCourseParams defines the optional parameters for updating a course.
type UpdateCourseParams struct {
	Title       *string
	Description *string
	Level       *model.CourseLevel
	Price       *float64
	Thumbnail   *string
}

const courseCollection = "courses"

type courseMongoRepository struct {
	db *mongo.Database
}

func NewCourseMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) CourseRepository {
	collection := db.Collection(courseCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "instructor_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create course indexes")
	}

	return &courseMongoRepository{db: db}
}

func (r *courseMongoRepository) CreateCourse(ctx context.Context, course *model.Course) (*model.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	result, err := r.db.Collection(courseCollection).InsertOne(ctx, course)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		course.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return course, nil
}

func (r *courseMongoRepository) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var course model.Course
	err = r.db.Collection(courseCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&course)
	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) ListCourses(ctx context.Context, params FilterCoursesParams) ([]*model.Course, error) {
	findOptions := options.Find()

	limit := params.Limit
	if limit == 0 {
		limit = 20
	}
	findOptions.SetLimit(int64(limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	filter := bson.M{}
	if params.InstructorID != nil {
		instructorID, err := parseObjectID(*params.InstructorID)
		if err != nil {
			return nil, err
		}
		filter["instructor_id"] = instructorID
	}
	if params.Level != nil {
		filter["level"] = *params.Level
	}

	cursor, err := r.db.Collection(courseCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := make([]*model.Course, 0)
	for cursor.Next(ctx) {
		var course model.Course
		if err := cursor.Decode(&course); err != nil {
			return nil, err
		}
		courses = append(courses, &course)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseMongoRepository) UpdateCourse(
	ctx context.Context,
	id string,
	params UpdateCourseParams,
) (*model.Course, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Description != nil {
		updateMap["description"] = *params.Description
	}
	if params.Level != nil {
		updateMap["level"] = *params.Level
	}
	if params.Price != nil {
		updateMap["price"] = *params.Price
	}
	if params.Thumbnail != nil {
		updateMap["thumbnail"] = *params.Thumbnail
	}

	if len(updateMap) == 0 {
		return nil, ErrNothingToSave
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(courseCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var course model.Course
	if err := result.Decode(&course); err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseMongoRepository) IncrementEnrollmentCount(ctx context.Context, id string, delta int64) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(courseCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"enrollment_count": delta}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
