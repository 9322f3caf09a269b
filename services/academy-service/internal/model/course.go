package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Course is a course published by an instructor.
type Course struct {
	ID              bson.ObjectID `bson:"_id,omitempty"       json:"id"`
	Title           string        `bson:"title"               json:"title"`
	Description     string        `bson:"description"         json:"description"`
	Level           CourseLevel   `bson:"level"               json:"level"`
	InstructorID    bson.ObjectID `bson:"instructor_id"       json:"instructorId"`
	Price           float64       `bson:"price"               json:"price"`
	Thumbnail       string        `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Rating          float64       `bson:"rating"              json:"rating"`
	EnrollmentCount int64         `bson:"enrollment_count"    json:"enrollmentCount"`
	CreatedAt       time.Time     `bson:"created_at"          json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updated_at"          json:"updatedAt"`
}
