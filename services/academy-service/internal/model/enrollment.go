package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a student to a course. A student enrolls in a course at most once.
type Enrollment struct {
	ID          bson.ObjectID    `bson:"_id,omitempty"          json:"id"`
	StudentID   bson.ObjectID    `bson:"student_id"             json:"studentId"`
	CourseID    bson.ObjectID    `bson:"course_id"              json:"courseId"`
	Status      EnrollmentStatus `bson:"status"                 json:"status"`
	EnrolledAt  time.Time        `bson:"enrolled_at"            json:"enrolledAt"`
	CompletedAt *time.Time       `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
