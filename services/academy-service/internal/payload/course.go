package payload

import "github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/model"

type CreateCourseRequest struct {
	Title       string            `json:"title"       validate:"required,min=3,max=200"`
	Description string            `json:"description" validate:"max=5000"`
	Level       model.CourseLevel `json:"level"       validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       float64           `json:"price"       validate:"min=0"`
	Thumbnail   string            `json:"thumbnail"   validate:"omitempty,url"`
}

type UpdateCourseRequest struct {
	Title       *string            `json:"title"       validate:"omitempty,min=3,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Level       *model.CourseLevel `json:"level"       validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       *float64           `json:"price"       validate:"omitempty,min=0"`
	Thumbnail   *string            `json:"thumbnail"   validate:"omitempty,url"`
}

type CourseResponse struct {
	Course any `json:"course"`
}

type CoursesResponse struct {
	Courses []*model.Course `json:"courses"`
}
