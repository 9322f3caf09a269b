package payload

type UpdateProfileRequest struct {
	Name           *string `json:"name"           validate:"omitempty,min=2,max=50"`
	Bio            *string `json:"bio"            validate:"omitempty,max=500"`
	Avatar         *string `json:"avatar"         validate:"omitempty,url"`
	Institute      *string `json:"institute"      validate:"omitempty,min=2"`
	Specialization *string `json:"specialization" validate:"omitempty,min=2"`
	Experience     *int    `json:"experience"     validate:"omitempty,min=0"`
}
