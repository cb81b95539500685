package dto

type RegisterDTO struct {
	Name     string `json:"name"     validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ActivateDTO struct {
	ActivationToken string `json:"activation_token" validate:"required"`
	ActivationCode  string `json:"activation_code"  validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SocialAuthDTO struct {
	Email   string `json:"email"    validate:"required,email"`
	Name    string `json:"name"     validate:"required,max=64"`
	Avatar  string `json:"avatar"   validate:"omitempty,url"`
	IDToken string `json:"id_token"`
}

type UpdateUserInfoDTO struct {
	Name string `json:"name" validate:"omitempty,max=64"`
}

type UpdatePasswordDTO struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type UpdateAvatarDTO struct {
	// base64 или data URI
	Avatar string `json:"avatar" validate:"required"`
}

type CreateOrderDTO struct {
	CourseID    string         `json:"courseId"     validate:"required"`
	PaymentInfo map[string]any `json:"payment_info"`
}
