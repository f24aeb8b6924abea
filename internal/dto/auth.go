package dto

type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type RegisterResponseDTO struct {
	Message string          `json:"message"`
	Token   string          `json:"access_token"`
	User    UserResponseDTO `json:"user"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponseDTO struct {
	Message string          `json:"message"`
	Token   string          `json:"access_token"`
	User    UserResponseDTO `json:"user"`
}
