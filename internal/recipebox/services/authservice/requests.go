package authservice

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}
