// Package dto defines data transfer objects for the users feature's HTTP transport layer.
package dto

// CreateUserReq is the body of POST /users.
type CreateUserReq struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Mobile   string `json:"mobile" binding:"max=32"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateUserReq is the body of PATCH /users/me. Omitted fields are left unchanged.
type UpdateUserReq struct {
	DesiredUsername string `json:"desired_username" binding:"omitempty,max=64"`
	DesiredEmail    string `json:"desired_email" binding:"omitempty,email,max=255"`
}

// PasswordUpdateReq is the body of PUT /users/me/password.
// DesiredPassword is checked by the usecase so that 401/403 are reported first.
type PasswordUpdateReq struct {
	DesiredPassword string `json:"desired_password"`
}

// LoginReq is the body of POST /login.
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
