package dto

// CreateUserRes is returned by POST /users.
type CreateUserRes struct {
	ID string `json:"id"`
}

// TokenRes is returned by POST /login.
type TokenRes struct {
	Token string `json:"token"`
}

// MessageRes is a plain confirmation message.
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes is the body of every error response.
type ErrorRes struct {
	Error string `json:"error"`
}
