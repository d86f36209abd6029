// Package dto defines data transfer objects for the twofactor feature's HTTP transport layer.
package dto

// SetupRes is returned by POST /users/me/2fa/setup.
type SetupRes struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauth_url"`
}

// VerifyReq is the body of POST /users/me/2fa/verify.
type VerifyReq struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}
