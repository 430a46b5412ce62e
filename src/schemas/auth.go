package schemas

type RegisterRequest struct {
	Name string `json:"name" validate:"required"`
	PIN  string `json:"pin" validate:"required"`
}

type RegisterResponse struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

type TokenRequest struct {
	UserID int    `json:"user_id" validate:"required,min=1"`
	PIN    string `json:"pin" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
