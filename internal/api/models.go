package api

type TokenResponse struct {
	Token string `json:"token"`
}
