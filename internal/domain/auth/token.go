package auth

import "time"

// Token 為登入後取得的 access token；服務不發 refresh token，過期後重新登入。
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
